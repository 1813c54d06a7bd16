package game

import (
	"fmt"

	"github.com/jason-s-yu/quizboard/internal/models"
	"github.com/sirupsen/logrus"
)

// outcome is the mode-agnostic result handed to commit. Modes decide the
// amounts; commit only applies them.
type outcome struct {
	correct bool
	teamID  string
	reward  int
	penalty int
}

func (o outcome) delta() int {
	if o.correct {
		return o.reward
	}
	return -o.penalty
}

// commit books o against the team (when known), flags the open question
// answered and advances the board cursor. Unless keepOpen is set the round is
// discarded afterwards. Callers guarantee a single commit per question.
// Caller must hold mu.
func (s *Session) commit(o outcome, keepOpen bool) {
	q := s.active
	entry := s.log.WithFields(logrus.Fields{
		"question": q.ID,
		"mode":     string(q.Mode()),
		"team":     o.teamID,
		"correct":  o.correct,
	})

	if o.teamID != "" {
		teams, ok := models.WithScoreDelta(s.teams, o.teamID, o.delta())
		if ok {
			s.teams = teams
			s.persistTeams()
		} else {
			entry.Warn("answering team is not on the roster, score not applied")
		}
	}

	s.questions = models.MarkAnswered(s.questions, q.ID)
	q.Answered = true
	s.persistQuestions()

	if s.turn.Active() {
		s.turn.AdvanceBoard()
		s.persistTurn()
	}

	entry.WithField("delta", o.delta()).Info("question resolved")
	s.logAction(o.teamID, "question_resolved", map[string]interface{}{
		"correct": o.correct,
		"delta":   o.delta(),
	})

	if !keepOpen {
		s.discardRound()
	}
}

// Judge resolves standard, audio, lyrics and geoguesser questions with a
// binary verdict from the host.
func (s *Session) Judge(correct bool) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil || s.round == nil {
		return s.snapshot(), ErrNoActiveQuestion
	}
	base := s.active.BasePoints()
	o := outcome{correct: correct, teamID: s.answeringTeam(), reward: base, penalty: base}

	switch r := s.round.(type) {
	case *StandardRound, *AudioRound:
	case *LyricsRound:
		o.reward = r.reward(base)
	case *GeoguesserRound:
		o.reward = max(0, r.Potential)
		o.penalty = base
		if r.CostApplied {
			o.penalty += r.Cost
		}
	default:
		return s.snapshot(), fmt.Errorf("%w: %s questions score themselves", ErrWrongMode, s.active.Mode())
	}

	if correct {
		s.playCue(CueSuccessChime, nil)
	} else {
		s.playCue(CueDownbeat, nil)
	}
	s.commit(o, false)
	return s.emit(), nil
}
