package game

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jason-s-yu/quizboard/internal/models"
	"github.com/jason-s-yu/quizboard/internal/store"
)

// AdjustScore adds delta to a team's score outside of any question.
func (s *Session) AdjustScore(teamID string, delta int) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	teams, ok := models.WithScoreDelta(s.teams, teamID, delta)
	if !ok {
		return s.snapshot(), fmt.Errorf("%w: %s", ErrUnknownTeam, teamID)
	}
	s.teams = teams
	s.persistTeams()
	s.logAction(teamID, "score_adjust", map[string]interface{}{"delta": delta})
	return s.emit(), nil
}

// SetScore overwrites a team's score.
func (s *Session) SetScore(teamID string, score int) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	teams, ok := models.WithScore(s.teams, teamID, score)
	if !ok {
		return s.snapshot(), fmt.Errorf("%w: %s", ErrUnknownTeam, teamID)
	}
	s.teams = teams
	s.persistTeams()
	s.logAction(teamID, "score_set", map[string]interface{}{"score": score})
	return s.emit(), nil
}

// Leaderboard returns the teams by descending score, ties in roster order.
func (s *Session) Leaderboard() []models.Team {
	s.mu.Lock()
	defer s.mu.Unlock()

	ranked := append([]models.Team(nil), s.teams...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	return ranked
}

// DismissFinalLeaderboard hides the end-of-board leaderboard. It stays hidden
// until a new board is imported.
func (s *Session) DismissFinalLeaderboard() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.finalDismissed = true
	return s.emit()
}

// ExportBackup captures the three persisted records.
func (s *Session) ExportBackup(now time.Time) store.Backup {
	s.mu.Lock()
	defer s.mu.Unlock()

	return store.NewBackup(s.teams, s.questions, s.turn.Clone(), now)
}

// ImportBackup replaces every record with the backup's contents and closes
// any open question. Turn order entries for unknown teams are dropped.
func (s *Session) ImportBackup(ctx context.Context, b store.Backup) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.discardRound()
	s.stopSpin()

	s.teams = append([]models.Team{}, b.Teams...)
	s.questions = append([]models.Question{}, b.Questions...)
	s.turn = b.TurnState.Clone()
	s.turn.Prune(models.TeamIDs(s.teams))
	s.finalDismissed = false

	for key, v := range map[store.Key]interface{}{
		store.KeyTeams:     s.teams,
		store.KeyQuestions: s.questions,
		store.KeyTurnState: s.turn,
	} {
		wctx, cancel := context.WithTimeout(ctx, s.writeTimeout)
		if err := store.WriteJSON(wctx, s.store, key, v); err != nil {
			s.notify(fmt.Sprintf("Could not save %s", key), err)
		}
		cancel()
	}

	s.log.WithField("exportedAt", b.ExportedAt).Info("backup imported")
	s.logAction("", "backup_import", map[string]interface{}{
		"teams":     len(s.teams),
		"questions": len(s.questions),
	})
	return s.emit()
}
