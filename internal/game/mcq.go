package game

import "github.com/jason-s-yu/quizboard/internal/models"

// McqRound resolves on the first selection, right or wrong.
type McqRound struct {
	Options        []string `json:"options"`
	Eliminated     []int    `json:"eliminated"`
	Selected       *int     `json:"selected,omitempty"`
	Resolved       bool     `json:"resolved"`
	Correct        bool     `json:"correct"`
	CorrectIndex   int      `json:"correctIndex"`
	ResolvedTeamID string   `json:"resolvedTeamId,omitempty"`
	PointsDelta    int      `json:"pointsDelta"`
}

func (*McqRound) Mode() models.QuestionType { return models.TypeMcq }

func (r *McqRound) view() Round {
	c := *r
	c.Options = append([]string(nil), r.Options...)
	c.Eliminated = append([]int(nil), r.Eliminated...)
	if r.Selected != nil {
		v := *r.Selected
		c.Selected = &v
	}
	if !r.Resolved {
		c.CorrectIndex = -1
	}
	return &c
}

func newMcqRound(q models.Question) *McqRound {
	r := &McqRound{
		Options:    append([]string(nil), q.McqOptions...),
		Eliminated: []int{},
	}
	if len(r.Options) > 0 {
		r.CorrectIndex = clamp(q.McqAnswer(), 0, len(r.Options)-1)
	}
	return r
}

// SelectMcqOption scores the first selection: base points to the acting team
// when right, minus base points when wrong. Later selections are ignored.
func (s *Session) SelectMcqOption(idx int) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := requireRound[*McqRound](s)
	if err != nil {
		return s.snapshot(), err
	}
	if len(r.Options) == 0 || r.Resolved {
		return s.snapshot(), nil
	}
	idx = clamp(idx, 0, len(r.Options)-1)

	team := s.answeringTeam()
	s.lastGuessTeamID = team
	base := s.active.BasePoints()

	r.Selected = &idx
	r.Resolved = true
	r.Correct = idx == r.CorrectIndex
	r.ResolvedTeamID = team
	if r.Correct {
		r.PointsDelta = base
		s.playCue(CueSuccessChime, nil)
	} else {
		r.PointsDelta = -base
		r.Eliminated = append(r.Eliminated, idx)
		s.playCue(CueBoing, nil)
	}
	s.commit(outcome{correct: r.Correct, teamID: team, reward: base, penalty: base}, true)
	return s.emit(), nil
}
