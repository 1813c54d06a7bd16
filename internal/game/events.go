package game

import "github.com/jason-s-yu/quizboard/internal/models"

// BoardEventType tags messages fanned out to host consoles.
type BoardEventType string

const (
	EventSnapshot BoardEventType = "snapshot"
	EventCue      BoardEventType = "cue"
)

// BoardEvent is what BroadcastFn receives.
type BoardEvent struct {
	Type    BoardEventType         `json:"type"`
	State   *Snapshot              `json:"state,omitempty"`
	Cue     Cue                    `json:"cue,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// Snapshot is the full render state after a transition. Round views are
// copies; mutating them has no effect on the session.
type Snapshot struct {
	Teams     []models.Team     `json:"teams"`
	Questions []models.Question `json:"questions"`
	Turn      models.TurnState  `json:"turnState"`

	// CurrentTeamID is the team under the board cursor.
	CurrentTeamID string `json:"currentTeamId,omitempty"`

	Active          *models.Question `json:"activeQuestion,omitempty"`
	ShowAnswer      bool             `json:"showAnswer"`
	SelectedTeamID  string           `json:"selectedTeamId,omitempty"`
	AnsweringTeamID string           `json:"answeringTeamId,omitempty"`

	Lyrics   *LyricsRound     `json:"lyrics,omitempty"`
	Geo      *GeoguesserRound `json:"geo,omitempty"`
	Joker    *JokerRound      `json:"joker,omitempty"`
	Timeline *TimelineRound   `json:"timeline,omitempty"`
	Mcq      *McqRound        `json:"mcq,omitempty"`
	Audio    *AudioRound      `json:"audio,omitempty"`

	Spin SpinView `json:"spin"`

	BoardComplete        bool     `json:"boardComplete"`
	ShowFinalLeaderboard bool     `json:"showFinalLeaderboard"`
	Notices              []string `json:"notices,omitempty"`
}

// snapshot must be called with mu held.
func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		Teams:          s.teams,
		Questions:      s.questions,
		Turn:           s.turn.Clone(),
		CurrentTeamID:  s.turn.CurrentBoardTeam(),
		ShowAnswer:     s.showAnswer,
		SelectedTeamID: s.selectedTeamID,
		Spin:           s.spin.view(),
		BoardComplete:  models.AllAnswered(s.questions),
	}
	snap.ShowFinalLeaderboard = snap.BoardComplete && !s.finalDismissed
	if len(s.notices) > 0 {
		snap.Notices = append([]string(nil), s.notices...)
	}
	if s.active != nil {
		q := *s.active
		snap.Active = &q
		snap.AnsweringTeamID = s.answeringTeam()
	}
	if s.round != nil {
		switch r := s.round.view().(type) {
		case *LyricsRound:
			snap.Lyrics = r
		case *GeoguesserRound:
			snap.Geo = r
		case *JokerRound:
			snap.Joker = r
		case *TimelineRound:
			snap.Timeline = r
		case *McqRound:
			snap.Mcq = r
		case *AudioRound:
			snap.Audio = r
		}
	}
	return snap
}
