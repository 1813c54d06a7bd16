package game

import (
	"math"
	"math/rand"

	"github.com/jason-s-yu/quizboard/internal/models"
)

// Round is the ephemeral, per-open-question state of one mode. It lives only
// while the question is open and is never persisted.
type Round interface {
	Mode() models.QuestionType
	// view returns a deep copy that is safe to hand to renderers.
	view() Round
}

// NewRound builds a fresh round for q. Every call draws new randomness from rng,
// so reopening a question never carries over earlier progress.
func NewRound(q models.Question, rng *rand.Rand) Round {
	switch q.Mode() {
	case models.TypeLyrics:
		return newLyricsRound(q, rng)
	case models.TypeGeoguesser:
		return newGeoRound(q)
	case models.TypeJoker:
		return newJokerRound(q, rng)
	case models.TypeTimeline:
		return newTimelineRound(q, rng)
	case models.TypeMcq:
		return newMcqRound(q)
	case models.TypeAudio:
		return newAudioRound(q)
	default:
		return &StandardRound{}
	}
}

// StandardRound has no sub-state; a single judgement resolves it.
type StandardRound struct{}

func (*StandardRound) Mode() models.QuestionType { return models.TypeStandard }
func (r *StandardRound) view() Round             { return &StandardRound{} }

// roundHalfUp rounds halves towards positive infinity.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
