package game

import (
	"math/rand"
	"sort"

	"github.com/jason-s-yu/quizboard/internal/models"
)

// LyricsRound tracks a grid of lyric segments, some of them hidden "red"
// penalty tiles. Potential decays by PerRed for every red tile revealed and
// never drops below Floor.
type LyricsRound struct {
	Revealed  []bool `json:"revealed"`
	Red       []int  `json:"red"`
	RedCount  int    `json:"redCount"`
	Potential int    `json:"potential"`
	PerRed    int    `json:"perRed"`
	Floor     int    `json:"floor"`
}

func (*LyricsRound) Mode() models.QuestionType { return models.TypeLyrics }

func (r *LyricsRound) view() Round {
	c := *r
	c.Revealed = append([]bool(nil), r.Revealed...)
	// Only uncovered red tiles are shown; the rest of the pattern stays hidden.
	c.Red = []int{}
	for _, i := range r.Red {
		if r.Revealed[i] {
			c.Red = append(c.Red, i)
		}
	}
	return &c
}

func newLyricsRound(q models.Question, rng *rand.Rand) *LyricsRound {
	n := len(q.LyricsSegments)
	base := q.BasePoints()
	red := redPattern(n, rng)

	r := &LyricsRound{
		Revealed:  make([]bool, n),
		Red:       red,
		RedCount:  len(red),
		Potential: base,
	}
	if len(red) > 0 {
		// Each red tile costs an equal share of the base; the floor is what
		// remains once every red tile has been revealed.
		r.PerRed = roundHalfUp(float64(base) / float64(n))
		r.Floor = max(0, base-len(red)*r.PerRed)
	}
	return r
}

// redPattern picks round(0.4n) distinct indices, at least one when n > 0.
func redPattern(n int, rng *rand.Rand) []int {
	if n <= 0 {
		return []int{}
	}
	count := clamp(roundHalfUp(0.4*float64(n)), 1, n)
	picked := rng.Perm(n)[:count]
	sort.Ints(picked)
	return picked
}

func (r *LyricsRound) isRed(idx int) bool {
	for _, i := range r.Red {
		if i == idx {
			return true
		}
	}
	return false
}

// reward is the amount a correct judgement pays. A potential of zero pays
// the full base.
func (r *LyricsRound) reward(base int) int {
	if r.Potential == 0 {
		return max(0, base)
	}
	return max(0, r.Potential)
}

// RevealLyricsLine uncovers one segment on behalf of the team holding the
// lyrics turn. A red tile decays the potential and passes the lyrics turn.
// Already revealed tiles are ignored.
func (s *Session) RevealLyricsLine(idx int) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := requireRound[*LyricsRound](s)
	if err != nil {
		return s.snapshot(), err
	}
	if len(r.Revealed) == 0 {
		return s.snapshot(), nil
	}
	idx = clamp(idx, 0, len(r.Revealed)-1)
	if r.Revealed[idx] {
		return s.snapshot(), nil
	}
	r.Revealed[idx] = true

	guessTeam := s.turn.CurrentLyricsTeam()
	if guessTeam == "" {
		guessTeam = s.selectedTeamID
	}
	s.lastGuessTeamID = guessTeam
	s.selectedTeamID = guessTeam

	red := r.isRed(idx)
	if red {
		r.Potential = max(r.Floor, r.Potential-r.PerRed)
		s.playCue(CueSadBlip, nil)
		if s.turn.Active() {
			s.turn.AdvanceLyrics()
			s.persistTurn()
		}
	}
	s.logAction(guessTeam, "lyrics_reveal", map[string]interface{}{
		"index":     idx,
		"red":       red,
		"potential": r.Potential,
	})
	return s.emit(), nil
}

// PassLyricsTurn hands the lyrics turn to the next team without revealing.
func (s *Session) PassLyricsTurn() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := requireRound[*LyricsRound](s); err != nil {
		return s.snapshot(), err
	}
	s.playCue(CueSadBlip, nil)
	if s.turn.Active() {
		s.turn.AdvanceLyrics()
		s.persistTurn()
	}
	return s.emit(), nil
}

// RevealAllLyrics uncovers every segment without touching the potential.
func (s *Session) RevealAllLyrics() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := requireRound[*LyricsRound](s)
	if err != nil {
		return s.snapshot(), err
	}
	for i := range r.Revealed {
		r.Revealed[i] = true
	}
	return s.emit(), nil
}
