package game

import (
	"math/rand"

	"github.com/jason-s-yu/quizboard/internal/models"
)

// JokerDirection is a higher/lower guess for one cell.
type JokerDirection string

const (
	DirAbove JokerDirection = "above"
	DirBelow JokerDirection = "below"
)

// ParseJokerDirection validates a direction string from a client.
func ParseJokerDirection(s string) (JokerDirection, error) {
	switch JokerDirection(s) {
	case DirAbove, DirBelow:
		return JokerDirection(s), nil
	}
	return "", ErrInvalidDirection
}

// JokerResult is the outcome of a single cell.
type JokerResult string

const (
	ResultPending JokerResult = "pending"
	ResultCorrect JokerResult = "correct"
	ResultWrong   JokerResult = "wrong"
	ResultJoker   JokerResult = "joker"
)

const (
	minJokerCount = 3
	maxJokerCount = 9
	targetRetries = 10

	// jokerNumberBound keeps authored ranges small enough that the span
	// hi-lo+1 cannot overflow.
	jokerNumberBound = 1_000_000_000
)

// JokerRound is a row of numbers played right to left. Each guess nudges the
// score by Increment within [Base, 2*Base]; hitting the hidden joker cell and
// direction pays 2*Base at once.
type JokerRound struct {
	Numbers       []int            `json:"numbers"`
	Targets       []int            `json:"targets,omitempty"`
	CorrectDirs   []JokerDirection `json:"correctDirs,omitempty"`
	JokerIndex    int              `json:"jokerIndex"`
	JokerPosition JokerDirection   `json:"jokerPosition,omitempty"`
	Increment     int              `json:"increment"`
	Base          int              `json:"base"`
	Progress      JokerProgress    `json:"progress"`
}

// JokerProgress is the mutable half of a joker round.
type JokerProgress struct {
	CurrentIndex    int              `json:"currentIndex"`
	Results         []JokerResult    `json:"results"`
	Score           int              `json:"score"`
	Finished        bool             `json:"finished"`
	ChosenPositions []JokerDirection `json:"chosenPositions"`
}

func (*JokerRound) Mode() models.QuestionType { return models.TypeJoker }

// view hides the answer key until the round is over.
func (r *JokerRound) view() Round {
	c := *r
	c.Numbers = append([]int(nil), r.Numbers...)
	c.Progress.Results = append([]JokerResult(nil), r.Progress.Results...)
	c.Progress.ChosenPositions = append([]JokerDirection(nil), r.Progress.ChosenPositions...)
	if r.Progress.Finished {
		c.Targets = append([]int(nil), r.Targets...)
		c.CorrectDirs = append([]JokerDirection(nil), r.CorrectDirs...)
	} else {
		c.Targets = nil
		c.CorrectDirs = nil
		c.JokerIndex = -1
		c.JokerPosition = ""
	}
	return &c
}

func newJokerRound(q models.Question, rng *rand.Rand) *JokerRound {
	count := jokerCount(q.JokerCount)
	lo := models.DefaultJokerMin
	if q.JokerMin != nil {
		lo = *q.JokerMin
	}
	hi := models.DefaultJokerMax
	if q.JokerMax != nil {
		hi = *q.JokerMax
	}
	lo = clamp(lo, -jokerNumberBound, jokerNumberBound)
	hi = clamp(hi, -jokerNumberBound, jokerNumberBound)
	if lo >= hi {
		hi = lo + 1
	}
	draw := func() int { return lo + rng.Intn(hi-lo+1) }

	base := q.BasePoints()
	r := &JokerRound{
		Numbers:     make([]int, count),
		Targets:     make([]int, count),
		CorrectDirs: make([]JokerDirection, count),
		Base:        base,
		Increment:   max(0, roundHalfUp(float64(2*base-base)/float64(count))),
		Progress: JokerProgress{
			Results:         make([]JokerResult, count),
			Score:           base,
			ChosenPositions: make([]JokerDirection, count),
		},
	}
	for i := 0; i < count; i++ {
		num := draw()
		target := draw()
		for tries := 0; target == num && tries < targetRetries; tries++ {
			target = draw()
		}
		if target == num {
			if num == hi {
				target = num - 1
			} else {
				target = num + 1
			}
		}
		r.Numbers[i] = num
		r.Targets[i] = target
		if target > num {
			r.CorrectDirs[i] = DirAbove
		} else {
			r.CorrectDirs[i] = DirBelow
		}
		r.Progress.Results[i] = ResultPending
	}
	r.JokerIndex = rng.Intn(count)
	if rng.Intn(2) == 0 {
		r.JokerPosition = DirAbove
	} else {
		r.JokerPosition = DirBelow
	}
	return r
}

// jokerCount clamps a configured cell count to [3, 9], defaulting to 5.
func jokerCount(v *int) int {
	if v == nil {
		return models.DefaultJokerCount
	}
	return clamp(*v, minJokerCount, maxJokerCount)
}

func (r *JokerRound) total() int { return len(r.Numbers) }

// guess applies one direction to the next cell and reports its result.
func (r *JokerRound) guess(dir JokerDirection) JokerResult {
	p := &r.Progress
	step := p.CurrentIndex
	idx := clamp(r.total()-1-step, 0, r.total()-1)
	p.ChosenPositions[idx] = dir

	var res JokerResult
	switch {
	case idx == r.JokerIndex && dir == r.JokerPosition:
		res = ResultJoker
		p.Score = 2 * r.Base
		p.Finished = true
	case dir == r.CorrectDirs[idx]:
		res = ResultCorrect
		p.Score = clamp(p.Score+r.Increment, r.Base, 2*r.Base)
	default:
		res = ResultWrong
		p.Score = clamp(p.Score-r.Increment, r.Base, 2*r.Base)
	}
	p.Results[idx] = res
	p.CurrentIndex = step + 1
	if p.CurrentIndex >= r.total() {
		p.Finished = true
	}
	return res
}

// GuessJoker plays one higher/lower guess. Guesses after the round finished
// are ignored. A miss passes the board turn when the question rotates on miss
// and cells remain.
func (s *Session) GuessJoker(dir JokerDirection) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := requireRound[*JokerRound](s)
	if err != nil {
		return s.snapshot(), err
	}
	if dir != DirAbove && dir != DirBelow {
		return s.snapshot(), ErrInvalidDirection
	}
	if r.Progress.Finished || r.total() == 0 {
		return s.snapshot(), nil
	}

	res := r.guess(dir)
	switch res {
	case ResultJoker:
		s.playCue(CueJokerSparkle, nil)
		s.playCue(CueBigWin, nil)
	case ResultCorrect:
		s.playCue(CueSuccessChime, nil)
	case ResultWrong:
		s.playCue(CueDownbeat, nil)
		if s.active.JokerRotates() && !r.Progress.Finished && s.turn.Active() {
			s.turn.AdvanceBoard()
			s.persistTurn()
			s.selectedTeamID = s.turn.CurrentBoardTeam()
			s.lastGuessTeamID = ""
		}
	}
	s.logAction(s.answeringTeam(), "joker_guess", map[string]interface{}{
		"direction": string(dir),
		"result":    string(res),
		"score":     r.Progress.Score,
	})
	return s.emit(), nil
}

// ApplyJokerScore books the finished round's score as a pure reward to the
// answering team and closes the question.
func (s *Session) ApplyJokerScore() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := requireRound[*JokerRound](s)
	if err != nil {
		return s.snapshot(), err
	}
	if !r.Progress.Finished {
		return s.snapshot(), ErrRoundNotFinished
	}
	s.commit(outcome{
		correct: true,
		teamID:  s.answeringTeam(),
		reward:  max(0, r.Progress.Score),
	}, false)
	return s.emit(), nil
}
