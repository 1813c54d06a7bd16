package game

import (
	"time"

	"github.com/jason-s-yu/quizboard/internal/models"
)

// GeoguesserRound gates an interactive map behind a lock. The first unlock
// charges Cost against Potential and starts a countdown of Duration seconds;
// when it runs out the map relocks for good.
type GeoguesserRound struct {
	Locked      bool `json:"locked"`
	Countdown   *int `json:"countdown"`
	Duration    int  `json:"duration"`
	TimerUsed   bool `json:"timerUsed"`
	Potential   int  `json:"potential"`
	Cost        int  `json:"cost"`
	CostApplied bool `json:"costApplied"`
}

func (*GeoguesserRound) Mode() models.QuestionType { return models.TypeGeoguesser }

func (r *GeoguesserRound) view() Round {
	c := *r
	if r.Countdown != nil {
		v := *r.Countdown
		c.Countdown = &v
	}
	return &c
}

func newGeoRound(q models.Question) *GeoguesserRound {
	return &GeoguesserRound{
		Locked:    true,
		Duration:  q.GeoTimer(),
		Potential: q.BasePoints(),
		Cost:      q.GeoCost(),
	}
}

// ToggleGeoLock unlocks or relocks the map. Once the timer has been used the
// map cannot be unlocked again, and nothing moves after the answer is shown.
func (s *Session) ToggleGeoLock() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := requireRound[*GeoguesserRound](s)
	if err != nil {
		return s.snapshot(), err
	}
	if s.showAnswer {
		return s.snapshot(), nil
	}

	if r.Locked {
		if r.TimerUsed {
			return s.snapshot(), nil
		}
		if !r.CostApplied {
			r.Potential = max(0, r.Potential-r.Cost)
			r.CostApplied = true
		}
		r.TimerUsed = true
		r.Locked = false
		remaining := r.Duration
		r.Countdown = &remaining
		s.scheduleGeoTick(s.roundGen)
		s.logAction(s.answeringTeam(), "geo_unlock", map[string]interface{}{
			"cost":      r.Cost,
			"potential": r.Potential,
		})
	} else {
		r.Locked = true
		r.Countdown = nil
		cancelAll(&s.geoCancel)
		s.logAction(s.answeringTeam(), "geo_lock", nil)
	}
	return s.emit(), nil
}

func (s *Session) scheduleGeoTick(gen int) {
	cancelAll(&s.geoCancel)
	s.geoCancel = s.sched.AfterFunc(time.Second, func() { s.geoTick(gen) })
}

// geoTick runs once per second while the map is unlocked.
func (s *Session) geoTick(gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.roundGen {
		s.log.WithField("gen", gen).Debug("stale geoguesser tick ignored")
		return
	}
	r, ok := s.round.(*GeoguesserRound)
	if !ok || r.Locked || r.Countdown == nil {
		return
	}

	remaining := max(0, *r.Countdown-1)
	r.Countdown = &remaining
	switch {
	case remaining <= 0:
		r.Locked = true
		r.Countdown = nil
		s.geoCancel = nil
		s.playCue(CueFinalAlarm, nil)
	case remaining <= 3:
		s.playCue(CueCountdownBeep, map[string]interface{}{
			"remaining": remaining,
			"hz":        countdownBeepHz(remaining),
		})
		s.scheduleGeoTick(gen)
	default:
		s.scheduleGeoTick(gen)
	}
	s.emit()
}
