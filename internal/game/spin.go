package game

import (
	"time"

	"github.com/jason-s-yu/quizboard/internal/models"
)

const (
	spinFaceInterval = 90 * time.Millisecond
	spinMinDuration  = 1800 * time.Millisecond
	spinJitterMs     = 600
	spinFaceCount    = 3
)

type spinState struct {
	spinning bool
	faces    []string
	gen      int
	tick     CancelFunc
	done     CancelFunc
}

// SpinView is the slot-machine animation state.
type SpinView struct {
	Spinning bool     `json:"spinning"`
	Faces    []string `json:"faces"`
}

func (st spinState) view() SpinView {
	return SpinView{Spinning: st.spinning, Faces: append([]string{}, st.faces...)}
}

func (s *Session) shuffledTeamIDs() []string {
	ids := models.TeamIDs(s.teams)
	s.rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	return ids
}

func firstN(ids []string, n int) []string {
	if len(ids) > n {
		ids = ids[:n]
	}
	return append([]string{}, ids...)
}

// SpinTurnOrder starts the slot animation that ends in a new random turn
// order. It is a no-op without teams or while a spin is running.
func (s *Session) SpinTurnOrder() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.teams) == 0 || s.spin.spinning {
		return s.snapshot()
	}
	s.spin.gen++
	gen := s.spin.gen
	s.spin.spinning = true
	s.spin.faces = firstN(s.shuffledTeamIDs(), spinFaceCount)
	s.playCue(CueSlotSpinStart, nil)

	s.spin.tick = s.sched.AfterFunc(spinFaceInterval, func() { s.spinTick(gen) })
	total := spinMinDuration + time.Duration(s.rng.Intn(spinJitterMs+1))*time.Millisecond
	s.spin.done = s.sched.AfterFunc(total, func() { s.finishSpin(gen) })
	return s.emit()
}

func (s *Session) spinTick(gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.spin.spinning || gen != s.spin.gen {
		return
	}
	s.spin.faces = firstN(s.shuffledTeamIDs(), spinFaceCount)
	s.spin.tick = s.sched.AfterFunc(spinFaceInterval, func() { s.spinTick(gen) })
	s.emit()
}

func (s *Session) finishSpin(gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.spin.spinning || gen != s.spin.gen {
		return
	}
	cancelAll(&s.spin.tick)
	s.spin.done = nil
	s.spin.spinning = false

	order := s.shuffledTeamIDs()
	s.turn.SetOrder(order)
	s.persistTurn()
	s.spin.faces = firstN(order, spinFaceCount)
	s.selectedTeamID = ""

	s.playCue(CueSlotSpinStop, nil)
	s.playCue(CueSlotResolve, nil)
	s.log.WithField("order", order).Info("turn order set")
	s.logAction(s.turn.CurrentBoardTeam(), "turn_order_set", map[string]interface{}{"order": order})
	s.emit()
}

// ResetTurnOrder clears the rotation and stops a running spin.
func (s *Session) ResetTurnOrder() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopSpin()
	s.turn.Reset()
	s.persistTurn()
	s.logAction("", "turn_order_reset", nil)
	return s.emit()
}

func (s *Session) stopSpin() {
	cancelAll(&s.spin.tick, &s.spin.done)
	s.spin.gen++
	s.spin.spinning = false
	s.spin.faces = nil
}
