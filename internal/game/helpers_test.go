package game

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jason-s-yu/quizboard/internal/cache"
	"github.com/jason-s-yu/quizboard/internal/models"
	"github.com/jason-s-yu/quizboard/internal/store"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

// mockBroadcaster collects events instead of sending them over WS.
type mockBroadcaster struct {
	mu     sync.Mutex
	events []BoardEvent
}

func (mb *mockBroadcaster) broadcastFn(ev BoardEvent) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.events = append(mb.events, ev)
}

func (mb *mockBroadcaster) clear() {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.events = nil
}

func (mb *mockBroadcaster) cues() []Cue {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	var out []Cue
	for _, ev := range mb.events {
		if ev.Type == EventCue {
			out = append(out, ev.Cue)
		}
	}
	return out
}

func (mb *mockBroadcaster) cueEvents(c Cue) []BoardEvent {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	var out []BoardEvent
	for _, ev := range mb.events {
		if ev.Type == EventCue && ev.Cue == c {
			out = append(out, ev)
		}
	}
	return out
}

func (mb *mockBroadcaster) lastSnapshot() *Snapshot {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	for i := len(mb.events) - 1; i >= 0; i-- {
		if mb.events[i].Type == EventSnapshot {
			return mb.events[i].State
		}
	}
	return nil
}

// recordingCues is a CuePlayer that remembers what it was asked to play.
type recordingCues struct {
	mu     sync.Mutex
	played []Cue
}

func (r *recordingCues) Play(c Cue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.played = append(r.played, c)
}

func (r *recordingCues) all() []Cue {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Cue(nil), r.played...)
}

// fakeScheduler runs callbacks only when Advance moves its clock past their
// due time, earliest first.
type fakeScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*fakeTimer
}

type fakeTimer struct {
	due       time.Duration
	seq       int
	fn        func()
	cancelled bool
}

func (f *fakeScheduler) AfterFunc(d time.Duration, fn func()) CancelFunc {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	t := &fakeTimer{due: f.now + d, seq: f.seq, fn: fn}
	f.timers = append(f.timers, t)
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		t.cancelled = true
	}
}

// Advance fires every due timer, including ones scheduled by callbacks.
func (f *fakeScheduler) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now + d
	f.mu.Unlock()
	for {
		f.mu.Lock()
		var next *fakeTimer
		live := f.timers[:0]
		for _, t := range f.timers {
			if t.cancelled {
				continue
			}
			live = append(live, t)
			if t.due <= target && (next == nil || t.due < next.due || (t.due == next.due && t.seq < next.seq)) {
				next = t
			}
		}
		f.timers = live
		if next == nil {
			f.now = target
			f.mu.Unlock()
			return
		}
		next.cancelled = true
		f.now = next.due
		f.mu.Unlock()
		next.fn()
	}
}

// pending counts live timers.
func (f *fakeScheduler) pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.timers {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// recordingPublisher stands in for the redis action log.
type recordingPublisher struct {
	mu      sync.Mutex
	records []cache.BoardActionRecord
}

func (p *recordingPublisher) Publish(_ context.Context, rec cache.BoardActionRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, rec)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.records))
	for _, r := range p.records {
		out = append(out, r.ActionType)
	}
	sort.Strings(out)
	return out
}

type testHarness struct {
	s     *Session
	mb    *mockBroadcaster
	sched *fakeScheduler
	cues  *recordingCues
	store *store.MemoryStore
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func testTeams(n int) []models.Team {
	teams := make([]models.Team, n)
	for i := range teams {
		teams[i] = models.Team{ID: fmt.Sprintf("t%d", i+1), Name: fmt.Sprintf("Team %d", i+1), Players: []models.Player{}}
	}
	return teams
}

// setupTestSession seeds a memory store and loads a session over it. A nil
// order leaves the rotation off.
func setupTestSession(t *testing.T, teams []models.Team, questions []models.Question, order []string) *testHarness {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, store.WriteJSON(ctx, st, store.KeyTeams, teams))
	require.NoError(t, store.WriteJSON(ctx, st, store.KeyQuestions, questions))
	turn := models.TurnState{Order: []string{}}
	if order != nil {
		turn.SetOrder(order)
	}
	require.NoError(t, store.WriteJSON(ctx, st, store.KeyTurnState, turn))

	logger, _ := test.NewNullLogger()
	h := &testHarness{
		mb:    &mockBroadcaster{},
		sched: &fakeScheduler{},
		cues:  &recordingCues{},
		store: st,
	}
	h.s = NewSession(Options{
		Store:     st,
		Scheduler: h.sched,
		Rand:      rand.New(rand.NewSource(7)),
		Cues:      h.cues,
		Logger:    logger,
	})
	h.s.BroadcastFn = h.mb.broadcastFn

	_, err := h.s.Load(ctx)
	require.NoError(t, err)
	h.mb.clear()
	return h
}

// open opens a question and fails the test on error.
func (h *testHarness) open(t *testing.T, id string) Snapshot {
	t.Helper()
	snap, err := h.s.OpenQuestion(id)
	require.NoError(t, err)
	return snap
}

func score(snap Snapshot, teamID string) int {
	if i := models.FindTeam(snap.Teams, teamID); i >= 0 {
		return snap.Teams[i].Score
	}
	return 0
}

func answered(snap Snapshot, questionID string) bool {
	for _, q := range snap.Questions {
		if q.ID == questionID {
			return q.Answered
		}
	}
	return false
}
