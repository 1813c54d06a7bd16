package game

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/quizboard/internal/cache"
	"github.com/jason-s-yu/quizboard/internal/models"
	"github.com/jason-s-yu/quizboard/internal/store"
	"github.com/sirupsen/logrus"
)

// ActionPublisher ships action records to the historian queue.
type ActionPublisher interface {
	Publish(ctx context.Context, rec cache.BoardActionRecord) error
}

// Options configures a Session. Zero values fall back to an in-memory store,
// the wall clock, a time-seeded rand source and silent cues.
type Options struct {
	Store        store.Store
	Scheduler    Scheduler
	Rand         *rand.Rand
	Cues         CuePlayer
	Actions      ActionPublisher
	Logger       logrus.FieldLogger
	WriteTimeout time.Duration
}

// Session is one running board. All exported methods are safe for concurrent
// use; each holds mu for its whole transition.
type Session struct {
	ID uuid.UUID
	mu sync.Mutex

	// Persisted records. The slices are replaced, never written in place,
	// so snapshots can share them.
	teams     []models.Team
	questions []models.Question
	turn      models.TurnState

	// Open question state.
	active          *models.Question
	round           Round
	showAnswer      bool
	selectedTeamID  string
	lastGuessTeamID string
	roundGen        int // bumped whenever a round is replaced or dropped
	geoCancel       CancelFunc
	audioCancel     CancelFunc

	spin           spinState
	finalDismissed bool

	store        store.Store
	sched        Scheduler
	rng          *rand.Rand
	cues         CuePlayer
	actions      ActionPublisher
	log          logrus.FieldLogger
	writeTimeout time.Duration
	actionIndex  int
	notices      []string

	// BroadcastFn receives every snapshot and cue event. If nil, nothing is sent.
	BroadcastFn func(ev BoardEvent)
}

// NewSession builds an empty session. Call Load to pull records from the store.
func NewSession(opts Options) *Session {
	s := &Session{
		ID:           uuid.New(),
		turn:         models.TurnState{Order: []string{}},
		store:        opts.Store,
		sched:        opts.Scheduler,
		rng:          opts.Rand,
		cues:         opts.Cues,
		actions:      opts.Actions,
		log:          opts.Logger,
		writeTimeout: opts.WriteTimeout,
	}
	if s.store == nil {
		s.store = store.NewMemoryStore()
	}
	if s.sched == nil {
		s.sched = ClockScheduler{}
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.cues == nil {
		s.cues = noopCues{}
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	if s.writeTimeout <= 0 {
		s.writeTimeout = 3 * time.Second
	}
	s.log = s.log.WithField("session", s.ID.String())
	return s
}

// Load reads teams, questions and turn state from the store. Missing or
// unreadable records fall back to defaults; an empty roster or board is
// seeded with the default data and written back.
func (s *Session) Load(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	teams, err := store.LoadTeams(ctx, s.store)
	if err != nil {
		s.notify("Could not read teams", err)
	}
	questions, err := store.LoadQuestions(ctx, s.store)
	if err != nil {
		s.notify("Could not read questions", err)
	}
	turn, err := store.LoadTurnState(ctx, s.store)
	if err != nil {
		s.notify("Could not read turn order", err)
	}

	seeded := false
	if len(teams) == 0 {
		teams = DefaultTeams()
		seeded = true
	}
	if len(questions) == 0 {
		questions = DefaultQuestions()
		seeded = true
	}
	s.teams = teams
	s.questions = questions
	s.turn = turn
	s.turn.Prune(models.TeamIDs(s.teams))

	if seeded {
		s.persistTeams()
		s.persistQuestions()
	}
	s.persistTurn()

	s.log.WithFields(logrus.Fields{
		"teams":     len(s.teams),
		"questions": len(s.questions),
		"seeded":    seeded,
	}).Info("board loaded")
	return s.emit(), nil
}

// State returns the current snapshot without changing anything.
func (s *Session) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// OpenQuestion starts a fresh round for the question with the given id.
// Any round already open is discarded first.
func (s *Session) OpenQuestion(questionID string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.questions {
		if s.questions[i].ID == questionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s.snapshot(), fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	q := s.questions[idx]
	if q.Answered {
		return s.snapshot(), fmt.Errorf("%w: %s", ErrAlreadyAnswered, questionID)
	}

	s.discardRound()
	s.active = &q
	s.round = NewRound(q, s.rng)
	s.selectedTeamID = s.turn.CurrentBoardTeam()

	if q.Mode() == models.TypeLyrics {
		s.turn.LyricsIndex = s.turn.BoardIndex
		s.persistTurn()
	}

	s.logAction(s.selectedTeamID, "question_open", map[string]interface{}{
		"mode":   string(q.Mode()),
		"points": q.BasePoints(),
	})

	// A timeline with nothing placeable can never finish on its own.
	if r, ok := s.round.(*TimelineRound); ok && len(r.Queue) == 0 {
		r.Finished = true
		r.NoWinner = true
		s.commit(outcome{}, true)
	}
	return s.emit(), nil
}

// CloseQuestion drops the open round. Scores are untouched, except for decay
// a mode has already applied to its own potential.
func (s *Session) CloseQuestion() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		s.logAction("", "question_close", map[string]interface{}{"answered": s.active.Answered})
	}
	s.discardRound()
	return s.emit()
}

// RevealAnswer flips the answer face. Revealing relocks a geoguesser map and
// stops any audio clip.
func (s *Session) RevealAnswer() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return s.snapshot(), ErrNoActiveQuestion
	}
	s.showAnswer = !s.showAnswer
	if s.showAnswer {
		switch r := s.round.(type) {
		case *GeoguesserRound:
			r.Locked = true
			r.Countdown = nil
			cancelAll(&s.geoCancel)
		case *AudioRound:
			r.Playing = false
			cancelAll(&s.audioCancel)
		}
	}
	return s.emit(), nil
}

// SelectTeam overrides which team answers the open question. For lyrics with
// an active rotation this moves the lyrics cursor instead.
func (s *Session) SelectTeam(teamID string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return s.snapshot(), ErrNoActiveQuestion
	}
	if models.FindTeam(s.teams, teamID) < 0 {
		return s.snapshot(), fmt.Errorf("%w: %s", ErrUnknownTeam, teamID)
	}
	if s.active.Mode() == models.TypeLyrics && s.turn.Active() {
		for i, id := range s.turn.Order {
			if id == teamID {
				s.turn.LyricsIndex = i
				s.persistTurn()
				break
			}
		}
	}
	s.selectedTeamID = teamID
	s.lastGuessTeamID = teamID
	return s.emit(), nil
}

// discardRound cancels timers and forgets the open question. Stale timer
// callbacks see a new roundGen and do nothing.
func (s *Session) discardRound() {
	cancelAll(&s.geoCancel, &s.audioCancel)
	s.roundGen++
	s.active = nil
	s.round = nil
	s.showAnswer = false
	s.selectedTeamID = ""
	s.lastGuessTeamID = ""
}

// answeringTeam resolves who a terminal outcome is booked against.
func (s *Session) answeringTeam() string {
	if s.active != nil && s.active.Mode() == models.TypeLyrics {
		if id := s.turn.CurrentLyricsTeam(); id != "" {
			return id
		}
	}
	if s.lastGuessTeamID != "" {
		return s.lastGuessTeamID
	}
	if s.selectedTeamID != "" {
		return s.selectedTeamID
	}
	return s.turn.CurrentBoardTeam()
}

// requireRound returns the open round as T, or the matching sentinel error.
func requireRound[T Round](s *Session) (T, error) {
	var zero T
	if s.active == nil || s.round == nil {
		return zero, ErrNoActiveQuestion
	}
	r, ok := s.round.(T)
	if !ok {
		return zero, fmt.Errorf("%w: open question is %s", ErrWrongMode, s.active.Mode())
	}
	return r, nil
}

func (s *Session) playCue(cue Cue, payload map[string]interface{}) {
	s.cues.Play(cue)
	s.fireEvent(BoardEvent{Type: EventCue, Cue: cue, Payload: payload})
}

func (s *Session) fireEvent(ev BoardEvent) {
	if s.BroadcastFn != nil {
		s.BroadcastFn(ev)
	}
}

// emit builds the snapshot, broadcasts it and drains pending notices.
// Caller must hold mu.
func (s *Session) emit() Snapshot {
	snap := s.snapshot()
	s.notices = nil
	s.fireEvent(BoardEvent{Type: EventSnapshot, State: &snap})
	return snap
}

func (s *Session) notify(msg string, err error) {
	s.log.WithError(err).Warn(msg)
	s.notices = append(s.notices, msg)
}

func (s *Session) persistTeams() {
	s.write(store.KeyTeams, s.teams)
}

func (s *Session) persistQuestions() {
	s.write(store.KeyQuestions, s.questions)
}

func (s *Session) persistTurn() {
	s.write(store.KeyTurnState, s.turn)
}

func (s *Session) write(key store.Key, v interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
	defer cancel()
	if err := store.WriteJSON(ctx, s.store, key, v); err != nil {
		s.notify(fmt.Sprintf("Could not save %s", key), err)
	}
}

// logAction sends the action to the historian queue without blocking the caller.
func (s *Session) logAction(teamID, actionType string, payload map[string]interface{}) {
	s.actionIndex++
	if payload == nil {
		payload = make(map[string]interface{})
	}
	rec := cache.BoardActionRecord{
		SessionID:     s.ID,
		ActionIndex:   s.actionIndex,
		TeamID:        teamID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	if s.active != nil {
		rec.QuestionID = s.active.ID
	}
	if s.actions == nil {
		return
	}
	go func(rec cache.BoardActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.actions.Publish(ctx, rec); err != nil {
			s.log.WithError(err).WithField("action", rec.ActionType).Warn("failed to publish board action")
		}
	}(rec)
}
