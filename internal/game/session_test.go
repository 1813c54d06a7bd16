package game

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jason-s-yu/quizboard/internal/models"
	"github.com/jason-s-yu/quizboard/internal/store"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func standardQuestions() []models.Question {
	return []models.Question{
		{ID: "q1", Category: "Food", Points: 100, Prompt: "p1", Answer: "a1"},
		{ID: "q2", Category: "Food", Points: 200, Prompt: "p2", Answer: "a2", Type: models.TypeStandard},
		{ID: "q3", Category: "Songs", Points: 300, Prompt: "p3", Answer: "a3", Type: "mystery"},
	}
}

func TestLoadSeedsDefaults(t *testing.T) {
	logger, _ := test.NewNullLogger()
	st := store.NewMemoryStore()
	s := NewSession(Options{Store: st, Logger: logger, Scheduler: &fakeScheduler{}})

	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Teams, 3)
	assert.Len(t, snap.Questions, len(DefaultQuestions()))
	assert.False(t, snap.Turn.Active())
	assert.Empty(t, snap.Notices)

	teams, err := store.LoadTeams(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, snap.Teams, teams, "seeded roster should be written back")
}

func TestLoadPrunesUnknownTeamsFromOrder(t *testing.T) {
	h := setupTestSession(t, testTeams(2), standardQuestions(), []string{"t1", "ghost", "t2"})
	snap := h.s.State()
	assert.Equal(t, []string{"t1", "t2"}, snap.Turn.Order)
	assert.Equal(t, "t1", snap.CurrentTeamID)
}

func TestLoadMalformedRecordsFallBack(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, st.Write(ctx, store.KeyTeams, json.RawMessage(`{"not":"a list"}`)))
	require.NoError(t, st.Write(ctx, store.KeyTurnState, json.RawMessage(`"oops"`)))

	logger, _ := test.NewNullLogger()
	s := NewSession(Options{Store: st, Logger: logger})
	snap, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Teams, 3)
	assert.Contains(t, snap.Notices, "Could not read teams")
	assert.Contains(t, snap.Notices, "Could not read turn order")

	// Notices are delivered once.
	assert.Empty(t, s.State().Notices)
}

func TestOpenQuestionErrors(t *testing.T) {
	h := setupTestSession(t, testTeams(2), standardQuestions(), nil)

	_, err := h.s.OpenQuestion("nope")
	assert.ErrorIs(t, err, ErrUnknownQuestion)

	h.open(t, "q1")
	_, err = h.s.Judge(true)
	require.NoError(t, err)

	_, err = h.s.OpenQuestion("q1")
	assert.ErrorIs(t, err, ErrAlreadyAnswered)
}

func TestCallsWithoutOpenQuestion(t *testing.T) {
	h := setupTestSession(t, testTeams(2), standardQuestions(), nil)

	_, err := h.s.Judge(true)
	assert.ErrorIs(t, err, ErrNoActiveQuestion)
	_, err = h.s.RevealAnswer()
	assert.ErrorIs(t, err, ErrNoActiveQuestion)
	_, err = h.s.SelectTeam("t1")
	assert.ErrorIs(t, err, ErrNoActiveQuestion)
	_, err = h.s.RevealLyricsLine(0)
	assert.ErrorIs(t, err, ErrNoActiveQuestion)
	_, err = h.s.GuessJoker(DirAbove)
	assert.ErrorIs(t, err, ErrNoActiveQuestion)
}

func TestModeMismatch(t *testing.T) {
	h := setupTestSession(t, testTeams(2), standardQuestions(), nil)
	h.open(t, "q1")

	_, err := h.s.GuessJoker(DirAbove)
	assert.ErrorIs(t, err, ErrWrongMode)
	_, err = h.s.ToggleGeoLock()
	assert.ErrorIs(t, err, ErrWrongMode)
	_, err = h.s.PlaceTimelineEvent(TimelineSlot{})
	assert.ErrorIs(t, err, ErrWrongMode)
	_, err = h.s.SelectMcqOption(0)
	assert.ErrorIs(t, err, ErrWrongMode)
	_, err = h.s.PlayAudioClip()
	assert.ErrorIs(t, err, ErrWrongMode)

	// Nothing above touched the round.
	snap := h.s.State()
	require.NotNil(t, snap.Active)
	assert.Equal(t, "q1", snap.Active.ID)
}

func TestStandardJudgeAdvancesBoardTurn(t *testing.T) {
	h := setupTestSession(t, testTeams(3), standardQuestions(), []string{"t1", "t2", "t3"})

	snap := h.open(t, "q1")
	assert.Equal(t, "t1", snap.SelectedTeamID)
	assert.Equal(t, "t1", snap.AnsweringTeamID)

	snap, err := h.s.Judge(true)
	require.NoError(t, err)
	assert.Equal(t, 100, score(snap, "t1"))
	assert.True(t, answered(snap, "q1"))
	assert.Nil(t, snap.Active)
	assert.Equal(t, "t2", snap.CurrentTeamID)

	h.open(t, "q2")
	snap, err = h.s.Judge(false)
	require.NoError(t, err)
	assert.Equal(t, -200, score(snap, "t2"), "scores may go negative")
	assert.Equal(t, "t3", snap.CurrentTeamID)

	assert.Equal(t, []Cue{CueSuccessChime, CueDownbeat}, h.cues.all())

	// Unknown mode tags play as standard questions.
	snap = h.open(t, "q3")
	assert.Equal(t, models.TypeStandard, snap.Active.Mode())

	persisted, err := store.LoadTeams(context.Background(), h.store)
	require.NoError(t, err)
	assert.Equal(t, -200, persisted[1].Score)
}

func TestSelectTeamOverridesAnsweringTeam(t *testing.T) {
	h := setupTestSession(t, testTeams(3), standardQuestions(), []string{"t1", "t2", "t3"})
	h.open(t, "q1")

	_, err := h.s.SelectTeam("ghost")
	assert.ErrorIs(t, err, ErrUnknownTeam)

	snap, err := h.s.SelectTeam("t3")
	require.NoError(t, err)
	assert.Equal(t, "t3", snap.AnsweringTeamID)

	snap, err = h.s.Judge(true)
	require.NoError(t, err)
	assert.Equal(t, 100, score(snap, "t3"))
	assert.Zero(t, score(snap, "t1"))
	// The board cursor still moves on from the team whose turn it was.
	assert.Equal(t, "t2", snap.CurrentTeamID)
}

func TestJudgeWithoutAnyTeamOnlyMarksAnswered(t *testing.T) {
	h := setupTestSession(t, testTeams(2), standardQuestions(), nil)
	h.open(t, "q1")

	snap, err := h.s.Judge(true)
	require.NoError(t, err)
	assert.True(t, answered(snap, "q1"))
	for _, team := range snap.Teams {
		assert.Zero(t, team.Score)
	}
}

func TestCloseQuestionLeavesScoresAlone(t *testing.T) {
	h := setupTestSession(t, testTeams(2), standardQuestions(), []string{"t1", "t2"})
	h.open(t, "q1")

	snap := h.s.CloseQuestion()
	assert.Nil(t, snap.Active)
	assert.False(t, answered(snap, "q1"))
	assert.Equal(t, "t1", snap.CurrentTeamID)
	assert.Zero(t, score(snap, "t1"))
}

func TestRevealAnswerToggles(t *testing.T) {
	h := setupTestSession(t, testTeams(2), standardQuestions(), nil)
	h.open(t, "q1")

	snap, err := h.s.RevealAnswer()
	require.NoError(t, err)
	assert.True(t, snap.ShowAnswer)
	snap, err = h.s.RevealAnswer()
	require.NoError(t, err)
	assert.False(t, snap.ShowAnswer)
}

// failingStore reads fine but refuses every write.
type failingStore struct {
	*store.MemoryStore
}

func (failingStore) Write(context.Context, store.Key, json.RawMessage) error {
	return errors.New("disk full")
}

func TestPersistenceFailureBecomesNotice(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	require.NoError(t, store.WriteJSON(ctx, mem, store.KeyTeams, testTeams(2)))
	require.NoError(t, store.WriteJSON(ctx, mem, store.KeyQuestions, standardQuestions()))

	logger, hook := test.NewNullLogger()
	s := NewSession(Options{Store: failingStore{mem}, Logger: logger})
	_, err := s.Load(ctx)
	require.NoError(t, err)

	_, err = s.OpenQuestion("q1")
	require.NoError(t, err)
	_, err = s.SelectTeam("t1")
	require.NoError(t, err)
	snap, err := s.Judge(true)
	require.NoError(t, err)

	// The session keeps going with its in-memory state.
	assert.Equal(t, 100, score(snap, "t1"))
	assert.Contains(t, snap.Notices, "Could not save teams")
	assert.Contains(t, snap.Notices, "Could not save questions")
	assert.NotEmpty(t, hook.AllEntries())
}

func TestSpinTurnOrder(t *testing.T) {
	h := setupTestSession(t, testTeams(4), standardQuestions(), nil)

	snap := h.s.SpinTurnOrder()
	assert.True(t, snap.Spin.Spinning)
	assert.Len(t, snap.Spin.Faces, 3)

	// A second spin while one is running is ignored.
	h.s.SpinTurnOrder()
	assert.Equal(t, []Cue{CueSlotSpinStart}, h.cues.all())

	h.sched.Advance(500 * time.Millisecond)
	assert.True(t, h.s.State().Spin.Spinning)

	h.sched.Advance(3 * time.Second)
	snap = h.s.State()
	assert.False(t, snap.Spin.Spinning)
	assert.ElementsMatch(t, []string{"t1", "t2", "t3", "t4"}, snap.Turn.Order)
	assert.Equal(t, snap.Turn.Order[0], snap.CurrentTeamID)
	assert.Zero(t, snap.Turn.BoardIndex)
	assert.Equal(t, []Cue{CueSlotSpinStart, CueSlotSpinStop, CueSlotResolve}, h.cues.all())
	assert.Zero(t, h.sched.pending(), "spin timers should be done")

	turn, err := store.LoadTurnState(context.Background(), h.store)
	require.NoError(t, err)
	assert.Equal(t, snap.Turn.Order, turn.Order)
}

func TestSpinWithoutTeamsIsNoop(t *testing.T) {
	h := setupTestSession(t, testTeams(1), standardQuestions(), nil)
	h.s.teams = nil
	snap := h.s.SpinTurnOrder()
	assert.False(t, snap.Spin.Spinning)
	assert.Zero(t, h.sched.pending())
}

func TestResetTurnOrderStopsSpin(t *testing.T) {
	h := setupTestSession(t, testTeams(3), standardQuestions(), []string{"t2", "t1", "t3"})
	h.s.SpinTurnOrder()

	snap := h.s.ResetTurnOrder()
	assert.False(t, snap.Spin.Spinning)
	assert.False(t, snap.Turn.Active())

	h.sched.Advance(5 * time.Second)
	assert.False(t, h.s.State().Turn.Active(), "a cancelled spin must not set an order")
}

func TestScoreAdjustmentsAndLeaderboard(t *testing.T) {
	h := setupTestSession(t, testTeams(3), standardQuestions(), nil)

	_, err := h.s.AdjustScore("ghost", 5)
	assert.ErrorIs(t, err, ErrUnknownTeam)
	_, err = h.s.SetScore("ghost", 5)
	assert.ErrorIs(t, err, ErrUnknownTeam)

	_, err = h.s.AdjustScore("t2", 300)
	require.NoError(t, err)
	_, err = h.s.AdjustScore("t2", -50)
	require.NoError(t, err)
	_, err = h.s.SetScore("t3", 250)
	require.NoError(t, err)

	ranked := h.s.Leaderboard()
	require.Len(t, ranked, 3)
	// t2 and t3 tie at 250 and keep their roster order.
	assert.Equal(t, []string{"t2", "t3", "t1"}, models.TeamIDs(ranked))
	assert.Equal(t, 250, ranked[0].Score)
	assert.Equal(t, 250, ranked[1].Score)
}

func TestFinalLeaderboardAfterLastQuestion(t *testing.T) {
	questions := []models.Question{{ID: "only", Points: 100}}
	h := setupTestSession(t, testTeams(2), questions, nil)

	h.open(t, "only")
	snap, err := h.s.Judge(false)
	require.NoError(t, err)
	assert.True(t, snap.BoardComplete)
	assert.True(t, snap.ShowFinalLeaderboard)

	snap = h.s.DismissFinalLeaderboard()
	assert.True(t, snap.BoardComplete)
	assert.False(t, snap.ShowFinalLeaderboard)
}

func TestBackupRoundTripThroughSession(t *testing.T) {
	h := setupTestSession(t, testTeams(3), standardQuestions(), []string{"t1", "t2", "t3"})
	_, err := h.s.SetScore("t1", 400)
	require.NoError(t, err)
	b := h.s.ExportBackup(time.Date(2025, 12, 24, 18, 0, 0, 0, time.UTC))
	assert.Equal(t, store.BackupVersion, b.Version)
	assert.Equal(t, "2025-12-24T18:00:00Z", b.ExportedAt)

	// Import a smaller roster while a question is open.
	h.open(t, "q1")
	b.Teams = b.Teams[:2]
	b.TurnState.BoardIndex = 2
	snap := h.s.ImportBackup(context.Background(), b)

	assert.Nil(t, snap.Active)
	assert.Len(t, snap.Teams, 2)
	assert.Equal(t, []string{"t1", "t2"}, snap.Turn.Order)
	assert.Equal(t, 0, snap.Turn.BoardIndex)
	assert.Equal(t, 400, score(snap, "t1"))

	teams, err := store.LoadTeams(context.Background(), h.store)
	require.NoError(t, err)
	assert.Len(t, teams, 2)
}

func TestActionsArePublished(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, store.WriteJSON(ctx, st, store.KeyTeams, testTeams(2)))
	require.NoError(t, store.WriteJSON(ctx, st, store.KeyQuestions, standardQuestions()))

	pub := &recordingPublisher{}
	logger, _ := test.NewNullLogger()
	s := NewSession(Options{Store: st, Logger: logger, Actions: pub})
	_, err := s.Load(ctx)
	require.NoError(t, err)

	_, err = s.OpenQuestion("q1")
	require.NoError(t, err)
	_, err = s.SelectTeam("t2")
	require.NoError(t, err)
	_, err = s.Judge(true)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return len(pub.types()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"question_open", "question_resolved"}, pub.types())

	pub.mu.Lock()
	defer pub.mu.Unlock()
	for _, rec := range pub.records {
		assert.Equal(t, s.ID, rec.SessionID)
		assert.Equal(t, "q1", rec.QuestionID)
		if rec.ActionType == "question_resolved" {
			assert.Equal(t, "t2", rec.TeamID)
			assert.Equal(t, 2, rec.ActionIndex)
		}
	}
}

func TestSnapshotsDoNotAlias(t *testing.T) {
	h := setupTestSession(t, testTeams(2), standardQuestions(), []string{"t1", "t2"})
	before := h.s.State()

	_, err := h.s.AdjustScore("t1", 10)
	require.NoError(t, err)
	before.Turn.Order[0] = "mutated"

	assert.Zero(t, score(before, "t1"), "earlier snapshot keeps its score")
	assert.Equal(t, "t1", h.s.State().Turn.Order[0])
}
