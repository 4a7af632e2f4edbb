package missions

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slayken/slayken/internal/account"
	"github.com/slayken/slayken/internal/store"
)

// recordingLedger captures AddXP calls.
type recordingLedger struct {
	deposits []int
}

func (r *recordingLedger) AddXP(_ context.Context, amount int) []account.LevelChanged {
	r.deposits = append(r.deposits, amount)
	return nil
}

func (r *recordingLedger) total() int {
	sum := 0
	for _, d := range r.deposits {
		sum += d
	}
	return sum
}

// testClock is a settable time source.
type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// Tuesday 2026-10-13 10:00 UTC, mid ISO week 42.
func newTestClock() *testClock {
	return &testClock{t: time.Date(2026, 10, 13, 10, 0, 0, 0, time.UTC)}
}

func newTestTracker(t *testing.T, catalog *Catalog, kv store.KV, clock *testClock, opts ...Option) *Tracker {
	t.Helper()
	opts = append([]Option{WithClock(clock.Now), WithLocation(time.UTC)}, opts...)
	return NewTracker(context.Background(), catalog, kv, opts...)
}

func mustCatalog(t *testing.T, missions ...Mission) *Catalog {
	t.Helper()
	c, err := NewCatalog(missions)
	require.NoError(t, err)
	return c
}

func TestTrigger_AtMostOnceAward(t *testing.T) {
	ctx := context.Background()
	catalog := mustCatalog(t, Mission{
		ID: MissionWeeklyRepeat, Title: "Repeat", Target: 3, XPReward: 50, Category: CategoryWeekly,
	})
	tr := newTestTracker(t, catalog, store.NewMemoryKV(), newTestClock())
	ledger := &recordingLedger{}

	for i := 1; i <= 2; i++ {
		res := tr.Trigger(ctx, LessonRepeated{}, ledger)
		assert.Empty(t, res.Awards, "call %d", i)
		assert.Equal(t, i, tr.Progress(MissionWeeklyRepeat))
	}

	res := tr.Trigger(ctx, LessonRepeated{}, ledger)
	require.Len(t, res.Awards, 1)
	assert.Equal(t, Award{MissionID: MissionWeeklyRepeat, Title: "Repeat", Category: CategoryWeekly, XP: 50}, res.Awards[0])
	assert.Equal(t, []int{50}, ledger.deposits)
	assert.True(t, tr.IsCompleted(MissionWeeklyRepeat))

	res = tr.Trigger(ctx, LessonRepeated{}, ledger)
	assert.Empty(t, res.Awards)
	assert.Equal(t, []int{50}, ledger.deposits, "no second award")
	assert.Equal(t, 3, tr.Progress(MissionWeeklyRepeat), "completed missions stop counting")
}

func TestTrigger_LargeDeltaAwardsOnce(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t, DefaultCatalog(), store.NewMemoryKV(), newTestClock())
	ledger := &recordingLedger{}

	res := tr.Trigger(ctx, LearningMinutes{Minutes: 90}, ledger)

	require.Len(t, res.Awards, 1)
	assert.Equal(t, MissionDailyMinutes, res.Awards[0].MissionID)
	assert.Equal(t, 90, tr.Progress(MissionDailyMinutes))
	assert.Equal(t, []int{25}, ledger.deposits)

	tr.Trigger(ctx, LearningMinutes{Minutes: 30}, ledger)
	assert.Equal(t, 90, tr.Progress(MissionDailyMinutes))
	assert.Len(t, ledger.deposits, 1)
}

func TestTrigger_HugeDeltaSaturates(t *testing.T) {
	ctx := context.Background()
	catalog := mustCatalog(t, Mission{
		ID: MissionProgressionXP, Title: "Ever Growing", Target: math.MaxInt, XPReward: 750, Category: CategoryProgression,
	})
	tr := newTestTracker(t, catalog, store.NewMemoryKV(), newTestClock())
	ledger := &recordingLedger{}

	res := tr.Trigger(ctx, XPGained{Amount: 50}, ledger)
	assert.Empty(t, res.Awards)

	res = tr.Trigger(ctx, XPGained{Amount: math.MaxInt}, ledger)
	assert.Equal(t, math.MaxInt, tr.Progress(MissionProgressionXP))
	require.Len(t, res.Awards, 1)
	assert.Equal(t, MissionProgressionXP, res.Awards[0].MissionID)
	assert.True(t, tr.IsCompleted(MissionProgressionXP))
}

func TestTrigger_EventMapping(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t, DefaultCatalog(), store.NewMemoryKV(), newTestClock())

	tr.Trigger(ctx, LessonCompleted{}, nil)
	tr.Trigger(ctx, CategoryOpened{}, nil)
	tr.Trigger(ctx, XPGained{Amount: 120}, nil)
	tr.Trigger(ctx, LessonShared{}, nil)

	progress := tr.ProgressMap()
	assert.Equal(t, 1, progress[MissionDailyLesson])
	assert.Equal(t, 1, progress[MissionWeeklyLessons])
	assert.Equal(t, 1, progress[MissionProgressionLessons])
	assert.Equal(t, 1, progress[MissionDailyCategory])
	assert.Equal(t, 120, progress[MissionWeeklyXP])
	assert.Equal(t, 120, progress[MissionProgressionXP])
	assert.Equal(t, 1, progress[MissionDailyShare])
	assert.Equal(t, 0, progress[MissionDailyOpen])

	assert.Equal(t, []string{MissionDailyLesson, MissionDailyShare}, tr.Completed())
}

func TestTrigger_LevelChangedMonotonicByDefault(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t, DefaultCatalog(), store.NewMemoryKV(), newTestClock())

	tr.Trigger(ctx, LevelChanged{Level: 4}, nil)
	assert.Equal(t, 4, tr.Progress(MissionProgressionLevel5))

	tr.Trigger(ctx, LevelChanged{Level: 2}, nil)
	assert.Equal(t, 4, tr.Progress(MissionProgressionLevel5), "a lower level never lowers progress")
	assert.Equal(t, 4, tr.Progress(MissionProgressionLevel10))
}

func TestTrigger_LevelChangedAbsolute(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t, DefaultCatalog(), store.NewMemoryKV(), newTestClock(),
		WithAbsoluteLevelProgress(true))

	tr.Trigger(ctx, LevelChanged{Level: 4}, nil)
	tr.Trigger(ctx, LevelChanged{Level: 2}, nil)

	assert.Equal(t, 2, tr.Progress(MissionProgressionLevel5))
	assert.Equal(t, 2, tr.Progress(MissionProgressionLevel10))
}

func TestTrigger_LevelChangedCompletesProgression(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t, DefaultCatalog(), store.NewMemoryKV(), newTestClock())
	ledger := &recordingLedger{}

	res := tr.Trigger(ctx, LevelChanged{Level: 5}, ledger)

	require.Len(t, res.Awards, 1)
	assert.Equal(t, MissionProgressionLevel5, res.Awards[0].MissionID)
	assert.Equal(t, 200, ledger.total())
	assert.False(t, tr.IsCompleted(MissionProgressionLevel10))
}

func TestTrigger_MissionMissingFromCatalog(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	tr := newTestTracker(t, EmptyCatalog(), kv, newTestClock())
	ledger := &recordingLedger{}

	res := tr.Trigger(ctx, AppOpened{}, ledger)

	assert.Empty(t, res.Awards)
	assert.Empty(t, ledger.deposits)
	assert.Empty(t, tr.ProgressMap())
	assert.Empty(t, tr.Status())
}

func TestTrigger_EndToEndFreshInstall(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	ledger := account.NewLedger(ctx, kv, nil)
	tr := newTestTracker(t, DefaultCatalog(), kv, newTestClock())

	require.Equal(t, 0, tr.Progress(MissionDailyOpen))

	res := tr.Trigger(ctx, AppOpened{}, ledger)

	assert.Equal(t, 1, tr.Progress(MissionDailyOpen))
	assert.True(t, tr.IsCompleted(MissionDailyOpen))
	assert.Equal(t, 1, tr.Progress(MissionWeeklyOpen))
	assert.False(t, tr.IsCompleted(MissionWeeklyOpen))
	require.Len(t, res.Awards, 1)
	assert.Equal(t, 10, ledger.XP())
	assert.Equal(t, 1, ledger.Level())
}

func TestTrigger_ReportsLevelChanges(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	ledger := account.NewLedger(ctx, kv, nil)
	ledger.AddXP(ctx, 90)
	tr := newTestTracker(t, DefaultCatalog(), kv, newTestClock())

	res := tr.Trigger(ctx, LessonCompleted{}, ledger)

	assert.Equal(t, []account.LevelChanged{{Level: 2}}, res.LevelChanges)
	assert.Equal(t, 20, ledger.XP())
}

func TestCheckReset_IdempotentWithinDay(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	tr := newTestTracker(t, DefaultCatalog(), store.NewMemoryKV(), clock)

	tr.Trigger(ctx, LessonCompleted{}, nil)
	clock.Advance(6 * time.Hour)

	assert.Empty(t, tr.CheckReset(ctx))
	assert.Empty(t, tr.CheckReset(ctx))
	assert.Equal(t, 1, tr.Progress(MissionDailyLesson))
	assert.True(t, tr.IsCompleted(MissionDailyLesson))
}

func TestCheckReset_MidnightClearsDailyOnly(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	tr := newTestTracker(t, DefaultCatalog(), store.NewMemoryKV(), clock)

	tr.Trigger(ctx, LessonCompleted{}, nil)
	tr.Trigger(ctx, AppOpened{}, nil)

	// Tuesday 10:00 -> Wednesday 00:01, same ISO week.
	clock.Advance(14*time.Hour + time.Minute)
	resets := tr.CheckReset(ctx)

	assert.Equal(t, []Category{CategoryDaily}, resets)
	assert.Equal(t, 0, tr.Progress(MissionDailyLesson))
	assert.Equal(t, 0, tr.Progress(MissionDailyOpen))
	assert.False(t, tr.IsCompleted(MissionDailyLesson))
	assert.False(t, tr.IsCompleted(MissionDailyOpen))
	assert.Equal(t, 1, tr.Progress(MissionWeeklyLessons))
	assert.Equal(t, 1, tr.Progress(MissionWeeklyOpen))
	assert.Equal(t, 1, tr.Progress(MissionProgressionLessons))

	// Once per epoch.
	assert.Empty(t, tr.CheckReset(ctx))
}

func TestCheckReset_NewWeekClearsWeekly(t *testing.T) {
	ctx := context.Background()
	clock := &testClock{t: time.Date(2026, 10, 18, 22, 0, 0, 0, time.UTC)} // Sunday
	tr := newTestTracker(t, DefaultCatalog(), store.NewMemoryKV(), clock)

	tr.Trigger(ctx, LessonRepeated{}, nil)
	tr.Trigger(ctx, LessonCompleted{}, nil)

	clock.Advance(3 * time.Hour) // Monday 01:00
	resets := tr.CheckReset(ctx)

	assert.ElementsMatch(t, []Category{CategoryDaily, CategoryWeekly}, resets)
	assert.Equal(t, 0, tr.Progress(MissionWeeklyRepeat))
	assert.Equal(t, 0, tr.Progress(MissionWeeklyLessons))
	assert.Equal(t, 1, tr.Progress(MissionProgressionLessons), "progression missions never reset")
}

func TestTrigger_RunsPendingReset(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	tr := newTestTracker(t, DefaultCatalog(), store.NewMemoryKV(), clock)
	ledger := &recordingLedger{}

	tr.Trigger(ctx, AppOpened{}, ledger)
	require.Equal(t, []int{10}, ledger.deposits)

	clock.Advance(24 * time.Hour)
	res := tr.Trigger(ctx, AppOpened{}, ledger)

	assert.Equal(t, []Category{CategoryDaily}, res.Resets)
	require.Len(t, res.Awards, 1, "daily open mission can be earned again")
	assert.Equal(t, []int{10, 10}, ledger.deposits)
	assert.Equal(t, 2, tr.Progress(MissionWeeklyOpen))
}

func TestNewTracker_ResetsOnStartup(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	clock := newTestClock()

	tr := newTestTracker(t, DefaultCatalog(), kv, clock)
	tr.Trigger(ctx, LessonCompleted{}, nil)

	clock.Advance(24 * time.Hour)
	reopened := newTestTracker(t, DefaultCatalog(), kv, clock)

	assert.Equal(t, 0, reopened.Progress(MissionDailyLesson))
	assert.Equal(t, 1, reopened.Progress(MissionWeeklyLessons))

	v, _, _ := kv.Get(ctx, store.KeyLastDailyReset)
	assert.Equal(t, "2026-10-14", v)
	v, _, _ = kv.Get(ctx, store.KeyLastWeeklyReset)
	assert.Equal(t, "2026-W42", v)
}

func TestPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	clock := newTestClock()

	tr := newTestTracker(t, DefaultCatalog(), kv, clock)
	tr.Trigger(ctx, AppOpened{}, nil)
	tr.Trigger(ctx, LessonCompleted{}, nil)
	tr.Trigger(ctx, LearningMinutes{Minutes: 7}, nil)
	tr.Trigger(ctx, XPGained{Amount: 640}, nil)

	reloaded := newTestTracker(t, DefaultCatalog(), kv, clock)

	assert.Equal(t, tr.ProgressMap(), reloaded.ProgressMap())
	assert.Equal(t, tr.Completed(), reloaded.Completed())
	assert.Equal(t, tr.Status(), reloaded.Status())
}

func TestPersistedEncoding(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	tr := newTestTracker(t, DefaultCatalog(), kv, newTestClock())

	tr.Trigger(ctx, LessonShared{}, nil)
	tr.Trigger(ctx, AppOpened{}, nil)

	raw, ok, _ := kv.Get(ctx, store.KeyMissionCompleted)
	require.True(t, ok)
	var completed []string
	require.NoError(t, json.Unmarshal([]byte(raw), &completed))
	assert.Equal(t, []string{MissionDailyOpen, MissionDailyShare}, completed, "stored sorted")

	raw, ok, _ = kv.Get(ctx, store.KeyMissionProgress)
	require.True(t, ok)
	var progress map[string]int
	require.NoError(t, json.Unmarshal([]byte(raw), &progress))
	assert.Equal(t, 1, progress[MissionDailyShare])
}

func TestNewTracker_MalformedState(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, store.KeyMissionProgress, "{broken"))
	require.NoError(t, kv.Set(ctx, store.KeyMissionCompleted, "42"))

	tr := newTestTracker(t, DefaultCatalog(), kv, newTestClock())

	assert.Empty(t, tr.Completed())
	assert.Equal(t, 0, tr.Progress(MissionWeeklyLessons))
}

func TestResetAll(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	clock := newTestClock()
	tr := newTestTracker(t, DefaultCatalog(), kv, clock)
	tr.Trigger(ctx, LessonCompleted{}, nil)
	tr.Trigger(ctx, LevelChanged{Level: 7}, nil)

	tr.ResetAll(ctx)

	assert.Empty(t, tr.Completed())
	assert.Empty(t, tr.ProgressMap())
	assert.Empty(t, tr.CheckReset(ctx), "epoch keys survive a full reset")
}

func TestStatusFraction(t *testing.T) {
	s := Status{Mission: Mission{Target: 4}, Progress: 1}
	assert.Equal(t, 0.25, s.Fraction())

	s.Progress = 10
	assert.Equal(t, 1.0, s.Fraction())
}
