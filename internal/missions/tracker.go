package missions

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/slayken/slayken/internal/account"
	"github.com/slayken/slayken/internal/store"
)

// Ledger receives mission XP rewards.
type Ledger interface {
	AddXP(ctx context.Context, amount int) []account.LevelChanged
}

// Award is a mission completion and the XP it granted.
type Award struct {
	MissionID string   `json:"mission_id"`
	Title     string   `json:"title"`
	Category  Category `json:"category"`
	XP        int      `json:"xp"`
}

// Result describes what a single Trigger call changed.
type Result struct {
	Awards       []Award                `json:"awards"`
	LevelChanges []account.LevelChanged `json:"level_changes"`
	Resets       []Category             `json:"resets,omitempty"`
}

// Tracker owns mission progress and the completed set. Progress is written
// through to the KV store after every mutation.
type Tracker struct {
	mu            sync.Mutex
	catalog       *Catalog
	kv            store.KV
	logger        *zap.Logger
	now           func() time.Time
	loc           *time.Location
	absoluteLevel bool

	progress  map[string]int
	completed map[string]bool

	startupResets []Category
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock sets the time source used for reset epochs.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithLocation sets the time zone in which days and weeks roll over.
func WithLocation(loc *time.Location) Option {
	return func(t *Tracker) {
		if loc != nil {
			t.loc = loc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithAbsoluteLevelProgress makes LevelChanged assign the new level to the
// level missions even when it is lower than the recorded progress. By
// default the recorded progress never decreases.
func WithAbsoluteLevelProgress(absolute bool) Option {
	return func(t *Tracker) { t.absoluteLevel = absolute }
}

// NewTracker loads mission state from kv and applies any pending daily or
// weekly reset before returning.
func NewTracker(ctx context.Context, catalog *Catalog, kv store.KV, opts ...Option) *Tracker {
	if catalog == nil {
		catalog = EmptyCatalog()
	}
	t := &Tracker{
		catalog: catalog,
		kv:      kv,
		logger:  zap.NewNop(),
		now:     time.Now,
		loc:     time.Local,
	}
	for _, opt := range opts {
		opt(t)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.loadState(ctx)
	t.startupResets = t.checkResetLocked(ctx)
	return t
}

// StartupResets returns the categories NewTracker reset while loading.
func (t *Tracker) StartupResets() []Category {
	return append([]Category(nil), t.startupResets...)
}

// Trigger applies event to every mission it is wired to. Completed missions
// are left untouched; a mission that reaches its target is marked complete
// and its reward is paid into ledger exactly once. The ledger is called
// after the tracker lock is released, in completion order.
func (t *Tracker) Trigger(ctx context.Context, event Event, ledger Ledger) Result {
	t.mu.Lock()
	res := Result{Resets: t.checkResetLocked(ctx)}

	for _, eff := range event.effects() {
		if award, ok := t.applyLocked(ctx, eff); ok {
			res.Awards = append(res.Awards, award)
		}
	}
	t.mu.Unlock()

	for _, a := range res.Awards {
		t.logger.Info("mission completed",
			zap.String("mission", a.MissionID),
			zap.String("event", event.Kind()),
			zap.Int("xp", a.XP))
		if ledger != nil {
			res.LevelChanges = append(res.LevelChanges, ledger.AddXP(ctx, a.XP)...)
		}
	}
	return res
}

// applyLocked mutates one counter and reports a completion.
func (t *Tracker) applyLocked(ctx context.Context, eff effect) (Award, bool) {
	if t.completed[eff.missionID] {
		return Award{}, false
	}
	mission, ok := t.catalog.Get(eff.missionID)
	if !ok {
		t.logger.Debug("event targets a mission missing from the catalog",
			zap.String("mission", eff.missionID))
		return Award{}, false
	}

	current := t.progress[eff.missionID]
	switch {
	case !eff.set:
		t.progress[eff.missionID] = account.SaturatingAdd(current, eff.amount)
	case t.absoluteLevel:
		t.progress[eff.missionID] = eff.amount
	default:
		t.progress[eff.missionID] = max(current, eff.amount)
	}
	t.saveProgress(ctx)

	if t.progress[eff.missionID] < mission.Target {
		return Award{}, false
	}
	t.completed[eff.missionID] = true
	t.saveCompleted(ctx)
	return Award{
		MissionID: mission.ID,
		Title:     mission.Title,
		Category:  mission.Category,
		XP:        mission.XPReward,
	}, true
}

// CheckReset clears daily and weekly missions whose epoch has rolled over
// since the last check and returns the categories that were reset. Calling
// it again within the same day and week is a no-op.
func (t *Tracker) CheckReset(ctx context.Context) []Category {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.checkResetLocked(ctx)
}

func (t *Tracker) checkResetLocked(ctx context.Context) []Category {
	now := t.now()
	periods := []struct {
		category Category
		key      string
		current  string
	}{
		{CategoryDaily, store.KeyLastDailyReset, DailyKey(now, t.loc)},
		{CategoryWeekly, store.KeyLastWeeklyReset, WeeklyKey(now, t.loc)},
	}

	var reset []Category
	for _, p := range periods {
		last, ok := t.get(ctx, p.key)
		if ok && last == p.current {
			continue
		}
		t.clearCategoryLocked(ctx, p.category)
		t.set(ctx, p.key, p.current)
		reset = append(reset, p.category)
		t.logger.Info("missions reset",
			zap.String("category", string(p.category)),
			zap.String("previous", last),
			zap.String("epoch", p.current))
	}
	return reset
}

func (t *Tracker) clearCategoryLocked(ctx context.Context, cat Category) {
	for _, m := range t.catalog.ByCategory(cat) {
		t.progress[m.ID] = 0
		delete(t.completed, m.ID)
	}
	t.saveProgress(ctx)
	t.saveCompleted(ctx)
}

// ResetAll clears progress and completion for every mission. Epoch keys are
// kept, so the next periodic check behaves as usual.
func (t *Tracker) ResetAll(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.progress = make(map[string]int)
	t.completed = make(map[string]bool)
	t.saveProgress(ctx)
	t.saveCompleted(ctx)
}

// Missions returns the catalog missions in order.
func (t *Tracker) Missions() []Mission {
	return t.catalog.All()
}

// Catalog returns the tracker's catalog.
func (t *Tracker) Catalog() *Catalog {
	return t.catalog
}

// Progress returns the counter for one mission.
func (t *Tracker) Progress(id string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress[id]
}

// ProgressMap returns a copy of all counters.
func (t *Tracker) ProgressMap() map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]int, len(t.progress))
	for id, n := range t.progress {
		out[id] = n
	}
	return out
}

// IsCompleted reports whether a mission is in the completed set.
func (t *Tracker) IsCompleted(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completed[id]
}

// Completed returns the completed mission ids, sorted.
func (t *Tracker) Completed() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return sortedKeys(t.completed)
}

// Status returns every catalog mission with its tracking state.
func (t *Tracker) Status() []Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	all := t.catalog.All()
	out := make([]Status, len(all))
	for i, m := range all {
		out[i] = Status{
			Mission:   m,
			Progress:  t.progress[m.ID],
			Completed: t.completed[m.ID],
		}
	}
	return out
}
