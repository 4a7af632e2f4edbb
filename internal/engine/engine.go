// Package engine ties the account ledger and the mission tracker together
// behind a single serialized entry point.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/slayken/slayken/internal/account"
	"github.com/slayken/slayken/internal/metrics"
	"github.com/slayken/slayken/internal/missions"
	"github.com/slayken/slayken/internal/store"
)

// ErrNilEvent is returned by Dispatch when no event is given.
var ErrNilEvent = errors.New("nil event")

// Options configures an Engine. KV is required; everything else has a
// usable zero value.
type Options struct {
	KV      store.KV
	Catalog *missions.Catalog
	Logger  *zap.Logger
	Metrics *metrics.Metrics

	// Events receives the award log. Nil disables history.
	Events store.EventRepo

	Clock                 func() time.Time
	Location              *time.Location
	AbsoluteLevelProgress bool
}

// Outcome is everything one Dispatch or AddXP call changed, including the
// effects of level changes fed back into the tracker.
type Outcome struct {
	DispatchID   string                 `json:"dispatch_id"`
	Awards       []missions.Award       `json:"awards"`
	LevelChanges []account.LevelChanged `json:"level_changes"`
	Resets       []missions.Category    `json:"resets,omitempty"`
	Account      account.State          `json:"account"`
}

// State is a read-only view of the account and every mission.
type State struct {
	Account  account.State     `json:"account"`
	Missions []missions.Status `json:"missions"`
}

// Engine is the context object owning the ledger and the tracker.
type Engine struct {
	mu      sync.Mutex
	ledger  *account.Ledger
	tracker *missions.Tracker
	events  store.EventRepo
	metrics *metrics.Metrics
	logger  *zap.Logger

	subs subscribers
}

// New loads the ledger and the tracker from opts.KV. The tracker applies any
// pending daily or weekly reset; no events are dispatched.
func New(ctx context.Context, opts Options) (*Engine, error) {
	if opts.KV == nil {
		return nil, errors.New("engine requires a KV store")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	catalog := opts.Catalog
	if catalog == nil {
		catalog = missions.DefaultCatalog()
	}

	trackerOpts := []missions.Option{
		missions.WithLogger(logger.Named("missions")),
		missions.WithLocation(opts.Location),
		missions.WithAbsoluteLevelProgress(opts.AbsoluteLevelProgress),
	}
	if opts.Clock != nil {
		trackerOpts = append(trackerOpts, missions.WithClock(opts.Clock))
	}

	e := &Engine{
		ledger:  account.NewLedger(ctx, opts.KV, logger.Named("account")),
		tracker: missions.NewTracker(ctx, catalog, opts.KV, trackerOpts...),
		events:  opts.Events,
		metrics: opts.Metrics,
		logger:  logger,
	}
	e.subs.logger = logger
	if e.metrics != nil {
		e.metrics.Level.Set(float64(e.ledger.Level()))
	}
	e.noteResets("", e.tracker.StartupResets())
	return e, nil
}

// Dispatch applies event to the missions. Rewards are paid into the ledger
// and every resulting level change is fed back as a LevelChanged event, in
// the order the levels were reached.
func (e *Engine) Dispatch(ctx context.Context, event missions.Event) (Outcome, error) {
	if event == nil {
		return Outcome{}, ErrNilEvent
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	out := Outcome{DispatchID: uuid.New().String()}
	e.run(ctx, &out, []missions.Event{event})
	out.Account = e.ledger.State()
	return out, nil
}

// AddXP deposits amount directly into the ledger. Level changes are fed
// back into the missions as with Dispatch.
func (e *Engine) AddXP(ctx context.Context, amount int) Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := Outcome{DispatchID: uuid.New().String()}
	changes := e.ledger.AddXP(ctx, amount)
	e.countXP(amount)
	e.recordLevels(ctx, &out, changes)

	queue := make([]missions.Event, 0, len(changes))
	for _, c := range changes {
		queue = append(queue, missions.LevelChanged{Level: c.Level})
	}
	e.run(ctx, &out, queue)
	out.Account = e.ledger.State()
	return out
}

// run drains queue, appending the LevelChanged events each trigger causes.
func (e *Engine) run(ctx context.Context, out *Outcome, queue []missions.Event) {
	for len(queue) > 0 {
		ev := queue[0]
		queue = queue[1:]

		if e.metrics != nil {
			e.metrics.Events.WithLabelValues(ev.Kind()).Inc()
		}
		res := e.tracker.Trigger(ctx, ev, e.ledger)

		out.Resets = append(out.Resets, res.Resets...)
		e.noteResets(out.DispatchID, res.Resets)
		for _, a := range res.Awards {
			out.Awards = append(out.Awards, a)
			e.recordAward(ctx, out.DispatchID, a)
		}
		e.recordLevels(ctx, out, res.LevelChanges)

		for _, c := range res.LevelChanges {
			queue = append(queue, missions.LevelChanged{Level: c.Level})
		}
	}
}

// noteResets counts periodic resets and notifies subscribers. dispatchID
// is empty for resets not caused by a dispatch.
func (e *Engine) noteResets(dispatchID string, cats []missions.Category) {
	for _, cat := range cats {
		if e.metrics != nil {
			e.metrics.Resets.WithLabelValues(string(cat)).Inc()
		}
		e.subs.publish(Notification{
			Kind:       NotifyMissionsReset,
			DispatchID: dispatchID,
			Category:   cat,
		})
	}
}

func (e *Engine) recordAward(ctx context.Context, dispatchID string, a missions.Award) {
	e.countXP(a.XP)
	if e.metrics != nil {
		e.metrics.MissionsCompleted.WithLabelValues(string(a.Category)).Inc()
	}
	if e.events != nil {
		missionID, category := a.MissionID, string(a.Category)
		err := e.events.AppendAward(ctx, store.AwardEventData{
			DispatchID: dispatchID,
			Kind:       store.AwardKindMission,
			MissionID:  &missionID,
			Category:   &category,
			XP:         a.XP,
		})
		if err != nil {
			e.logger.Warn("record mission award", zap.String("mission", a.MissionID), zap.Error(err))
		}
	}
	e.subs.publish(Notification{
		Kind:       NotifyMissionCompleted,
		DispatchID: dispatchID,
		MissionID:  a.MissionID,
		Title:      a.Title,
		Category:   a.Category,
		XP:         a.XP,
	})
}

func (e *Engine) recordLevels(ctx context.Context, out *Outcome, changes []account.LevelChanged) {
	for _, c := range changes {
		out.LevelChanges = append(out.LevelChanges, c)
		if e.metrics != nil {
			e.metrics.LevelUps.Inc()
			e.metrics.Level.Set(float64(c.Level))
		}
		if e.events != nil {
			err := e.events.AppendAward(ctx, store.AwardEventData{
				DispatchID: out.DispatchID,
				Kind:       store.AwardKindLevel,
				Level:      c.Level,
			})
			if err != nil {
				e.logger.Warn("record level change", zap.Int("level", c.Level), zap.Error(err))
			}
		}
		e.subs.publish(Notification{
			Kind:       NotifyLevelChanged,
			DispatchID: out.DispatchID,
			Level:      c.Level,
		})
	}
}

func (e *Engine) countXP(amount int) {
	if e.metrics != nil && amount > 0 {
		e.metrics.XPAwarded.Add(float64(amount))
	}
}

// CheckReset applies any pending daily or weekly reset.
func (e *Engine) CheckReset(ctx context.Context) []missions.Category {
	e.mu.Lock()
	defer e.mu.Unlock()
	resets := e.tracker.CheckReset(ctx)
	e.noteResets("", resets)
	return resets
}

// ResetAccount returns the account to level 1 with 0 XP. Missions are left
// as they are.
func (e *Engine) ResetAccount(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ledger.Reset(ctx)
	if e.metrics != nil {
		e.metrics.Level.Set(1)
	}
	e.logger.Info("account reset")
}

// ResetMissions clears progress and completion of every mission.
func (e *Engine) ResetMissions(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tracker.ResetAll(ctx)
	e.logger.Info("missions reset")
}

// State applies any pending daily or weekly reset and returns the current
// account and mission rows.
func (e *Engine) State(ctx context.Context) State {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.noteResets("", e.tracker.CheckReset(ctx))
	return State{
		Account:  e.ledger.State(),
		Missions: e.tracker.Status(),
	}
}

// Catalog returns the mission catalog.
func (e *Engine) Catalog() *missions.Catalog {
	return e.tracker.Catalog()
}

// History returns the award log, newest first. It is empty when the engine
// has no event repository.
func (e *Engine) History(ctx context.Context, opts store.QueryOpts) ([]store.AwardEventRecord, error) {
	if e.events == nil {
		return nil, nil
	}
	return e.events.QueryAwards(ctx, opts)
}

// Subscribe returns a channel receiving notifications until cancel is
// called. Notifications are dropped for a subscriber whose buffer is full.
func (e *Engine) Subscribe(buffer int) (<-chan Notification, func()) {
	return e.subs.add(buffer)
}
