package account

import (
	"context"
	"math"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/slayken/slayken/internal/store"
)

// LevelChanged is emitted once for every level gained.
type LevelChanged struct {
	Level int `json:"level"`
}

// State is a point-in-time view of the account.
type State struct {
	Level       int     `json:"level"`
	XP          int     `json:"xp"`
	NextLevelXP int     `json:"next_level_xp"`
	Progress    float64 `json:"progress"`
}

// Ledger owns the account level and XP. Every mutation is written through to
// the KV store under account_level and account_xp; the XP requirement is
// always derived from the level and never stored.
type Ledger struct {
	mu        sync.Mutex
	kv        store.KV
	logger    *zap.Logger
	level     int
	xp        int
	observers []func(level int)
}

// NewLedger loads the account from kv. Missing or malformed values fall back
// to level 1 with 0 XP.
func NewLedger(ctx context.Context, kv store.KV, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Ledger{
		kv:     kv,
		logger: logger,
		level:  max(loadInt(ctx, kv, store.KeyAccountLevel, logger), 1),
		xp:     max(loadInt(ctx, kv, store.KeyAccountXP, logger), 0),
	}

	// A stored xp at or above the requirement is folded into levels without
	// notifying anyone; those level-ups happened in an earlier run.
	if l.xp >= NextLevelXP(l.level) {
		for l.xp >= NextLevelXP(l.level) {
			l.xp -= NextLevelXP(l.level)
			l.level++
		}
		l.save(ctx)
	}
	return l
}

// OnLevelChanged registers fn to be called with the new level after each
// level-up. Callbacks run outside the ledger lock.
func (l *Ledger) OnLevelChanged(fn func(level int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observers = append(l.observers, fn)
}

// AddXP deposits amount XP and performs as many level-ups as the balance
// allows. Negative amounts are treated as zero. The returned notifications
// are in the order the levels were reached.
func (l *Ledger) AddXP(ctx context.Context, amount int) []LevelChanged {
	if amount < 0 {
		l.logger.Warn("negative xp ignored", zap.Int("amount", amount))
		amount = 0
	}

	l.mu.Lock()
	l.xp = SaturatingAdd(l.xp, amount)
	l.save(ctx)

	var changes []LevelChanged
	for l.xp >= NextLevelXP(l.level) {
		l.xp -= NextLevelXP(l.level)
		l.level++
		l.save(ctx)
		changes = append(changes, LevelChanged{Level: l.level})
	}
	observers := append([]func(int){}, l.observers...)
	l.mu.Unlock()

	for _, c := range changes {
		l.logger.Info("level up", zap.Int("level", c.Level))
		for _, fn := range observers {
			fn(c.Level)
		}
	}
	return changes
}

// Reset returns the account to level 1 with 0 XP.
func (l *Ledger) Reset(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = 1
	l.xp = 0
	l.save(ctx)
}

// Level returns the current level.
func (l *Ledger) Level() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// XP returns the XP accumulated within the current level.
func (l *Ledger) XP() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.xp
}

// NextLevelXP returns the XP needed to complete the current level.
func (l *Ledger) NextLevelXP() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return NextLevelXP(l.level)
}

// ProgressFraction returns xp / nextLevelXP, in [0, 1).
func (l *Ledger) ProgressFraction() float64 {
	return l.State().Progress
}

// State returns a consistent snapshot of the account.
func (l *Ledger) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	next := NextLevelXP(l.level)
	return State{
		Level:       l.level,
		XP:          l.xp,
		NextLevelXP: next,
		Progress:    float64(l.xp) / float64(next),
	}
}

// save writes level and xp. Failures are logged and otherwise ignored.
func (l *Ledger) save(ctx context.Context) {
	if err := l.kv.Set(ctx, store.KeyAccountLevel, strconv.Itoa(l.level)); err != nil {
		l.logger.Warn("persist account level", zap.Error(err))
	}
	if err := l.kv.Set(ctx, store.KeyAccountXP, strconv.Itoa(l.xp)); err != nil {
		l.logger.Warn("persist account xp", zap.Error(err))
	}
}

// loadInt reads an integer value, returning 0 when it is missing or malformed.
func loadInt(ctx context.Context, kv store.KV, key string, logger *zap.Logger) int {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		logger.Warn("load value", zap.String("key", key), zap.Error(err))
		return 0
	}
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		logger.Warn("malformed value", zap.String("key", key), zap.String("value", raw))
		return 0
	}
	return n
}

// SaturatingAdd returns a+b for non-negative operands, clamped to math.MaxInt.
func SaturatingAdd(a, b int) int {
	if b > math.MaxInt-a {
		return math.MaxInt
	}
	return a + b
}
