package account

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slayken/slayken/internal/store"
)

// failingKV rejects every read and write.
type failingKV struct{}

func (failingKV) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk gone")
}
func (failingKV) Set(context.Context, string, string) error { return errors.New("disk gone") }
func (failingKV) Delete(context.Context, string) error      { return errors.New("disk gone") }

func TestNewLedger_Defaults(t *testing.T) {
	l := NewLedger(context.Background(), store.NewMemoryKV(), nil)

	st := l.State()
	assert.Equal(t, 1, st.Level)
	assert.Equal(t, 0, st.XP)
	assert.Equal(t, 100, st.NextLevelXP)
	assert.Equal(t, 0.0, st.Progress)
}

func TestAddXP_MultiLevel(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(ctx, store.NewMemoryKV(), nil)

	changes := l.AddXP(ctx, 250)

	assert.Equal(t, []LevelChanged{{Level: 2}, {Level: 3}}, changes)
	assert.Equal(t, 3, l.Level())
	assert.Equal(t, 30, l.XP())
	assert.Equal(t, 144, l.NextLevelXP())
}

func TestAddXP_ExactThreshold(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(ctx, store.NewMemoryKV(), nil)

	changes := l.AddXP(ctx, 100)

	assert.Len(t, changes, 1)
	assert.Equal(t, 2, l.Level())
	assert.Equal(t, 0, l.XP())
}

func TestAddXP_BelowThreshold(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(ctx, store.NewMemoryKV(), nil)

	changes := l.AddXP(ctx, 99)

	assert.Empty(t, changes)
	assert.Equal(t, 1, l.Level())
	assert.Equal(t, 99, l.XP())
	assert.InDelta(t, 0.99, l.ProgressFraction(), 1e-9)
}

func TestAddXP_NegativeIgnored(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(ctx, store.NewMemoryKV(), nil)
	l.AddXP(ctx, 40)

	changes := l.AddXP(ctx, -500)

	assert.Empty(t, changes)
	assert.Equal(t, 1, l.Level())
	assert.Equal(t, 40, l.XP())
}

func TestAddXP_InvariantHolds(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(ctx, store.NewMemoryKV(), nil)
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		l.AddXP(ctx, rng.Intn(400))
		st := l.State()
		if st.XP < 0 || st.XP >= NextLevelXP(st.Level) {
			t.Fatalf("step %d: xp = %d outside [0, %d) at level %d", i, st.XP, NextLevelXP(st.Level), st.Level)
		}
		if st.Progress < 0 || st.Progress >= 1 {
			t.Fatalf("step %d: progress = %f outside [0, 1)", i, st.Progress)
		}
	}
}

func TestAddXP_HugeAmountSaturates(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	l := NewLedger(ctx, kv, nil)

	l.AddXP(ctx, 50)
	changes := l.AddXP(ctx, math.MaxInt)

	st := l.State()
	require.NotEmpty(t, changes)
	assert.Greater(t, st.Level, 1)
	if st.XP < 0 || st.XP >= NextLevelXP(st.Level) {
		t.Fatalf("xp = %d outside [0, %d) at level %d", st.XP, NextLevelXP(st.Level), st.Level)
	}

	reloaded := NewLedger(ctx, kv, nil)
	assert.Equal(t, st, reloaded.State())
}

func TestSaturatingAdd(t *testing.T) {
	tests := []struct {
		a, b, want int
	}{
		{0, 0, 0},
		{2, 3, 5},
		{math.MaxInt - 1, 1, math.MaxInt},
		{50, math.MaxInt, math.MaxInt},
		{math.MaxInt, math.MaxInt, math.MaxInt},
	}
	for _, tt := range tests {
		if got := SaturatingAdd(tt.a, tt.b); got != tt.want {
			t.Errorf("SaturatingAdd(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestOnLevelChanged(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(ctx, store.NewMemoryKV(), nil)

	var seen []int
	l.OnLevelChanged(func(level int) {
		seen = append(seen, level)
		// Reading the ledger from a callback must not deadlock.
		_ = l.Level()
	})

	l.AddXP(ctx, 50)
	assert.Empty(t, seen)

	l.AddXP(ctx, 300)
	assert.Equal(t, []int{2, 3}, seen)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	l := NewLedger(ctx, kv, nil)
	l.AddXP(ctx, 1000)
	require.Greater(t, l.Level(), 1)

	var notified bool
	l.OnLevelChanged(func(int) { notified = true })
	l.Reset(ctx)

	assert.Equal(t, 1, l.Level())
	assert.Equal(t, 0, l.XP())
	assert.Equal(t, 100, l.NextLevelXP())
	assert.False(t, notified, "reset must not emit level notifications")

	v, _, _ := kv.Get(ctx, store.KeyAccountLevel)
	assert.Equal(t, "1", v)
	v, _, _ = kv.Get(ctx, store.KeyAccountXP)
	assert.Equal(t, "0", v)
}

func TestPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()

	l := NewLedger(ctx, kv, nil)
	l.AddXP(ctx, 250)
	l.AddXP(ctx, 17)

	reloaded := NewLedger(ctx, kv, nil)
	assert.Equal(t, l.State(), reloaded.State())

	_, ok, _ := kv.Get(ctx, "account_nextLevelXP")
	assert.False(t, ok, "nextLevelXP is derived and never stored")
}

func TestNewLedger_MalformedValues(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, store.KeyAccountLevel, "not-a-number"))
	require.NoError(t, kv.Set(ctx, store.KeyAccountXP, "-40"))

	l := NewLedger(ctx, kv, nil)

	assert.Equal(t, 1, l.Level())
	assert.Equal(t, 0, l.XP())
}

func TestNewLedger_NormalizesStoredOverflow(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, store.KeyAccountLevel, "1"))
	require.NoError(t, kv.Set(ctx, store.KeyAccountXP, "250"))

	l := NewLedger(ctx, kv, nil)

	assert.Equal(t, 3, l.Level())
	assert.Equal(t, 30, l.XP())
	v, _, _ := kv.Get(ctx, store.KeyAccountLevel)
	assert.Equal(t, "3", v)
}

func TestLedger_ToleratesStoreFailures(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(ctx, failingKV{}, nil)

	changes := l.AddXP(ctx, 130)

	assert.Len(t, changes, 1)
	assert.Equal(t, 2, l.Level())
	assert.Equal(t, 30, l.XP())
}
