package missions

import (
	"context"
	"encoding/json"
	"sort"

	"go.uber.org/zap"

	"github.com/slayken/slayken/internal/store"
)

// loadState reads progress and the completed set. Missing or malformed
// values are logged and treated as empty.
func (t *Tracker) loadState(ctx context.Context) {
	t.progress = make(map[string]int)
	t.completed = make(map[string]bool)

	if raw, ok := t.get(ctx, store.KeyMissionProgress); ok {
		var progress map[string]int
		if err := json.Unmarshal([]byte(raw), &progress); err != nil {
			t.logger.Warn("malformed mission progress", zap.Error(err))
		} else {
			for id, n := range progress {
				t.progress[id] = n
			}
		}
	}

	if raw, ok := t.get(ctx, store.KeyMissionCompleted); ok {
		var completed []string
		if err := json.Unmarshal([]byte(raw), &completed); err != nil {
			t.logger.Warn("malformed completed missions", zap.Error(err))
		} else {
			for _, id := range completed {
				t.completed[id] = true
			}
		}
	}
}

func (t *Tracker) saveProgress(ctx context.Context) {
	data, err := json.Marshal(t.progress)
	if err != nil {
		t.logger.Warn("encode mission progress", zap.Error(err))
		return
	}
	t.set(ctx, store.KeyMissionProgress, string(data))
}

func (t *Tracker) saveCompleted(ctx context.Context) {
	data, err := json.Marshal(sortedKeys(t.completed))
	if err != nil {
		t.logger.Warn("encode completed missions", zap.Error(err))
		return
	}
	t.set(ctx, store.KeyMissionCompleted, string(data))
}

func (t *Tracker) get(ctx context.Context, key string) (string, bool) {
	v, ok, err := t.kv.Get(ctx, key)
	if err != nil {
		t.logger.Warn("load value", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return v, ok
}

func (t *Tracker) set(ctx context.Context, key, value string) {
	if err := t.kv.Set(ctx, key, value); err != nil {
		t.logger.Warn("persist value", zap.String("key", key), zap.Error(err))
	}
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
