package store

import (
	"context"
	"time"
)

// Keys of the persisted learner state.
const (
	KeyMissionProgress  = "mission_progress"
	KeyMissionCompleted = "mission_completed"
	KeyLastDailyReset   = "mission_lastDailyReset"
	KeyLastWeeklyReset  = "mission_lastWeeklyReset"
	KeyAccountLevel     = "account_level"
	KeyAccountXP        = "account_xp"
)

// KV is a small string key-value store. Implementations must be safe for
// concurrent use.
type KV interface {
	// Get returns the value stored under key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	Kind   string    // exact kind match ("" = any)
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// Award event kinds.
const (
	AwardKindMission = "mission"
	AwardKindLevel   = "level"
)

// AwardEventData captures a mission completion or a level-up.
type AwardEventData struct {
	DispatchID string
	Kind       string
	MissionID  *string
	Category   *string
	XP         int
	Level      int
}

// AwardEventRecord is a persisted award event.
type AwardEventRecord struct {
	Sequence   int64     `json:"sequence"`
	Timestamp  time.Time `json:"timestamp"`
	DispatchID string    `json:"dispatch_id"`
	Kind       string    `json:"kind"`
	MissionID  string    `json:"mission_id,omitempty"`
	Category   string    `json:"category,omitempty"`
	XP         int       `json:"xp"`
	Level      int       `json:"level,omitempty"`
}

// EventRepo provides append and query access to the award log.
type EventRepo interface {
	// AppendAward records a mission completion or level-up.
	AppendAward(ctx context.Context, data AwardEventData) error

	// QueryAwards returns award events, newest first.
	QueryAwards(ctx context.Context, opts QueryOpts) ([]AwardEventRecord, error)
}
