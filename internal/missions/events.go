package missions

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownEvent is returned by ParseEvent for an unrecognized kind.
var ErrUnknownEvent = errors.New("unknown event kind")

// Event is a semantic app event that may advance missions.
type Event interface {
	Kind() string
	effects() []effect
}

// effect is the change an event applies to one mission counter.
type effect struct {
	missionID string
	amount    int
	// set assigns amount instead of adding it.
	set bool
}

func add(amount int, ids ...string) []effect {
	out := make([]effect, len(ids))
	for i, id := range ids {
		out[i] = effect{missionID: id, amount: amount}
	}
	return out
}

type (
	AppOpened       struct{}
	LessonCompleted struct{}
	LessonRepeated  struct{}
	LessonShared    struct{}
	CategoryOpened  struct{}

	// LearningMinutes reports time spent learning.
	LearningMinutes struct{ Minutes int }

	// XPGained reports XP earned outside mission rewards.
	XPGained struct{ Amount int }

	// LevelChanged reports the account's new level.
	LevelChanged struct{ Level int }
)

// Event kinds.
const (
	KindAppOpened       = "app_opened"
	KindLessonCompleted = "lesson_completed"
	KindLessonRepeated  = "lesson_repeated"
	KindLessonShared    = "lesson_shared"
	KindCategoryOpened  = "category_opened"
	KindLearningMinutes = "learning_minutes"
	KindXPGained        = "xp_gained"
	KindLevelChanged    = "level_changed"
)

func (AppOpened) Kind() string       { return KindAppOpened }
func (LessonCompleted) Kind() string { return KindLessonCompleted }
func (LessonRepeated) Kind() string  { return KindLessonRepeated }
func (LessonShared) Kind() string    { return KindLessonShared }
func (CategoryOpened) Kind() string  { return KindCategoryOpened }
func (LearningMinutes) Kind() string { return KindLearningMinutes }
func (XPGained) Kind() string        { return KindXPGained }
func (LevelChanged) Kind() string    { return KindLevelChanged }

func (AppOpened) effects() []effect {
	return add(1, MissionDailyOpen, MissionWeeklyOpen)
}

func (LessonCompleted) effects() []effect {
	return add(1, MissionDailyLesson, MissionWeeklyLessons, MissionProgressionLessons)
}

func (LessonRepeated) effects() []effect { return add(1, MissionWeeklyRepeat) }
func (LessonShared) effects() []effect   { return add(1, MissionDailyShare) }
func (CategoryOpened) effects() []effect { return add(1, MissionDailyCategory) }

func (e LearningMinutes) effects() []effect {
	return add(max(e.Minutes, 0), MissionDailyMinutes)
}

func (e XPGained) effects() []effect {
	return add(max(e.Amount, 0), MissionWeeklyXP, MissionProgressionXP)
}

func (e LevelChanged) effects() []effect {
	return []effect{
		{missionID: MissionProgressionLevel5, amount: e.Level, set: true},
		{missionID: MissionProgressionLevel10, amount: e.Level, set: true},
	}
}

// AllKinds returns every event kind in a stable order.
func AllKinds() []string {
	return []string{
		KindAppOpened, KindLessonCompleted, KindLessonRepeated, KindLessonShared,
		KindCategoryOpened, KindLearningMinutes, KindXPGained, KindLevelChanged,
	}
}

// ParseEvent builds an event from its kind and, for the parameterized kinds,
// its integer argument. Dashes are accepted in place of underscores.
func ParseEvent(kind string, n int) (Event, error) {
	k := strings.ReplaceAll(strings.TrimSpace(strings.ToLower(kind)), "-", "_")
	switch k {
	case KindAppOpened:
		return AppOpened{}, nil
	case KindLessonCompleted:
		return LessonCompleted{}, nil
	case KindLessonRepeated:
		return LessonRepeated{}, nil
	case KindLessonShared:
		return LessonShared{}, nil
	case KindCategoryOpened:
		return CategoryOpened{}, nil
	case KindLearningMinutes:
		return LearningMinutes{Minutes: n}, nil
	case KindXPGained:
		return XPGained{Amount: n}, nil
	case KindLevelChanged:
		return LevelChanged{Level: n}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, kind)
	}
}

// TakesArgument reports whether events of kind carry an integer argument.
func TakesArgument(kind string) bool {
	switch kind {
	case KindLearningMinutes, KindXPGained, KindLevelChanged:
		return true
	default:
		return false
	}
}
