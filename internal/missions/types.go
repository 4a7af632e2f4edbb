package missions

// Category governs when a mission's progress is reset.
type Category string

const (
	CategoryDaily       Category = "daily"
	CategoryWeekly      Category = "weekly"
	CategoryProgression Category = "progression"
)

// AllCategories returns all categories in display order.
func AllCategories() []Category {
	return []Category{CategoryDaily, CategoryWeekly, CategoryProgression}
}

// IsValid reports whether c is a known category.
func (c Category) IsValid() bool {
	switch c {
	case CategoryDaily, CategoryWeekly, CategoryProgression:
		return true
	default:
		return false
	}
}

// DisplayName returns a human-readable label for the category.
func (c Category) DisplayName() string {
	switch c {
	case CategoryDaily:
		return "Daily"
	case CategoryWeekly:
		return "Weekly"
	case CategoryProgression:
		return "Progression"
	default:
		return string(c)
	}
}

// Mission is a trackable goal from the catalog.
type Mission struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Target      int      `json:"target"`
	XPReward    int      `json:"xpReward"`
	Category    Category `json:"category"`
}

// Mission ids the event mapping refers to.
const (
	MissionDailyLesson        = "mission_daily_1"
	MissionDailyOpen          = "mission_daily_2"
	MissionDailyShare         = "mission_daily_3"
	MissionDailyCategory      = "mission_daily_4"
	MissionDailyMinutes       = "mission_daily_5"
	MissionWeeklyLessons      = "mission_weekly_1"
	MissionWeeklyOpen         = "mission_weekly_2"
	MissionWeeklyRepeat       = "mission_weekly_3"
	MissionWeeklyXP           = "mission_weekly_4"
	MissionProgressionLevel5  = "mission_progression_1"
	MissionProgressionLevel10 = "mission_progression_2"
	MissionProgressionLessons = "mission_progression_3"
	MissionProgressionXP      = "mission_progression_4"
)

// Status is a mission together with its current tracking state.
type Status struct {
	Mission
	Progress  int  `json:"progress"`
	Completed bool `json:"completed"`
}

// Fraction returns progress toward the target, capped at 1.
func (s Status) Fraction() float64 {
	if s.Target <= 0 {
		return 0
	}
	return min(float64(s.Progress)/float64(s.Target), 1)
}
