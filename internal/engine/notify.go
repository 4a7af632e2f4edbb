package engine

import (
	"sync"

	"go.uber.org/zap"

	"github.com/slayken/slayken/internal/missions"
)

// NotificationKind names what a Notification reports.
type NotificationKind string

const (
	NotifyMissionCompleted NotificationKind = "mission_completed"
	NotifyLevelChanged     NotificationKind = "level_changed"
	NotifyMissionsReset    NotificationKind = "missions_reset"
)

// Notification is delivered to subscribers for every completion, level
// change and periodic reset.
type Notification struct {
	Kind       NotificationKind  `json:"kind"`
	DispatchID string            `json:"dispatch_id"`
	MissionID  string            `json:"mission_id,omitempty"`
	Title      string            `json:"title,omitempty"`
	Category   missions.Category `json:"category,omitempty"`
	XP         int               `json:"xp,omitempty"`
	Level      int               `json:"level,omitempty"`
}

type subscribers struct {
	mu     sync.Mutex
	next   int
	chans  map[int]chan Notification
	logger *zap.Logger
}

func (s *subscribers) add(buffer int) (<-chan Notification, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chans == nil {
		s.chans = make(map[int]chan Notification)
	}
	id := s.next
	s.next++
	ch := make(chan Notification, max(buffer, 0))
	s.chans[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.chans, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (s *subscribers) publish(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.chans {
		select {
		case ch <- n:
		default:
			if s.logger != nil {
				s.logger.Warn("subscriber full, notification dropped",
					zap.Int("subscriber", id),
					zap.String("kind", string(n.Kind)))
			}
		}
	}
}
