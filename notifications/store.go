package notifications

import (
	"context"
	"sort"
	"sync"

	"github.com/thucvinguyen/coder-management/models"
)

// Store persists assignment notifications per user name.
type Store interface {
	Save(ctx context.Context, notification *models.Notification) error
	ListByUsername(ctx context.Context, username string) ([]models.Notification, error)
	Close()
}

// MemoryStore keeps notifications in process. It is used when no Cassandra
// host is configured.
type MemoryStore struct {
	mu     sync.RWMutex
	byUser map[string][]models.Notification
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byUser: make(map[string][]models.Notification)}
}

func (s *MemoryStore) Save(ctx context.Context, notification *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUser[notification.Username] = append(s.byUser[notification.Username], *notification)
	return nil
}

// ListByUsername returns the newest notifications first.
func (s *MemoryStore) ListByUsername(ctx context.Context, username string) ([]models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	notifications := append([]models.Notification{}, s.byUser[username]...)
	sort.SliceStable(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	return notifications, nil
}

func (s *MemoryStore) Close() {}
