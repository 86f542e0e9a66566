// Package notifications records a message for a user whenever a task is
// assigned to or unassigned from them.
package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/thucvinguyen/coder-management/logging"
	"github.com/thucvinguyen/coder-management/models"

	"github.com/gocql/gocql"
	"github.com/sony/gobreaker"
)

type Service struct {
	store   Store
	breaker *gobreaker.CircuitBreaker
	now     func() time.Time
}

func NewService(store Store, breaker *gobreaker.CircuitBreaker) *Service {
	return &Service{store: store, breaker: breaker, now: time.Now}
}

// NewBreaker trips after more than three consecutive store failures and
// probes again after timeout.
func NewBreaker(name string, timeout time.Duration) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})
}

// Notify stores the notification, filling in id and timestamp.
func (s *Service) Notify(ctx context.Context, notification models.Notification) error {
	notification.ID = gocql.TimeUUID().String()
	notification.CreatedAt = s.now().UTC().Truncate(time.Millisecond)
	notification.IsRead = false

	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.store.Save(ctx, &notification)
	})
	if err != nil {
		return fmt.Errorf("notification for %s not delivered: %w", notification.Username, err)
	}
	return nil
}

func (s *Service) ListForUser(ctx context.Context, username string) ([]models.Notification, error) {
	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.store.ListByUsername(ctx, username)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return result.([]models.Notification), nil
}
