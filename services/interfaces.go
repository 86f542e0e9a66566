package services

import (
	"context"

	"github.com/thucvinguyen/coder-management/models"
	"github.com/thucvinguyen/coder-management/query"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskStore is the persistence the task operations need. Update must apply the
// change atomically and only when guard holds, returning repositories.ErrNotFound otherwise.
type TaskStore interface {
	Insert(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error)
	Find(ctx context.Context, spec query.Spec) ([]models.Task, error)
	FindByAssignees(ctx context.Context, userIDs []primitive.ObjectID) ([]models.Task, error)
	Update(ctx context.Context, id primitive.ObjectID, guard models.TaskGuard, change models.TaskChange) (*models.Task, error)
}

type UserStore interface {
	Insert(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByName(ctx context.Context, name string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	Find(ctx context.Context, spec query.Spec) ([]models.User, error)
}

// Notifier receives assignment changes. Delivery failures never fail the assignment.
type Notifier interface {
	Notify(ctx context.Context, notification models.Notification) error
}
