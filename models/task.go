package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskStatus string

const (
	StatusPending TaskStatus = "pending"
	StatusWorking TaskStatus = "working"
	StatusReview  TaskStatus = "review"
	StatusDone    TaskStatus = "done"
	StatusArchive TaskStatus = "archive"
)

// TaskStatuses lists every status in lifecycle order.
var TaskStatuses = []TaskStatus{StatusPending, StatusWorking, StatusReview, StatusDone, StatusArchive}

func (s TaskStatus) Valid() bool {
	for _, status := range TaskStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type Task struct {
	ID          primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Name        string              `json:"name" bson:"name"`
	Description string              `json:"description" bson:"description"`
	Status      TaskStatus          `json:"status" bson:"status"`
	IsDeleted   bool                `json:"isDeleted" bson:"isDeleted"`
	AssignedTo  *primitive.ObjectID `json:"assignedTo" bson:"assignedTo"`
	CreatedAt   time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt" bson:"updatedAt"`

	// Assignee is the populated user behind AssignedTo. It is never stored.
	Assignee *User `json:"assignee,omitempty" bson:"-"`
}

// TaskPatch holds the optional fields of an update request.
type TaskPatch struct {
	Name        *string     `json:"name,omitempty"`
	Description *string     `json:"description,omitempty"`
	Status      *TaskStatus `json:"status,omitempty"`
}

func (p TaskPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Status == nil
}

// TaskChange is a set of field writes applied atomically by the task store.
type TaskChange struct {
	Name          *string
	Description   *string
	Status        *TaskStatus
	IsDeleted     *bool
	AssignedTo    *primitive.ObjectID
	ClearAssignee bool
}

// TaskGuard restricts a store update to a task in an expected state.
// Zero values place no restriction.
type TaskGuard struct {
	Status    TaskStatus
	StatusNot TaskStatus
}
