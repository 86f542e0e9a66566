package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleManager  Role = "Manager"
	RoleEmployee Role = "Employee"
)

func (r Role) Valid() bool {
	return r == RoleManager || r == RoleEmployee
}

type User struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Role      Role               `json:"role" bson:"role"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`

	// TaskResponsible is derived from tasks.assignedTo on every read.
	TaskResponsible []Task `json:"taskResponsible" bson:"-"`
}
