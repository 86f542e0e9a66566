package models

import "time"

type NotificationKind string

const (
	NotificationAssigned   NotificationKind = "assigned"
	NotificationUnassigned NotificationKind = "unassigned"
)

type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Username  string           `json:"username"`
	TaskID    string           `json:"taskId"`
	Kind      NotificationKind `json:"kind"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"createdAt"`
	IsRead    bool             `json:"isRead"`
}
