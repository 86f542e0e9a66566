package services

import (
	"fmt"

	"github.com/thucvinguyen/coder-management/apperrors"
	"github.com/thucvinguyen/coder-management/models"
)

type lifecycleRule struct {
	next      []models.TaskStatus
	deletable bool
}

// lifecycle maps each status to the statuses it may be changed to and whether a
// task in that status may be soft-deleted. Only done is restricted; archive is
// where the workflow usually ends but its status may still be rewritten.
// Statuses missing from the table allow nothing.
var lifecycle = map[models.TaskStatus]lifecycleRule{
	models.StatusPending: {next: models.TaskStatuses, deletable: true},
	models.StatusWorking: {next: models.TaskStatuses, deletable: true},
	models.StatusReview:  {next: models.TaskStatuses, deletable: true},
	models.StatusDone:    {next: []models.TaskStatus{models.StatusArchive}, deletable: false},
	models.StatusArchive: {next: models.TaskStatuses, deletable: true},
}

// CanTransition reports whether a task in status from may be written status to.
func CanTransition(from, to models.TaskStatus) bool {
	for _, allowed := range lifecycle[from].next {
		if allowed == to {
			return true
		}
	}
	return false
}

// CanDelete reports whether a task in status may be soft-deleted.
func CanDelete(status models.TaskStatus) bool {
	return lifecycle[status].deletable
}

func checkTransition(from, to models.TaskStatus) error {
	if !to.Valid() {
		return apperrors.NewValidationError(fmt.Sprintf("invalid status %q", to)).WithContext("status", to)
	}
	if CanTransition(from, to) {
		return nil
	}
	message := fmt.Sprintf("cannot change status from %s to %s", from, to)
	if from == models.StatusDone {
		message = "cannot change status of a done task except to archive"
	}
	return apperrors.NewInvalidTransitionError(message).
		WithContext("from", from).
		WithContext("to", to)
}

func checkDelete(status models.TaskStatus) error {
	if CanDelete(status) {
		return nil
	}
	return apperrors.NewInvalidStateError(fmt.Sprintf("cannot delete a %s task", status)).WithContext("status", status)
}
