package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/thucvinguyen/coder-management/apperrors"
	"github.com/thucvinguyen/coder-management/logging"
	"github.com/thucvinguyen/coder-management/models"
	"github.com/thucvinguyen/coder-management/query"
	"github.com/thucvinguyen/coder-management/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// maxGuardedAttempts bounds how often a guarded write is re-validated after
// losing a race with a concurrent write to the same task.
const maxGuardedAttempts = 3

type TaskService struct {
	tasks    TaskStore
	users    UserStore
	notifier Notifier
}

func NewTaskService(tasks TaskStore, users UserStore, notifier Notifier) *TaskService {
	return &TaskService{tasks: tasks, users: users, notifier: notifier}
}

func (s *TaskService) CreateTask(ctx context.Context, name, description string) (*models.Task, error) {
	name, err := requireText(name, "task name cannot be empty")
	if err != nil {
		return nil, err
	}
	description, err = requireText(description, "task description cannot be empty")
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		Name:        name,
		Description: description,
		Status:      models.StatusPending,
	}
	if err := s.tasks.Insert(ctx, task); err != nil {
		return nil, apperrors.NewDatabaseError("create task", err)
	}

	logging.Logger.Infof("Event ID: TASK_CREATED, Description: Task %s created", task.ID.Hex())
	return task, nil
}

// GetTaskByID returns the task with its assignee populated.
func (s *TaskService) GetTaskByID(ctx context.Context, id string) (*models.Task, error) {
	taskID, err := parseObjectID(id, "task")
	if err != nil {
		return nil, err
	}
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	tasks := []models.Task{*task}
	if err := s.populateAssignees(ctx, tasks); err != nil {
		return nil, err
	}
	return &tasks[0], nil
}

// ListTasks filters and sorts tasks by the allowed query keys. Soft-deleted
// tasks are included.
func (s *TaskService) ListTasks(ctx context.Context, values url.Values) ([]models.Task, error) {
	spec, err := query.ResolveTasks(values)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.Find(ctx, spec)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list tasks", err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	if err := s.populateAssignees(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateTask applies patch atomically. Status writes are checked against the
// lifecycle table; other fields are never status-gated.
func (s *TaskService) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	taskID, err := parseObjectID(id, "task")
	if err != nil {
		return nil, err
	}
	change, err := changeFromPatch(patch)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxGuardedAttempts; attempt++ {
		current, err := s.findTask(ctx, taskID)
		if err != nil {
			return nil, err
		}

		var guard models.TaskGuard
		if change.Status != nil {
			if err := checkTransition(current.Status, *change.Status); err != nil {
				return nil, err
			}
			guard.Status = current.Status
		}

		updated, err := s.tasks.Update(ctx, taskID, guard, change)
		if errors.Is(err, repositories.ErrNotFound) {
			logging.Logger.Debugf("Event ID: TASK_UPDATE_RACE, Description: Task %s changed during update, re-validating", id)
			continue
		}
		if err != nil {
			return nil, apperrors.NewDatabaseError("update task", err)
		}
		return updated, nil
	}
	return nil, apperrors.NewInvalidStateError("task was modified concurrently")
}

// DeleteTask marks the task deleted. Done tasks cannot be deleted.
func (s *TaskService) DeleteTask(ctx context.Context, id string) (*models.Task, error) {
	taskID, err := parseObjectID(id, "task")
	if err != nil {
		return nil, err
	}
	current, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := checkDelete(current.Status); err != nil {
		return nil, err
	}

	deleted := true
	updated, err := s.tasks.Update(ctx, taskID, models.TaskGuard{StatusNot: models.StatusDone}, models.TaskChange{IsDeleted: &deleted})
	if errors.Is(err, repositories.ErrNotFound) {
		// The task was completed (or removed) after it was read.
		if _, err := s.findTask(ctx, taskID); err != nil {
			return nil, err
		}
		return nil, checkDelete(models.StatusDone)
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("delete task", err)
	}
	logging.Logger.Infof("Event ID: TASK_DELETED, Description: Task %s marked as deleted", id)
	return updated, nil
}

// AssignTask points the task at the named user, replacing any previous assignee.
// A displaced assignee is told the task was taken away.
func (s *TaskService) AssignTask(ctx context.Context, userName, taskID string) (*models.Task, error) {
	id, user, err := s.resolveAssignment(ctx, userName, taskID)
	if err != nil {
		return nil, err
	}
	previous, err := s.findTask(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.tasks.Update(ctx, id, models.TaskGuard{}, models.TaskChange{AssignedTo: &user.ID})
	if err != nil {
		return nil, s.taskUpdateError("assign task", taskID, err)
	}

	s.notify(ctx, user, updated, models.NotificationAssigned)
	s.notifyHolder(ctx, previous.AssignedTo, user.ID, updated)
	return updated, nil
}

// UnassignTask clears the task's assignee. The named user only has to exist;
// it need not be the current assignee. Both the named user and the user who
// held the task are notified.
func (s *TaskService) UnassignTask(ctx context.Context, userName, taskID string) (*models.Task, error) {
	id, user, err := s.resolveAssignment(ctx, userName, taskID)
	if err != nil {
		return nil, err
	}
	previous, err := s.findTask(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.tasks.Update(ctx, id, models.TaskGuard{}, models.TaskChange{ClearAssignee: true})
	if err != nil {
		return nil, s.taskUpdateError("unassign task", taskID, err)
	}

	s.notify(ctx, user, updated, models.NotificationUnassigned)
	s.notifyHolder(ctx, previous.AssignedTo, user.ID, updated)
	return updated, nil
}

func (s *TaskService) resolveAssignment(ctx context.Context, userName, taskID string) (primitive.ObjectID, *models.User, error) {
	id, err := parseObjectID(taskID, "task")
	if err != nil {
		return primitive.NilObjectID, nil, err
	}
	if _, err := requireText(userName, "invalid user name"); err != nil {
		return primitive.NilObjectID, nil, err
	}

	user, err := s.users.FindByName(ctx, userName)
	if errors.Is(err, repositories.ErrNotFound) {
		return primitive.NilObjectID, nil, apperrors.NewNotFoundError("user", userName)
	}
	if err != nil {
		return primitive.NilObjectID, nil, apperrors.NewDatabaseError("find user", err)
	}
	return id, user, nil
}

func (s *TaskService) findTask(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.NewNotFoundError("task", id.Hex())
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("find task", err)
	}
	return task, nil
}

func (s *TaskService) taskUpdateError(operation, taskID string, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.NewNotFoundError("task", taskID)
	}
	return apperrors.NewDatabaseError(operation, err)
}

// populateAssignees fills Assignee for every assigned task with a single user lookup.
func (s *TaskService) populateAssignees(ctx context.Context, tasks []models.Task) error {
	seen := make(map[primitive.ObjectID]bool)
	var ids []primitive.ObjectID
	for _, task := range tasks {
		if task.AssignedTo != nil && !seen[*task.AssignedTo] {
			seen[*task.AssignedTo] = true
			ids = append(ids, *task.AssignedTo)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return apperrors.NewDatabaseError("populate assignees", err)
	}
	byID := make(map[primitive.ObjectID]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	for i := range tasks {
		if tasks[i].AssignedTo != nil {
			tasks[i].Assignee = byID[*tasks[i].AssignedTo]
		}
	}
	return nil
}

func (s *TaskService) notify(ctx context.Context, user *models.User, task *models.Task, kind models.NotificationKind) {
	if s.notifier == nil {
		return
	}
	notification := models.Notification{
		UserID:   user.ID.Hex(),
		Username: user.Name,
		TaskID:   task.ID.Hex(),
		Kind:     kind,
		Message:  fmt.Sprintf("Task %q was %s", task.Name, kind),
	}
	if err := s.notifier.Notify(ctx, notification); err != nil {
		logging.Logger.Warnf("Event ID: NOTIFICATION_FAILED, Description: Failed to notify %s about task %s: %v", user.Name, task.ID.Hex(), err)
	}
}

// notifyHolder sends an unassigned notification to the user who held the task
// before the write, unless that is the user already notified.
func (s *TaskService) notifyHolder(ctx context.Context, holder *primitive.ObjectID, notified primitive.ObjectID, task *models.Task) {
	if s.notifier == nil || holder == nil || *holder == notified {
		return
	}
	user, err := s.users.FindByID(ctx, *holder)
	if err != nil {
		logging.Logger.Warnf("Event ID: NOTIFICATION_FAILED, Description: Previous assignee %s of task %s not found: %v", holder.Hex(), task.ID.Hex(), err)
		return
	}
	s.notify(ctx, user, task, models.NotificationUnassigned)
}

func changeFromPatch(patch models.TaskPatch) (models.TaskChange, error) {
	if patch.Empty() {
		return models.TaskChange{}, apperrors.NewValidationError("no fields to update")
	}
	change := models.TaskChange{Status: patch.Status}
	if patch.Name != nil {
		name, err := requireText(*patch.Name, "task name cannot be empty")
		if err != nil {
			return models.TaskChange{}, err
		}
		change.Name = &name
	}
	if patch.Description != nil {
		description, err := requireText(*patch.Description, "task description cannot be empty")
		if err != nil {
			return models.TaskChange{}, err
		}
		change.Description = &description
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return models.TaskChange{}, apperrors.NewValidationError(fmt.Sprintf("invalid status %q", *patch.Status))
	}
	return change, nil
}
