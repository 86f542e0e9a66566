package handlers

import (
	"context"
	"net/url"

	"github.com/thucvinguyen/coder-management/models"
)

type fakeTaskService struct {
	createFn   func(name, description string) (*models.Task, error)
	getFn      func(id string) (*models.Task, error)
	listFn     func(values url.Values) ([]models.Task, error)
	updateFn   func(id string, patch models.TaskPatch) (*models.Task, error)
	deleteFn   func(id string) (*models.Task, error)
	assignFn   func(userName, taskID string) (*models.Task, error)
	unassignFn func(userName, taskID string) (*models.Task, error)
	calls      int
}

func (f *fakeTaskService) CreateTask(ctx context.Context, name, description string) (*models.Task, error) {
	f.calls++
	return f.createFn(name, description)
}

func (f *fakeTaskService) GetTaskByID(ctx context.Context, id string) (*models.Task, error) {
	f.calls++
	return f.getFn(id)
}

func (f *fakeTaskService) ListTasks(ctx context.Context, values url.Values) ([]models.Task, error) {
	f.calls++
	return f.listFn(values)
}

func (f *fakeTaskService) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	f.calls++
	return f.updateFn(id, patch)
}

func (f *fakeTaskService) DeleteTask(ctx context.Context, id string) (*models.Task, error) {
	f.calls++
	return f.deleteFn(id)
}

func (f *fakeTaskService) AssignTask(ctx context.Context, userName, taskID string) (*models.Task, error) {
	f.calls++
	return f.assignFn(userName, taskID)
}

func (f *fakeTaskService) UnassignTask(ctx context.Context, userName, taskID string) (*models.Task, error) {
	f.calls++
	return f.unassignFn(userName, taskID)
}

type fakeUserService struct {
	createFn    func(name string, role models.Role) (*models.User, error)
	listFn      func(values url.Values) ([]models.User, error)
	byNameFn    func(fragment string) ([]models.User, error)
	withTasksFn func(id string) (*models.User, error)
	calls       int
}

func (f *fakeUserService) CreateUser(ctx context.Context, name string, role models.Role) (*models.User, error) {
	f.calls++
	return f.createFn(name, role)
}

func (f *fakeUserService) ListUsers(ctx context.Context, values url.Values) ([]models.User, error) {
	f.calls++
	return f.listFn(values)
}

func (f *fakeUserService) GetUserByName(ctx context.Context, fragment string) ([]models.User, error) {
	f.calls++
	return f.byNameFn(fragment)
}

func (f *fakeUserService) GetUserWithTasks(ctx context.Context, id string) (*models.User, error) {
	f.calls++
	return f.withTasksFn(id)
}

type fakeNotificationService struct {
	byUser map[string][]models.Notification
}

func (f *fakeNotificationService) ListForUser(ctx context.Context, username string) ([]models.Notification, error) {
	notifications := f.byUser[username]
	if notifications == nil {
		notifications = []models.Notification{}
	}
	return notifications, nil
}
