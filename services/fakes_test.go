package services

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/thucvinguyen/coder-management/models"
	"github.com/thucvinguyen/coder-management/query"
	"github.com/thucvinguyen/coder-management/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memoryTaskStore is an in-memory TaskStore with the same guard semantics as the Mongo repository.
type memoryTaskStore struct {
	mu      sync.Mutex
	tasks   map[primitive.ObjectID]models.Task
	order   []primitive.ObjectID
	clock   time.Time
	failErr error
	// beforeUpdate runs once before the next Update is applied.
	beforeUpdate func()
}

func newMemoryTaskStore() *memoryTaskStore {
	return &memoryTaskStore{
		tasks: make(map[primitive.ObjectID]models.Task),
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memoryTaskStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memoryTaskStore) Insert(ctx context.Context, task *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	task.ID = primitive.NewObjectID()
	task.CreatedAt = m.tick()
	task.UpdatedAt = task.CreatedAt
	m.tasks[task.ID] = *task
	m.order = append(m.order, task.ID)
	return nil
}

func (m *memoryTaskStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	task, ok := m.tasks[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &task, nil
}

func (m *memoryTaskStore) Find(ctx context.Context, spec query.Spec) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	tasks := []models.Task{}
	for _, id := range m.order {
		task := m.tasks[id]
		if matches(spec, map[string]string{"name": task.Name, "status": string(task.Status)}) {
			tasks = append(tasks, task)
		}
	}
	for i := len(spec.Sort) - 1; i >= 0; i-- {
		s := spec.Sort[i]
		sort.SliceStable(tasks, func(a, b int) bool {
			ta, tb := tasks[a].CreatedAt, tasks[b].CreatedAt
			if s.Field == "updatedAt" {
				ta, tb = tasks[a].UpdatedAt, tasks[b].UpdatedAt
			}
			if s.Direction == query.Descending {
				return ta.After(tb)
			}
			return ta.Before(tb)
		})
	}
	return tasks, nil
}

func (m *memoryTaskStore) FindByAssignees(ctx context.Context, userIDs []primitive.ObjectID) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tasks := []models.Task{}
	for _, id := range m.order {
		task := m.tasks[id]
		for _, userID := range userIDs {
			if task.AssignedTo != nil && *task.AssignedTo == userID {
				tasks = append(tasks, task)
			}
		}
	}
	return tasks, nil
}

func (m *memoryTaskStore) Update(ctx context.Context, id primitive.ObjectID, guard models.TaskGuard, change models.TaskChange) (*models.Task, error) {
	if hook := m.beforeUpdate; hook != nil {
		m.beforeUpdate = nil
		hook()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	task, ok := m.tasks[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if guard.Status != "" && task.Status != guard.Status {
		return nil, repositories.ErrNotFound
	}
	if guard.StatusNot != "" && task.Status == guard.StatusNot {
		return nil, repositories.ErrNotFound
	}

	if change.Name != nil {
		task.Name = *change.Name
	}
	if change.Description != nil {
		task.Description = *change.Description
	}
	if change.Status != nil {
		task.Status = *change.Status
	}
	if change.IsDeleted != nil {
		task.IsDeleted = *change.IsDeleted
	}
	if change.AssignedTo != nil {
		assignee := *change.AssignedTo
		task.AssignedTo = &assignee
	}
	if change.ClearAssignee {
		task.AssignedTo = nil
	}
	task.UpdatedAt = m.tick()
	m.tasks[id] = task
	return &task, nil
}

// set overwrites a stored task directly.
func (m *memoryTaskStore) set(task models.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[task.ID] = task
}

type memoryUserStore struct {
	mu    sync.Mutex
	users []models.User
	// skipNameCheck makes FindByName miss, simulating a concurrent create.
	skipNameCheck bool
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{}
}

func (m *memoryUserStore) Insert(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Name == user.Name {
			return repositories.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	m.users = append(m.users, *user)
	return nil
}

func (m *memoryUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.ID == id {
			return &user, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memoryUserStore) FindByName(ctx context.Context, name string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.skipNameCheck {
		return nil, repositories.ErrNotFound
	}
	for _, user := range m.users {
		if user.Name == name {
			return &user, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memoryUserStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := []models.User{}
	for _, user := range m.users {
		for _, id := range ids {
			if user.ID == id {
				users = append(users, user)
			}
		}
	}
	return users, nil
}

func (m *memoryUserStore) Find(ctx context.Context, spec query.Spec) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := []models.User{}
	for _, user := range m.users {
		if matches(spec, map[string]string{"name": user.Name, "role": string(user.Role)}) {
			users = append(users, user)
		}
	}
	return users, nil
}

func matches(spec query.Spec, fields map[string]string) bool {
	for _, f := range spec.Filters {
		value := fields[f.Field]
		switch f.Operator {
		case query.ContainsFold:
			if !regexp.MustCompile("(?i)" + f.Value).MatchString(value) {
				return false
			}
		default:
			if value != f.Value {
				return false
			}
		}
	}
	return true
}

type recordingNotifier struct {
	mu            sync.Mutex
	notifications []models.Notification
	err           error
}

func (r *recordingNotifier) Notify(ctx context.Context, notification models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.notifications = append(r.notifications, notification)
	return nil
}

var errStoreDown = errors.New("store unavailable")
