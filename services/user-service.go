package services

import (
	"context"
	"errors"
	"net/url"
	"regexp"

	"github.com/thucvinguyen/coder-management/apperrors"
	"github.com/thucvinguyen/coder-management/logging"
	"github.com/thucvinguyen/coder-management/models"
	"github.com/thucvinguyen/coder-management/query"
	"github.com/thucvinguyen/coder-management/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserNamePattern is the accepted shape of a user name.
var UserNamePattern = regexp.MustCompile(`^[A-Za-z\s]+$`)

type UserService struct {
	users UserStore
	tasks TaskStore
}

func NewUserService(users UserStore, tasks TaskStore) *UserService {
	return &UserService{users: users, tasks: tasks}
}

// CreateUser creates a user with a unique alphabetic name. An empty role defaults to Employee.
func (s *UserService) CreateUser(ctx context.Context, name string, role models.Role) (*models.User, error) {
	name, err := requireText(name, "user name cannot be empty")
	if err != nil {
		return nil, err
	}
	if !UserNamePattern.MatchString(name) {
		return nil, apperrors.NewValidationError("user name must be alphabetic").WithContext("name", name)
	}
	if role == "" {
		role = models.RoleEmployee
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("role must be Manager or Employee").WithContext("role", role)
	}

	// The unique index on name is authoritative; this lookup only gives the
	// common case a clear error before the insert.
	_, err = s.users.FindByName(ctx, name)
	if err == nil {
		return nil, duplicateUserError(name)
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.NewDatabaseError("find user", err)
	}

	user := &models.User{Name: name, Role: role}
	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, duplicateUserError(name)
		}
		return nil, apperrors.NewDatabaseError("create user", err)
	}
	user.TaskResponsible = []models.Task{}

	logging.Logger.Infof("Event ID: USER_CREATED, Description: User %s created with role %s", user.ID.Hex(), user.Role)
	return user, nil
}

// ListUsers filters users by exact name and role.
func (s *UserService) ListUsers(ctx context.Context, values url.Values) ([]models.User, error) {
	spec, err := query.ResolveUsers(values)
	if err != nil {
		return nil, err
	}
	return s.findWithTasks(ctx, spec)
}

// GetUserByName returns every user whose name contains fragment, ignoring case.
func (s *UserService) GetUserByName(ctx context.Context, fragment string) ([]models.User, error) {
	if _, err := requireText(fragment, "user name cannot be empty"); err != nil {
		return nil, err
	}
	users, err := s.findWithTasks(ctx, query.NameContains(fragment))
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, apperrors.NewNotFoundError("users", fragment)
	}
	return users, nil
}

// GetUserWithTasks returns the user together with the tasks assigned to it.
func (s *UserService) GetUserWithTasks(ctx context.Context, id string) (*models.User, error) {
	userID, err := parseObjectID(id, "user")
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.NewNotFoundError("user", id)
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("find user", err)
	}

	users := []models.User{*user}
	if err := s.populateTasks(ctx, users); err != nil {
		return nil, err
	}
	return &users[0], nil
}

func (s *UserService) findWithTasks(ctx context.Context, spec query.Spec) ([]models.User, error) {
	users, err := s.users.Find(ctx, spec)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list users", err)
	}
	if users == nil {
		users = []models.User{}
	}
	if err := s.populateTasks(ctx, users); err != nil {
		return nil, err
	}
	return users, nil
}

// populateTasks derives taskResponsible from tasks.assignedTo with one query.
func (s *UserService) populateTasks(ctx context.Context, users []models.User) error {
	if len(users) == 0 {
		return nil
	}
	ids := make([]primitive.ObjectID, 0, len(users))
	for _, user := range users {
		ids = append(ids, user.ID)
	}

	tasks, err := s.tasks.FindByAssignees(ctx, ids)
	if err != nil {
		return apperrors.NewDatabaseError("find assigned tasks", err)
	}
	byUser := make(map[primitive.ObjectID][]models.Task, len(users))
	for _, task := range tasks {
		if task.AssignedTo != nil {
			byUser[*task.AssignedTo] = append(byUser[*task.AssignedTo], task)
		}
	}
	for i := range users {
		users[i].TaskResponsible = byUser[users[i].ID]
		if users[i].TaskResponsible == nil {
			users[i].TaskResponsible = []models.Task{}
		}
	}
	return nil
}

func duplicateUserError(name string) error {
	return apperrors.NewValidationError("user with this name already exists").WithContext("name", name)
}
