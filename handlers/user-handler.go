package handlers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/thucvinguyen/coder-management/apperrors"
	"github.com/thucvinguyen/coder-management/models"
	"github.com/thucvinguyen/coder-management/services"

	"github.com/gorilla/mux"
)

type UserService interface {
	CreateUser(ctx context.Context, name string, role models.Role) (*models.User, error)
	ListUsers(ctx context.Context, values url.Values) ([]models.User, error)
	GetUserByName(ctx context.Context, fragment string) ([]models.User, error)
	GetUserWithTasks(ctx context.Context, id string) (*models.User, error)
}

type UserHandler struct {
	service UserService
}

func NewUserHandler(service UserService) *UserHandler {
	return &UserHandler{service: service}
}

func validateUserName(name string) error {
	if !services.UserNamePattern.MatchString(name) {
		return apperrors.NewValidationError("invalid user name").WithContext("name", name)
	}
	return nil
}

type createUserRequest struct {
	Name string      `json:"name"`
	Role models.Role `json:"role"`
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(w, r, createUserSchema, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.service.CreateUser(r.Context(), req.Name, req.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, user, "Create User Successfully")
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context(), r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, users, "Get Users Successfully")
}

func (h *UserHandler) GetUserByName(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if err := validateUserName(name); err != nil {
		writeError(w, r, err)
		return
	}

	users, err := h.service.GetUserByName(r.Context(), name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, users, "Get User Successfully")
}

func (h *UserHandler) GetUserTasks(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUserWithTasks(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, user, "Get User Tasks Successfully")
}
