package handlers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/thucvinguyen/coder-management/models"

	"github.com/gorilla/mux"
)

type TaskService interface {
	CreateTask(ctx context.Context, name, description string) (*models.Task, error)
	GetTaskByID(ctx context.Context, id string) (*models.Task, error)
	ListTasks(ctx context.Context, values url.Values) ([]models.Task, error)
	UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) (*models.Task, error)
	AssignTask(ctx context.Context, userName, taskID string) (*models.Task, error)
	UnassignTask(ctx context.Context, userName, taskID string) (*models.Task, error)
}

type TaskHandler struct {
	service TaskService
}

func NewTaskHandler(service TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

type createTaskRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeJSON(w, r, createTaskSchema, &req); err != nil {
		writeError(w, r, err)
		return
	}

	task, err := h.service.CreateTask(r.Context(), req.Name, req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, task, "Create Task Successfully")
}

func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.ListTasks(r.Context(), r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, tasks, "Get Tasks Successfully")
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.service.GetTaskByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, task, "Get Task Successfully")
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var patch models.TaskPatch
	if err := decodeJSON(w, r, updateTaskSchema, &patch); err != nil {
		writeError(w, r, err)
		return
	}

	task, err := h.service.UpdateTask(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, task, "Update Task Successfully")
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.service.DeleteTask(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, task, "Delete Task Successfully")
}

func (h *TaskHandler) AssignTask(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := validateUserName(vars["userName"]); err != nil {
		writeError(w, r, err)
		return
	}

	task, err := h.service.AssignTask(r.Context(), vars["userName"], vars["taskId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, task, "Assign Task Successfully")
}

func (h *TaskHandler) UnassignTask(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := validateUserName(vars["userName"]); err != nil {
		writeError(w, r, err)
		return
	}

	task, err := h.service.UnassignTask(r.Context(), vars["userName"], vars["taskId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, task, "Unassign Task Successfully")
}
