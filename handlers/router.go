package handlers

import (
	"net/http"
	"time"

	"github.com/thucvinguyen/coder-management/apperrors"
	"github.com/thucvinguyen/coder-management/middleware"

	"github.com/gorilla/mux"
)

type RouterConfig struct {
	Tasks          TaskService
	Users          UserService
	Notifications  NotificationService
	CORSOrigin     string
	RequestTimeout time.Duration
}

// NewRouter registers every route and wraps the router in the request middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	taskHandler := NewTaskHandler(cfg.Tasks)
	userHandler := NewUserHandler(cfg.Users)
	notificationHandler := NewNotificationHandler(cfg.Notifications)

	r := mux.NewRouter()
	r.HandleFunc("/health", health).Methods(http.MethodGet)

	r.HandleFunc("/api/task/assign/{userName}/{taskId}", taskHandler.AssignTask).Methods(http.MethodPut)
	r.HandleFunc("/api/task/unassign/{userName}/{taskId}", taskHandler.UnassignTask).Methods(http.MethodPut)
	r.HandleFunc("/api/task", taskHandler.CreateTask).Methods(http.MethodPost)
	r.HandleFunc("/api/task", taskHandler.ListTasks).Methods(http.MethodGet)
	r.HandleFunc("/api/task/{id}", taskHandler.GetTask).Methods(http.MethodGet)
	r.HandleFunc("/api/task/{id}", taskHandler.UpdateTask).Methods(http.MethodPut)
	r.HandleFunc("/api/task/{id}", taskHandler.DeleteTask).Methods(http.MethodDelete)

	r.HandleFunc("/api/user", userHandler.CreateUser).Methods(http.MethodPost)
	r.HandleFunc("/api/user", userHandler.ListUsers).Methods(http.MethodGet)
	r.HandleFunc("/api/user/assign/{userName}/{taskId}", taskHandler.AssignTask).Methods(http.MethodPut)
	r.HandleFunc("/api/user/{id}/tasks", userHandler.GetUserTasks).Methods(http.MethodGet)
	r.HandleFunc("/api/user/{name}", userHandler.GetUserByName).Methods(http.MethodGet)

	r.HandleFunc("/api/notifications/{userName}", notificationHandler.ListForUser).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, apperrors.NewNotFoundError("route", req.URL.Path))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, Response{Message: "method not allowed"})
	})

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	origin := cfg.CORSOrigin
	if origin == "" {
		origin = "*"
	}

	var handler http.Handler = r
	handler = middleware.Timeout(timeout)(handler)
	handler = middleware.Logging(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.CORS(origin)(handler)
	return handler
}

func health(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]string{"status": "ok"}, "Service is healthy")
}
