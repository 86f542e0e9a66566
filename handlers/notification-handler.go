package handlers

import (
	"context"
	"net/http"

	"github.com/thucvinguyen/coder-management/models"

	"github.com/gorilla/mux"
)

type NotificationService interface {
	ListForUser(ctx context.Context, username string) ([]models.Notification, error)
}

type NotificationHandler struct {
	service NotificationService
}

func NewNotificationHandler(service NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

func (h *NotificationHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["userName"]
	if err := validateUserName(username); err != nil {
		writeError(w, r, err)
		return
	}

	notifications, err := h.service.ListForUser(r.Context(), username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, notifications, "Get Notifications Successfully")
}
