package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/thucvinguyen/coder-management/apperrors"
	"github.com/thucvinguyen/coder-management/logging"
	"github.com/thucvinguyen/coder-management/middleware"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Errors  interface{} `json:"errors"`
	Message string      `json:"message"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Kind    string                 `json:"kind"`
	Code    string                 `json:"code,omitempty"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Logger.Errorf("Event ID: RESPONSE_ENCODE_FAILED, Description: Failed to encode response: %v", err)
	}
}

func writeSuccess(w http.ResponseWriter, status int, data interface{}, message string) {
	writeJSON(w, status, Response{Success: true, Data: data, Message: message})
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation, apperrors.KindInvalidTransition, apperrors.KindInvalidState:
		return http.StatusBadRequest
	case apperrors.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the error's kind. Internal failures are logged and
// reported without their cause.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.NewDatabaseError("unexpected failure", err)
	}
	status := statusFor(appErr.Kind)

	body := ErrorBody{Kind: appErr.Kind.String(), Code: appErr.Code, Message: appErr.Message}
	if status == http.StatusInternalServerError {
		logging.Logger.Errorf("Event ID: REQUEST_FAILED, Description: %s %s failed (request %s): %v",
			r.Method, r.URL.Path, middleware.RequestIDFrom(r.Context()), err)
		body = ErrorBody{Kind: appErr.Kind.String(), Code: appErr.Code, Message: "internal server error"}
	} else {
		body.Context = appErr.Context
	}

	writeJSON(w, status, Response{Success: false, Errors: body, Message: body.Message})
}

const maxBodyBytes = 1 << 20

// decodeJSON validates the body against schema and then decodes it into target.
func decodeJSON(w http.ResponseWriter, r *http.Request, schema *jsonschema.Schema, target interface{}) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("invalid request payload: %v", err))
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return apperrors.NewValidationError("request body is required")
	}

	var document interface{}
	if err := json.Unmarshal(body, &document); err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("invalid request payload: %v", err))
	}
	if err := schema.Validate(document); err != nil {
		return apperrors.NewValidationError("invalid request payload: " + schemaMessage(err))
	}
	if err := json.Unmarshal(body, target); err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("invalid request payload: %v", err))
	}
	return nil
}
