package services

import (
	"strings"

	"github.com/thucvinguyen/coder-management/apperrors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// parseObjectID accepts only the canonical lower-case 24 character hex form.
func parseObjectID(raw, resource string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil || id.Hex() != raw {
		return primitive.NilObjectID, apperrors.NewValidationError("invalid " + resource + " ID").WithContext("id", raw)
	}
	return id, nil
}

func requireText(value, message string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", apperrors.NewValidationError(message)
	}
	return trimmed, nil
}
