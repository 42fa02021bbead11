package service

import (
	"github.com/google/uuid"

	apperrors "github.com/spec-kit/ticket-tracker/pkg/util/errorutil"
)

// parseID validates raw as a UUID and returns its canonical form.
func parseID(field, raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", apperrors.NewInvalidArgument("invalid "+field, map[string]any{field: raw}, err)
	}
	return id.String(), nil
}

func newID() string {
	return uuid.NewString()
}
