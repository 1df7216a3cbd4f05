package errorutil

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestToDomainError(t *testing.T) {
	conflict := NewConflict("taken", nil)
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"domain error kept", conflict, CodeConflict, http.StatusConflict},
		{"wrapped domain error", fmt.Errorf("op: %w", conflict), CodeConflict, http.StatusConflict},
		{"no rows", sql.ErrNoRows, CodeNotFound, http.StatusNotFound},
		{"unknown", errors.New("disk full"), CodeInternal, http.StatusInternalServerError},
		{"invalid transition", NewInvalidTransition("Draft", "Done"), CodeInvalidTransition, http.StatusConflict},
		{"insufficient stock", NewInsufficientStock("s-1", 3, 1), CodeInsufficientStock, http.StatusConflict},
		{"validation", NewValidationError("bad", nil), CodeValidationFailed, http.StatusBadRequest},
		{"forbidden", NewForbidden("no"), CodeForbidden, http.StatusForbidden},
		{"unauthorized", NewUnauthorized("who"), CodeUnauthorized, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDomainError(tt.err)
			if got.Code != tt.code || got.HTTPStatus != tt.status {
				t.Errorf("ToDomainError() = %s/%d, want %s/%d", got.Code, got.HTTPStatus, tt.code, tt.status)
			}
		})
	}
}

func TestMapErrorKeepsNil(t *testing.T) {
	if err := MapError(nil); err != nil {
		t.Errorf("MapError(nil) = %#v, want nil", err)
	}
	if ToDomainError(nil) != nil {
		t.Error("ToDomainError(nil) != nil")
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewNotFound("ticket", nil))
	if !HasCode(err, CodeNotFound) {
		t.Error("HasCode(NOT_FOUND) = false")
	}
	if HasCode(err, CodeConflict) {
		t.Error("HasCode(CONFLICT) = true")
	}
	if HasCode(errors.New("plain"), CodeInternal) {
		t.Error("HasCode on plain error = true")
	}
}
