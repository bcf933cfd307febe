package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/guidequeue/internal/domain/schedule"
	"github.com/rpggio/guidequeue/internal/domain/session"
	"github.com/rpggio/guidequeue/internal/repository"
)

var (
	// ErrUnauthorized indicates a privileged method called without the
	// admin token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidParams indicates arguments that fail to decode or validate.
	ErrInvalidParams = errors.New("invalid params")
	// ErrUnknownMethod indicates a method name the handler does not serve.
	ErrUnknownMethod = errors.New("unknown method")
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) CodeValue() string {
	return e.Code
}

func (e *APIError) MessageValue() string {
	return e.Message
}

func (e *APIError) DetailsValue() any {
	return e.Details
}

func (e *APIError) RecoveryHintValue() string {
	return e.RecoveryHint
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	switch {
	case errors.Is(err, ErrUnauthorized):
		return &APIError{Code: "UNAUTHORIZED", Message: "admin token required", RecoveryHint: "Send Authorization: Bearer <admin token>"}
	case errors.Is(err, ErrInvalidParams):
		return &APIError{Code: "INVALID_PARAMS", Message: err.Error(), RecoveryHint: "Check argument names and types"}
	case errors.Is(err, ErrUnknownMethod):
		return &APIError{Code: "METHOD_NOT_FOUND", Message: err.Error()}
	case errors.Is(err, session.ErrInvalidSession):
		return &APIError{Code: "INVALID_SESSION", Message: err.Error(), RecoveryHint: "Use PAGI, SIANG or SORE"}
	case errors.Is(err, schedule.ErrPersistence), errors.Is(err, repository.ErrUnavailable):
		return &APIError{Code: "STORE_UNAVAILABLE", Message: "state could not be saved", RecoveryHint: "Retry; nothing was changed"}
	default:
		return nil
	}
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
