package errors

import (
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ValidationError          ErrorType = "VALIDATION_ERROR"
	NotFoundError            ErrorType = "NOT_FOUND"
	AuthError                ErrorType = "AUTHENTICATION_ERROR"
	ForbiddenError           ErrorType = "FORBIDDEN"
	ConflictError            ErrorType = "CONFLICT"
	DatabaseError            ErrorType = "DATABASE_ERROR"
	ServerError              ErrorType = "SERVER_ERROR"
	RateLimitError           ErrorType = "RATE_LIMIT_EXCEEDED"
	LinkExpiredError         ErrorType = "LINK_EXPIRED"
	InvalidTransitionError   ErrorType = "INVALID_MODERATION_TRANSITION"
	WidgetSettingsError      ErrorType = "INVALID_WIDGET_SETTINGS"
)

// AppError is the structured application error converted to a JSON response
// at the route boundary by middleware.ErrorHandler.
type AppError struct {
	Type       ErrorType `json:"type"`
	Code       string    `json:"code,omitempty"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Raw        error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error { return e.Raw }

// GetHTTPStatus returns the HTTP status for the error, defaulting to 500.
func (e *AppError) GetHTTPStatus() int {
	if e.HTTPStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.HTTPStatus
}

// New creates an AppError with the status implied by its type.
func New(errType ErrorType, message string, detail string) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     detail,
		HTTPStatus: httpStatusFor(errType),
	}
}

// Wrap attaches AppError context to a raw error.
func Wrap(err error, errType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     err.Error(),
		HTTPStatus: httpStatusFor(errType),
		Raw:        err,
	}
}

func NotFound(entity string, id any) *AppError {
	return &AppError{
		Type:       NotFoundError,
		Message:    fmt.Sprintf("%s not found", entity),
		Detail:     fmt.Sprintf("ID: %v", id),
		HTTPStatus: http.StatusNotFound,
	}
}

func ValidationFailed(message string, detail string) *AppError {
	return &AppError{
		Type:       ValidationError,
		Message:    message,
		Detail:     detail,
		HTTPStatus: http.StatusBadRequest,
	}
}

func AuthenticationFailed(message string) *AppError {
	return &AppError{
		Type:       AuthError,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

func Forbidden(message string, detail string) *AppError {
	return &AppError{
		Type:       ForbiddenError,
		Message:    message,
		Detail:     detail,
		HTTPStatus: http.StatusForbidden,
	}
}

func NewConflictError(message string, detail string) *AppError {
	return &AppError{
		Type:       ConflictError,
		Message:    message,
		Detail:     detail,
		HTTPStatus: http.StatusConflict,
	}
}

// NewDatabaseError returns a sanitized 500; the raw error is retained for
// logging only and never reaches the caller.
func NewDatabaseError(err error) *AppError {
	return &AppError{
		Type:       DatabaseError,
		Message:    "Database operation failed",
		Detail:     "Please try again later",
		HTTPStatus: http.StatusInternalServerError,
		Raw:        err,
	}
}

func InternalServerError(message string) *AppError {
	return &AppError{
		Type:       ServerError,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

func RateLimitExceeded(message string, retryAfterSeconds int) *AppError {
	return &AppError{
		Type:       RateLimitError,
		Message:    message,
		Detail:     fmt.Sprintf("Retry after %d seconds", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// SpaceNotFound covers both missing spaces and spaces the caller may not see;
// the two cases are deliberately indistinguishable.
func SpaceNotFound(id string) *AppError {
	return &AppError{
		Type:       NotFoundError,
		Message:    "Space not found",
		Detail:     fmt.Sprintf("Space ID: %s", id),
		HTTPStatus: http.StatusNotFound,
	}
}

func WidgetNotFound(id string) *AppError {
	return &AppError{
		Type:       NotFoundError,
		Message:    "Widget not found",
		Detail:     fmt.Sprintf("Widget ID: %s", id),
		HTTPStatus: http.StatusNotFound,
	}
}

func TestimonialNotFound(id string) *AppError {
	return &AppError{
		Type:       NotFoundError,
		Message:    "Testimonial not found",
		Detail:     fmt.Sprintf("Testimonial ID: %s", id),
		HTTPStatus: http.StatusNotFound,
	}
}

// LinkExpired is the 410 returned when a request link exists but no longer
// accepts submissions.
func LinkExpired(slug string) *AppError {
	return &AppError{
		Type:       LinkExpiredError,
		Message:    "This testimonial link has expired or reached its usage limit",
		Detail:     fmt.Sprintf("Slug: %s", slug),
		HTTPStatus: http.StatusGone,
	}
}

func InvalidWidgetSettings(detail string) *AppError {
	return &AppError{
		Type:       WidgetSettingsError,
		Message:    "Invalid widget settings",
		Detail:     detail,
		HTTPStatus: http.StatusBadRequest,
	}
}

func InvalidModerationTransition(from, action string) *AppError {
	return &AppError{
		Type:       InvalidTransitionError,
		Message:    "Invalid moderation transition",
		Detail:     fmt.Sprintf("Cannot apply %q to a %s testimonial", action, from),
		HTTPStatus: http.StatusBadRequest,
	}
}

func httpStatusFor(errType ErrorType) int {
	switch errType {
	case ValidationError, InvalidTransitionError, WidgetSettingsError:
		return http.StatusBadRequest
	case NotFoundError:
		return http.StatusNotFound
	case AuthError:
		return http.StatusUnauthorized
	case ForbiddenError:
		return http.StatusForbidden
	case ConflictError:
		return http.StatusConflict
	case RateLimitError:
		return http.StatusTooManyRequests
	case LinkExpiredError:
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}
