package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/protomem/pmaster/internal/model"
	"github.com/protomem/pmaster/internal/validator"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindTransport
	KindInvalidCredentials
	KindUnauthorized
	KindStatus
	KindSemantic
	KindDecode
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindTransport:
		return "transport"
	case KindInvalidCredentials:
		return "invalid credentials"
	case KindUnauthorized:
		return "authorization failure"
	case KindStatus:
		return "http status"
	case KindSemantic:
		return "semantic"
	case KindDecode:
		return "decode"
	case KindNotFound:
		return "not found"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is the single error type returned by Client operations.
type Error struct {
	Op     string
	Kind   Kind
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	msg := "api: " + e.Op + ": " + e.Kind.String()
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	switch target {
	case model.ErrValidation:
		return e.Kind == KindValidation
	case model.ErrInvalidCredentials:
		return e.Kind == KindInvalidCredentials
	case model.ErrUnauthorized:
		return e.Kind == KindUnauthorized
	case model.ErrBadResponse:
		return e.Kind == KindDecode
	}
	return false
}

func KindOf(err error) (Kind, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind, true
	}
	return 0, false
}

func invalid(op string, v *validator.Validator) error {
	return &Error{Op: op, Kind: KindValidation, Err: v}
}

func invalidMessage(op, message string) error {
	var v validator.Validator
	v.AddError(message)
	return invalid(op, &v)
}

func statusError(op string, login bool, status int, body []byte) error {
	kind := KindStatus
	switch {
	case login && (status == http.StatusBadRequest || status == http.StatusUnauthorized):
		kind = KindInvalidCredentials
	case status == http.StatusUnauthorized:
		kind = KindUnauthorized
	}
	return &Error{Op: op, Kind: kind, Status: status, Body: string(body)}
}

// Message renders err as the short text shown next to the control that
// triggered the call.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return err.Error()
	}

	switch apiErr.Kind {
	case KindValidation:
		var v *validator.Validator
		if errors.As(apiErr.Err, &v) {
			return v.Error()
		}
		return "Please check the form fields."
	case KindTransport:
		if errors.Is(apiErr.Err, context.Canceled) {
			return "Request cancelled."
		}
		return "Connection error. Check your internet connection."
	case KindInvalidCredentials:
		return "Invalid credentials."
	case KindUnauthorized:
		return "Authorization failure. Please sign in again."
	case KindStatus:
		if apiErr.Body != "" {
			return fmt.Sprintf("HTTP error %d: %s", apiErr.Status, apiErr.Body)
		}
		return fmt.Sprintf("HTTP error %d.", apiErr.Status)
	case KindSemantic:
		if errors.Is(apiErr.Err, model.ErrMissingProjectID) {
			return "The server did not create the project. Verify the client and team leader IDs."
		}
		return "The server rejected the request."
	case KindDecode:
		return "Bad data received from the server."
	case KindNotFound:
		if errors.Is(apiErr.Err, model.ErrTaskNotFound) {
			return "Task not found."
		}
		return "Not found."
	default:
		return apiErr.Error()
	}
}
