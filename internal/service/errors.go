package service

import (
	"errors"
	"strings"

	"github.com/khabar-news/khabar/internal/validation"
)

var (
	// ErrChannelInactive means the form's settings document has isActive false
	ErrChannelInactive = errors.New("delivery channel is inactive")
	// ErrMisconfigured means the settings lack a recipient, provider or credentials
	ErrMisconfigured = errors.New("delivery channel is misconfigured")
	// ErrDeliveryFailed wraps a provider send error
	ErrDeliveryFailed = errors.New("email delivery failed")
)

// InvalidRequestError carries the field errors of a rejected form
type InvalidRequestError struct {
	Errors []validation.ValidationError
}

func (e *InvalidRequestError) Error() string {
	return "invalid request: " + strings.Join(validation.Fields(e.Errors), ", ")
}
