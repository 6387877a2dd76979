package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	ErrFailedToSendEmail = errors.New("email: failed to send")
	ErrInvalidConfig     = errors.New("email: invalid config")
	ErrInvalidParams     = errors.New("email: invalid params")
)

var paramsValidator = validator.New(validator.WithRequiredStructEnabled())

// Sender delivers a rendered email.
type Sender interface {
	SendEmail(ctx context.Context, params SendEmailParams) error
}

// SendEmailParams represents the parameters for sending an email.
type SendEmailParams struct {
	SendTo   string `json:"send_to" validate:"required,email"`
	Subject  string `json:"subject" validate:"required"`
	BodyHTML string `json:"body_html" validate:"required"`
	Tag      string `json:"tag,omitempty"`
}

// Validate checks recipient, subject and body before any provider call.
func (p SendEmailParams) Validate() error {
	if err := paramsValidator.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}

func validAddress(addr string) bool {
	return paramsValidator.Var(addr, "required,email") == nil
}
