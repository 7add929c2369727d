package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var (
	errEmailRequired = errors.New("email is required")
	errEmailFormat   = errors.New("invalid email format")
)

// EmailValidator runs extra checks on an address that already passed the format check.
type EmailValidator interface {
	Validate(ctx context.Context, email string) error
}

// validateEmailFormat is the input-level check every email field goes through.
func validateEmailFormat(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errEmailRequired
	}
	if !emailRegex.MatchString(email) {
		return errEmailFormat
	}
	return nil
}

type LocalValidator struct{}

func NewLocalValidator() *LocalValidator {
	return &LocalValidator{}
}

func (v *LocalValidator) Validate(ctx context.Context, email string) error {
	// format already checked by validateEmailFormat
	return nil
}
