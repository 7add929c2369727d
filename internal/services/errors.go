package services

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrInvalidTransition = errors.New("checkout step not allowed from the current stage")
	ErrNoCheckout        = errors.New("no checkout in progress")
	ErrNoPendingOrder    = errors.New("no order awaiting manual payment")
)

// ValidationError carries one message per offending form field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

const msgRequired = "this field is required"

func requireField(v *ValidationError, field, value string) {
	if strings.TrimSpace(value) == "" {
		v.add(field, msgRequired)
	}
}
