package auth

import (
	"sort"
	"strings"

	"github.com/jrsteele09/dogtv-dashboard/internal/errors"
)

// Field names used by the login form
const (
	FieldEmail    = "email"
	FieldPassword = "senha"
)

// ValidationError carries one message per offending form field.
type ValidationError struct {
	Fields map[string]string
}

func (v *ValidationError) Error() string {
	names := make([]string, 0, len(v.Fields))
	for name := range v.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+v.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v *ValidationError) Unwrap() error {
	return errors.ErrValidation
}

// Message returns the message for field, empty when the field is valid.
func (v *ValidationError) Message(field string) string {
	if v == nil {
		return ""
	}
	return v.Fields[field]
}
