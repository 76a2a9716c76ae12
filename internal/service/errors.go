package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserHasTasks       = errors.New("user cannot be deleted as tasks are assigned to them")
	// ErrInvalidUser is returned by the pending/completed listings when the
	// filter user id does not resolve.
	ErrInvalidUser = errors.New("invalid user id")
)

// ValidationError collects every failed rule keyed by the request field
// it belongs to.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError(field, message string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, message)
	return v
}

func (v *ValidationError) Add(field, message string) {
	if v.Fields == nil {
		v.Fields = make(map[string][]string)
	}
	v.Fields[field] = append(v.Fields[field], message)
}

func (v *ValidationError) Has(field string) bool {
	return len(v.Fields[field]) > 0
}

func (v *ValidationError) Empty() bool {
	return v == nil || len(v.Fields) == 0
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(v.Fields[k], ", "))
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

// orNil keeps a typed nil *ValidationError from turning into a non-nil error.
func (v *ValidationError) orNil() error {
	if v.Empty() {
		return nil
	}
	return v
}
