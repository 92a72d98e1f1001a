package idgen

import (
	"strings"

	"github.com/google/uuid"
)

// NewFunc generates identifiers; tests replace it for stable ids.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new globally unique identifier.
func New() string { return NewFunc() }

// Prefixed returns a new identifier scoped by kind, e.g. "scheduler-<uuid>".
func Prefixed(kind string) string {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return New()
	}
	return kind + "-" + New()
}
