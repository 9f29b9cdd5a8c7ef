package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jask/projdesk/internal/broadcast"
)

var (
	// ErrNotFound reports a missing row.
	ErrNotFound = errors.New("not found")
	// ErrInvalid reports a write rejected by a business rule.
	ErrInvalid = errors.New("invalid")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}

func publish(p broadcast.Publisher, kind, id, op string) {
	if p == nil {
		return
	}
	p.Publish(broadcast.Event{Kind: kind, ID: id, Op: op})
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
