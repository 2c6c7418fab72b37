// Package gate validates operator-entered access codes before a booking
// mutation is allowed. Plain shared-secret equality, no hashing or lockout;
// the operator name it lets through is attributed, not authenticated.
package gate

import (
	"errors"
	"fmt"
	"os"
)

type Action string

const (
	ActionBook   Action = "book"
	ActionCancel Action = "cancel"
	ActionEdit   Action = "edit"
)

// ErrNotConfigured is a configuration failure, distinct from an invalid code.
// Callers must surface it differently.
var ErrNotConfigured = errors.New("access code not configured")

type Gate struct {
	bookCode   string
	cancelCode string
}

// New reads the two secrets from the environment: RESERVATION_CODE gates
// booking, CANCELLATION_CODE is shared by cancel and edit.
func New() *Gate {
	return NewGate(os.Getenv("RESERVATION_CODE"), os.Getenv("CANCELLATION_CODE"))
}

func NewGate(bookCode, cancelCode string) *Gate {
	return &Gate{bookCode: bookCode, cancelCode: cancelCode}
}

// Validate reports whether code matches the secret for the given action.
// Fails closed: an unset secret yields ErrNotConfigured, never a match.
func (g *Gate) Validate(code string, action Action) (bool, error) {
	var secret string
	switch action {
	case ActionBook:
		secret = g.bookCode
	case ActionCancel, ActionEdit:
		secret = g.cancelCode
	default:
		return false, fmt.Errorf("unknown action %q", action)
	}
	if secret == "" {
		return false, ErrNotConfigured
	}
	return code == secret, nil
}
