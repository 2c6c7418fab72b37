// Package gateway is the narrow seam between the schedule engine and the
// document store. The engine only ever reads full per-room snapshots and
// writes full per-day slot sequences through it.
package gateway

import (
	"context"
	"errors"

	"roomsched/models"
)

// Gateway is implemented by the Mongo-backed store and by test doubles.
type Gateway interface {
	// Subscribe delivers a full snapshot of a room's days whenever the
	// store's data for that room changes, including this process's own
	// writes echoing back. The initial snapshot is delivered immediately,
	// even when the room has no documents yet. Cancelling ctx tears the
	// subscription down; the channel is then closed with no further sends.
	Subscribe(ctx context.Context, roomID string) (<-chan []models.DaySchedule, error)

	// ReplaceDaySlots overwrites one day's slot sequence in place. Other
	// fields of the day document are left untouched.
	ReplaceDaySlots(ctx context.Context, roomID, dayID string, slots []models.TimeSlot) error

	// InitializeIfEmpty seeds a room's day documents from the template when
	// none exist yet. Idempotent: existing documents are never overwritten.
	InitializeIfEmpty(ctx context.Context, roomID string, days []models.DaySchedule) error

	// Regenerate replaces a room's day documents wholesale from a fresh
	// template. Bookings on overlapping time keys are discarded.
	Regenerate(ctx context.Context, roomID string, days []models.DaySchedule) error
}

// Store failure taxonomy. Each maps to a distinct user-displayable string.
// All are terminal for the current subscription attempt; no automatic retry.
var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrUnavailable      = errors.New("service unavailable")
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrStore            = errors.New("store failure")
)

// UserMessage translates a gateway error into the string shown in the
// page-level error banner.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return "Permission denied - please check the store access rules"
	case errors.Is(err, ErrUnavailable):
		return "Store unavailable - please check your connection"
	case errors.Is(err, ErrUnauthenticated):
		return "Authentication required - please check the store credentials"
	default:
		return "Failed to reach the schedule store"
	}
}
