package schedule

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"roomsched/gateway"
	"roomsched/models"
)

// Engine owns the in-memory schedule state for every room. State is refreshed
// exclusively by gateway subscription snapshots: a mutation is only visible in
// memory once the store echoes the write back. Mutations never advance the
// cache optimistically.
type Engine struct {
	gw   gateway.Gateway
	tmpl Template

	mu      sync.RWMutex
	rooms   map[string]*models.Room
	lastErr string

	cancel   context.CancelFunc
	wg       sync.WaitGroup
	seedOnce sync.Once
}

// Open subscribes to every room in the template and starts the refresh loops.
// Close must be called to tear the subscriptions down.
func Open(ctx context.Context, gw gateway.Gateway, tmpl Template) (*Engine, error) {
	ctx, cancel := context.WithCancel(ctx)
	e := &Engine{
		gw:     gw,
		tmpl:   tmpl,
		rooms:  make(map[string]*models.Room),
		cancel: cancel,
	}

	for _, roomID := range tmpl.RoomIDs {
		ch, err := gw.Subscribe(ctx, roomID)
		if err != nil {
			cancel()
			e.wg.Wait()
			return nil, err
		}
		e.wg.Add(1)
		go e.refreshLoop(ctx, roomID, ch)
	}
	return e, nil
}

func (e *Engine) Close() {
	e.cancel()
	e.wg.Wait()
}

func (e *Engine) refreshLoop(ctx context.Context, roomID string, ch <-chan []models.DaySchedule) {
	defer e.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case days, ok := <-ch:
			if !ok {
				return
			}
			if len(days) == 0 {
				e.seedRooms(ctx)
				continue
			}
			e.mu.Lock()
			e.rooms[roomID] = &models.Room{
				ID:       roomID,
				Name:     e.tmpl.RoomName(roomID),
				Schedule: days,
			}
			e.mu.Unlock()
		}
	}
}

// seedRooms fires at most once per process no matter how many empty snapshots
// arrive before the store holds data.
func (e *Engine) seedRooms(ctx context.Context) {
	e.seedOnce.Do(func() {
		days := e.tmpl.Generate()
		for _, roomID := range e.tmpl.RoomIDs {
			if err := e.gw.InitializeIfEmpty(ctx, roomID, days); err != nil {
				log.Printf("Seeding %s failed: %v", roomID, err)
				e.recordErr(err)
			}
		}
	})
}

// Rooms returns a snapshot of all known rooms sorted by ID.
func (e *Engine) Rooms() []models.Room {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]models.Room, 0, len(e.rooms))
	for _, r := range e.rooms {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Room returns one room's snapshot.
func (e *Engine) Room(roomID string) (models.Room, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	r, ok := e.rooms[roomID]
	if !ok {
		return models.Room{}, false
	}
	return *r, true
}

// LastError is the most recent translated store error, for the page-level
// error banner. Empty when no store error has occurred.
func (e *Engine) LastError() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastErr
}

func (e *Engine) recordErr(err error) {
	e.mu.Lock()
	e.lastErr = gateway.UserMessage(err)
	e.mu.Unlock()
}

// daySlots copies the current slot sequence of one day. The copy keeps every
// untouched slot structurally identical in the subsequent whole-day rewrite.
func (e *Engine) daySlots(roomID, dayID string) ([]models.TimeSlot, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	room, ok := e.rooms[roomID]
	if !ok {
		return nil, false
	}
	for _, day := range room.Schedule {
		if day.ID == dayID {
			slots := make([]models.TimeSlot, len(day.Slots))
			copy(slots, day.Slots)
			return slots, true
		}
	}
	return nil, false
}

func (e *Engine) writeDay(ctx context.Context, roomID, dayID string, slots []models.TimeSlot) bool {
	if err := e.gw.ReplaceDaySlots(ctx, roomID, dayID, slots); err != nil {
		log.Printf("Write to %s/%s failed: %v", roomID, dayID, err)
		e.recordErr(err)
		return false
	}
	return true
}

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// RegenerateRoom rebuilds one room's days from the current template. Existing
// bookings are discarded, including those on overlapping time keys.
func (e *Engine) RegenerateRoom(ctx context.Context, roomID string) bool {
	if err := e.gw.Regenerate(ctx, roomID, e.tmpl.Generate()); err != nil {
		log.Printf("Regenerate %s failed: %v", roomID, err)
		e.recordErr(err)
		return false
	}
	return true
}

// BookSlot marks a slot booked with a fresh attendee payload and timestamp.
func (e *Engine) BookSlot(ctx context.Context, roomID, dayID, slotID string, attendee models.Attendee) bool {
	slots, ok := e.daySlots(roomID, dayID)
	if !ok {
		log.Printf("Book slot: day %s not found in room %s", dayID, roomID)
		return false
	}
	for i := range slots {
		if slots[i].ID == slotID {
			attendee.BookedAt = nowStamp()
			attendee.CheckedIn = false
			attendee.CheckedInAt = ""
			slots[i].IsBooked = true
			slots[i].Attendee = &attendee
		}
	}
	return e.writeDay(ctx, roomID, dayID, slots)
}

// CancelBooking frees a slot, discarding the attendee payload entirely.
func (e *Engine) CancelBooking(ctx context.Context, roomID, dayID, slotID string) bool {
	slots, ok := e.daySlots(roomID, dayID)
	if !ok {
		log.Printf("Cancel booking: day %s not found in room %s", dayID, roomID)
		return false
	}
	for i := range slots {
		if slots[i].ID == slotID {
			slots[i].IsBooked = false
			slots[i].Attendee = nil
		}
	}
	return e.writeDay(ctx, roomID, dayID, slots)
}

// EditBooking replaces the attendee fields wholesale while preserving the
// original booking timestamp. Editing a slot that was never booked books it
// with a fresh timestamp.
func (e *Engine) EditBooking(ctx context.Context, roomID, dayID, slotID string, attendee models.Attendee) bool {
	slots, ok := e.daySlots(roomID, dayID)
	if !ok {
		log.Printf("Edit booking: day %s not found in room %s", dayID, roomID)
		return false
	}
	for i := range slots {
		if slots[i].ID == slotID {
			attendee.BookedAt = nowStamp()
			if prev := slots[i].Attendee; prev != nil && prev.BookedAt != "" {
				attendee.BookedAt = prev.BookedAt
				attendee.CheckedIn = prev.CheckedIn
				attendee.CheckedInAt = prev.CheckedInAt
			}
			slots[i].IsBooked = true
			slots[i].Attendee = &attendee
		}
	}
	return e.writeDay(ctx, roomID, dayID, slots)
}

// CheckInBooking stamps the attendee as arrived. A slot with no attendee is a
// trivial success with no write; a second check-in keeps the original
// check-in timestamp.
func (e *Engine) CheckInBooking(ctx context.Context, roomID, dayID, slotID string) bool {
	slots, ok := e.daySlots(roomID, dayID)
	if !ok {
		log.Printf("Check-in: day %s not found in room %s", dayID, roomID)
		return false
	}
	changed := false
	for i := range slots {
		if slots[i].ID == slotID && slots[i].Attendee != nil && !slots[i].Attendee.CheckedIn {
			att := *slots[i].Attendee
			att.CheckedIn = true
			att.CheckedInAt = nowStamp()
			slots[i].Attendee = &att
			changed = true
		}
	}
	if !changed {
		return true
	}
	return e.writeDay(ctx, roomID, dayID, slots)
}
