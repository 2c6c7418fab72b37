package schedule

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"roomsched/gateway"
	"roomsched/models"
)

// mockGateway is an in-memory store with synchronous write echo.
type mockGateway struct {
	mu          sync.Mutex
	data        map[string][]models.DaySchedule
	subs        map[string][]chan []models.DaySchedule
	failReplace error
	writes      int
}

func newMockGateway() *mockGateway {
	return &mockGateway{
		data: make(map[string][]models.DaySchedule),
		subs: make(map[string][]chan []models.DaySchedule),
	}
}

func (m *mockGateway) Subscribe(ctx context.Context, roomID string) (<-chan []models.DaySchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan []models.DaySchedule, 32)
	m.subs[roomID] = append(m.subs[roomID], ch)
	ch <- snapshotDays(m.data[roomID])
	return ch, nil
}

func (m *mockGateway) ReplaceDaySlots(ctx context.Context, roomID, dayID string, slots []models.TimeSlot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReplace != nil {
		return m.failReplace
	}
	for i := range m.data[roomID] {
		if m.data[roomID][i].ID == dayID {
			m.data[roomID][i].Slots = slots
		}
	}
	m.writes++
	m.broadcast(roomID)
	return nil
}

func (m *mockGateway) InitializeIfEmpty(ctx context.Context, roomID string, days []models.DaySchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.data[roomID]) > 0 {
		return nil
	}
	m.data[roomID] = snapshotDays(days)
	m.broadcast(roomID)
	return nil
}

func (m *mockGateway) Regenerate(ctx context.Context, roomID string, days []models.DaySchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[roomID] = snapshotDays(days)
	m.broadcast(roomID)
	return nil
}

func (m *mockGateway) broadcast(roomID string) {
	for _, ch := range m.subs[roomID] {
		select {
		case ch <- snapshotDays(m.data[roomID]):
		default:
		}
	}
}

func (m *mockGateway) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func snapshotDays(days []models.DaySchedule) []models.DaySchedule {
	out := make([]models.DaySchedule, len(days))
	for i, day := range days {
		out[i] = day
		out[i].Slots = make([]models.TimeSlot, len(day.Slots))
		copy(out[i].Slots, day.Slots)
	}
	return out
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for %s", what)
}

func openTestEngine(t *testing.T) (*Engine, *mockGateway) {
	t.Helper()
	gw := newMockGateway()
	engine, err := Open(context.Background(), gw, DefaultTemplate())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(engine.Close)
	waitFor(t, "all rooms seeded", func() bool { return len(engine.Rooms()) == 5 })
	return engine, gw
}

func slotState(e *Engine, roomID, dayID, slotID string) (models.TimeSlot, bool) {
	room, ok := e.Room(roomID)
	if !ok {
		return models.TimeSlot{}, false
	}
	for _, day := range room.Schedule {
		if day.ID != dayID {
			continue
		}
		for _, slot := range day.Slots {
			if slot.ID == slotID {
				return slot, true
			}
		}
	}
	return models.TimeSlot{}, false
}

func checkBookingInvariant(t *testing.T, e *Engine) {
	t.Helper()
	for _, room := range e.Rooms() {
		for _, day := range room.Schedule {
			for _, slot := range day.Slots {
				if slot.IsBooked != (slot.Attendee != nil) {
					t.Fatalf("invariant broken at %s/%s/%s: isBooked=%v attendee=%v",
						room.ID, day.ID, slot.ID, slot.IsBooked, slot.Attendee)
				}
			}
		}
	}
}

func TestSeededSchedule(t *testing.T) {
	engine, _ := openTestEngine(t)

	room, ok := engine.Room("room-1")
	if !ok {
		t.Fatal("room-1 missing")
	}
	if room.Name != "Room 1" {
		t.Errorf("room name = %q", room.Name)
	}
	if len(room.Schedule) != 3 {
		t.Fatalf("expected 3 days, got %d", len(room.Schedule))
	}
	if room.Schedule[0].ID != "thursday-july-10" || room.Schedule[2].ID != "saturday-july-12" {
		t.Errorf("day order wrong: %s..%s", room.Schedule[0].ID, room.Schedule[2].ID)
	}
	checkBookingInvariant(t, engine)
}

func TestBookSlot(t *testing.T) {
	engine, _ := openTestEngine(t)
	ctx := context.Background()

	before, _ := engine.Room("room-1")

	ok := engine.BookSlot(ctx, "room-1", "thursday-july-10", "16:00", models.Attendee{
		Name: "Jane Doe", Email: "jane@example.com", Phone: "555-0100",
	})
	if !ok {
		t.Fatal("BookSlot returned false")
	}

	waitFor(t, "booking echo", func() bool {
		slot, _ := slotState(engine, "room-1", "thursday-july-10", "16:00")
		return slot.IsBooked
	})

	slot, _ := slotState(engine, "room-1", "thursday-july-10", "16:00")
	if slot.Attendee == nil || slot.Attendee.Name != "Jane Doe" {
		t.Fatalf("attendee = %+v", slot.Attendee)
	}
	if slot.Attendee.BookedAt == "" {
		t.Error("BookedAt not stamped")
	}
	if slot.Attendee.CheckedIn {
		t.Error("fresh booking must not be checked in")
	}
	checkBookingInvariant(t, engine)

	// every other slot of the day is untouched, byte for byte
	after, _ := engine.Room("room-1")
	for d, day := range after.Schedule {
		for s, got := range day.Slots {
			if day.ID == "thursday-july-10" && got.ID == "16:00" {
				continue
			}
			if want := before.Schedule[d].Slots[s]; !reflect.DeepEqual(got, want) {
				t.Errorf("slot %s/%s changed: %+v -> %+v", day.ID, got.ID, want, got)
			}
		}
	}
}

func TestCancelClearsPayload(t *testing.T) {
	engine, _ := openTestEngine(t)
	ctx := context.Background()

	engine.BookSlot(ctx, "room-2", "friday-july-11", "16:30", models.Attendee{Name: "Bob", Notes: "wheelchair access"})
	waitFor(t, "booking echo", func() bool {
		slot, _ := slotState(engine, "room-2", "friday-july-11", "16:30")
		return slot.IsBooked
	})

	if !engine.CancelBooking(ctx, "room-2", "friday-july-11", "16:30") {
		t.Fatal("CancelBooking returned false")
	}
	waitFor(t, "cancel echo", func() bool {
		slot, _ := slotState(engine, "room-2", "friday-july-11", "16:30")
		return !slot.IsBooked
	})

	slot, _ := slotState(engine, "room-2", "friday-july-11", "16:30")
	if slot.Attendee != nil {
		t.Fatalf("attendee survived cancellation: %+v", slot.Attendee)
	}
	checkBookingInvariant(t, engine)
}

func TestEditPreservesBookedAt(t *testing.T) {
	engine, _ := openTestEngine(t)
	ctx := context.Background()

	engine.BookSlot(ctx, "room-1", "saturday-july-12", "15:00", models.Attendee{Name: "Carol", Email: "carol@example.com"})
	waitFor(t, "booking echo", func() bool {
		slot, _ := slotState(engine, "room-1", "saturday-july-12", "15:00")
		return slot.IsBooked
	})
	booked, _ := slotState(engine, "room-1", "saturday-july-12", "15:00")
	originalBookedAt := booked.Attendee.BookedAt

	if !engine.EditBooking(ctx, "room-1", "saturday-july-12", "15:00", models.Attendee{Name: "Caroline", Phone: "555-0199"}) {
		t.Fatal("EditBooking returned false")
	}
	waitFor(t, "edit echo", func() bool {
		slot, _ := slotState(engine, "room-1", "saturday-july-12", "15:00")
		return slot.Attendee != nil && slot.Attendee.Name == "Caroline"
	})

	slot, _ := slotState(engine, "room-1", "saturday-july-12", "15:00")
	if slot.Attendee.BookedAt != originalBookedAt {
		t.Errorf("BookedAt changed on edit: %s -> %s", originalBookedAt, slot.Attendee.BookedAt)
	}
	if slot.Attendee.Email != "" {
		t.Errorf("edit must replace fields wholesale, email = %q", slot.Attendee.Email)
	}
	checkBookingInvariant(t, engine)
}

// Editing a slot that was never booked books it with a fresh timestamp.
func TestEditUnbookedSlot(t *testing.T) {
	engine, _ := openTestEngine(t)
	ctx := context.Background()

	if !engine.EditBooking(ctx, "room-3", "thursday-july-10", "17:00", models.Attendee{Name: "Dave"}) {
		t.Fatal("EditBooking returned false")
	}
	waitFor(t, "edit echo", func() bool {
		slot, _ := slotState(engine, "room-3", "thursday-july-10", "17:00")
		return slot.IsBooked
	})

	slot, _ := slotState(engine, "room-3", "thursday-july-10", "17:00")
	if slot.Attendee == nil || slot.Attendee.BookedAt == "" {
		t.Fatalf("expected a fresh booking, got %+v", slot.Attendee)
	}
	checkBookingInvariant(t, engine)
}

func TestCheckInIdempotent(t *testing.T) {
	engine, gw := openTestEngine(t)
	ctx := context.Background()

	engine.BookSlot(ctx, "room-4", "friday-july-11", "17:10", models.Attendee{Name: "Eve"})
	waitFor(t, "booking echo", func() bool {
		slot, _ := slotState(engine, "room-4", "friday-july-11", "17:10")
		return slot.IsBooked
	})

	if !engine.CheckInBooking(ctx, "room-4", "friday-july-11", "17:10") {
		t.Fatal("CheckInBooking returned false")
	}
	waitFor(t, "check-in echo", func() bool {
		slot, _ := slotState(engine, "room-4", "friday-july-11", "17:10")
		return slot.Attendee != nil && slot.Attendee.CheckedIn
	})

	slot, _ := slotState(engine, "room-4", "friday-july-11", "17:10")
	firstCheckIn := slot.Attendee.CheckedInAt
	if firstCheckIn == "" {
		t.Fatal("CheckedInAt not stamped")
	}
	writesBefore := gw.writeCount()

	// second check-in succeeds without a write and keeps the timestamp
	if !engine.CheckInBooking(ctx, "room-4", "friday-july-11", "17:10") {
		t.Fatal("second CheckInBooking returned false")
	}
	slot, _ = slotState(engine, "room-4", "friday-july-11", "17:10")
	if slot.Attendee.CheckedInAt != firstCheckIn {
		t.Errorf("CheckedInAt moved on re-check-in: %s -> %s", firstCheckIn, slot.Attendee.CheckedInAt)
	}
	if gw.writeCount() != writesBefore {
		t.Errorf("re-check-in issued a write")
	}

	// check-in on an empty slot is a trivial success
	if !engine.CheckInBooking(ctx, "room-4", "friday-july-11", "17:20") {
		t.Error("check-in on empty slot should succeed trivially")
	}
	empty, _ := slotState(engine, "room-4", "friday-july-11", "17:20")
	if empty.IsBooked || empty.Attendee != nil {
		t.Errorf("empty slot changed by check-in: %+v", empty)
	}
}

func TestDayNotFound(t *testing.T) {
	engine, _ := openTestEngine(t)
	ctx := context.Background()

	if engine.BookSlot(ctx, "room-1", "sunday-july-13", "16:00", models.Attendee{Name: "X"}) {
		t.Error("booking on a missing day should fail")
	}
	if engine.CancelBooking(ctx, "room-9", "thursday-july-10", "16:00") {
		t.Error("cancel in a missing room should fail")
	}
	if engine.EditBooking(ctx, "room-1", "sunday-july-13", "16:00", models.Attendee{Name: "X"}) {
		t.Error("edit on a missing day should fail")
	}
	if engine.CheckInBooking(ctx, "room-1", "sunday-july-13", "16:00") {
		t.Error("check-in on a missing day should fail")
	}
}

func TestStoreFailureRecorded(t *testing.T) {
	engine, gw := openTestEngine(t)
	ctx := context.Background()

	gw.mu.Lock()
	gw.failReplace = gateway.ErrUnavailable
	gw.mu.Unlock()

	if engine.BookSlot(ctx, "room-1", "thursday-july-10", "16:10", models.Attendee{Name: "Frank"}) {
		t.Fatal("BookSlot should fail when the store is down")
	}
	if engine.LastError() != gateway.UserMessage(gateway.ErrUnavailable) {
		t.Errorf("LastError = %q", engine.LastError())
	}

	// state never advanced optimistically
	slot, _ := slotState(engine, "room-1", "thursday-july-10", "16:10")
	if slot.IsBooked {
		t.Error("in-memory state advanced ahead of a failed write")
	}
}

func TestRegenerateRoomDiscardsBookings(t *testing.T) {
	engine, _ := openTestEngine(t)
	ctx := context.Background()

	engine.BookSlot(ctx, "room-5", "thursday-july-10", "16:00", models.Attendee{Name: "Grace"})
	waitFor(t, "booking echo", func() bool {
		slot, _ := slotState(engine, "room-5", "thursday-july-10", "16:00")
		return slot.IsBooked
	})

	if !engine.RegenerateRoom(ctx, "room-5") {
		t.Fatal("RegenerateRoom returned false")
	}
	waitFor(t, "regenerate echo", func() bool {
		slot, _ := slotState(engine, "room-5", "thursday-july-10", "16:00")
		return !slot.IsBooked
	})

	slot, _ := slotState(engine, "room-5", "thursday-july-10", "16:00")
	if slot.Attendee != nil {
		t.Fatalf("booking survived regeneration: %+v", slot.Attendee)
	}
	checkBookingInvariant(t, engine)
}

func TestEndToEndScenario(t *testing.T) {
	engine, _ := openTestEngine(t)
	ctx := context.Background()
	const room, day, slot = "room-1", "thursday-july-10", "16:00"

	// book
	if !engine.BookSlot(ctx, room, day, slot, models.Attendee{Name: "Alice"}) {
		t.Fatal("book failed")
	}
	waitFor(t, "booking echo", func() bool {
		s, _ := slotState(engine, room, day, slot)
		return s.IsBooked
	})
	s, _ := slotState(engine, room, day, slot)
	if s.Attendee.Name != "Alice" || s.Attendee.BookedAt == "" {
		t.Fatalf("after book: %+v", s.Attendee)
	}
	bookedAt := s.Attendee.BookedAt

	// check in
	if !engine.CheckInBooking(ctx, room, day, slot) {
		t.Fatal("check-in failed")
	}
	waitFor(t, "check-in echo", func() bool {
		s, _ := slotState(engine, room, day, slot)
		return s.Attendee != nil && s.Attendee.CheckedIn
	})

	// edit keeps the timestamp and the check-in state
	if !engine.EditBooking(ctx, room, day, slot, models.Attendee{Name: "Alicia"}) {
		t.Fatal("edit failed")
	}
	waitFor(t, "edit echo", func() bool {
		s, _ := slotState(engine, room, day, slot)
		return s.Attendee != nil && s.Attendee.Name == "Alicia"
	})
	s, _ = slotState(engine, room, day, slot)
	if s.Attendee.BookedAt != bookedAt {
		t.Errorf("edit changed BookedAt: %s -> %s", bookedAt, s.Attendee.BookedAt)
	}
	if !s.Attendee.CheckedIn {
		t.Error("edit dropped the check-in state")
	}

	// cancel
	if !engine.CancelBooking(ctx, room, day, slot) {
		t.Fatal("cancel failed")
	}
	waitFor(t, "cancel echo", func() bool {
		s, _ := slotState(engine, room, day, slot)
		return !s.IsBooked
	})
	s, _ = slotState(engine, room, day, slot)
	if s.Attendee != nil {
		t.Fatalf("attendee survived cancel: %+v", s.Attendee)
	}
	checkBookingInvariant(t, engine)
}
