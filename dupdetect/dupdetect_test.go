package dupdetect

import (
	"testing"

	"roomsched/models"
)

func bookedRoom(roomID, roomName string, names ...string) models.Room {
	slots := make([]models.TimeSlot, len(names))
	for i, name := range names {
		slots[i] = models.TimeSlot{
			ID:       "16:00",
			Time:     "4:00 PM",
			IsBooked: name != "",
		}
		if name != "" {
			slots[i].Attendee = &models.Attendee{Name: name, BookedAt: "2025-07-10T16:00:00Z"}
		}
	}
	return models.Room{
		ID:   roomID,
		Name: roomName,
		Schedule: []models.DaySchedule{
			{ID: "thursday-july-10", DayName: "Thursday", Date: "July 10th, 2025", Slots: slots},
		},
	}
}

func TestNameScorer(t *testing.T) {
	cases := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"exact", "Jane Doe", "Jane Doe", 1.0},
		{"exact ignoring case and space", "  jane doe ", "Jane Doe", 1.0},
		{"substring", "Jan", "Jane Doe", 0.8},
		{"accent folded words", "Maria Lopez", "María López", 1.0},
		{"shared surname", "Anna Lopez Garcia", "Maria Lopez", 1.0 / 3.0},
		{"unrelated", "John Smith", "Jane Doe", 0.0},
	}

	scorer := NameScorer{}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := scorer.Score(tc.a, tc.b)
			if got != tc.want {
				t.Errorf("Score(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestFindExactMatch(t *testing.T) {
	rooms := []models.Room{bookedRoom("room-1", "Room 1", "Jane Doe")}
	matches := NewDetector().Find(rooms, "Jane Doe")
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Similarity != 1.0 {
		t.Errorf("similarity = %v, want 1.0", matches[0].Similarity)
	}
	if matches[0].RoomID != "room-1" || matches[0].SlotTime != "4:00 PM" {
		t.Errorf("match metadata = %+v", matches[0])
	}
}

func TestFindThreshold(t *testing.T) {
	rooms := []models.Room{
		bookedRoom("room-1", "Room 1", "María López"),
		bookedRoom("room-2", "Room 2", "Jane Doe"),
	}

	matches := NewDetector().Find(rooms, "Maria Lopez")
	if len(matches) != 1 {
		t.Fatalf("expected only the accent-folded match, got %d", len(matches))
	}
	if matches[0].AttendeeName != "María López" || matches[0].Similarity < 0.6 {
		t.Errorf("match = %+v", matches[0])
	}

	if got := NewDetector().Find(rooms, "John Smith"); len(got) != 0 {
		t.Errorf("unrelated name matched: %+v", got)
	}
}

func TestFindMinimumLength(t *testing.T) {
	rooms := []models.Room{bookedRoom("room-1", "Room 1", "Jane Doe")}
	d := NewDetector()

	if got := d.Find(rooms, "Ja"); len(got) != 0 {
		t.Errorf("two-rune candidate should return nothing, got %+v", got)
	}
	if got := d.Find(rooms, "   Ja  "); len(got) != 0 {
		t.Errorf("padding must not defeat the minimum length, got %+v", got)
	}
	// length three is enough, and "Jan" is a substring of "Jane Doe"
	if got := d.Find(rooms, "Jan"); len(got) != 1 || got[0].Similarity != 0.8 {
		t.Errorf("Find(Jan) = %+v", got)
	}
}

func TestFindSkipsUnbookedSlots(t *testing.T) {
	rooms := []models.Room{bookedRoom("room-1", "Room 1", "", "Jane Doe", "")}
	matches := NewDetector().Find(rooms, "Jane Doe")
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
}

func TestFindOrdering(t *testing.T) {
	rooms := []models.Room{
		bookedRoom("room-1", "Room 1", "Jane Dorsey"),
		bookedRoom("room-2", "Room 2", "Jane Doe"),
		bookedRoom("room-3", "Room 3", "Jane Doe Smith"),
	}

	matches := NewDetector().Find(rooms, "Jane Doe")
	if len(matches) < 2 {
		t.Fatalf("expected at least 2 matches, got %d", len(matches))
	}
	for i := 1; i < len(matches); i++ {
		if matches[i-1].Similarity < matches[i].Similarity {
			t.Errorf("matches not sorted descending at %d: %v < %v", i, matches[i-1].Similarity, matches[i].Similarity)
		}
	}
	if matches[0].RoomID != "room-2" || matches[0].Similarity != 1.0 {
		t.Errorf("best match = %+v", matches[0])
	}
}

func TestFoldAccents(t *testing.T) {
	cases := map[string]string{
		"maría":  "maria",
		"lópez":  "lopez",
		"rené":   "rene",
		"müller": "muller",
		"plain":  "plain",
	}
	for in, want := range cases {
		if got := foldAccents(in); got != want {
			t.Errorf("foldAccents(%q) = %q, want %q", in, got, want)
		}
	}
}
