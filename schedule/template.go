package schedule

import "roomsched/models"

// DayTemplate fixes one day of the event: its identity and slot window.
type DayTemplate struct {
	ID        string
	Date      string
	DayName   string
	StartHour int
	EndHour   int
}

// Template is the fixed event layout: which rooms exist and which days each
// room carries. Rooms are created at startup and never deleted at runtime.
type Template struct {
	RoomIDs   []string
	RoomNames map[string]string
	Days      []DayTemplate
}

// DefaultTemplate matches the July 2025 event: five rooms, Thursday and
// Friday 4-6 PM, Saturday 3-6 PM.
func DefaultTemplate() Template {
	return Template{
		RoomIDs: []string{"room-1", "room-2", "room-3", "room-4", "room-5"},
		RoomNames: map[string]string{
			"room-1": "Room 1",
			"room-2": "Room 2",
			"room-3": "Room 3",
			"room-4": "Room 4",
			"room-5": "Room 5",
		},
		Days: []DayTemplate{
			{ID: "thursday-july-10", Date: "July 10th, 2025", DayName: "Thursday", StartHour: 16, EndHour: 18},
			{ID: "friday-july-11", Date: "July 11th, 2025", DayName: "Friday", StartHour: 16, EndHour: 18},
			{ID: "saturday-july-12", Date: "July 12th, 2025", DayName: "Saturday", StartHour: 15, EndHour: 18},
		},
	}
}

// RoomName returns the display name for a room, falling back to the ID.
func (t Template) RoomName(roomID string) string {
	if name, ok := t.RoomNames[roomID]; ok {
		return name
	}
	return roomID
}

// Generate builds a fresh Day sequence from the template. Regeneration
// replaces slot sequences wholesale: any booking held on an overlapping time
// key is discarded. That is the explicit policy, not an accident.
func (t Template) Generate() []models.DaySchedule {
	days := make([]models.DaySchedule, 0, len(t.Days))
	for _, d := range t.Days {
		days = append(days, models.DaySchedule{
			ID:      d.ID,
			Date:    d.Date,
			DayName: d.DayName,
			Slots:   GenerateTimeSlots(d.StartHour, d.EndHour),
		})
	}
	return days
}

// DayOrder returns day IDs in template order, used to sort store reads.
func (t Template) DayOrder() []string {
	order := make([]string, 0, len(t.Days))
	for _, d := range t.Days {
		order = append(order, d.ID)
	}
	return order
}
