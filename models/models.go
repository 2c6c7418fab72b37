package models

// Attendee is owned by its slot. It is replaced wholesale on edit and
// removed wholesale on cancellation. Timestamps are RFC 3339 strings.
type Attendee struct {
	Name        string `json:"name" bson:"name"`
	Email       string `json:"email,omitempty" bson:"email,omitempty"`
	Phone       string `json:"phone,omitempty" bson:"phone,omitempty"`
	Notes       string `json:"notes,omitempty" bson:"notes,omitempty"`
	BookedAt    string `json:"bookedAt" bson:"bookedAt"`
	CheckedIn   bool   `json:"checkedIn,omitempty" bson:"checkedIn,omitempty"`
	CheckedInAt string `json:"checkedInAt,omitempty" bson:"checkedInAt,omitempty"`
}

// TimeSlot invariant: IsBooked is true iff Attendee is non-nil.
type TimeSlot struct {
	ID       string    `json:"id" bson:"id"`
	Time     string    `json:"time" bson:"time"`
	IsBooked bool      `json:"isBooked" bson:"isBooked"`
	Attendee *Attendee `json:"attendee,omitempty" bson:"attendee,omitempty"`
}

type DaySchedule struct {
	ID      string     `json:"id" bson:"dayId"`
	Date    string     `json:"date" bson:"date"`
	DayName string     `json:"dayName" bson:"dayName"`
	Slots   []TimeSlot `json:"slots" bson:"slots"`
}

type Room struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Schedule []DaySchedule `json:"schedule"`
}

type User struct {
	UserID   string `json:"userid" bson:"userid"`
	Email    string `json:"email" bson:"email"`
	Password string `json:"-" bson:"password"`
	Role     string `json:"role" bson:"role"`
}

// LogEntry is one appended action-log record.
type LogEntry struct {
	ID               string    `json:"id" bson:"id"`
	Timestamp        string    `json:"timestamp" bson:"timestamp"`
	Author           string    `json:"author" bson:"author"`
	Action           string    `json:"action" bson:"action"`
	RoomID           string    `json:"roomId" bson:"roomId"`
	RoomName         string    `json:"roomName,omitempty" bson:"roomName,omitempty"`
	DayID            string    `json:"dayId,omitempty" bson:"dayId,omitempty"`
	DayName          string    `json:"dayName,omitempty" bson:"dayName,omitempty"`
	Date             string    `json:"date,omitempty" bson:"date,omitempty"`
	SlotID           string    `json:"slotId,omitempty" bson:"slotId,omitempty"`
	SlotTime         string    `json:"slotTime,omitempty" bson:"slotTime,omitempty"`
	AttendeeName     string    `json:"attendeeName,omitempty" bson:"attendeeName,omitempty"`
	AttendeeEmail    string    `json:"attendeeEmail,omitempty" bson:"attendeeEmail,omitempty"`
	AttendeePhone    string    `json:"attendeePhone,omitempty" bson:"attendeePhone,omitempty"`
	AttendeeNotes    string    `json:"attendeeNotes,omitempty" bson:"attendeeNotes,omitempty"`
	PreviousAttendee *Attendee `json:"previousAttendee,omitempty" bson:"previousAttendee,omitempty"`
}
