package schedule

import (
	"fmt"

	"roomsched/models"
)

// slotInterval is the slot granularity in minutes.
const slotInterval = 10

// GenerateTimeSlots produces the slot grid covering [startHour:00, endHour:00)
// in 10-minute steps. Slot IDs are 24-hour "HH:MM" keys; labels are 12-hour
// "H:MM AM/PM". endHour <= startHour yields an empty sequence.
func GenerateTimeSlots(startHour, endHour int) []models.TimeSlot {
	slots := []models.TimeSlot{}
	for minutes := startHour * 60; minutes < endHour*60; minutes += slotInterval {
		hours := minutes / 60
		mins := minutes % 60

		hour12 := hours
		if hours > 12 {
			hour12 = hours - 12
		}
		ampm := "AM"
		if hours >= 12 {
			ampm = "PM"
		}

		slots = append(slots, models.TimeSlot{
			ID:   fmt.Sprintf("%02d:%02d", hours, mins),
			Time: fmt.Sprintf("%d:%02d %s", hour12, mins, ampm),
		})
	}
	return slots
}
