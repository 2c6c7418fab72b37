package schedule

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"roomsched/auditlog"
	"roomsched/dupdetect"
	"roomsched/gate"
	"roomsched/globals"
	"roomsched/models"
	"roomsched/utils"
)

type Handler struct {
	engine   *Engine
	gate     *gate.Gate
	detector *dupdetect.Detector
	audit    *auditlog.Writer
}

func NewHandler(engine *Engine, g *gate.Gate, detector *dupdetect.Detector, audit *auditlog.Writer) *Handler {
	return &Handler{engine: engine, gate: g, detector: detector, audit: audit}
}

type attendeeInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}

type mutationInput struct {
	Code     string        `json:"code"`
	Author   string        `json:"author"`
	Attendee attendeeInput `json:"attendee"`
}

// GetRooms returns the current snapshot of every room.
func (h *Handler) GetRooms(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"rooms": h.engine.Rooms(),
		"error": h.engine.LastError(),
	})
}

func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	room, ok := h.engine.Room(ps.ByName("roomid"))
	if !ok {
		utils.RespondWithError(w, http.StatusNotFound, "Room not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"room": room})
}

// checkCode runs the access gate and writes the response on failure.
// A missing secret is a configuration error, not an invalid code.
func (h *Handler) checkCode(w http.ResponseWriter, code string, action gate.Action) bool {
	valid, err := h.gate.Validate(code, action)
	if errors.Is(err, gate.ErrNotConfigured) {
		utils.RespondWithError(w, http.StatusInternalServerError, "Access code not configured")
		return false
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return false
	}
	if !valid {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid access code")
		return false
	}
	return true
}

func (h *Handler) BookSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roomID, dayID, slotID := ps.ByName("roomid"), ps.ByName("dayid"), ps.ByName("slotid")

	var input mutationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if !h.checkCode(w, input.Code, gate.ActionBook) {
		return
	}
	if input.Attendee.Name == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Attendee name is required")
		return
	}

	attendee := models.Attendee{
		Name:  input.Attendee.Name,
		Email: input.Attendee.Email,
		Phone: input.Attendee.Phone,
		Notes: input.Attendee.Notes,
	}
	if !h.engine.BookSlot(r.Context(), roomID, dayID, slotID, attendee) {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to book slot")
		return
	}

	h.recordAction("book", input.Author, roomID, dayID, slotID, &attendee, nil)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}

func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roomID, dayID, slotID := ps.ByName("roomid"), ps.ByName("dayid"), ps.ByName("slotid")

	var input mutationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if !h.checkCode(w, input.Code, gate.ActionCancel) {
		return
	}

	previous := h.currentAttendee(roomID, dayID, slotID)
	if !h.engine.CancelBooking(r.Context(), roomID, dayID, slotID) {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to cancel booking")
		return
	}

	h.recordAction("cancel", input.Author, roomID, dayID, slotID, nil, previous)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}

func (h *Handler) EditBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roomID, dayID, slotID := ps.ByName("roomid"), ps.ByName("dayid"), ps.ByName("slotid")

	var input mutationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if !h.checkCode(w, input.Code, gate.ActionEdit) {
		return
	}
	if input.Attendee.Name == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Attendee name is required")
		return
	}

	previous := h.currentAttendee(roomID, dayID, slotID)
	attendee := models.Attendee{
		Name:  input.Attendee.Name,
		Email: input.Attendee.Email,
		Phone: input.Attendee.Phone,
		Notes: input.Attendee.Notes,
	}
	if !h.engine.EditBooking(r.Context(), roomID, dayID, slotID, attendee) {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to edit booking")
		return
	}

	h.recordAction("edit", input.Author, roomID, dayID, slotID, &attendee, previous)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}

func (h *Handler) CheckInBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roomID, dayID, slotID := ps.ByName("roomid"), ps.ByName("dayid"), ps.ByName("slotid")

	author, _ := r.Context().Value(globals.UserIDKey).(string)
	attendee := h.currentAttendee(roomID, dayID, slotID)

	if !h.engine.CheckInBooking(r.Context(), roomID, dayID, slotID) {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to check in booking")
		return
	}

	h.recordAction("checkin", author, roomID, dayID, slotID, attendee, nil)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}

// RegenerateRoom resets one room's schedule from the template, discarding
// its bookings.
func (h *Handler) RegenerateRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roomID := ps.ByName("roomid")
	author, _ := r.Context().Value(globals.UserIDKey).(string)

	if !h.engine.RegenerateRoom(r.Context(), roomID) {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to regenerate schedule")
		return
	}

	h.audit.Record(models.LogEntry{Author: author, Action: "regenerate", RoomID: roomID})
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}

// FindDuplicates warns about possible double bookings for a candidate name.
func (h *Handler) FindDuplicates(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	name := r.URL.Query().Get("name")
	matches := h.detector.Find(h.engine.Rooms(), name)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"matches": matches})
}

// ValidateCode is the standalone code-probe endpoint used by the UI dialog.
func (h *Handler) ValidateCode(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input struct {
		Code string `json:"code"`
		Type string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	valid, err := h.gate.Validate(input.Code, gate.Action(input.Type))
	if errors.Is(err, gate.ErrNotConfigured) {
		utils.RespondWithError(w, http.StatusInternalServerError, "Access code not configured")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"valid": valid})
}

// ExportCSV flattens every booked slot into one row per booking.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=bookings.csv")

	cw := csv.NewWriter(w)
	defer cw.Flush()

	cw.Write([]string{"Room", "Day", "Date", "Time", "Name", "Email", "Phone", "Notes", "Booked At"})
	for _, row := range BookingRows(h.engine.Rooms()) {
		cw.Write(row)
	}
}

// BookingRows flattens booked slots in room-day-slot order.
func BookingRows(rooms []models.Room) [][]string {
	rows := [][]string{}
	for _, room := range rooms {
		for _, day := range room.Schedule {
			for _, slot := range day.Slots {
				if !slot.IsBooked || slot.Attendee == nil {
					continue
				}
				rows = append(rows, []string{
					room.Name, day.DayName, day.Date, slot.Time,
					slot.Attendee.Name, slot.Attendee.Email,
					slot.Attendee.Phone, slot.Attendee.Notes,
					slot.Attendee.BookedAt,
				})
			}
		}
	}
	return rows
}

// currentAttendee copies the in-memory attendee of a slot for audit records.
func (h *Handler) currentAttendee(roomID, dayID, slotID string) *models.Attendee {
	room, ok := h.engine.Room(roomID)
	if !ok {
		return nil
	}
	for _, day := range room.Schedule {
		if day.ID != dayID {
			continue
		}
		for _, slot := range day.Slots {
			if slot.ID == slotID && slot.Attendee != nil {
				att := *slot.Attendee
				return &att
			}
		}
	}
	return nil
}

func (h *Handler) recordAction(action, author, roomID, dayID, slotID string, attendee, previous *models.Attendee) {
	entry := models.LogEntry{
		Author: author,
		Action: action,
		RoomID: roomID,
		DayID:  dayID,
		SlotID: slotID,
	}
	if room, ok := h.engine.Room(roomID); ok {
		entry.RoomName = room.Name
		for _, day := range room.Schedule {
			if day.ID != dayID {
				continue
			}
			entry.DayName = day.DayName
			entry.Date = day.Date
			for _, slot := range day.Slots {
				if slot.ID == slotID {
					entry.SlotTime = slot.Time
				}
			}
		}
	}
	if attendee != nil {
		entry.AttendeeName = attendee.Name
		entry.AttendeeEmail = attendee.Email
		entry.AttendeePhone = attendee.Phone
		entry.AttendeeNotes = attendee.Notes
	}
	entry.PreviousAttendee = previous
	h.audit.Record(entry)
}
