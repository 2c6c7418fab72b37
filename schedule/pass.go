package schedule

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"roomsched/globals"
)

// PassPayload builds the signed payload embedded in a booking-pass QR code:
// roomID|dayID|slotID|signature. Staff scan it at the door to check in.
func PassPayload(roomID, dayID, slotID string) string {
	data := fmt.Sprintf("%s|%s|%s", roomID, dayID, slotID)
	h := hmac.New(sha256.New, globals.JwtSecret)
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return fmt.Sprintf("%s|%s", data, sig)
}

// VerifyPassPayload checks a scanned payload and returns its slot reference.
func VerifyPassPayload(payload string) (roomID, dayID, slotID string, ok bool) {
	var sig string
	parts := bytes.Split([]byte(payload), []byte("|"))
	if len(parts) != 4 {
		return "", "", "", false
	}
	roomID, dayID, slotID, sig = string(parts[0]), string(parts[1]), string(parts[2]), string(parts[3])
	if !hmac.Equal([]byte(PassPayload(roomID, dayID, slotID)), []byte(fmt.Sprintf("%s|%s|%s|%s", roomID, dayID, slotID, sig))) {
		return "", "", "", false
	}
	return roomID, dayID, slotID, true
}

// PrintPass renders a PDF booking pass with the signed QR code.
func (h *Handler) PrintPass(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roomID, dayID, slotID := ps.ByName("roomid"), ps.ByName("dayid"), ps.ByName("slotid")

	room, ok := h.engine.Room(roomID)
	if !ok {
		http.Error(w, "Room not found", http.StatusNotFound)
		return
	}
	var dayName, date, slotTime, attendeeName string
	found := false
	for _, day := range room.Schedule {
		if day.ID != dayID {
			continue
		}
		for _, slot := range day.Slots {
			if slot.ID == slotID && slot.IsBooked && slot.Attendee != nil {
				dayName, date, slotTime = day.DayName, day.Date, slot.Time
				attendeeName = slot.Attendee.Name
				found = true
			}
		}
	}
	if !found {
		http.Error(w, "No booking found for this slot", http.StatusNotFound)
		return
	}

	qrPNG, err := qrcode.Encode(PassPayload(roomID, dayID, slotID), qrcode.Medium, 256)
	if err != nil {
		http.Error(w, "Failed to generate QR code", http.StatusInternalServerError)
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Booking Pass")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Room: %s", room.Name))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Day: %s, %s", dayName, date))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Time: %s", slotTime))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Name: %s", attendeeName))
	pdf.Ln(12)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 40, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		http.Error(w, "Failed to generate PDF", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=pass-"+roomID+"-"+dayID+"-"+slotID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
