package auditlog

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"roomsched/models"
	"roomsched/utils"
)

const defaultLogLimit = 1000

type Handler struct {
	writer *Writer
	coll   *mongo.Collection
}

func NewHandler(writer *Writer, coll *mongo.Collection) *Handler {
	return &Handler{writer: writer, coll: coll}
}

// PostLogAction appends one record on behalf of an external caller.
func (h *Handler) PostLogAction(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var entry models.LogEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if entry.Author == "" || entry.Action == "" || entry.RoomID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	if err := h.writer.Append(r.Context(), entry); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to log action")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}

// GetLogs returns records newest first, optionally substring-filtered.
func (h *Handler) GetLogs(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit := int64(defaultLogLimit)
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			limit = n
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.M{"timestamp": -1}).SetLimit(limit)
	cur, err := h.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch logs")
		return
	}
	defer cur.Close(ctx)

	var logs []models.LogEntry
	if err := cur.All(ctx, &logs); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode logs")
		return
	}

	if search := r.URL.Query().Get("search"); search != "" {
		logs = FilterLogs(logs, search)
	}
	if logs == nil {
		logs = []models.LogEntry{}
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"logs": logs})
}

// FilterLogs keeps entries with the term in any display field.
func FilterLogs(logs []models.LogEntry, term string) []models.LogEntry {
	out := make([]models.LogEntry, 0, len(logs))
	for _, entry := range logs {
		if matchesLog(entry, term) {
			out = append(out, entry)
		}
	}
	return out
}

func matchesLog(entry models.LogEntry, term string) bool {
	fields := []string{
		entry.Author, entry.Action, entry.RoomName, entry.DayName,
		entry.SlotTime, entry.AttendeeName, entry.AttendeeEmail, entry.AttendeePhone,
	}
	if entry.PreviousAttendee != nil {
		fields = append(fields, entry.PreviousAttendee.Name)
	}
	for _, f := range fields {
		if f != "" && utils.ContainsIgnoreCase(f, term) {
			return true
		}
	}
	return false
}
