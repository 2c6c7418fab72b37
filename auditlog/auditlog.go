package auditlog

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"roomsched/models"
	"roomsched/rdx"
)

// AuditChannel carries each appended record for any live log viewers.
const AuditChannel = "audit-events"

// Writer appends mutation records for accountability. Record is
// fire-and-forget: a failed append is logged locally and never blocks or
// rolls back the mutation it describes.
type Writer struct {
	coll *mongo.Collection
}

func NewWriter(coll *mongo.Collection) *Writer {
	return &Writer{coll: coll}
}

// Record stamps and appends the entry in the background.
func (w *Writer) Record(entry models.LogEntry) {
	go func() {
		if err := w.Append(context.Background(), entry); err != nil {
			log.Printf("Audit append failed (action=%s room=%s): %v", entry.Action, entry.RoomID, err)
		}
	}()
}

// Append stamps and stores the entry, then publishes it to Redis.
func (w *Writer) Append(ctx context.Context, entry models.LogEntry) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	entry.ID = uuid.New().String()
	entry.Timestamp = time.Now().UTC().Format(time.RFC3339)

	if _, err := w.coll.InsertOne(ctx, entry); err != nil {
		return err
	}

	if payload, err := json.Marshal(entry); err == nil {
		rdx.Publish(AuditChannel, string(payload))
	}
	return nil
}
