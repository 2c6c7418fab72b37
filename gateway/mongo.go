package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"roomsched/models"
)

// ScheduleChannel carries the room ID of every changed room. Subscribers
// reload that room's snapshot from Mongo on receipt.
const ScheduleChannel = "schedule-events"

type dayDoc struct {
	RoomID             string `bson:"roomId"`
	models.DaySchedule `bson:",inline"`
}

// MongoGateway persists day documents in a single collection keyed by
// roomId+dayId and signals changes over Redis pub/sub.
type MongoGateway struct {
	coll     *mongo.Collection
	rdb      *redis.Client
	dayOrder []string
}

func NewMongoGateway(coll *mongo.Collection, rdb *redis.Client, dayOrder []string) *MongoGateway {
	return &MongoGateway{coll: coll, rdb: rdb, dayOrder: dayOrder}
}

func (g *MongoGateway) Subscribe(ctx context.Context, roomID string) (<-chan []models.DaySchedule, error) {
	sub := g.rdb.Subscribe(ctx, ScheduleChannel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, translate(err)
	}

	out := make(chan []models.DaySchedule, 1)
	go func() {
		defer close(out)
		defer sub.Close()

		// Initial snapshot, delivered even when the room is still empty so
		// the engine can decide to seed it.
		if days, err := g.loadDays(ctx, roomID); err == nil {
			select {
			case out <- days:
			case <-ctx.Done():
				return
			}
		} else {
			log.Printf("Initial load for %s failed: %v", roomID, err)
		}

		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if msg.Payload != roomID {
					continue
				}
				days, err := g.loadDays(ctx, roomID)
				if err != nil {
					log.Printf("Reload for %s failed: %v", roomID, err)
					continue
				}
				select {
				case out <- days:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (g *MongoGateway) ReplaceDaySlots(ctx context.Context, roomID, dayID string, slots []models.TimeSlot) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Whole-field replacement is the only mutation primitive: concurrent
	// writes to different slots of the same day race at day granularity and
	// the last full slot array wins.
	res, err := g.coll.UpdateOne(ctx,
		bson.M{"roomId": roomID, "dayId": dayID},
		bson.M{"$set": bson.M{"slots": slots}},
	)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: day %s not found in room %s", ErrStore, dayID, roomID)
	}
	g.notify(roomID)
	return nil
}

func (g *MongoGateway) InitializeIfEmpty(ctx context.Context, roomID string, days []models.DaySchedule) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	seeded := false
	for _, day := range days {
		res, err := g.coll.UpdateOne(ctx,
			bson.M{"roomId": roomID, "dayId": day.ID},
			bson.M{"$setOnInsert": dayDoc{RoomID: roomID, DaySchedule: day}},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return translate(err)
		}
		if res.UpsertedCount > 0 {
			seeded = true
		}
	}
	if seeded {
		g.notify(roomID)
	}
	return nil
}

func (g *MongoGateway) Regenerate(ctx context.Context, roomID string, days []models.DaySchedule) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	for _, day := range days {
		_, err := g.coll.ReplaceOne(ctx,
			bson.M{"roomId": roomID, "dayId": day.ID},
			dayDoc{RoomID: roomID, DaySchedule: day},
			options.Replace().SetUpsert(true),
		)
		if err != nil {
			return translate(err)
		}
	}
	g.notify(roomID)
	return nil
}

func (g *MongoGateway) loadDays(ctx context.Context, roomID string) ([]models.DaySchedule, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cur, err := g.coll.Find(ctx, bson.M{"roomId": roomID})
	if err != nil {
		return nil, translate(err)
	}
	defer cur.Close(ctx)

	var docs []dayDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, translate(err)
	}

	days := make([]models.DaySchedule, 0, len(docs))
	for _, d := range docs {
		days = append(days, d.DaySchedule)
	}

	rank := make(map[string]int, len(g.dayOrder))
	for i, id := range g.dayOrder {
		rank[id] = i
	}
	sort.SliceStable(days, func(i, j int) bool {
		ri, iok := rank[days[i].ID]
		rj, jok := rank[days[j].ID]
		if iok && jok {
			return ri < rj
		}
		if iok != jok {
			return iok
		}
		return days[i].ID < days[j].ID
	})
	return days, nil
}

func (g *MongoGateway) notify(roomID string) {
	if err := g.rdb.Publish(context.Background(), ScheduleChannel, roomID).Err(); err != nil {
		log.Printf("Change notification for %s failed: %v", roomID, err)
	}
}

// translate maps driver errors onto the gateway failure taxonomy.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		switch cmdErr.Code {
		case 13: // Unauthorized
			return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		case 18: // AuthenticationFailed
			return fmt.Errorf("%w: %v", ErrUnauthenticated, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return fmt.Errorf("%w: %v", ErrStore, err)
}
