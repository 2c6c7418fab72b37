package db

import (
	"context"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ScheduleCollection *mongo.Collection
	LogsCollection     *mongo.Collection
	UserCollection     *mongo.Collection
	Client             *mongo.Client
)

// Init connects to MongoDB and binds the collections. Call once from main.
func Init() error {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return err
	}
	Client = client

	database := client.Database("roomsched")
	ScheduleCollection = database.Collection("schedule")
	LogsCollection = database.Collection("action_logs")
	UserCollection = database.Collection("users")

	log.Println("Connected to MongoDB")
	return nil
}

// Close disconnects the client; errors are logged only.
func Close() {
	if Client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Client.Disconnect(ctx); err != nil {
		log.Println("MongoDB disconnect error:", err)
	}
}
