package rdx

import (
	"context"
	"log"
	"os"

	"github.com/redis/go-redis/v9"
)

var Conn *redis.Client

// Init builds the shared Redis client from the environment. Call once from main.
func Init() {
	addr := os.Getenv("REDIS_URL")
	if addr == "" {
		addr = "localhost:6379"
	}

	Conn = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})
}

func RdxSet(key, value string) error {
	return Conn.Set(context.Background(), key, value, 0).Err()
}

func RdxDel(key string) error {
	return Conn.Del(context.Background(), key).Err()
}

// Publish pushes a payload to a pub/sub channel; failures are logged only.
func Publish(channel, payload string) {
	if err := Conn.Publish(context.Background(), channel, payload).Err(); err != nil {
		log.Printf("Redis publish to %s failed: %v", channel, err)
	}
}
