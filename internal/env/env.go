package env

import (
	"os"
)

const (
	RelayAddr       = "RELAY_ADDR"
	RelayRedisURL   = "RELAY_REDIS_URL"
	RelayRedisPass  = "RELAY_REDIS_PASS"
	RoomCapacity    = "RELAY_ROOM_CAPACITY"
	WebUrl          = "WEB_URL"
	QueueSize       = "RELAY_QUEUE_SIZE"
	QueueMaxWorkers = "RELAY_QUEUE_WORKERS"
)

func Get(key string) string {
	return os.Getenv(key)
}

func GetOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func MustGet(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic("env: required environment variable not set: " + key)
	}
	return val
}
