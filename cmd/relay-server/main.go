// Command relay-server runs the Songo multiplayer relay: a room-scoped
// websocket event relay that lets two browser clients find each other by a
// shared room id and exchange game events. The relay never interprets the
// events it forwards; move legality lives in the clients' game engine.
package main

import (
	"context"
	"log"
	"os"
	"strconv"

	"songo-backend/internal/api"
	"songo-backend/internal/api/router"
	"songo-backend/internal/env"
	"songo-backend/internal/queue"
	"songo-backend/internal/relay"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: error loading .env file: %v", err)
	}

	capacity := intFromEnv(env.RoomCapacity, relay.DefaultRoomCapacity)
	queueSize := intFromEnv(env.QueueSize, 32)
	queueWorkers := intFromEnv(env.QueueMaxWorkers, 16)

	registry := relay.NewRegistry()
	directory := relay.NewDirectory(capacity)
	eventRouter := relay.NewRouter(registry, directory)
	handler := relay.NewHandler(registry, directory, eventRouter)

	// Cross-instance fan-out is optional; without Redis the relay serves a
	// single instance from memory alone.
	if redisURL := env.Get(env.RelayRedisURL); redisURL != "" {
		bus, err := relay.NewRedisBus(context.Background(), redisURL, env.Get(env.RelayRedisPass))
		if err != nil {
			log.Fatalf("relay bus init failed: %v", err)
		}
		defer bus.Close()
		handler.AttachBus(context.Background(), bus)
		log.Printf("Relay bus connected to %s", redisURL)
	}

	queueManager := queue.NewRequestQueueManager(queueSize, queueWorkers)

	origins := []string{env.GetOrDefault(env.WebUrl, "*")}

	server := api.NewAPIServer(
		env.GetOrDefault(env.RelayAddr, ":8084"),
		queueManager,
		handler,
		origins,
		router.UtilsRoutes("/api/relay/v1"),
		router.RelayRoutes("/api/relay/v1"),
	)

	server.Run()
}

func intFromEnv(key string, defaultVal int) int {
	raw := env.Get(key)
	if raw == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		log.Printf("Warning: invalid %s=%q, using %d", key, raw, defaultVal)
		return defaultVal
	}
	return val
}
