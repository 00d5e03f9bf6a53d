package relay

import (
	"context"
	"encoding/json"
	"log"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// BusMessage crosses relay instances via Redis pub/sub. Origin carries the
// publishing instance id so an instance never re-delivers its own frames.
type BusMessage struct {
	Origin string `json:"origin"`
	RoomID string `json:"roomId"`
	Frame  *Frame `json:"frame"`
}

// RedisBus bridges room broadcasts between relay instances sharing a room
// id. Single-instance deployments run without it.
type RedisBus struct {
	rdb      *redis.Client
	instance string
}

// NewRedisBus connects to redis and verifies connectivity.
func NewRedisBus(ctx context.Context, addr, password string) (*RedisBus, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &RedisBus{rdb: rdb, instance: uuid.NewString()}, nil
}

// Publish sends a frame to the channel for a room.
func (b *RedisBus) Publish(ctx context.Context, roomID string, frame *Frame) error {
	raw, err := json.Marshal(BusMessage{Origin: b.instance, RoomID: roomID, Frame: frame})
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, channelFor(roomID), raw).Err()
}

// Subscribe listens to all room channels and invokes fn for each frame
// published by a sibling instance.
func (b *RedisBus) Subscribe(ctx context.Context, fn func(roomID string, frame *Frame)) {
	pubsub := b.rdb.PSubscribe(ctx, channelFor("*"))
	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			_ = pubsub.Close()
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			b.dispatchPayload(msg.Payload, fn)
		}
	}
}

// dispatchPayload decodes one raw bus payload and forwards the frame if it
// came from a sibling instance. Own messages and malformed payloads are
// dropped without touching the callback.
func (b *RedisBus) dispatchPayload(payload string, fn func(roomID string, frame *Frame)) {
	var bm BusMessage
	if err := json.Unmarshal([]byte(payload), &bm); err != nil {
		log.Printf("Error decoding bus message: %v", err)
		return
	}
	if bm.Origin == b.instance || bm.RoomID == "" || bm.Frame == nil {
		return
	}
	fn(bm.RoomID, bm.Frame)
}

// Close shuts down the redis connection.
func (b *RedisBus) Close() { _ = b.rdb.Close() }

// channel namespacing for room pub/sub
func channelFor(roomID string) string { return "songo:room:" + roomID }
