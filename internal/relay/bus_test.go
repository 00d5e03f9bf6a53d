package relay

import (
	"encoding/json"
	"testing"
)

func encodeBusMessage(t *testing.T, bm BusMessage) string {
	t.Helper()
	raw, err := json.Marshal(bm)
	if err != nil {
		t.Fatalf("Failed to encode bus message: %v", err)
	}
	return string(raw)
}

func TestBusDeliversSiblingFrames(t *testing.T) {
	bus := &RedisBus{instance: "self"}

	var gotRoom string
	var gotFrame *Frame
	payload := encodeBusMessage(t, BusMessage{
		Origin: "sibling",
		RoomID: "abc",
		Frame:  &Frame{Kind: KindGameEvent, Event: "move", Sender: "c1"},
	})
	bus.dispatchPayload(payload, func(roomID string, frame *Frame) {
		gotRoom = roomID
		gotFrame = frame
	})

	if gotRoom != "abc" || gotFrame == nil {
		t.Fatalf("sibling frame should be forwarded, got room %q frame %+v", gotRoom, gotFrame)
	}
	if gotFrame.Kind != KindGameEvent || gotFrame.Event != "move" || gotFrame.Sender != "c1" {
		t.Errorf("frame should arrive intact, got %+v", gotFrame)
	}
}

func TestBusFiltersOwnOrigin(t *testing.T) {
	bus := &RedisBus{instance: "self"}

	payload := encodeBusMessage(t, BusMessage{
		Origin: "self",
		RoomID: "abc",
		Frame:  &Frame{Kind: KindGameEvent, Event: "move"},
	})
	bus.dispatchPayload(payload, func(roomID string, frame *Frame) {
		t.Errorf("an instance must never re-deliver its own frames, got %q %+v", roomID, frame)
	})
}

func TestBusDropsMalformedPayloads(t *testing.T) {
	bus := &RedisBus{instance: "self"}

	for _, payload := range []string{
		"not json",
		encodeBusMessage(t, BusMessage{Origin: "sibling", RoomID: "", Frame: &Frame{Kind: KindGameEvent}}),
		encodeBusMessage(t, BusMessage{Origin: "sibling", RoomID: "abc", Frame: nil}),
	} {
		bus.dispatchPayload(payload, func(roomID string, frame *Frame) {
			t.Errorf("payload %q should be dropped, got %q %+v", payload, roomID, frame)
		})
	}
}
