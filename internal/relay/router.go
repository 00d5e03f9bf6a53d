package relay

import (
	"context"
	"encoding/json"
	"errors"
	"log"
)

// ErrTargetGone reports a direct message whose target connection is no
// longer live. The send is dropped; the caller tells the sender.
var ErrTargetGone = errors.New("target connection is not live")

// Address selects the recipients of a relayed event: every member of a room
// except the sender, or exactly one connection.
type Address struct {
	Room string
	Conn string
}

func BroadcastTo(roomID string) Address { return Address{Room: roomID} }
func DirectTo(connID string) Address    { return Address{Conn: connID} }

// Router fans relayed frames out to recipient connections. Membership is
// snapshotted under the directory lock; the sends themselves happen outside
// it so a slow recipient cannot stall unrelated rooms.
type Router struct {
	registry  *Registry
	directory *Directory
	bus       *RedisBus
}

func NewRouter(registry *Registry, directory *Directory) *Router {
	return &Router{
		registry:  registry,
		directory: directory,
	}
}

// AttachBus enables cross-instance fan-out over Redis pub/sub.
func (rt *Router) AttachBus(bus *RedisBus) {
	rt.bus = bus
}

// Route is the single dispatch point for both addressing modes. Broadcasts
// never error: a lone player simply has no observer yet. A direct send to a
// dead target returns ErrTargetGone.
func (rt *Router) Route(addr Address, senderID, event string, payload json.RawMessage) error {
	frame := &Frame{
		Kind:    KindGameEvent,
		RoomID:  addr.Room,
		Sender:  senderID,
		Event:   event,
		Payload: payload,
	}

	if addr.Conn != "" {
		cl, ok := rt.registry.Client(addr.Conn)
		if !ok {
			incDeliveryFailure()
			return ErrTargetGone
		}
		rt.send(cl, frame)
		return nil
	}

	rt.DeliverLocal(addr.Room, senderID, frame)
	rt.publish(addr.Room, frame)
	return nil
}

// AnnounceJoin tells the room's pre-existing members that a new member
// arrived. This is the one event the relay synthesizes on its own.
func (rt *Router) AnnounceJoin(roomID, newMemberID string, existing []string) {
	frame := &Frame{Kind: KindPlayerJoined, RoomID: roomID, ConnectionID: newMemberID}
	rt.deliverTo(existing, frame)
	rt.publish(roomID, frame)
}

// AnnounceLeave tells the remaining members that a member departed.
func (rt *Router) AnnounceLeave(roomID, leftMemberID string, remaining []string) {
	frame := &Frame{Kind: KindPlayerLeft, RoomID: roomID, ConnectionID: leftMemberID}
	rt.deliverTo(remaining, frame)
	rt.publish(roomID, frame)
}

// DeliverLocal sends the frame to every local member of the room except
// exceptID, at most once each. Used for locally originated broadcasts and
// for frames arriving over the bus.
func (rt *Router) DeliverLocal(roomID, exceptID string, frame *Frame) {
	rt.deliverTo(rt.directory.MembersExcept(roomID, exceptID), frame)
}

func (rt *Router) deliverTo(connIDs []string, frame *Frame) {
	delivered := 0
	for _, id := range connIDs {
		cl, ok := rt.registry.Client(id)
		if !ok {
			continue
		}
		rt.send(cl, frame)
		delivered++
	}
	if delivered > 0 {
		addRelayed(delivered)
	}
}

// send enqueues without blocking. A full buffer means the recipient stopped
// draining; the connection is closed and its read pump runs the disconnect
// cascade.
func (rt *Router) send(cl *WSClient, frame *Frame) {
	if !cl.trySend(frame) {
		log.Printf("Client %s send buffer full, dropping connection", cl.ID)
		cl.forceClose()
	}
}

func (rt *Router) publish(roomID string, frame *Frame) {
	if rt.bus == nil {
		return
	}
	if err := rt.bus.Publish(context.Background(), roomID, frame); err != nil {
		log.Printf("Error publishing to relay bus for room %s: %v", roomID, err)
	}
}
