package relay

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler wires one transport session into the registry, directory and
// router. It is the only component that touches the wire; everything it
// calls is plain in-memory state, so the relay is testable without a
// network stack.
type Handler struct {
	registry  *Registry
	directory *Directory
	router    *Router
}

func NewHandler(registry *Registry, directory *Directory, router *Router) *Handler {
	return &Handler{
		registry:  registry,
		directory: directory,
		router:    router,
	}
}

// AttachBus enables the cross-instance relay bus. Frames arriving from
// sibling instances are fanned out to local room members.
func (h *Handler) AttachBus(ctx context.Context, bus *RedisBus) {
	h.router.AttachBus(bus)
	go bus.Subscribe(ctx, func(roomID string, frame *Frame) {
		h.router.DeliverLocal(roomID, frame.Sender, frame)
	})
}

// Serve upgrades the request and runs the session. The client learns its
// connection id from the welcome frame; until it sends create/join it
// belongs to no room.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	cl := newWSClient(conn)
	h.registry.Register(cl)
	cl.trySend(&Frame{Kind: KindWelcome, ConnectionID: cl.ID})

	go cl.keepAlive()
	go cl.writeMessage()
	go cl.readMessage(h)
	return nil
}

// Rooms lists live rooms for the HTTP surface.
func (h *Handler) Rooms() []RoomRes {
	return h.directory.Snapshot()
}

// dispatch routes one decoded inbound frame. Every failure is contained to
// the originating client; siblings never observe it.
func (h *Handler) dispatch(cl *WSClient, frame *Frame) {
	switch frame.Kind {
	case KindCreateRoom, KindJoinRoom:
		h.handleJoin(cl, frame)

	case KindLeaveRoom:
		if frame.RoomID == "" {
			h.invalidMessage(cl, "leave_room requires roomId")
			return
		}
		if remaining, changed := h.directory.Leave(frame.RoomID, cl.ID); changed {
			h.router.AnnounceLeave(frame.RoomID, cl.ID, remaining)
		}

	case KindGameEvent:
		if frame.RoomID == "" {
			h.invalidMessage(cl, "game_event requires roomId")
			return
		}
		_ = h.router.Route(BroadcastTo(frame.RoomID), cl.ID, frame.Event, frame.Payload)

	case KindDirectMessage:
		if frame.Target == "" {
			h.invalidMessage(cl, "direct_message requires target")
			return
		}
		if err := h.router.Route(DirectTo(frame.Target), cl.ID, frame.Event, frame.Payload); err != nil {
			h.sendError(cl, CodeDeliveryFailed, "target connection is no longer live")
		}

	default:
		h.invalidMessage(cl, "unknown frame kind: "+frame.Kind)
	}
}

func (h *Handler) handleJoin(cl *WSClient, frame *Frame) {
	if frame.RoomID == "" {
		h.invalidMessage(cl, frame.Kind+" requires roomId")
		return
	}

	lenient := frame.Kind == KindCreateRoom
	res, err := h.directory.CreateOrJoin(frame.RoomID, cl.ID, lenient)
	switch {
	case errors.Is(err, ErrRoomNotFound):
		h.sendError(cl, CodeRoomNotFound, "room "+frame.RoomID+" does not exist")
		return
	case errors.Is(err, ErrRoomFull):
		h.sendError(cl, CodeCapacityExceeded, "room "+frame.RoomID+" is full")
		return
	case err != nil:
		h.sendError(cl, CodeInvalidMessage, err.Error())
		return
	}

	if res.Created {
		cl.trySend(&Frame{Kind: KindRoomCreated, RoomID: frame.RoomID})
		log.Printf("Client %s created room %s", cl.ID, frame.RoomID)
		return
	}

	cl.trySend(&Frame{Kind: KindRoomJoined, RoomID: frame.RoomID, Members: res.Members})

	// A retry ack changes nothing; announcing it again would make peers
	// react to a join that never happened.
	if res.Changed {
		h.router.AnnounceJoin(frame.RoomID, cl.ID, res.Members)
		log.Printf("Client %s joined room %s (%d members before)", cl.ID, frame.RoomID, len(res.Members))
	}
}

// disconnect cascades transport close: the connection leaves every room it
// was in, empty rooms are pruned, remaining members are told, and the
// identity is retired.
func (h *Handler) disconnect(cl *WSClient) {
	for roomID, remaining := range h.directory.LeaveAll(cl.ID) {
		h.router.AnnounceLeave(roomID, cl.ID, remaining)
	}
	h.registry.Unregister(cl.ID)
}

func (h *Handler) invalidMessage(cl *WSClient, msg string) {
	h.sendError(cl, CodeInvalidMessage, msg)
}

func (h *Handler) sendError(cl *WSClient, code, msg string) {
	cl.trySend(&Frame{Kind: KindError, Code: code, Message: msg})
}
