package relay

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WSClient owns one physical connection end-to-end. Rooms it belongs to are
// tracked by the Directory, not here; the client only carries its identity
// and the outbound queue drained by writeMessage.
type WSClient struct {
	Conn     *websocket.Conn
	Message  chan *Frame
	ID       string
	done     chan struct{} // Signal for coordinating goroutine shutdown
	mu       sync.Mutex    // Mutex for connection access
	isClosed bool          // Flag to track connection state
}

func newWSClient(conn *websocket.Conn) *WSClient {
	return &WSClient{
		Conn:    conn,
		Message: make(chan *Frame, 32),
		done:    make(chan struct{}),
	}
}

// trySend enqueues a frame without blocking. The Message channel is never
// closed; writers exit via done instead, so a racing send cannot panic.
func (cl *WSClient) trySend(f *Frame) bool {
	select {
	case cl.Message <- f:
		return true
	default:
		return false
	}
}

// forceClose tears down the transport. The read pump observes the closed
// connection and runs the normal disconnect cascade exactly once.
func (cl *WSClient) forceClose() {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	if cl.isClosed {
		return
	}
	cl.isClosed = true
	if cl.Conn != nil {
		cl.Conn.Close()
	}
}

func (cl *WSClient) keepAlive() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-cl.done:
			return
		case <-ticker.C:
			cl.mu.Lock()
			if cl.isClosed {
				cl.mu.Unlock()
				return
			}
			err := cl.Conn.WriteMessage(websocket.PingMessage, nil)
			cl.mu.Unlock()

			if err != nil {
				log.Printf("Ping error for client %s: %v", cl.ID, err)
				return
			}
		}
	}
}

func (cl *WSClient) writeMessage() {
	defer func() {
		cl.mu.Lock()
		cl.isClosed = true
		cl.Conn.Close()
		cl.mu.Unlock()
	}()

	for {
		select {
		case <-cl.done:
			return
		case frame := <-cl.Message:
			cl.mu.Lock()
			if cl.isClosed {
				cl.mu.Unlock()
				return
			}
			err := cl.Conn.WriteJSON(frame)
			cl.mu.Unlock()

			if err != nil {
				log.Printf("Error sending frame to client %s: %v", cl.ID, err)
				return
			}
		}
	}
}

// readMessage decodes inbound frames and hands them to the handler. An
// undecodable frame is reported back to this client only; the connection
// stays open. Transport close runs the disconnect cascade.
func (cl *WSClient) readMessage(h *Handler) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in readMessage: %v", r)
		}

		close(cl.done)
		h.disconnect(cl)
		log.Printf("Client %s disconnected", cl.ID)
	}()

	cl.Conn.SetReadLimit(512 * 1024)

	for {
		_, raw, err := cl.Conn.ReadMessage()
		if err != nil {
			if closeErr, ok := err.(*websocket.CloseError); ok {
				if closeErr.Code == websocket.CloseNormalClosure ||
					closeErr.Code == websocket.CloseGoingAway ||
					closeErr.Code == websocket.CloseNoStatusReceived {
					break
				}
			}
			log.Printf("Error reading frame from client %s: %v", cl.ID, err)
			break
		}

		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			h.invalidMessage(cl, "frame is not valid JSON")
			continue
		}

		h.dispatch(cl, &frame)
	}
}
