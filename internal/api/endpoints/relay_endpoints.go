package endpoints

import (
	"fmt"
	"net/http"

	"songo-backend/internal/relay"
)

type RelayEndpoints interface {
	Connect(http.ResponseWriter, *http.Request) error
	Rooms(http.ResponseWriter, *http.Request) error
}

type relayEndpoints struct {
	handler *relay.Handler
}

func NewRelayEndpoints(handler *relay.Handler) RelayEndpoints {
	return &relayEndpoints{handler: handler}
}

// Connect hands the request to the relay's session handler. Room
// membership is negotiated over the socket itself, so the upgrade takes no
// parameters.
func (h *relayEndpoints) Connect(w http.ResponseWriter, r *http.Request) error {
	if h.handler == nil {
		return &HTTPError{
			StatusCode: http.StatusServiceUnavailable,
			Message:    "Relay not available",
			ErrorLog:   fmt.Errorf("relay handler missing"),
		}
	}

	if err := h.handler.Serve(w, r); err != nil {
		// Upgrade already wrote its own response; just surface the log.
		fmt.Println(fmt.Errorf("websocket upgrade: %w", err))
	}
	return nil
}

func (h *relayEndpoints) Rooms(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: func(w http.ResponseWriter, r *http.Request) error {
			return WriteJSON(w, http.StatusOK, h.handler.Rooms())
		},
	})
}
