package router

import (
	"net/http"

	"songo-backend/internal/api"
	"songo-backend/internal/api/endpoints"
)

func RelayRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		relayEndpoints := endpoints.NewRelayEndpoints(s.Handler())
		mux.HandleFunc(prefix+"/connect", s.MakeHTTPHandleFunc(relayEndpoints.Connect))
		mux.HandleFunc(prefix+"/rooms", s.MakeHTTPHandleFunc(relayEndpoints.Rooms))
	}
}
