package relay

import "github.com/prometheus/client_golang/prometheus"

var (
	wsConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "songo_relay_connections",
			Help: "Current number of active websocket connections.",
		},
	)
	wsRooms = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "songo_relay_rooms",
			Help: "Current number of live rooms.",
		},
	)
	wsEventsRelayed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "songo_relay_events_relayed_total",
			Help: "Total relayed events delivered to clients.",
		},
	)
	wsDeliveryFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "songo_relay_delivery_failures_total",
			Help: "Total direct messages dropped because the target was gone.",
		},
	)
)

func init() {
	prometheus.MustRegister(wsConnections, wsRooms, wsEventsRelayed, wsDeliveryFailures)
}

func incConnections() {
	wsConnections.Inc()
}

func decConnections() {
	wsConnections.Dec()
}

func setRooms(count int) {
	wsRooms.Set(float64(count))
}

func addRelayed(count int) {
	wsEventsRelayed.Add(float64(count))
}

func incDeliveryFailure() {
	wsDeliveryFailures.Inc()
}
