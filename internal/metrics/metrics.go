package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ConnectionsActive tracks registered connections.
	ConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "roomrelay_connections_active",
		Help: "Number of currently registered connections.",
	})

	// RoomsActive tracks existing rooms.
	RoomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "roomrelay_rooms_active",
		Help: "Number of rooms currently in the store.",
	})

	// MessagesBroadcast counts messages appended and fanned out to rooms.
	MessagesBroadcast = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roomrelay_messages_broadcast_total",
		Help: "Total messages broadcast to rooms.",
	})

	// DeliveriesDropped counts frames dropped because a connection's
	// outbound queue was full.
	DeliveriesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roomrelay_deliveries_dropped_total",
		Help: "Total outbound frames dropped due to a full delivery queue.",
	})
)

// Handler exposes Prometheus metrics at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
