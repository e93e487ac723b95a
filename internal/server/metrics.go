package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gsdkit/reqgraph/internal/store"
)

var (
	stateUpdates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reqgraph_state_updates_total",
		Help: "Number of graph state recomputes observed by the server.",
	})

	layoutDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "reqgraph_layout_duration_seconds",
		Help:    "Time spent computing the layered layout per state update.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
	})

	connectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reqgraph_connected_clients",
		Help: "Number of connected WebSocket clients.",
	})

	graphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reqgraph_graph_nodes",
		Help: "Number of nodes in the current layout.",
	})

	graphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reqgraph_graph_edges",
		Help: "Number of edges in the current layout.",
	})

	graphGeneration = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reqgraph_graph_generation",
		Help: "Generation counter of the current graph state.",
	})

	wsMessagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reqgraph_ws_messages_sent_total",
		Help: "WebSocket messages delivered to clients, by message type.",
	}, []string{"type"})
)

// observeState records one state update in the metrics.
func observeState(state store.State) {
	stateUpdates.Inc()
	layoutDuration.Observe(state.ComputeDuration.Seconds())
	graphNodes.Set(float64(len(state.Layout.Nodes)))
	graphEdges.Set(float64(len(state.Layout.Edges)))
	graphGeneration.Set(float64(state.Generation))
}
