// Package metrics provides Prometheus instrumentation for the Talkie backend:
// persistence outcomes, staleness sweeps and change-feed connections.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Flush results.
const (
	FlushWritten = "written"
	FlushSkipped = "skipped"
	FlushFailed  = "failed"
)

var (
	// FlushesTotal counts flush attempts by result.
	FlushesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "talkie_flushes_total",
		Help: "Snapshot flush attempts",
	}, []string{"result"}) // result = "written", "skipped", "failed"

	// BackupFailures counts failed backup writes; they never block a flush.
	BackupFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "talkie_backup_failures_total",
		Help: "Failed backup snapshot writes",
	})

	// SweptEntries counts expired presence and typing entries removed.
	SweptEntries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "talkie_swept_entries_total",
		Help: "Expired ephemeral entries removed by the sweeper",
	}, []string{"kind"}) // kind = "presence", "typing"

	// MessagesSent counts accepted messages.
	MessagesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "talkie_messages_sent_total",
		Help: "Messages accepted",
	})

	// WSConnections tracks open change-feed sockets.
	WSConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "talkie_ws_connections",
		Help: "Open change feed WebSocket connections",
	})
)

func init() {
	prometheus.MustRegister(
		FlushesTotal,
		BackupFailures,
		SweptEntries,
		MessagesSent,
		WSConnections,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
