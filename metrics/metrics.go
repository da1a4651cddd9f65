// Package metrics exports per-block container statistics as Prometheus
// metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/andybalholm/blockpack"
)

const namespace = "blockpack"

// Label names.
const (
	LabelDirection = "direction"
	LabelKind      = "kind"
)

// A Collector counts blocks, and the bytes in and out of the codec, by
// direction ("compress" or "decompress") and record kind. It implements
// blockpack.BlockObserver.
type Collector struct {
	Blocks        *prometheus.CounterVec
	OriginalBytes *prometheus.CounterVec
	StoredBytes   *prometheus.CounterVec
}

// NewCollector returns a Collector whose metrics are not yet registered.
func NewCollector() *Collector {
	return &Collector{
		Blocks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "block",
			Name:      "records_total",
			Help:      "Number of block records written or read.",
		}, []string{LabelDirection, LabelKind}),

		OriginalBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "block",
			Name:      "original_bytes_total",
			Help:      "Uncompressed bytes covered by block records.",
		}, []string{LabelDirection, LabelKind}),

		StoredBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "block",
			Name:      "stored_bytes_total",
			Help:      "Payload bytes stored in block records.",
		}, []string{LabelDirection, LabelKind}),
	}
}

// Register registers the Collector's metrics with r.
func (c *Collector) Register(r prometheus.Registerer) error {
	for _, m := range []prometheus.Collector{c.Blocks, c.OriginalBytes, c.StoredBytes} {
		if err := r.Register(m); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collector) ObserveBlock(e blockpack.BlockEvent) {
	direction := "compress"
	if e.Decode {
		direction = "decompress"
	}
	kind := e.Kind.String()
	c.Blocks.WithLabelValues(direction, kind).Inc()
	c.OriginalBytes.WithLabelValues(direction, kind).Add(float64(e.OriginalLen))
	c.StoredBytes.WithLabelValues(direction, kind).Add(float64(e.StoredLen))
}
