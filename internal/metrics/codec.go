package metrics

import (
	"time"

	"github.com/goodnatureofminers/multichain-tx/internal/chain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	codecOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "multichain_tx",
		Subsystem: "codec",
		Name:      "operations_total",
		Help:      "Count of encode, decode and build operations.",
	}, []string{"operation", "coin", "network", "status"})

	codecOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "multichain_tx",
		Subsystem: "codec",
		Name:      "operation_duration_seconds",
		Help:      "Duration of encode, decode and build operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "coin", "network", "status"})

	codecBatchSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "multichain_tx",
		Subsystem: "codec",
		Name:      "batch_size",
		Help:      "Number of items handled per batch operation.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1..2048
	}, []string{"operation", "coin", "network"})
)

// Codec tracks metrics for codec operations of one chain.
type Codec struct {
	coin    chain.Coin
	network chain.Network
}

// NewCodec constructs a metrics collector for codec operations.
func NewCodec(coin chain.Coin, network chain.Network) *Codec {
	if coin == "" {
		coin = "unknown"
	}
	if network == "" {
		network = "unknown"
	}
	return &Codec{coin: coin, network: network}
}

// Observe records a single operation outcome and duration.
func (m Codec) Observe(operation string, err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}

	codecOperationsTotal.WithLabelValues(operation, string(m.coin), string(m.network), status).Inc()
	codecOperationDuration.WithLabelValues(operation, string(m.coin), string(m.network), status).
		Observe(time.Since(started).Seconds())
}

// ObserveBatch records a batch operation and the number of items it covered.
func (m Codec) ObserveBatch(operation string, err error, items int, started time.Time) {
	m.Observe(operation, err, started)
	codecBatchSize.WithLabelValues(operation, string(m.coin), string(m.network)).Observe(float64(items))
}
