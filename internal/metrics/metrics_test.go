package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func delta(t *testing.T, collector prometheus.Collector, observe func()) float64 {
	t.Helper()

	before := testutil.ToFloat64(collector)
	observe()
	after := testutil.ToFloat64(collector)
	return after - before
}

func TestCodecRecords(t *testing.T) {
	m := NewCodec("", "")
	start := time.Now().Add(-200 * time.Millisecond)

	if inc := delta(t, codecOperationsTotal.WithLabelValues("decode", "unknown", "unknown", "success"), func() {
		m.Observe("decode", nil, start)
	}); inc != 1 {
		t.Fatalf("expected decode counter increment, got %v", inc)
	}

	if inc := delta(t, codecOperationsTotal.WithLabelValues("decode", "unknown", "unknown", "error"), func() {
		m.Observe("decode", errors.New("oops"), start)
	}); inc != 1 {
		t.Fatalf("expected decode error counter increment, got %v", inc)
	}
}

func TestCodecRecordsBatch(t *testing.T) {
	m := NewCodec("NEAR", "testnet")
	start := time.Now().Add(-time.Second)

	if inc := delta(t, codecOperationsTotal.WithLabelValues("encode_actions", "NEAR", "testnet", "success"), func() {
		m.ObserveBatch("encode_actions", nil, 3, start)
	}); inc != 1 {
		t.Fatalf("expected batch counter increment, got %v", inc)
	}

	before := testutil.CollectAndCount(codecBatchSize)
	m.ObserveBatch("encode_actions_other", nil, 5, start)
	if after := testutil.CollectAndCount(codecBatchSize); after != before+1 {
		t.Fatalf("expected a new batch size series, got %d -> %d", before, after)
	}
}
