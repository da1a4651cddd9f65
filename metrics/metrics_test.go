package metrics

import (
	"bytes"
	"context"
	"math/rand"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/andybalholm/blockpack"
)

func TestCollectorCountsBlocks(t *testing.T) {
	c := NewCollector()
	reg := prometheus.NewRegistry()
	if err := c.Register(reg); err != nil {
		t.Fatal(err)
	}

	// One compressible block followed by a short random one.
	data := make([]byte, 65536+4464)
	rand.New(rand.NewSource(3)).Read(data[65536:])

	opts := blockpack.DefaultOptions()
	opts.Observer = c
	var container bytes.Buffer
	if _, err := blockpack.Compress(context.Background(), &container, bytes.NewReader(data), int64(len(data)), opts); err != nil {
		t.Fatal(err)
	}
	if _, err := blockpack.Decompress(context.Background(), &bytes.Buffer{}, &container, opts); err != nil {
		t.Fatal(err)
	}

	for _, direction := range []string{"compress", "decompress"} {
		if got := testutil.ToFloat64(c.Blocks.WithLabelValues(direction, "compressed")); got != 1 {
			t.Errorf("%s compressed records = %v, want 1", direction, got)
		}
		if got := testutil.ToFloat64(c.Blocks.WithLabelValues(direction, "raw-partial")); got != 1 {
			t.Errorf("%s raw-partial records = %v, want 1", direction, got)
		}
		if got := testutil.ToFloat64(c.OriginalBytes.WithLabelValues(direction, "raw-partial")); got != 4464 {
			t.Errorf("%s raw-partial original bytes = %v, want 4464", direction, got)
		}
		if got := testutil.ToFloat64(c.StoredBytes.WithLabelValues(direction, "raw-partial")); got != 4464 {
			t.Errorf("%s raw-partial stored bytes = %v, want 4464", direction, got)
		}
	}
	if n := testutil.CollectAndCount(c.Blocks); n != 4 {
		t.Errorf("got %d block series, want 4", n)
	}
}

func TestRegisterTwiceFails(t *testing.T) {
	c := NewCollector()
	reg := prometheus.NewRegistry()
	if err := c.Register(reg); err != nil {
		t.Fatal(err)
	}
	if err := c.Register(reg); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}
