package observability

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoopMetrics(t *testing.T) {
	var m Metrics = NoopMetrics{}
	assert.NotPanics(t, func() {
		m.Counter(MetricPagesLoaded, 1)
		m.Gauge("g", 1)
		m.Histogram("h", 1)
		m.Timing("t", time.Second)
	})
}

func TestOrNoop(t *testing.T) {
	assert.IsType(t, NoopMetrics{}, OrNoop(nil))

	mem := NewInMemoryMetrics()
	assert.Same(t, mem, OrNoop(mem))
}

func TestInMemoryMetrics(t *testing.T) {
	t.Run("counters accumulate per tag set", func(t *testing.T) {
		m := NewInMemoryMetrics()
		m.Counter(MetricPositionsWritten, 2)
		m.Counter(MetricPositionsWritten, 3)
		m.Counter(MetricPersistFailures, 1, T("op", "reorder"))

		assert.Equal(t, int64(5), m.GetCounter(MetricPositionsWritten))
		assert.Equal(t, int64(1), m.GetCounter(MetricPersistFailures, T("op", "reorder")))
		assert.Zero(t, m.GetCounter(MetricPersistFailures))
	})

	t.Run("gauges keep the last value", func(t *testing.T) {
		m := NewInMemoryMetrics()
		m.Gauge("snapshot.len", 10)
		m.Gauge("snapshot.len", 20)
		assert.Equal(t, 20.0, m.GetGauge("snapshot.len"))
	})

	t.Run("histograms and timings append", func(t *testing.T) {
		m := NewInMemoryMetrics()
		m.Histogram("page.size", 10)
		m.Histogram("page.size", 4)
		m.Timing("page.load", time.Millisecond)

		assert.Equal(t, []float64{10, 4}, m.GetHistogram("page.size"))
		assert.Equal(t, []time.Duration{time.Millisecond}, m.GetTimings("page.load"))
	})

	t.Run("reset clears everything", func(t *testing.T) {
		m := NewInMemoryMetrics()
		m.Counter(MetricReconciliations, 1)
		m.Histogram("h", 1)
		m.Reset()

		assert.Zero(t, m.GetCounter(MetricReconciliations))
		assert.Empty(t, m.GetHistogram("h"))
	})

	t.Run("safe for concurrent use", func(t *testing.T) {
		m := NewInMemoryMetrics()
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				m.Counter(MetricPagesLoaded, 1)
			}()
		}
		wg.Wait()
		assert.Equal(t, int64(50), m.GetCounter(MetricPagesLoaded))
	})
}

func TestFormatKey(t *testing.T) {
	tests := []struct {
		name     string
		tags     []Tag
		expected string
	}{
		{name: "no tags", expected: "tasklist.pages_loaded"},
		{name: "single tag", tags: []Tag{T("store", "sqlite")}, expected: "tasklist.pages_loaded:store=sqlite"},
		{
			name:     "multiple tags",
			tags:     []Tag{T("store", "redis"), T("result", "ok")},
			expected: "tasklist.pages_loaded:store=redis:result=ok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatKey(MetricPagesLoaded, tt.tags))
		})
	}
}
