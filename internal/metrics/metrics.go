package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QuantizeOpsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quantize_ops_total",
		Help: "The total number of dynamic quantization calls",
	})

	QuantizeDuration = promauto.NewSummary(prometheus.SummaryOpts{
		Name: "quantize_duration_seconds",
		Help: "Duration of dynamic quantization calls",
	})

	QuantizeElements = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quantize_elements",
		Help:    "Distribution of tensor element counts per quantization call",
		Buckets: []float64{1, 64, 1024, 16384, 262144, 1048576, 16777216, 134217728},
	})

	QuantizeScale = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quantize_scale",
		Help:    "Distribution of derived quantization scales",
		Buckets: []float64{1e-6, 1e-5, 1e-4, 1e-3, 1e-2, 1e-1, 1, 10, 100},
	})

	DegenerateInputsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quantize_degenerate_inputs_total",
		Help: "Count of quantization calls with a collapsed (scale=0) input range",
	})

	ValidationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "validation_errors_total",
		Help: "Total number of validation errors",
	}, []string{"operation", "error_type"})

	TensorMemoryAllocated = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tensor_memory_allocated_bytes",
		Help: "Current bytes held by tensor buffers",
	})

	FlightFetchDuration = promauto.NewSummary(prometheus.SummaryOpts{
		Name: "flight_fetch_duration_seconds",
		Help: "Duration of Arrow Flight tensor fetches",
	})

	FlightFetchErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flight_fetch_errors_total",
		Help: "Count of failed Arrow Flight tensor fetches",
	})
)

// RecordQuantize observes one completed quantization call.
func RecordQuantize(elements int, scale float32, duration time.Duration) {
	QuantizeOpsTotal.Inc()
	QuantizeDuration.Observe(duration.Seconds())
	QuantizeElements.Observe(float64(elements))
	QuantizeScale.Observe(float64(scale))
	if scale == 0 {
		DegenerateInputsTotal.Inc()
	}
}

// RecordValidationError counts one rejected operator input.
func RecordValidationError(operation, errorType string) {
	ValidationErrors.WithLabelValues(operation, errorType).Inc()
}

// RecordTensorMemory updates the allocator byte gauge.
func RecordTensorMemory(bytes int64) {
	TensorMemoryAllocated.Set(float64(bytes))
}

// RecordFlightFetch observes one Flight fetch attempt.
func RecordFlightFetch(duration time.Duration, err error) {
	FlightFetchDuration.Observe(duration.Seconds())
	if err != nil {
		FlightFetchErrorsTotal.Inc()
	}
}
