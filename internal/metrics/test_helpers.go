package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// CollectorValue returns the current value of a single gauge or counter.
// It is used by tests in other packages to assert on recorded metrics.
func CollectorValue(c prometheus.Collector) (float64, error) {
	ch := make(chan prometheus.Metric, 1)
	go func() {
		c.Collect(ch)
		close(ch)
	}()

	var value float64
	for m := range ch {
		pb := &dto.Metric{}
		if err := m.Write(pb); err != nil {
			return 0, err
		}
		switch {
		case pb.Gauge != nil:
			value = pb.Gauge.GetValue()
		case pb.Counter != nil:
			value = pb.Counter.GetValue()
		}
	}
	return value, nil
}

// CounterVecValue returns the current value of a CounterVec for the given labels.
func CounterVecValue(metric *prometheus.CounterVec, labels map[string]string) (float64, error) {
	return CollectorValue(metric.With(labels))
}
