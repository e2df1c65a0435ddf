package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Module provides the pipeline metrics via fx, registered on the default
// Prometheus registerer.
var Module = fx.Provide(
	func() *Metrics {
		return NewMetrics(prometheus.DefaultRegisterer)
	})
