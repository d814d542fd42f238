package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricsOnce sync.Once
	promMW      *fiberprometheus.FiberPrometheus

	// ActiveWebSockets tracks currently open realtime connections.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "foodgram_active_websockets",
		Help: "Number of open realtime websocket connections",
	})
)

// InitMetrics returns the process-wide HTTP metrics collector.
// fiberprometheus registers on the default registry, so it is only built once
// even when several servers are constructed (tests do this).
func InitMetrics(service string) *fiberprometheus.FiberPrometheus {
	metricsOnce.Do(func() {
		promMW = fiberprometheus.New(service)
	})
	return promMW
}

// MetricsMiddleware records request counts and latencies.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return p.Middleware
}
