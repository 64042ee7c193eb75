package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nestline/nestline/pkg/infra/prometheus"
)

type metricsMiddleware struct{}

func NewMetricsMiddleware() Middleware {
	return &metricsMiddleware{}
}

func (m *metricsMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		// Route template, not the raw path, to bound label cardinality.
		path := c.Route().Path
		method := c.Method()
		status := strconv.Itoa(c.Response().StatusCode())

		prometheus.RequestTotal.WithLabelValues(method, path, status).Inc()
		prometheus.RequestLatency.WithLabelValues(method, path).
			Observe(float64(time.Since(start).Milliseconds()))

		return err
	}
}
