// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "arvista",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "arvista",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	OrdersPlaced = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "arvista",
		Subsystem: "shop",
		Name:      "orders_placed_total",
		Help:      "Orders created from carts.",
	})

	OrdersPaid = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "arvista",
		Subsystem: "shop",
		Name:      "orders_paid_total",
		Help:      "Orders marked paid by the payment webhook.",
	})

	OrdersExpired = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "arvista",
		Subsystem: "shop",
		Name:      "orders_expired_total",
		Help:      "Pending orders cancelled by the expiry job.",
	})

	CartAdds = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "arvista",
		Subsystem: "shop",
		Name:      "cart_adds_total",
		Help:      "Successful add-to-cart calls.",
	})

	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "arvista",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Catalog cache lookups by result.",
		},
		[]string{"result"}, // hit | miss
	)
)

var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		RequestDuration,
		RequestTotal,
		OrdersPlaced,
		OrdersPaid,
		OrdersExpired,
		CartAdds,
		CacheLookups,
	)
}

// Middleware records request count and latency per matched route, so path
// parameters do not explode label cardinality.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		RequestDuration.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		RequestTotal.WithLabelValues(c.Request.Method, route, status).Inc()
	}
}

func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

