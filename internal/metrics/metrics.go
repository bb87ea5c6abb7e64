package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ServerMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec

	OrdersPlaced   prometheus.Counter
	StockConflicts prometheus.Counter
}

func NewServerMetrics(service string) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "qbuy",
		Subsystem: service,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "qbuy",
		Subsystem: service,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})
	ordersPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "qbuy",
		Subsystem: service,
		Name:      "orders_placed_total",
		Help:      "Successfully committed orders.",
	})
	stockConflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "qbuy",
		Subsystem: service,
		Name:      "stock_conflicts_total",
		Help:      "Checkout attempts rejected because stock ran out.",
	})

	prometheus.MustRegister(requests, latency, ordersPlaced, stockConflicts)
	return &ServerMetrics{
		Requests:       requests,
		LatencyMS:      latency,
		OrdersPlaced:   ordersPlaced,
		StockConflicts: stockConflicts,
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
