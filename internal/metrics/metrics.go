package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so tests can create as many as they like
// without colliding on the global one.
type Collector struct {
	reg *prometheus.Registry

	HTTPRequests     *prometheus.CounterVec // method, route, status
	HTTPDuration     *prometheus.HistogramVec
	StoreFallbacks   *prometheus.CounterVec // op
	Selections       *prometheus.CounterVec // mode
	SelectionResults prometheus.Histogram
	LiveUpdates      *prometheus.CounterVec // source
	StreamClients    prometheus.Gauge
	PriceAlerts      prometheus.Counter
	SignIns          *prometheus.CounterVec // outcome
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "citymove_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "citymove_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}, []string{"route"}),
		StoreFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "citymove_store_fallbacks_total",
			Help: "Vehicle reads answered from the built-in sample set.",
		}, []string{"op"}),
		Selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "citymove_selections_total",
			Help: "Vehicle selections by mode.",
		}, []string{"mode"}),
		SelectionResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "citymove_selection_results",
			Help:    "Number of vehicles returned per selection.",
			Buckets: prometheus.LinearBuckets(0, 5, 10),
		}),
		LiveUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "citymove_live_updates_total",
			Help: "Vehicle updates received from the live feed.",
		}, []string{"source"}),
		StreamClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "citymove_stream_subscribers",
			Help: "Connected live update stream clients.",
		}),
		PriceAlerts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "citymove_price_alerts_total",
			Help: "Price change alerts sent to users.",
		}),
		SignIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "citymove_sign_ins_total",
			Help: "Sign-in attempts by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		c.HTTPRequests, c.HTTPDuration,
		c.StoreFallbacks, c.Selections, c.SelectionResults,
		c.LiveUpdates, c.StreamClients, c.PriceAlerts, c.SignIns,
	)

	return c
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Registry exposes the underlying registry for tests.
func (c *Collector) Registry() *prometheus.Registry { return c.reg }

// ObserveRequest records one finished HTTP request.
func (c *Collector) ObserveRequest(method, route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(route).Observe(d.Seconds())
}

// StoreFallbackInc counts a read served from the sample set.
func (c *Collector) StoreFallbackInc(op string) {
	if c == nil {
		return
	}
	c.StoreFallbacks.WithLabelValues(op).Inc()
}

// SelectionObserve counts a selection and its result size.
func (c *Collector) SelectionObserve(mode string, results int) {
	if c == nil {
		return
	}
	c.Selections.WithLabelValues(mode).Inc()
	c.SelectionResults.Observe(float64(results))
}

func (c *Collector) LiveUpdateInc(source string) {
	if c == nil {
		return
	}
	c.LiveUpdates.WithLabelValues(source).Inc()
}

func (c *Collector) StreamClientsAdd(delta float64) {
	if c == nil {
		return
	}
	c.StreamClients.Add(delta)
}

func (c *Collector) PriceAlertInc() {
	if c == nil {
		return
	}
	c.PriceAlerts.Inc()
}

func (c *Collector) SignInInc(outcome string) {
	if c == nil {
		return
	}
	c.SignIns.WithLabelValues(outcome).Inc()
}
