package metrics

import (
	"fmt"

	"github.com/jpalmerr/mifi-exporter/internal/prober"
	"github.com/prometheus/client_golang/prometheus"
)

// LabelName is the label carrying the target's canonical address.
const LabelName = "mifi_ip"

// Metric names exposed to the scrape collector.
const (
	RespondingName   = "http_responding"
	ResponseTimeName = "http_response_time_ms"
	StatusCodeName   = "http_status_code"
)

// Gauges groups the gauge vectors written once per poll cycle.
//
// Individual gauge sets are atomic; Gauges adds no extra locking, so a scrape
// racing with [Gauges.Record] may observe values from two adjacent cycles.
type Gauges struct {
	responding   *prometheus.GaugeVec
	responseTime *prometheus.GaugeVec
	statusCode   *prometheus.GaugeVec
}

// NewGauges creates the three gauge vectors and registers them on reg.
//
// Returns an error if any of them is already registered on reg; nothing is
// left registered in that case.
func NewGauges(reg prometheus.Registerer) (*Gauges, error) {
	g := &Gauges{
		responding: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: RespondingName,
			Help: "Whether the target answered the last HTTP probe (1) or not (0).",
		}, []string{LabelName}),
		responseTime: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: ResponseTimeName,
			Help: "HTTP response time in milliseconds.",
		}, []string{LabelName}),
		statusCode: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: StatusCodeName,
			Help: "HTTP status code of the last probe, 500 when the target did not answer.",
		}, []string{LabelName}),
	}

	registered := make([]prometheus.Collector, 0, 3)
	for _, c := range g.collectors() {
		if err := reg.Register(c); err != nil {
			for _, r := range registered {
				reg.Unregister(r)
			}
			return nil, fmt.Errorf("failed to register gauge: %w", err)
		}
		registered = append(registered, c)
	}

	return g, nil
}

// Record overwrites all three gauges for label with the values in m.
func (g *Gauges) Record(label string, m prober.Measurement) {
	g.responding.WithLabelValues(label).Set(float64(m.Responding))
	g.responseTime.WithLabelValues(label).Set(m.ResponseTimeMs)
	g.statusCode.WithLabelValues(label).Set(float64(m.StatusCode))
}

// Unregister removes the gauges from reg so they can be registered again.
func (g *Gauges) Unregister(reg prometheus.Registerer) {
	for _, c := range g.collectors() {
		reg.Unregister(c)
	}
}

// Len returns the number of gauge vectors, which is fixed.
func (g *Gauges) Len() int {
	return len(g.collectors())
}

func (g *Gauges) collectors() []prometheus.Collector {
	return []prometheus.Collector{g.responding, g.responseTime, g.statusCode}
}
