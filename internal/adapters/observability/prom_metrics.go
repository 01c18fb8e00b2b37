package observability

import (
	"fmt"
	"log"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/volttrace/volttrace/internal/ports"
)

type PromObs struct {
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
}

func NewPromObs() *PromObs {
	samples := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "volttrace_samples_total",
		Help: "Accepted samples taken by the scheduler.",
	})
	dropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "volttrace_samples_dropped_total",
		Help: "Per-metric sample data lost to storage or clock faults.",
	})
	publishFails := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "volttrace_publish_failures_total",
		Help: "Publishes abandoned after exhausting their retry budget.",
	})
	reconnects := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "volttrace_broker_reconnects_total",
		Help: "Successful broker session (re)connects.",
	})
	backlogUploads := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "volttrace_backlog_files_uploaded_total",
		Help: "Day files fully republished by the parked uploader.",
	})
	connState := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "volttrace_connectivity_state",
		Help: "0=disconnected, 1=connecting, 2=connected.",
	})
	sampleIndex := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "volttrace_sample_index",
		Help: "Current position inside the minute window.",
	})
	parked := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "volttrace_parked",
		Help: "1 while the parked detector reports sustained low current.",
	})
	appendLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "volttrace_append_latency_seconds",
		Help:    "Open-write-close latency of one log append.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
	})

	prometheus.MustRegister(samples, dropped, publishFails, reconnects,
		backlogUploads, connState, sampleIndex, parked, appendLatency)

	return &PromObs{
		counters: map[string]prometheus.Counter{
			"volttrace_samples_total":                samples,
			"volttrace_samples_dropped_total":        dropped,
			"volttrace_publish_failures_total":       publishFails,
			"volttrace_broker_reconnects_total":      reconnects,
			"volttrace_backlog_files_uploaded_total": backlogUploads,
		},
		gauges: map[string]prometheus.Gauge{
			"volttrace_connectivity_state": connState,
			"volttrace_sample_index":       sampleIndex,
			"volttrace_parked":             parked,
		},
		histos: map[string]prometheus.Observer{
			"volttrace_append_latency_seconds": appendLatency,
		},
	}
}

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {
	log.Printf("INFO: %s%s", msg, formatFields(fields))
}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	if err != nil {
		log.Printf("ERROR: %s: %v%s", msg, err, formatFields(fields))
	}
}

func (p *PromObs) LogCritical(msg string, err error, fields ...ports.Field) {
	if err != nil {
		log.Printf("CRITICAL: %s: %v%s", msg, err, formatFields(fields))
	}
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

func (p *PromObs) RecordDrop(metric string, err error) {
	p.IncCounter("volttrace_samples_dropped_total", 1)
	if err != nil {
		log.Printf("DROP metric=%s err=%v", metric, err)
	}
}

func formatFields(fields []ports.Field) string {
	if len(fields) == 0 {
		return ""
	}
	var b strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
	}
	return b.String()
}
