package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const promNamespace = "condor_bot"

type promCounter struct {
	counter prometheus.Counter
}

func (p promCounter) Inc() {
	p.counter.Inc()
}

type promGauge struct {
	gauge prometheus.Gauge
}

func (p promGauge) Set(v float64) {
	p.gauge.Set(v)
}

type Prometheus struct {
	Metrics *Metrics

	registry *prometheus.Registry
}

func NewPrometheus() *Prometheus {
	registry := prometheus.NewRegistry()
	cycles := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "cycles_total",
		Help:      "Total number of polling cycles.",
	})
	unusable := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "quotes_unusable_total",
		Help:      "Total number of cycles skipped on missing quote data.",
	})
	entries := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "trades_entered_total",
		Help:      "Total number of trades entered.",
	})
	rejections := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "trades_rejected_total",
		Help:      "Total number of entries rejected on non-positive net credit.",
	})
	exits := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "trades_exited_total",
		Help:      "Total number of trades exited.",
	})
	pnl := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: promNamespace,
		Name:      "mark_to_market_pnl",
		Help:      "Current lot-scaled mark-to-market P&L.",
	})
	spot := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: promNamespace,
		Name:      "spot_price",
		Help:      "Last observed spot price.",
	})

	registry.MustRegister(cycles, unusable, entries, rejections, exits, pnl, spot)

	return &Prometheus{
		Metrics: &Metrics{
			Cycles:         promCounter{cycles},
			QuotesUnusable: promCounter{unusable},
			Entries:        promCounter{entries},
			Rejections:     promCounter{rejections},
			Exits:          promCounter{exits},
			PnL:            promGauge{pnl},
			Spot:           promGauge{spot},
		},
		registry: registry,
	}
}

func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
