package metrics

type Counter interface {
	Inc()
}

type Gauge interface {
	Set(v float64)
}

type Metrics struct {
	Cycles         Counter
	QuotesUnusable Counter
	Entries        Counter
	Rejections     Counter
	Exits          Counter
	PnL            Gauge
	Spot           Gauge
}

type noopCounter struct{}

func (noopCounter) Inc() {}

type noopGauge struct{}

func (noopGauge) Set(float64) {}

func NewNoop() *Metrics {
	n := noopCounter{}
	g := noopGauge{}
	return &Metrics{
		Cycles:         n,
		QuotesUnusable: n,
		Entries:        n,
		Rejections:     n,
		Exits:          n,
		PnL:            g,
		Spot:           g,
	}
}
