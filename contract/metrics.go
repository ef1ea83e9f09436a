package contract

import (
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bitfsorg/libstake-go/ledger"
)

const metricsNamespace = "stake"

// Metrics exposes ledger activity to Prometheus. A nil *Metrics records nothing.
type Metrics struct {
	reg prometheus.Registerer

	calls        *prometheus.CounterVec
	poolAmount   *prometheus.GaugeVec
	activeStakes *prometheus.GaugeVec
	feeCollected prometheus.Gauge
}

// NewMetrics creates the ledger collectors and registers them on reg.
// On error nothing stays registered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		reg: reg,
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "calls_total",
			Help:      "Entry point calls by operation and result.",
		}, []string{"op", "result"}),
		poolAmount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "pool_amount",
			Help:      "Reward pool balance per collection.",
		}, []string{"collection"}),
		activeStakes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "active_stakings",
			Help:      "Tokens currently in custody per collection.",
		}, []string{"collection"}),
		feeCollected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "fee_collected",
			Help:      "Unstake fees collected and not yet withdrawn.",
		}),
	}
	var registered []prometheus.Collector
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			for _, r := range registered {
				reg.Unregister(r)
			}
			return nil, err
		}
		registered = append(registered, c)
	}
	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.calls, m.poolAmount, m.activeStakes, m.feeCollected}
}

// unregister removes the collectors from the registerer they were created on.
func (m *Metrics) unregister() {
	for _, c := range m.collectors() {
		m.reg.Unregister(c)
	}
}

// serveMetrics exposes reg on addr under /metrics until Close.
func (c *Contract) serveMetrics(addr string, reg prometheus.Registerer) error {
	gatherer, ok := reg.(prometheus.Gatherer)
	if !ok {
		gatherer = prometheus.DefaultGatherer
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.log.Error("metrics listener stopped", zap.Error(err))
		}
	}()
	c.metricsLn = ln
	c.closers = append(c.closers, srv.Close)
	return nil
}

// MetricsAddr returns the bound metrics listener address, or "" when not serving.
func (c *Contract) MetricsAddr() string {
	if c.metricsLn == nil {
		return ""
	}
	return c.metricsLn.Addr().String()
}

func (m *Metrics) observeCall(op string, err error) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(op, resultLabel(err)).Inc()
}

func (m *Metrics) setCollection(c *ledger.Collection) {
	if m == nil || c == nil {
		return
	}
	m.poolAmount.WithLabelValues(c.Address).Set(float64(c.PoolAmount))
	m.activeStakes.WithLabelValues(c.Address).Set(float64(c.Staked))
}

func (m *Metrics) setConfig(cfg *ledger.Config) {
	if m == nil || cfg == nil {
		return
	}
	m.feeCollected.Set(float64(cfg.FeeCollected))
}

// resultLabel maps an error onto a bounded label value.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ledger.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ledger.ErrNotWhitelisted):
		return "not_whitelisted"
	case errors.Is(err, ledger.ErrAlreadyUnstaked):
		return "already_unstaked"
	case errors.Is(err, ledger.ErrNotUnstaked):
		return "not_unstaked"
	case errors.Is(err, ledger.ErrRewardAlreadyClaimed):
		return "already_claimed"
	case errors.Is(err, ledger.ErrWrongIndex):
		return "wrong_index"
	case errors.Is(err, ledger.ErrNotEnoughRewardPool):
		return "pool_exhausted"
	case errors.Is(err, ledger.ErrNotEnoughFeeCollected), errors.Is(err, ledger.ErrNotEnoughUnstakeFee):
		return "insufficient_fee"
	case errors.Is(err, ledger.ErrLocked):
		return "locked"
	case errors.Is(err, ledger.ErrNoSpotsAvailable):
		return "no_spots"
	case errors.Is(err, ledger.ErrUnknown):
		return "unknown"
	default:
		return "error"
	}
}
