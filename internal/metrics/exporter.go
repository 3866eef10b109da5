package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/san-kum/aerotwin/internal/aircraft"
	"github.com/san-kum/aerotwin/internal/sim"
)

// Exporter publishes every channel of the latest frame as a gauge. It is
// a sim.Observer and is safe to scrape while the simulation runs.
type Exporter struct {
	Channels   *prometheus.GaugeVec
	Steps      prometheus.Counter
	SimSeconds prometheus.Gauge
	StepDelta  prometheus.Histogram

	registry *prometheus.Registry
	gauges   []prometheus.Gauge
}

// NewExporter registers the simulation metrics on a private registry.
func NewExporter(aircraftName string) *Exporter {
	reg := prometheus.NewRegistry()
	labels := prometheus.Labels{"aircraft": aircraftName}

	return &Exporter{
		registry: reg,
		Channels: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name:        "aerotwin_channel_value",
				Help:        "Latest value of a simulated channel",
				ConstLabels: labels,
			},
			[]string{"kind", "component", "field"},
		),
		Steps: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name:        "aerotwin_steps_total",
				Help:        "Simulation steps taken",
				ConstLabels: labels,
			},
		),
		SimSeconds: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name:        "aerotwin_sim_time_seconds",
				Help:        "Simulated time elapsed",
				ConstLabels: labels,
			},
		),
		StepDelta: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:        "aerotwin_step_delta_seconds",
				Help:        "Delta time fed to each step",
				ConstLabels: labels,
				Buckets:     []float64{0.001, 0.005, 0.01, 0.016, 0.02, 0.033, 0.05, 0.1, 0.25},
			},
		),
	}
}

// OnStep resolves the gauge for each channel on the first frame; channel
// sets do not change within a run.
func (e *Exporter) OnStep(f sim.Frame) {
	if e.gauges == nil {
		e.gauges = make([]prometheus.Gauge, len(f.Channels))
		for i, ch := range f.Channels {
			kind, name, field, ok := aircraft.SplitChannel(ch)
			if !ok {
				kind, name, field = "", ch, ""
			}
			e.gauges[i] = e.Channels.WithLabelValues(kind, name, field)
		}
	}
	for i, v := range f.Values {
		if i < len(e.gauges) {
			e.gauges[i].Set(v)
		}
	}

	e.SimSeconds.Set(f.Time.Seconds())
	if f.Dt > 0 {
		e.Steps.Inc()
		e.StepDelta.Observe(f.Dt.Seconds())
	}
}

func (e *Exporter) Registry() *prometheus.Registry { return e.registry }

func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logger.Info("serving metrics", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
