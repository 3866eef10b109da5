package sim

import (
	"context"
	"fmt"
	"time"
)

type Simulator struct {
	sys         System
	controllers []Controller
	metrics     []Metric
	observers   []Observer
}

func New(sys System, controllers ...Controller) *Simulator {
	return &Simulator{
		sys:         sys,
		controllers: controllers,
		metrics:     make([]Metric, 0),
		observers:   make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run advances the system in fixed steps of cfg.Dt until cfg.Duration and
// records every frame, the initial one included. Step time is computed
// as a multiple of Dt so it does not drift.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(cfg.Duration / cfg.Dt)
	channels := s.sys.Channels()
	result := &Result{
		Channels: channels,
		Samples:  make([]Sample, 0, steps+1),
		Times:    make([]time.Duration, 0, steps+1),
		Metrics:  make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	initial := Frame{Channels: channels, Values: Sample(s.sys.Sample()).Clone()}
	s.emit(initial)
	result.Samples = append(result.Samples, initial.Values)
	result.Times = append(result.Times, 0)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			s.collect(result)
			return result, ctx.Err()
		default:
		}

		t := time.Duration(i) * cfg.Dt
		frame, err := s.step(i, t, cfg.Dt, channels, cfg.ValidateSamples)
		if err != nil {
			s.collect(result)
			return result, err
		}

		result.StepsTaken++
		result.Samples = append(result.Samples, frame.Values)
		result.Times = append(result.Times, frame.Time)
	}

	s.collect(result)
	return result, nil
}

// RunRealtime advances the system by measured wall-clock time, waking
// every cfg.Dt. It returns when ctx is cancelled, or after cfg.Duration
// of simulated time when that is positive. Frames go to metrics and
// observers only; nothing is recorded in the result but metrics.
func (s *Simulator) RunRealtime(ctx context.Context, cfg Config, timer *DeltaTimer) (*Result, error) {
	if cfg.Dt <= 0 {
		return nil, fmt.Errorf("dt must be positive, got %s", cfg.Dt)
	}
	if timer == nil {
		timer = NewDeltaTimer()
	}

	channels := s.sys.Channels()
	result := &Result{Channels: channels, Metrics: make(map[string]float64)}
	for _, m := range s.metrics {
		m.Reset()
	}

	ticker := time.NewTicker(cfg.Dt)
	defer ticker.Stop()
	timer.Reset()

	var elapsed time.Duration
	for i := 0; cfg.Duration <= 0 || elapsed < cfg.Duration; i++ {
		select {
		case <-ctx.Done():
			s.collect(result)
			return result, nil
		case <-ticker.C:
		}

		dt := timer.Tick()
		frame, err := s.step(i, elapsed, dt, channels, cfg.ValidateSamples)
		if err != nil {
			s.collect(result)
			return result, err
		}
		elapsed = frame.Time
		result.StepsTaken++
	}

	s.collect(result)
	return result, nil
}

func (s *Simulator) step(i int, t, dt time.Duration, channels []string, validate bool) (Frame, error) {
	for _, c := range s.controllers {
		if err := c.Apply(t); err != nil {
			return Frame{}, SimError{Time: t, Step: i, Message: "controller failed", Err: err}
		}
	}

	s.sys.Update(dt)

	values := Sample(s.sys.Sample()).Clone()
	if validate && !values.IsValid() {
		return Frame{}, SimError{Time: t, Step: i, Message: "invalid sample (NaN/Inf)"}
	}

	frame := Frame{Step: i + 1, Time: t + dt, Dt: dt, Channels: channels, Values: values}
	s.emit(frame)
	return frame, nil
}

func (s *Simulator) emit(f Frame) {
	for _, m := range s.metrics {
		m.Observe(f)
	}
	for _, obs := range s.observers {
		obs.OnStep(f)
	}
}

func (s *Simulator) collect(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %s", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %s", cfg.Duration)
	}
	return nil
}
