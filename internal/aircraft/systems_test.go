package aircraft

import (
	"bytes"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/aerotwin/internal/broadcast"
	"github.com/san-kum/aerotwin/internal/config"
	"github.com/san-kum/aerotwin/internal/electrical"
)

func advance(s *Systems, dt time.Duration, ticks int) {
	for i := 0; i < ticks; i++ {
		s.Update(dt)
	}
}

var _ = Describe("Systems", func() {
	var (
		store *broadcast.Store
		logs  *bytes.Buffer
		log   *slog.Logger
	)

	BeforeEach(func() {
		store = broadcast.New(broadcast.WithRetention(4))
		logs = &bytes.Buffer{}
		log = slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	})

	Describe("New", func() {
		It("rejects an invalid configuration", func() {
			cfg := config.E170()
			cfg.Wires[0].To = "Nowhere"
			_, err := New(cfg, store, log)
			Expect(err).To(MatchError(config.ErrInvalidConfig))
		})

		It("rejects wiring that closes a loop", func() {
			cfg := config.BreakerTrip()
			cfg.Wires = append(cfg.Wires, config.Wire{From: "Heater CB", To: "DC Bus"})
			_, err := New(cfg, store, log)
			Expect(err).To(MatchError(electrical.ErrCycle))
		})

		It("names every component in the network", func() {
			s, err := New(config.E170(), store, log)
			Expect(err).NotTo(HaveOccurred())

			var names []string
			for _, n := range s.Network().Nodes() {
				names = append(names, n.Name)
			}
			Expect(names).To(Equal([]string{
				"Main Generator", "Main Bus", "Avionics CB", "Lights CB", "Test Display", "Test Light",
			}))
			Expect(s.Network().Edges()).To(HaveLen(5))
		})

		It("accepts nil collaborators", func() {
			s, err := New(config.FlapActuator(), nil, nil)
			Expect(err).NotTo(HaveOccurred())
			s.Update(time.Millisecond)
			Expect(s.Snapshot().Step).To(Equal(1))
		})
	})

	Describe("E170", func() {
		var s *Systems

		BeforeEach(func() {
			var err error
			s, err = New(config.E170(), store, log)
			Expect(err).NotTo(HaveOccurred())
		})

		It("starts the main generator after three seconds", func() {
			advance(s, config.DefaultDt, 170)
			gen := s.Snapshot().Generators[0]
			Expect(gen.State).To(Equal(electrical.GeneratorOff))
			Expect(gen.Voltage).To(BeZero())

			advance(s, config.DefaultDt, 20)
			gen = s.Snapshot().Generators[0]
			Expect(gen.State).To(Equal(electrical.GeneratorAtSpeed))
			Expect(float64(gen.Speed)).To(BeNumerically("~", 6000, 1e-9))
			Expect(float64(gen.Voltage)).To(BeNumerically("~", 65.435, 0.01))
			Expect(logs.String()).To(ContainSubstring("generator started"))
		})

		It("reports overvoltage on the 28 V loads once powered", func() {
			advance(s, config.DefaultDt, 200)
			snap := s.Snapshot()
			for _, l := range snap.Loads {
				Expect(l.Condition).To(Equal(electrical.ConditionOvervoltage), l.Name)
				Expect(l.Power).To(BeNumerically(">", 0), l.Name)
			}
			for _, b := range snap.Breakers {
				Expect(b.Tripped).To(BeFalse(), b.Name)
			}
			Expect(logs.String()).To(ContainSubstring("condition=overvoltage"))
		})

		It("logs the overcurrent set only when it changes", func() {
			advance(s, config.DefaultDt, 200)
			first := bytes.Count(logs.Bytes(), []byte("msg=overcurrent"))
			Expect(first).To(BeNumerically(">", 0))

			advance(s, config.DefaultDt, 30)
			Expect(bytes.Count(logs.Bytes(), []byte("msg=overcurrent"))).To(Equal(first))
		})

		It("advances the clock with the simulation", func() {
			Expect(s.Execute(Command{Op: OpStartET})).To(Succeed())
			advance(s, config.DefaultDt, 60)
			Expect(s.Clock().ET()).To(BeNumerically("~", time.Second, time.Millisecond))
			Expect(s.Snapshot().Clock).To(Equal("UTC 12:00:00"))
		})
	})

	Describe("breaker trip", func() {
		const dt = 10 * time.Millisecond
		var s *Systems

		BeforeEach(func() {
			var err error
			s, err = New(config.BreakerTrip(), store, log)
			Expect(err).NotTo(HaveOccurred())
		})

		heater := func() LoadReading { return s.Snapshot().Loads[0] }
		cb := func() BreakerReading { return s.Snapshot().Breakers[0] }

		It("conducts the load current before tripping", func() {
			advance(s, dt, 5)
			Expect(cb().Tripped).To(BeFalse())
			Expect(float64(cb().Current)).To(BeNumerically("~", float64(heater().Current), 0.5))
			Expect(float64(heater().Current)).To(BeNumerically(">", 10))
		})

		It("trips after the short delay and isolates the load", func() {
			advance(s, dt, 50)
			Expect(cb().Tripped).To(BeTrue())
			Expect(cb().Trips).To(Equal(1))
			Expect(heater().Voltage).To(BeZero())
			Expect(heater().Power).To(BeZero())
			Expect(logs.String()).To(ContainSubstring("breaker tripped"))
		})

		It("stays closed after the load is shed and the breaker reset", func() {
			advance(s, dt, 50)
			Expect(s.Execute(Command{Op: OpSetLoadFactor, Target: "Heater", Value: 0.5})).To(Succeed())
			Expect(s.Execute(Command{Op: OpResetBreaker, Target: "Heater CB"})).To(Succeed())

			advance(s, dt, 100)
			Expect(cb().Tripped).To(BeFalse())
			Expect(cb().Trips).To(Equal(1))
			Expect(float64(heater().Current)).To(BeNumerically("<", 10))
			Expect(logs.String()).To(ContainSubstring("breaker reset"))
		})

		It("drains commands sent through the store", func() {
			store.Send(broadcast.Commands, Command{Op: OpSetLoadPowered, Target: "Heater", Value: 0})
			store.Send(broadcast.Commands, Command{Op: OpResetBreaker, Target: "Nobody"})
			advance(s, dt, 50)

			Expect(heater().Powered).To(BeFalse())
			Expect(cb().Tripped).To(BeFalse())
			Expect(store.Len(broadcast.Commands)).To(BeZero())
			Expect(logs.String()).To(ContainSubstring("command rejected"))
		})

		It("publishes snapshots to the store", func() {
			advance(s, dt, 3)
			snap, ok := broadcast.Latest[Snapshot](store, broadcast.Electrical)
			Expect(ok).To(BeTrue())
			Expect(snap.Step).To(Equal(3))
			Expect(snap.Time).To(Equal(30 * time.Millisecond))
		})

		It("ignores a non-positive dt", func() {
			advance(s, dt, 5)
			before := s.Snapshot()
			s.Update(0)
			s.Update(-dt)
			Expect(s.Snapshot()).To(Equal(before))
		})

		It("stops and restarts the generator on command", func() {
			advance(s, dt, 2)
			Expect(s.Execute(Command{Op: OpStopGenerator, Target: "DC Generator"})).To(Succeed())
			advance(s, dt, 2)
			Expect(s.Snapshot().Generators[0].State).To(Equal(electrical.GeneratorOff))

			Expect(s.Execute(Command{Op: OpStartGenerator, Target: "DC Generator", Value: 1000})).To(Succeed())
			advance(s, dt, 1)
			Expect(float64(s.Snapshot().Generators[0].Power)).To(BeNumerically("~", 950, 1e-9))
		})
	})

	Describe("actuators", func() {
		It("extends when the valve opens", func() {
			s, err := New(config.FlapActuator(), store, log)
			Expect(err).NotTo(HaveOccurred())

			advance(s, time.Millisecond, 100)
			Expect(s.Snapshot().Actuators[0].Extension).To(BeZero())

			Expect(s.Execute(Command{Op: OpSetValve, Target: "Flap Actuator", Value: 1})).To(Succeed())
			advance(s, time.Millisecond, 500)
			Expect(float64(s.Snapshot().Actuators[0].Extension)).To(BeNumerically(">", 0.99))

			readings, ok := broadcast.Latest[[]ActuatorReading](store, broadcast.Hydraulic)
			Expect(ok).To(BeTrue())
			Expect(readings).To(HaveLen(1))
		})
	})

	Describe("Execute", func() {
		var s *Systems

		BeforeEach(func() {
			var err error
			s, err = New(config.E170(), store, log)
			Expect(err).NotTo(HaveOccurred())
		})

		DescribeTable("rejects targets of the wrong kind",
			func(cmd Command) {
				Expect(s.Execute(cmd)).To(MatchError(ErrUnknownComponent))
			},
			Entry("generator", Command{Op: OpStartGenerator, Target: "Main Bus"}),
			Entry("breaker", Command{Op: OpResetBreaker, Target: "Test Light"}),
			Entry("load", Command{Op: OpSetLoadPowered, Target: "Lights CB"}),
			Entry("actuator", Command{Op: OpSetValve, Target: "Main Generator"}),
			Entry("missing", Command{Op: OpSetLoadFactor, Target: "Galley"}),
		)

		It("rejects unknown operations and clock modes", func() {
			Expect(s.Execute(Command{Op: Op(99)})).To(MatchError(ErrUnknownOp))
			Expect(s.Execute(Command{Op: OpSetClockMode, Value: 7})).NotTo(Succeed())
			Expect(s.Execute(Command{Op: OpSetClockMode, Value: 2})).To(Succeed())
			Expect(s.Clock().Mode().String()).To(Equal("CHR"))
		})
	})
})

var _ = Describe("wiring", func() {
	It("rejects a wire to a component that was never built", func() {
		s := &Systems{network: electrical.NewNetwork()}
		cfg := &config.Aircraft{
			Buses: []config.Bus{{Name: "Main Bus", Voltage: 28}},
			Wires: []config.Wire{{From: "Main Bus", To: "Galley"}},
		}

		err := s.build(cfg)
		Expect(err).To(MatchError(ErrUnknownComponent))
		Expect(err.Error()).To(ContainSubstring(`"Galley"`))
		Expect(s.network.Edges()).To(BeEmpty())
	})
})

var _ = Describe("Op", func() {
	It("parses every name it prints", func() {
		for op := OpStartGenerator; op <= OpSetClockMode; op++ {
			Expect(ParseOp(op.String())).To(Equal(op))
		}
		_, err := ParseOp("open_door")
		Expect(err).To(MatchError(ErrUnknownOp))
	})
})

var _ = Describe("Snapshot", func() {
	It("flattens to a fixed channel set", func() {
		s, err := New(config.E170(), nil, nil)
		Expect(err).NotTo(HaveOccurred())

		before := s.Channels()
		advance(s, config.DefaultDt, 200)
		Expect(s.Channels()).To(Equal(before))
		Expect(s.Sample()).To(HaveLen(len(before)))
		Expect(before).To(ContainElement("load.Test Light.power"))
		Expect(before).To(ContainElement("wire.Main Generator>Main Bus.current"))
	})

	It("splits channels whose names contain dots", func() {
		kind, name, field, ok := SplitChannel(Channel(KindBus, "Bus 2.A", "voltage"))
		Expect(ok).To(BeTrue())
		Expect([]string{kind, name, field}).To(Equal([]string{"bus", "Bus 2.A", "voltage"}))

		_, _, _, ok = SplitChannel("nodots")
		Expect(ok).To(BeFalse())
	})
})
