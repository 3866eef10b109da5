package electrical

import (
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/aerotwin/internal/units"
)

const tick = 50 * time.Millisecond

func testGenerator() GeneratorParams {
	return GeneratorParams{
		Poles:              2,
		RatedPower:         90_000,
		RatedVoltage:       115,
		RatedFrequency:     400,
		Efficiency:         0.95,
		InternalResistance: 0.005,
		SpinUpTime:         2 * time.Second,
		Phases:             3,
	}
}

func testLoad(response Response) LoadParams {
	return LoadParams{
		NominalVoltage: 28,
		NominalPower:   560,
		MinVoltage:     20,
		MaxVoltage:     32,
		Response:       response,
		PowerFactor:    1,
	}
}

var _ = Describe("PowerSource", func() {
	var g *PowerSource

	BeforeEach(func() {
		var err error
		g, err = NewPowerSource(testGenerator())
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects invalid parameters", func() {
		params := testGenerator()
		params.Poles = 0
		_, err := NewPowerSource(params)
		Expect(err).To(MatchError(ErrInvalidParams))

		params = testGenerator()
		params.Phases = 0
		_, err = NewPowerSource(params)
		Expect(err).To(MatchError(ErrInvalidParams))
	})

	It("derives rated speed from frequency and poles", func() {
		Expect(g.RatedSpeed()).To(BeNumerically("~", 12_000, 1e-9))
	})

	It("produces nothing while off", func() {
		g.SetMechanicalInput(80_000, 12_000)
		g.Update(tick)
		Expect(g.State()).To(Equal(GeneratorOff))
		Expect(g.OutputVoltage()).To(BeZero())
		Expect(g.OutputPower()).To(BeZero())
		Expect(g.OutputCurrent()).To(BeZero())
	})

	It("ramps speed during spin-up and reaches rated output", func() {
		g.TurnOn()
		g.SetMechanicalInput(80_000, g.RatedSpeed())

		g.Update(time.Second)
		Expect(g.State()).To(Equal(GeneratorSpinningUp))
		Expect(g.Speed()).To(BeNumerically("~", 6_000, 1e-6))
		Expect(g.OutputPower()).To(BeNumerically("~", 80_000*0.95*0.5, 1e-6))

		g.Update(time.Second)
		Expect(g.State()).To(Equal(GeneratorAtSpeed))
		Expect(g.OutputPower()).To(BeNumerically("~", 76_000, 1e-6))

		current := 76_000.0 / 115 * 3
		Expect(g.OutputVoltage()).To(BeNumerically("~", 115-current*0.005, 1e-9))
	})

	It("caps output at rated power", func() {
		g.TurnOn()
		g.SetMechanicalInput(200_000, g.RatedSpeed())
		g.Update(3 * time.Second)
		Expect(g.OutputPower()).To(BeNumerically("==", 90_000))
	})

	It("ignores a non-positive dt", func() {
		g.TurnOn()
		g.SetMechanicalInput(80_000, g.RatedSpeed())
		g.Update(time.Second)
		v, p := g.OutputVoltage(), g.OutputPower()

		g.Update(0)
		g.Update(-time.Second)
		Expect(g.OutputVoltage()).To(Equal(v))
		Expect(g.OutputPower()).To(Equal(p))
		Expect(g.TimeOn()).To(Equal(time.Second))
	})

	It("collapses outputs on TurnOff and ignores mechanical input while off", func() {
		g.TurnOn()
		g.SetMechanicalInput(80_000, g.RatedSpeed())
		g.Update(3 * time.Second)
		Expect(g.OutputVoltage()).To(BeNumerically(">", 0))

		g.TurnOff()
		Expect(g.OutputVoltage()).To(BeZero())
		Expect(g.OutputPower()).To(BeZero())

		g.SetMechanicalInput(80_000, g.RatedSpeed())
		g.TurnOn()
		g.Update(3 * time.Second)
		Expect(g.OutputPower()).To(BeZero())
	})

	It("clamps terminal voltage at zero", func() {
		params := testGenerator()
		params.InternalResistance = 1
		params.SpinUpTime = 0
		g, err := NewPowerSource(params)
		Expect(err).NotTo(HaveOccurred())

		g.TurnOn()
		g.SetMechanicalInput(80_000, g.RatedSpeed())
		g.Update(tick)
		Expect(g.OutputVoltage()).To(BeZero())
	})
})

var _ = Describe("Bus", func() {
	It("reports whatever is written as input", func() {
		b := NewBus(28)
		Expect(b.OutputVoltage()).To(BeNumerically("==", 28))

		b.SetInputVoltage(27.5)
		b.SetInputPower(550)
		b.Update(tick)
		Expect(b.OutputVoltage()).To(BeNumerically("==", 27.5))
		Expect(b.OutputPower()).To(BeNumerically("==", 550))
		Expect(b.OutputCurrent()).To(BeNumerically("~", 20, 1e-9))
	})

	It("derives zero current at zero voltage", func() {
		b := NewBus(0)
		b.SetInputPower(100)
		Expect(b.OutputCurrent()).To(BeZero())
	})
})

var _ = Describe("ProtectiveDevice", func() {
	newBreaker := func(curve TripCurve) *ProtectiveDevice {
		b, err := NewBreaker(BreakerParams{Rating: 15, Curve: curve})
		Expect(err).NotTo(HaveOccurred())
		b.SetInputVoltage(28)
		b.SetInputPower(560)
		return b
	}

	It("rejects a non-positive rating and bad curves", func() {
		_, err := NewBreaker(BreakerParams{Rating: 0, Curve: Instantaneous()})
		Expect(err).To(MatchError(ErrInvalidParams))

		_, err = NewBreaker(BreakerParams{Rating: 10, Curve: ShortDelay(-time.Second)})
		Expect(err).To(MatchError(ErrInvalidParams))

		_, err = NewBreaker(BreakerParams{Rating: 10, Curve: TripCurve{Kind: CurveKind(42)}})
		Expect(err).To(MatchError(ErrInvalidParams))
	})

	It("passes its inputs through while closed", func() {
		b := newBreaker(Instantaneous())
		b.SetInputCurrent(10)
		b.Update(tick)
		Expect(b.Tripped()).To(BeFalse())
		Expect(b.OutputVoltage()).To(BeNumerically("==", 28))
		Expect(b.OutputPower()).To(BeNumerically("==", 560))
		Expect(b.OutputCurrent()).To(BeNumerically("==", 10))
	})

	It("trips an instantaneous curve on the first overcurrent tick", func() {
		b := newBreaker(Instantaneous())
		b.SetInputCurrent(15.01)
		b.Update(tick)
		Expect(b.Tripped()).To(BeTrue())
		Expect(b.Trips()).To(Equal(1))
		Expect(b.OutputVoltage()).To(BeZero())
		Expect(b.OutputPower()).To(BeZero())
		Expect(b.OutputCurrent()).To(BeZero())
	})

	It("does not trip at exactly the rating", func() {
		b := newBreaker(Instantaneous())
		b.SetInputCurrent(15)
		b.Update(tick)
		Expect(b.Tripped()).To(BeFalse())
	})

	DescribeTable("trips a delayed curve once the dwell reaches the delay",
		func(curve TripCurve, delay time.Duration) {
			b := newBreaker(curve)
			b.SetInputCurrent(20)
			ticks := int(delay / tick)
			for range ticks - 1 {
				b.Update(tick)
			}
			Expect(b.Tripped()).To(BeFalse())
			Expect(b.Dwell()).To(Equal(delay - tick))

			b.Update(tick)
			Expect(b.Tripped()).To(BeTrue())
			Expect(b.Trips()).To(Equal(1))
			Expect(b.OutputCurrent()).To(BeZero())
		},
		Entry("short delay", ShortDelay(200*time.Millisecond), 200*time.Millisecond),
		Entry("long delay", LongDelay(time.Second), time.Second),
	)

	It("clears the dwell when current falls back within rating", func() {
		b := newBreaker(LongDelay(time.Second))
		b.SetInputCurrent(20)
		b.Update(500 * time.Millisecond)
		b.SetInputCurrent(10)
		b.Update(tick)
		Expect(b.Dwell()).To(BeZero())

		b.SetInputCurrent(20)
		b.Update(500 * time.Millisecond)
		Expect(b.Tripped()).To(BeFalse())
	})

	DescribeTable("inverse-time trip delay",
		func(current units.Current, ticksToTrip int) {
			b := newBreaker(InverseTime())
			b.SetInputCurrent(current)
			for i := 1; i < ticksToTrip; i++ {
				b.Update(10 * time.Millisecond)
				Expect(b.Tripped()).To(BeFalse(), "tripped early at tick %d", i)
			}
			b.Update(10 * time.Millisecond)
			Expect(b.Tripped()).To(BeTrue())
		},
		Entry("2x rating trips after 25ms", units.Current(30), 3),
		Entry("sqrt(10)x rating trips after 10ms", units.Current(15*math.Sqrt(10)), 1),
	)

	It("auto-resets after the reset delay", func() {
		b, err := NewBreaker(BreakerParams{
			Rating:     15,
			Curve:      Instantaneous(),
			AutoReset:  true,
			ResetDelay: 100 * time.Millisecond,
		})
		Expect(err).NotTo(HaveOccurred())

		b.SetInputCurrent(30)
		b.Update(tick)
		Expect(b.Tripped()).To(BeTrue())

		b.SetInputCurrent(0)
		b.Update(tick)
		Expect(b.Tripped()).To(BeTrue())
		b.Update(tick)
		Expect(b.Tripped()).To(BeFalse())
		Expect(b.Trips()).To(Equal(1))
	})

	It("stays tripped until Reset without auto-reset", func() {
		b := newBreaker(Instantaneous())
		b.SetInputCurrent(30)
		b.Update(tick)
		b.SetInputCurrent(0)
		for range 100 {
			b.Update(tick)
		}
		Expect(b.Tripped()).To(BeTrue())

		b.Reset()
		Expect(b.Tripped()).To(BeFalse())
		Expect(b.OutputVoltage()).To(BeNumerically("==", 28))
	})

	It("ignores a non-positive dt", func() {
		b := newBreaker(Instantaneous())
		b.SetInputCurrent(100)
		b.Update(0)
		Expect(b.Tripped()).To(BeFalse())
	})
})

var _ = Describe("Load", func() {
	powered := func(response Response, v units.Voltage) *Load {
		l, err := NewLoad(testLoad(response))
		Expect(err).NotTo(HaveOccurred())
		l.SetPowered(true)
		l.SetInputVoltage(v)
		l.Update(tick)
		return l
	}

	It("rejects a max voltage below the min voltage", func() {
		params := testLoad(ResponseBinary)
		params.MaxVoltage = 10
		_, err := NewLoad(params)
		Expect(err).To(MatchError(ErrInvalidParams))
	})

	It("computes the nominal equivalent resistance", func() {
		l := powered(ResponseBinary, 28)
		Expect(l.Resistance()).To(BeNumerically("~", 1.4, 1e-12))

		params := testLoad(ResponseBinary)
		params.NominalPower = 0
		idle, err := NewLoad(params)
		Expect(err).NotTo(HaveOccurred())
		Expect(math.IsInf(float64(idle.Resistance()), 1)).To(BeTrue())
	})

	It("draws nothing when unpowered", func() {
		l, err := NewLoad(testLoad(ResponseBinary))
		Expect(err).NotTo(HaveOccurred())
		l.SetInputVoltage(28)
		l.Update(tick)
		Expect(l.ActualPower()).To(BeZero())
		Expect(l.InputCurrent()).To(BeZero())
		Expect(l.Condition()).To(Equal(ConditionNormal))
	})

	DescribeTable("response laws",
		func(response Response, v units.Voltage, want units.Power) {
			l := powered(response, v)
			Expect(l.ActualPower()).To(BeNumerically("~", want, 1e-9))
		},
		Entry("binary at nominal", ResponseBinary, units.Voltage(28), units.Power(560)),
		Entry("binary below min", ResponseBinary, units.Voltage(19), units.Power(0)),
		Entry("linear scales with supply voltage", ResponseLinear, units.Voltage(21), units.Power(420)),
		Entry("regulated above min", ResponseRegulated, units.Voltage(20.5), units.Power(560)),
		Entry("proportional at min", ResponseProportional, units.Voltage(20), units.Power(0)),
		Entry("proportional midway", ResponseProportional, units.Voltage(24), units.Power(280)),
		Entry("proportional above nominal", ResponseProportional, units.Voltage(30), units.Power(560)),
	)

	It("scales demand by load factor and power factor", func() {
		params := testLoad(ResponseBinary)
		params.PowerFactor = 0.5
		l, err := NewLoad(params)
		Expect(err).NotTo(HaveOccurred())
		l.SetPowered(true)
		l.SetLoadFactor(0.5)
		l.SetInputVoltage(28)
		Expect(l.ActualPower()).To(BeNumerically("~", 140, 1e-9))
		Expect(l.InputCurrent()).To(BeNumerically("~", 5, 1e-9))

		l.SetLoadFactor(3)
		Expect(l.LoadFactor()).To(BeNumerically("==", 1))
	})

	DescribeTable("range checks",
		func(v units.Voltage, want Condition) {
			Expect(powered(ResponseBinary, v).Condition()).To(Equal(want))
		},
		Entry("normal", units.Voltage(28), ConditionNormal),
		Entry("undervoltage", units.Voltage(15), ConditionUndervoltage),
		Entry("overvoltage", units.Voltage(40), ConditionOvervoltage),
	)

	It("reports no output", func() {
		l := powered(ResponseBinary, 28)
		Expect(l.OutputVoltage()).To(BeZero())
		Expect(l.OutputPower()).To(BeZero())
		Expect(l.OutputCurrent()).To(BeZero())
	})
})

var _ = Describe("name parsing", func() {
	It("round-trips trip curves", func() {
		for _, c := range []TripCurve{Instantaneous(), ShortDelay(time.Second), LongDelay(time.Minute), InverseTime()} {
			parsed, err := ParseCurve(c.Kind.String(), c.Delay)
			Expect(err).NotTo(HaveOccurred())
			Expect(parsed).To(Equal(c))
		}
		_, err := ParseCurve("slow", 0)
		Expect(err).To(MatchError(ErrInvalidParams))
	})

	It("round-trips load responses", func() {
		for r := ResponseBinary; r <= ResponseProportional; r++ {
			Expect(ParseResponse(r.String())).To(Equal(r))
		}
		_, err := ParseResponse("resistive")
		Expect(err).To(MatchError(ErrInvalidParams))
	})
})
