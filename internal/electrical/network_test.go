package electrical

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/aerotwin/internal/units"
)

var _ = Describe("Network", func() {
	var net *Network

	BeforeEach(func() {
		net = NewNetwork()
	})

	Describe("Connect", func() {
		It("rejects unknown handles", func() {
			a := net.Add("a", NewBus(28))
			Expect(net.Connect(a, Handle(7), 0.01)).To(MatchError(ErrUnknownNode))
			Expect(net.Connect(Handle(-1), a, 0.01)).To(MatchError(ErrUnknownNode))
		})

		It("rejects negative resistance", func() {
			a := net.Add("a", NewBus(28))
			b := net.Add("b", NewBus(28))
			Expect(net.Connect(a, b, -1)).To(MatchError(ErrNegativeResistance))
			Expect(net.Edges()).To(BeEmpty())
		})

		It("rejects a cycle and leaves the network unchanged", func() {
			a := net.Add("a", NewBus(28))
			b := net.Add("b", NewBus(28))
			c := net.Add("c", NewBus(28))
			Expect(net.ConnectDirect(a, b)).To(Succeed())
			Expect(net.ConnectDirect(b, c)).To(Succeed())
			before := net.Order()

			Expect(net.ConnectDirect(c, a)).To(MatchError(ErrCycle))
			Expect(net.Order()).To(Equal(before))
			Expect(net.Edges()).To(HaveLen(2))

			net.Update(tick)
		})

		It("rejects a self loop", func() {
			a := net.Add("a", NewBus(28))
			Expect(net.ConnectDirect(a, a)).To(MatchError(ErrCycle))
		})

		It("overwrites the resistance of an existing edge", func() {
			a := net.Add("a", NewBus(28))
			b := net.Add("b", NewBus(0))
			Expect(net.Connect(a, b, 1)).To(Succeed())
			net.Update(tick)

			Expect(net.Connect(a, b, 2)).To(Succeed())
			edges := net.Edges()
			Expect(edges).To(HaveLen(1))
			Expect(edges[0].Resistance).To(BeNumerically("==", 2))
			Expect(edges[0].Current).To(BeZero())
		})
	})

	Describe("Update", func() {
		It("visits upstream nodes before downstream ones", func() {
			var log []int
			load := net.Add("load", newSpy(0, 0, &log))
			bus := net.Add("bus", newSpy(1, 0, &log))
			gen := net.Add("gen", newSpy(2, 0, &log))
			Expect(net.ConnectDirect(bus, load)).To(Succeed())
			Expect(net.ConnectDirect(gen, bus)).To(Succeed())

			net.Update(tick)
			Expect(log).To(Equal([]int{2, 1, 0}))
		})

		It("sets edge currents from the voltage difference and wire resistance", func() {
			a := net.Add("a", newSpy(0, 28, nil))
			b := net.Add("b", newSpy(1, 27, nil))
			open := net.Add("open", newSpy(2, 0, nil))
			Expect(net.Connect(a, b, 0.5)).To(Succeed())
			Expect(net.Connect(a, open, 0)).To(Succeed())

			net.Update(tick)
			i, ok := net.Current(a, b)
			Expect(ok).To(BeTrue())
			Expect(i).To(BeNumerically("~", 2, 1e-12))

			i, ok = net.Current(a, open)
			Expect(ok).To(BeTrue())
			Expect(i).To(BeZero())

			_, ok = net.Current(b, a)
			Expect(ok).To(BeFalse())
		})

		It("pushes outputs downstream", func() {
			src := newSpy(0, 28, nil)
			dst := newSpy(1, 0, nil)
			a := net.Add("a", src)
			b := net.Add("b", dst)
			Expect(net.Connect(a, b, 1)).To(Succeed())

			net.Update(tick)
			Expect(dst.inVoltage).To(BeNumerically("==", 28))
			Expect(dst.inPower).To(BeNumerically("==", 56))
		})

		It("reports edges over the limit in connection order", func() {
			hi := net.Add("hi", newSpy(0, 10, nil))
			lo := net.Add("lo", newSpy(1, 0, nil))
			mid := net.Add("mid", newSpy(2, 5, nil))
			Expect(net.Connect(hi, lo, 1)).To(Succeed())
			Expect(net.Connect(mid, hi, 100)).To(Succeed())
			Expect(net.Connect(mid, lo, 1)).To(Succeed())

			net.Update(tick)
			over := net.CheckOvercurrent(4)
			Expect(over).To(HaveLen(2))
			Expect(over[0].From).To(Equal(hi))
			Expect(over[0].Current).To(BeNumerically("~", 10, 1e-12))
			Expect(over[1].From).To(Equal(mid))
			Expect(over[1].To).To(Equal(lo))

			Expect(net.CheckOvercurrent(100)).To(BeEmpty())
		})

		It("does not report reverse flow", func() {
			lo := net.Add("lo", newSpy(0, 0, nil))
			hi := net.Add("hi", newSpy(1, 28, nil))
			Expect(net.Connect(lo, hi, 1)).To(Succeed())

			net.Update(tick)
			i, ok := net.Current(lo, hi)
			Expect(ok).To(BeTrue())
			Expect(i).To(BeNumerically("~", -28, 1e-12))
			Expect(net.CheckOvercurrent(20)).To(BeEmpty())
		})

		It("leaves all state alone on a zero or negative tick", func() {
			src := newSpy(0, 28, nil)
			dst := newSpy(1, 0, nil)
			a := net.Add("a", src)
			b := net.Add("b", dst)
			Expect(net.Connect(a, b, 1)).To(Succeed())
			net.Update(tick)

			src.voltage = 14
			net.Update(0)
			net.Update(-tick)

			Expect(src.updates).To(Equal(1))
			Expect(dst.inVoltage).To(BeNumerically("==", 28))
			i, _ := net.Current(a, b)
			Expect(i).To(BeNumerically("~", 28, 1e-12))
		})
	})

	Describe("accessors", func() {
		It("returns typed components only for the matching kind", func() {
			bus := net.Add("main", NewBus(28))
			_, ok := net.Bus(bus)
			Expect(ok).To(BeTrue())
			_, ok = net.Breaker(bus)
			Expect(ok).To(BeFalse())
			_, ok = net.Load(Handle(3))
			Expect(ok).To(BeFalse())

			h, ok := net.Lookup("main")
			Expect(ok).To(BeTrue())
			Expect(h).To(Equal(bus))
			Expect(net.Name(bus)).To(Equal("main"))
			Expect(net.Nodes()).To(ConsistOf(NodeInfo{Handle: bus, Name: "main", Kind: KindBus}))
		})
	})
})

var _ = Describe("generator to load scenario", func() {
	var (
		net                  *Network
		gen                  *PowerSource
		breaker              *ProtectiveDevice
		load                 *Load
		genH, busH, brH, ldH Handle
	)

	newScenario := func(loadPower float64) {
		var err error
		params := testGenerator()
		params.SpinUpTime = 0
		gen, err = NewPowerSource(params)
		Expect(err).NotTo(HaveOccurred())

		breaker, err = NewBreaker(BreakerParams{Rating: 15, Curve: ShortDelay(200 * time.Millisecond)})
		Expect(err).NotTo(HaveOccurred())

		lp := testLoad(ResponseBinary)
		lp.NominalVoltage = 115
		lp.MinVoltage = 90
		lp.MaxVoltage = 125
		lp.NominalPower = units.Power(loadPower)
		load, err = NewLoad(lp)
		Expect(err).NotTo(HaveOccurred())
		load.SetPowered(true)

		net = NewNetwork()
		genH = net.Add("gen", gen)
		busH = net.Add("bus", NewBus(28))
		brH = net.Add("breaker", breaker)
		ldH = net.Add("load", load)
		Expect(net.ConnectDirect(genH, busH)).To(Succeed())
		Expect(net.Connect(busH, brH, 0.001)).To(Succeed())
		Expect(net.Connect(brH, ldH, 0.01)).To(Succeed())
	}

	It("sorts the chain from generator to load", func() {
		newScenario(1000)
		Expect(net.Order()).To(Equal([]Handle{genH, busH, brH, ldH}))
	})

	It("carries no breaker current while the generator is off", func() {
		newScenario(1000)
		for range 10 {
			net.Update(tick)
			Expect(breaker.OutputCurrent()).To(BeZero())
		}
		Expect(breaker.Tripped()).To(BeFalse())
	})

	It("carries the load current once the generator runs", func() {
		newScenario(1000)
		gen.TurnOn()
		gen.SetMechanicalInput(80_000, gen.RatedSpeed())
		for range 10 {
			net.Update(tick)
		}

		bus, ok := net.Bus(busH)
		Expect(ok).To(BeTrue())
		Expect(bus.OutputVoltage()).To(BeNumerically("~", gen.OutputVoltage(), 1e-9))
		Expect(bus.OutputVoltage()).To(BeNumerically(">", 100))
		Expect(breaker.OutputCurrent()).To(BeNumerically("~", float64(load.ActualPower())/float64(bus.OutputVoltage()), 1e-9))
		Expect(breaker.Tripped()).To(BeFalse())
		Expect(load.Condition()).To(Equal(ConditionNormal))
	})

	It("trips the breaker after its short delay when the load is too large", func() {
		newScenario(2000)
		gen.TurnOn()
		gen.SetMechanicalInput(80_000, gen.RatedSpeed())

		// first tick latches demand, the next four accumulate 200ms of dwell
		for range 4 {
			net.Update(tick)
		}
		Expect(breaker.Tripped()).To(BeFalse())
		net.Update(tick)
		Expect(breaker.Tripped()).To(BeTrue())

		net.Update(tick)
		Expect(breaker.OutputCurrent()).To(BeZero())
		Expect(load.InputVoltage()).To(BeZero())
		Expect(load.ActualPower()).To(BeZero())
	})

	It("drops load current when the generator is turned off", func() {
		newScenario(1000)
		gen.TurnOn()
		gen.SetMechanicalInput(80_000, gen.RatedSpeed())
		net.Update(tick)
		Expect(breaker.OutputCurrent()).To(BeNumerically(">", 0))

		gen.TurnOff()
		net.Update(tick)
		Expect(breaker.OutputCurrent()).To(BeZero())
	})
})
