package electrical

import (
	"time"

	"github.com/san-kum/aerotwin/internal/units"
)

// spy is a fixed-voltage component that records when it is updated.
type spy struct {
	id      int
	voltage units.Voltage
	log     *[]int

	inVoltage units.Voltage
	inPower   units.Power
	inCurrent units.Current
	updates   int
}

func newSpy(id int, voltage units.Voltage, log *[]int) *spy {
	return &spy{id: id, voltage: voltage, log: log}
}

func (s *spy) Kind() Kind { return KindBus }
func (s *spy) sealed()    {}

func (s *spy) Update(time.Duration) {
	s.updates++
	if s.log != nil {
		*s.log = append(*s.log, s.id)
	}
}

func (s *spy) OutputVoltage() units.Voltage { return s.voltage }
func (s *spy) OutputPower() units.Power     { return units.Power(float64(s.voltage) * 2) }
func (s *spy) OutputCurrent() units.Current { return DeriveCurrent(s.OutputPower(), s.voltage) }
func (s *spy) InputCurrent() units.Current  { return 0 }

func (s *spy) SetInputVoltage(v units.Voltage) { s.inVoltage = v }
func (s *spy) SetInputPower(p units.Power)     { s.inPower = p }
func (s *spy) SetInputCurrent(i units.Current) { s.inCurrent = i }
