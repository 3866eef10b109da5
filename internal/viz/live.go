package viz

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/aerotwin/internal/aircraft"
	"github.com/san-kum/aerotwin/internal/broadcast"
	"github.com/san-kum/aerotwin/internal/electrical"
	"github.com/san-kum/aerotwin/internal/instruments"
)

const (
	historyCapacity = 600
	refreshRate     = time.Second / 30
	adjustStep      = 0.1
)

type TickMsg time.Time

type target struct {
	kind string
	name string
}

// Model renders the latest snapshot and turns key presses into commands.
type Model struct {
	store    *broadcast.Store
	theme    int
	styles   styles
	snap     aircraft.Snapshot
	have     bool
	targets  []target
	selected int
	history  []float64
	mode     instruments.ClockMode
	showHelp bool
}

func NewModel(store *broadcast.Store, theme string) Model {
	m := Model{
		store:   store,
		history: make([]float64, 0, historyCapacity),
	}
	for i, t := range Themes {
		if t.Name == theme {
			m.theme = i
		}
	}
	m.styles = newStyles(Themes[m.theme])
	return m
}

func tick() tea.Cmd {
	return tea.Tick(refreshRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab", "down", "j":
			m.move(1)
		case "shift+tab", "up", "k":
			m.move(-1)
		case "enter", " ":
			m.primary()
		case "+", "=":
			m.adjust(adjustStep)
		case "-", "_":
			m.adjust(-adjustStep)
		case "e":
			m.send(aircraft.Command{Op: aircraft.OpStartET})
		case "E":
			m.send(aircraft.Command{Op: aircraft.OpResetET})
		case "c":
			m.send(aircraft.Command{Op: aircraft.OpToggleCHR})
		case "C":
			m.send(aircraft.Command{Op: aircraft.OpResetCHR})
		case "m":
			m.mode = (m.mode + 1) % (instruments.ModeCHR + 1)
			m.send(aircraft.Command{Op: aircraft.OpSetClockMode, Value: float64(m.mode)})
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
			m.styles = newStyles(Themes[m.theme])
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		m.refresh()
		return m, tick()
	}
	return m, nil
}

func (m *Model) send(cmd aircraft.Command) {
	m.store.Send(broadcast.Commands, cmd)
}

// refresh pulls the newest snapshot and extends the selected trace.
func (m *Model) refresh() {
	snap, ok := broadcast.Latest[aircraft.Snapshot](m.store, broadcast.Electrical)
	if !ok || (m.have && snap.Step == m.snap.Step) {
		return
	}
	m.snap, m.have = snap, true
	if m.targets == nil {
		m.targets = targetsOf(snap)
	}

	if v, ok := m.trace(); ok {
		m.history = append(m.history, v)
		if len(m.history) > historyCapacity {
			m.history = m.history[1:]
		}
	}
}

func targetsOf(snap aircraft.Snapshot) []target {
	var ts []target
	for _, g := range snap.Generators {
		ts = append(ts, target{aircraft.KindGenerator, g.Name})
	}
	for _, b := range snap.Buses {
		ts = append(ts, target{aircraft.KindBus, b.Name})
	}
	for _, b := range snap.Breakers {
		ts = append(ts, target{aircraft.KindBreaker, b.Name})
	}
	for _, l := range snap.Loads {
		ts = append(ts, target{aircraft.KindLoad, l.Name})
	}
	for _, a := range snap.Actuators {
		ts = append(ts, target{aircraft.KindActuator, a.Name})
	}
	return ts
}

func (m *Model) move(dir int) {
	if len(m.targets) == 0 {
		return
	}
	m.selected = (m.selected + dir + len(m.targets)) % len(m.targets)
	m.history = m.history[:0]
}

func (m *Model) current() (target, bool) {
	if m.selected < len(m.targets) {
		return m.targets[m.selected], true
	}
	return target{}, false
}

// trace is the value plotted for the selection.
func (m *Model) trace() (float64, bool) {
	sel, ok := m.current()
	if !ok {
		return 0, false
	}
	switch sel.kind {
	case aircraft.KindGenerator:
		for _, g := range m.snap.Generators {
			if g.Name == sel.name {
				return float64(g.Voltage), true
			}
		}
	case aircraft.KindBus:
		for _, b := range m.snap.Buses {
			if b.Name == sel.name {
				return float64(b.Voltage), true
			}
		}
	case aircraft.KindBreaker:
		for _, b := range m.snap.Breakers {
			if b.Name == sel.name {
				return float64(b.Current), true
			}
		}
	case aircraft.KindLoad:
		for _, l := range m.snap.Loads {
			if l.Name == sel.name {
				return float64(l.Voltage), true
			}
		}
	case aircraft.KindActuator:
		for _, a := range m.snap.Actuators {
			if a.Name == sel.name {
				return float64(a.Position), true
			}
		}
	}
	return 0, false
}

func traceCaption(kind string) string {
	switch kind {
	case aircraft.KindBreaker:
		return "current (A)"
	case aircraft.KindActuator:
		return "position (m)"
	default:
		return "voltage (V)"
	}
}

// primary toggles the selection: start or stop a generator, reset a
// breaker, switch a load, or open or close a valve.
func (m *Model) primary() {
	sel, ok := m.current()
	if !ok {
		return
	}
	switch sel.kind {
	case aircraft.KindGenerator:
		for _, g := range m.snap.Generators {
			if g.Name != sel.name {
				continue
			}
			op := aircraft.OpStopGenerator
			if g.State == electrical.GeneratorOff {
				op = aircraft.OpStartGenerator
			}
			m.send(aircraft.Command{Op: op, Target: sel.name})
		}
	case aircraft.KindBreaker:
		m.send(aircraft.Command{Op: aircraft.OpResetBreaker, Target: sel.name})
	case aircraft.KindLoad:
		for _, l := range m.snap.Loads {
			if l.Name == sel.name {
				m.send(aircraft.Command{Op: aircraft.OpSetLoadPowered, Target: sel.name, Value: boolValue(!l.Powered)})
			}
		}
	case aircraft.KindActuator:
		for _, a := range m.snap.Actuators {
			if a.Name == sel.name {
				open := 1.0
				if a.Valve > 0 {
					open = 0
				}
				m.send(aircraft.Command{Op: aircraft.OpSetValve, Target: sel.name, Value: open})
			}
		}
	}
}

// adjust nudges a load factor or valve opening.
func (m *Model) adjust(delta float64) {
	sel, ok := m.current()
	if !ok {
		return
	}
	switch sel.kind {
	case aircraft.KindLoad:
		for _, l := range m.snap.Loads {
			if l.Name == sel.name {
				m.send(aircraft.Command{Op: aircraft.OpSetLoadFactor, Target: sel.name, Value: clamp01(float64(l.Factor) + delta)})
			}
		}
	case aircraft.KindActuator:
		for _, a := range m.snap.Actuators {
			if a.Name == sel.name {
				m.send(aircraft.Command{Op: aircraft.OpSetValve, Target: sel.name, Value: clamp01(float64(a.Valve) + delta)})
			}
		}
	}
}

func clamp01(v float64) float64 {
	return math.Round(math.Max(0, math.Min(1, v))*100) / 100
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func (m Model) View() string {
	st := m.styles
	if !m.have {
		return st.header.Render("AEROTWIN") + "\n\nwaiting for first tick...\n"
	}

	var s strings.Builder
	s.WriteString(st.header.Render(fmt.Sprintf("AEROTWIN  %s", m.snap.Aircraft)) + "\n")
	s.WriteString(st.label.Render("Sim time") + st.value.Render(fmt.Sprintf("%.2fs  step %d", m.snap.Time.Seconds(), m.snap.Step)) + "\n")
	s.WriteString(st.label.Render("Clock") + st.value.Render(m.snap.Clock) + "\n")
	s.WriteString(st.label.Render("ET / CHR") + st.value.Render(fmt.Sprintf("%s / %s", m.snap.ET.Truncate(time.Second), m.snap.CHR.Truncate(time.Second))) + "\n\n")

	row := 0
	line := func(text string, style lipgloss.Style) {
		prefix := "  "
		if row == m.selected {
			prefix = "> "
			style = st.selected
		}
		s.WriteString(style.Render(prefix+text) + "\n")
		row++
	}

	for _, g := range m.snap.Generators {
		style := st.normal
		if g.State != electrical.GeneratorAtSpeed {
			style = st.caution
		}
		line(fmt.Sprintf("%-16s %-11s %7.0f rpm %7.1f V %8.0f W", g.Name, g.State, float64(g.Speed), float64(g.Voltage), float64(g.Power)), style)
	}
	for _, b := range m.snap.Buses {
		line(fmt.Sprintf("%-16s %-11s %7.1f V %8.0f W", b.Name, "bus", float64(b.Voltage), float64(b.Power)), st.value)
	}
	for _, b := range m.snap.Breakers {
		state, style := "closed", st.normal
		if b.Tripped {
			state, style = "TRIPPED", st.warning
		}
		line(fmt.Sprintf("%-16s %-11s %7.1f V %8.2f A  trips %d", b.Name, state, float64(b.Voltage), float64(b.Current), b.Trips), style)
	}
	for _, l := range m.snap.Loads {
		style := st.normal
		switch {
		case !l.Powered:
			style = st.value
		case l.Condition != electrical.ConditionNormal:
			style = st.caution
		}
		state := "off"
		if l.Powered {
			state = l.Condition.String()
		}
		line(fmt.Sprintf("%-16s %-12s %6.1f V %8.1f W  x%.2f", l.Name, state, float64(l.Voltage), float64(l.Power), float64(l.Factor)), style)
	}
	for _, a := range m.snap.Actuators {
		line(fmt.Sprintf("%-16s ext %5.1f%%  valve %3.0f%%  %6.0f psi", a.Name, float64(a.Extension)*100, float64(a.Valve)*100, a.Pressure.PSI()), st.value)
	}

	if len(m.snap.Overcurrent) > 0 {
		s.WriteString("\n" + st.warning.Render(fmt.Sprintf("OVERCURRENT on %d wire(s)", len(m.snap.Overcurrent))) + "\n")
	}

	if sel, ok := m.current(); ok && len(m.history) > 1 {
		chart := asciigraph.Plot(m.history, asciigraph.Height(6), asciigraph.Width(50),
			asciigraph.Caption(sel.name+" "+traceCaption(sel.kind)))
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	s.WriteString(st.help.Render("TAB:Select ENTER:Toggle +/-:Adjust e/E:ET c/C:CHR M:Clock T:Theme ?:Help Q:Quit"))
	view := st.panel.Render(s.String())

	if m.showHelp {
		return st.panel.Render(helpText) + "\n" + view
	}
	return view
}

const helpText = `KEYBOARD SHORTCUTS
  Tab/Down  select next component
  Up        select previous component
  Enter     start/stop generator, reset breaker,
            switch load, open/close valve
  +/-       load factor or valve opening by 10%
  e / E     start / reset elapsed time
  c / C     toggle / reset chronograph
  m         cycle clock display
  t         cycle theme
  ?         toggle this help
  q         quit`

// Run shows the viewer until the user quits or ctx is cancelled.
func Run(ctx context.Context, store *broadcast.Store, theme string) error {
	_, err := tea.NewProgram(NewModel(store, theme), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
