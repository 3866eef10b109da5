// Package automation replays scripted operator commands against an
// aircraft at fixed simulated times.
package automation

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/san-kum/aerotwin/internal/aircraft"
	"github.com/san-kum/aerotwin/internal/config"
	"gopkg.in/yaml.v3"
)

// Scenario is a standalone script file: a list of timed commands that can
// be layered over any configuration naming the same components.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Events      []config.Event `yaml:"events"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}

	return &scenario, nil
}

// Executor applies one command. *aircraft.Systems implements it.
type Executor interface {
	Execute(cmd aircraft.Command) error
}

type entry struct {
	at  time.Duration
	cmd aircraft.Command
}

// Timeline fires each command once, on the first step that starts at or
// after its time. Commands due at the same time fire in script order.
type Timeline struct {
	exec    Executor
	entries []entry
	next    int
	logger  *slog.Logger
}

// Compile resolves operation names. Unknown names fail here rather than
// mid-run.
func Compile(exec Executor, events []config.Event, logger *slog.Logger) (*Timeline, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	entries := make([]entry, 0, len(events))
	for i, ev := range events {
		op, err := aircraft.ParseOp(ev.Op)
		if err != nil {
			return nil, fmt.Errorf("automation: event %d: %w", i, err)
		}
		entries = append(entries, entry{
			at:  ev.At,
			cmd: aircraft.Command{Op: op, Target: ev.Target, Value: ev.Value},
		})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].at < entries[j].at })
	return &Timeline{exec: exec, entries: entries, logger: logger}, nil
}

// Apply fires every command due by t.
func (tl *Timeline) Apply(t time.Duration) error {
	for tl.next < len(tl.entries) && tl.entries[tl.next].at <= t {
		e := tl.entries[tl.next]
		tl.next++
		if err := tl.exec.Execute(e.cmd); err != nil {
			return fmt.Errorf("automation: %s at %s: %w", e.cmd, e.at, err)
		}
		tl.logger.Debug("scripted command", "command", e.cmd.String(), "due", e.at, "at", t)
	}
	return nil
}

// Pending is the number of commands not yet fired.
func (tl *Timeline) Pending() int { return len(tl.entries) - tl.next }

// Rewind makes every command due again.
func (tl *Timeline) Rewind() { tl.next = 0 }
