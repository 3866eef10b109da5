// Package broadcast is a keyed store through which independently
// scheduled subsystems exchange values without a shared schema.
//
// A Store is created once and passed to whoever needs it. Values are
// filed under a Category and read back by dynamic type:
//
//	store := broadcast.New()
//	store.Send(broadcast.Electrical, snapshot)
//	snaps := broadcast.Receive[aircraft.Snapshot](store, broadcast.Electrical)
//
// One mutex guards the whole table. It is the only sanctioned way for
// simulation state to cross a goroutine boundary.
package broadcast

import "sync"

// Category keys a sequence of values.
type Category int

const (
	Electrical Category = iota
	Hydraulic
	// Commands carries requests from viewers and scripts to the
	// simulation loop.
	Commands
)

func (c Category) String() string {
	switch c {
	case Electrical:
		return "electrical"
	case Hydraulic:
		return "hydraulic"
	case Commands:
		return "commands"
	default:
		return "unknown"
	}
}

type Store struct {
	mu        sync.Mutex
	messages  map[Category][]any
	retention int
}

type Option func(*Store)

// WithRetention keeps at most n values per category, dropping the
// oldest. n <= 0 keeps everything.
func WithRetention(n int) Option {
	return func(s *Store) { s.retention = n }
}

func New(opts ...Option) *Store {
	s := &Store{messages: make(map[Category][]any)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send appends v under cat.
func (s *Store) Send(cat Category, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := append(s.messages[cat], v)
	if s.retention > 0 && len(msgs) > s.retention {
		msgs = append(msgs[:0:0], msgs[len(msgs)-s.retention:]...)
	}
	s.messages[cat] = msgs
}

// Len is the number of values of any type held under cat.
func (s *Store) Len(cat Category) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages[cat])
}

// Clear drops every value under cat.
func (s *Store) Clear(cat Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.messages, cat)
}

// Receive returns, oldest first, every value under cat whose dynamic type
// is T. Values of other types are skipped.
func Receive[T any](s *Store, cat Category) []T {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []T
	for _, msg := range s.messages[cat] {
		if v, ok := msg.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// Latest returns the most recent value of type T under cat.
func Latest[T any](s *Store, cat Category) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.messages[cat]
	for i := len(msgs) - 1; i >= 0; i-- {
		if v, ok := msgs[i].(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Take removes and returns every value of type T under cat, leaving
// values of other types in place.
func Take[T any](s *Store, cat Category) []T {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.messages[cat]
	var out []T
	kept := msgs[:0]
	for _, msg := range msgs {
		if v, ok := msg.(T); ok {
			out = append(out, v)
			continue
		}
		kept = append(kept, msg)
	}
	clear(msgs[len(kept):])
	s.messages[cat] = kept
	return out
}
