package broadcast

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reading struct {
	Name  string
	Value float64
}

func TestReceiveFiltersByType(t *testing.T) {
	s := New()
	s.Send(Electrical, reading{"bus", 28})
	s.Send(Electrical, "not a reading")
	s.Send(Electrical, reading{"bus", 27.5})
	s.Send(Hydraulic, reading{"actuator", 0.4})

	got := Receive[reading](s, Electrical)
	assert.Equal(t, []reading{{"bus", 28}, {"bus", 27.5}}, got)

	assert.Equal(t, []string{"not a reading"}, Receive[string](s, Electrical))
	assert.Empty(t, Receive[int](s, Electrical))
	assert.Empty(t, Receive[reading](s, Commands))
	assert.Equal(t, 3, s.Len(Electrical))
}

func TestReceiveReturnsCopies(t *testing.T) {
	s := New()
	s.Send(Electrical, reading{"bus", 28})

	got := Receive[reading](s, Electrical)
	got[0].Value = 0

	assert.Equal(t, 28.0, Receive[reading](s, Electrical)[0].Value)
}

func TestLatest(t *testing.T) {
	s := New()
	_, ok := Latest[reading](s, Electrical)
	assert.False(t, ok)

	s.Send(Electrical, reading{"bus", 1})
	s.Send(Electrical, reading{"bus", 2})
	s.Send(Electrical, 3)

	r, ok := Latest[reading](s, Electrical)
	require.True(t, ok)
	assert.Equal(t, 2.0, r.Value)
}

func TestTakeDrainsOnlyMatchingType(t *testing.T) {
	s := New()
	s.Send(Commands, reading{"a", 1})
	s.Send(Commands, "keep")
	s.Send(Commands, reading{"b", 2})

	taken := Take[reading](s, Commands)
	assert.Len(t, taken, 2)
	assert.Empty(t, Take[reading](s, Commands))
	assert.Equal(t, []string{"keep"}, Receive[string](s, Commands))
}

func TestRetention(t *testing.T) {
	s := New(WithRetention(3))
	for i := range 10 {
		s.Send(Hydraulic, i)
	}
	assert.Equal(t, []int{7, 8, 9}, Receive[int](s, Hydraulic))

	s.Clear(Hydraulic)
	assert.Zero(t, s.Len(Hydraulic))
}

func TestConcurrentSendReceive(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := range 100 {
				s.Send(Electrical, reading{"w", float64(w*100 + i)})
			}
		}()
		go func() {
			defer wg.Done()
			for range 100 {
				_ = Receive[reading](s, Electrical)
			}
		}()
	}
	wg.Wait()

	assert.Len(t, Receive[reading](s, Electrical), 800)
}
