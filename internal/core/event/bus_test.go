package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type ping struct{ n int }
type pong struct{ s string }

func TestBus_DeliveredNextTick(t *testing.T) {
	b := NewBus()
	var got []int
	Subscribe(b, func(p ping) { got = append(got, p.n) })

	Emit(b, ping{1})
	Emit(b, ping{2})
	assert.Equal(t, 2, b.Pending())

	b.DispatchAll()
	assert.Empty(t, got)

	b.SwapBuffers()
	assert.Equal(t, 0, b.Pending())
	b.DispatchAll()
	assert.Equal(t, []int{1, 2}, got)

	// the previous front is cleared on the following swap
	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, []int{1, 2}, got)
}

func TestBus_RoutesByType(t *testing.T) {
	b := NewBus()
	var pings, pongs int
	Subscribe(b, func(ping) { pings++ })
	Subscribe(b, func(pong) { pongs++ })
	Subscribe(b, func(pong) { pongs++ })

	Emit(b, pong{"x"})
	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, 0, pings)
	assert.Equal(t, 2, pongs)
}

func TestBus_NilEmitIsDropped(t *testing.T) {
	assert.NotPanics(t, func() { Emit[ping](nil, ping{1}) })
	assert.NotPanics(t, func() { Subscribe(nil, func(ping) {}) })
}
