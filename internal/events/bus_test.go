package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PriorityOrder(t *testing.T) {
	bus := New[string]("test")
	var got []string

	bus.Subscribe(func(string) { got = append(got, "p10") }, WithPriority(10))
	bus.Subscribe(func(string) { got = append(got, "p0-a") })
	bus.Subscribe(func(string) { got = append(got, "p-5") }, WithPriority(-5))
	bus.Subscribe(func(string) { got = append(got, "p0-b") })
	bus.Subscribe(func(string) { got = append(got, "p10-b") }, WithPriority(10))

	bus.Publish("go")

	assert.Equal(t, []string{"p-5", "p0-a", "p0-b", "p10", "p10-b"}, got)
}

func TestBus_EqualPriorityKeepsRegistrationOrder(t *testing.T) {
	bus := New[int]("test")
	var got []int
	for i := 0; i < 5; i++ {
		i := i
		bus.Subscribe(func(int) { got = append(got, i) }, WithPriority(3))
	}

	bus.Publish(1)

	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestBus_PayloadDelivered(t *testing.T) {
	type shown struct{ Passage string }
	bus := New[shown]("shown")

	var got shown
	bus.Subscribe(func(ev shown) { got = ev })
	bus.Publish(shown{Passage: "Forest"})

	assert.Equal(t, "Forest", got.Passage)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New[string]("test")
	calls := 0
	unsub := bus.Subscribe(func(string) { calls++ })
	require.Equal(t, 1, bus.Len())

	bus.Publish("a")
	unsub()
	bus.Publish("b")

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, bus.Len())

	// Removing twice is harmless.
	unsub()
}

func TestBus_SubscribeDuringPublish(t *testing.T) {
	bus := New[string]("test")
	late := 0
	bus.Subscribe(func(string) {
		bus.Subscribe(func(string) { late++ })
	})

	bus.Publish("first")
	assert.Equal(t, 0, late, "listener added mid-dispatch must not see the current event")

	bus.Publish("second")
	assert.Equal(t, 1, late)
}

func TestBus_BusesAreIndependent(t *testing.T) {
	a := New[string]("a")
	b := New[string]("b")
	calls := 0
	a.Subscribe(func(string) { calls++ })

	b.Publish("x")

	assert.Equal(t, 0, calls)
	assert.Equal(t, "a", a.Name())
}
