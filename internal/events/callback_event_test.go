package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCallbackEvent(t *testing.T) {
	event := NewCallbackEvent[string](false)
	require.NotNil(t, event)
	assert.Equal(t, 0, event.ListenerCount())
	assert.False(t, event.replayLast)

	event2 := NewCallbackEvent[int](true)
	require.NotNil(t, event2)
	assert.True(t, event2.replayLast)
}

func TestCallbackEvent_ListenNotifyBasic(t *testing.T) {
	event := NewCallbackEvent[string](false)

	var received []string
	unregister := event.Listen(func(value string) {
		received = append(received, value)
	})
	assert.Equal(t, 1, event.ListenerCount())

	event.Notify("test1")
	event.Notify("test2")

	assert.Equal(t, []string{"test1", "test2"}, received)

	unregister()
	assert.Equal(t, 0, event.ListenerCount())

	event.Notify("test3")
	assert.Equal(t, 2, len(received))
}

func TestCallbackEvent_MultipleListeners(t *testing.T) {
	event := NewCallbackEvent[int](false)

	var received1, received2 []int
	unregister1 := event.Listen(func(value int) { received1 = append(received1, value) })
	unregister2 := event.Listen(func(value int) { received2 = append(received2, value) })
	assert.Equal(t, 2, event.ListenerCount())

	event.Notify(42)
	event.Notify(100)

	assert.Equal(t, []int{42, 100}, received1)
	assert.Equal(t, []int{42, 100}, received2)

	unregister1()
	unregister2()
	assert.Equal(t, 0, event.ListenerCount())
}

func TestCallbackEvent_ReplayLast(t *testing.T) {
	event := NewCallbackEvent[string](true)

	var received1 []string
	unregister1 := event.Listen(func(value string) { received1 = append(received1, value) })
	assert.Empty(t, received1)

	event.Notify("first-event")
	assert.Equal(t, []string{"first-event"}, received1)

	// A late listener immediately receives the last value.
	var received2 []string
	unregister2 := event.Listen(func(value string) { received2 = append(received2, value) })
	assert.Equal(t, []string{"first-event"}, received2)

	event.Notify("second-event")
	assert.Equal(t, []string{"first-event", "second-event"}, received1)
	assert.Equal(t, []string{"first-event", "second-event"}, received2)

	unregister1()
	unregister2()
}

func TestCallbackEvent_NoReplayWhenDisabled(t *testing.T) {
	event := NewCallbackEvent[string](false)

	event.Notify("first-event")

	var received []string
	unregister := event.Listen(func(value string) { received = append(received, value) })
	assert.Empty(t, received)

	event.Notify("second-event")
	assert.Equal(t, []string{"second-event"}, received)

	unregister()
}

func TestCallbackEvent_NilCallbackPanics(t *testing.T) {
	event := NewCallbackEvent[string](false)

	assert.Panics(t, func() {
		event.Listen(nil)
	})
}

func TestCallbackEvent_UnregisterDuringNotify(t *testing.T) {
	event := NewCallbackEvent[string](false)

	var received []string
	var unregister func()
	unregister = event.Listen(func(value string) {
		received = append(received, value)
		if value == "unregister" {
			unregister()
		}
	})

	event.Notify("test1")
	event.Notify("unregister")
	event.Notify("test2")

	assert.Equal(t, []string{"test1", "unregister"}, received)
	assert.Equal(t, 0, event.ListenerCount())
}

func TestCallbackEvent_MultipleUnregisterCalls(t *testing.T) {
	event := NewCallbackEvent[string](false)

	unregister := event.Listen(func(string) {})
	assert.Equal(t, 1, event.ListenerCount())

	unregister()
	unregister()
	assert.Equal(t, 0, event.ListenerCount())
}

func TestCallbackEvent_ConcurrentAccess(t *testing.T) {
	event := NewCallbackEvent[int](false)

	var mu sync.Mutex
	var received []int
	var unregisters []func()
	for i := 0; i < 10; i++ {
		unregisters = append(unregisters, event.Listen(func(value int) {
			mu.Lock()
			received = append(received, value)
			mu.Unlock()
		}))
	}
	assert.Equal(t, 10, event.ListenerCount())

	var wg sync.WaitGroup
	wg.Add(5)
	for i := 0; i < 5; i++ {
		go func(value int) {
			defer wg.Done()
			event.Notify(value)
		}(i)
	}
	wg.Wait()

	mu.Lock()
	assert.Equal(t, 50, len(received))
	mu.Unlock()

	for _, unregister := range unregisters {
		unregister()
	}
}
