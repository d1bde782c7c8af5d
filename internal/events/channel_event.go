package events

import "sync"

// ChannelEvent fans a value out to registered channels. Sends never block:
// a full channel simply misses that notification. The bt manager uses this
// for scan-result and connected-device list updates, where only the latest
// value matters.
type ChannelEvent[T any] struct {
	mu       sync.RWMutex
	channels map[uint64]chan<- T
	nextID   uint64

	replayLast bool
	last       *T
}

// NewChannelEvent creates an event; see NewCallbackEvent for replayLast.
func NewChannelEvent[T any](replayLast bool) *ChannelEvent[T] {
	return &ChannelEvent[T]{
		channels:   make(map[uint64]chan<- T),
		replayLast: replayLast,
	}
}

// Listen registers a channel and returns its deregistration function.
func (e *ChannelEvent[T]) Listen(ch chan<- T) func() {
	if ch == nil {
		panic("events: channel cannot be nil")
	}

	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.channels[id] = ch
	var replay *T
	if e.replayLast && e.last != nil {
		v := *e.last
		replay = &v
	}
	e.mu.Unlock()

	if replay != nil {
		select {
		case ch <- *replay:
		default:
		}
	}

	return func() {
		e.mu.Lock()
		delete(e.channels, id)
		e.mu.Unlock()
	}
}

// Notify sends value to every registered channel without blocking.
func (e *ChannelEvent[T]) Notify(value T) {
	e.mu.Lock()
	if e.replayLast {
		v := value
		e.last = &v
	}
	chs := make([]chan<- T, 0, len(e.channels))
	for _, ch := range e.channels {
		chs = append(chs, ch)
	}
	e.mu.Unlock()

	for _, ch := range chs {
		select {
		case ch <- value:
		default:
		}
	}
}

// ListenerCount reports the number of registered channels.
func (e *ChannelEvent[T]) ListenerCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.channels)
}
