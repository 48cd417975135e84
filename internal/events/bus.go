// Package events is a lightweight in-process pub-sub bus carrying gallery
// change notifications to the websocket feed. Only ids are carried;
// consumers query the gallery for full records.
package events

import "sync"

// Kind represents the type of gallery event.
type Kind string

const (
	MemoryAdded   Kind = "memory_added"
	MemoryUpdated Kind = "memory_updated"
	MemoryDeleted Kind = "memory_deleted"
	MemoryLiked   Kind = "memory_liked"
	AlbumAdded    Kind = "album_added"
	AlbumDeleted  Kind = "album_deleted"
)

// Event is one gallery change notification.
type Event struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

// Bus fans events out to every subscriber. Publish never blocks: a
// subscriber whose buffer is full misses the event.
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[int]chan Event
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe registers a new consumer. The returned cancel func must be
// called when the consumer goes away; it closes the channel.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	ch := make(chan Event, buffer)
	b.subs[id] = ch
	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// Publish enqueues the event on every subscriber that has buffer space.
func (b *Bus) Publish(evt Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}
