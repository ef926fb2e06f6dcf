package api

import "sync"

// Broadcaster fans out session-invalidation signals. The gateway publishes
// when the server rejects the credential; the session store, the update
// watcher, and the UI root each subscribe. Subscribers run synchronously
// on Publish and must only mutate local state, never issue requests.
type Broadcaster struct {
	mu   sync.Mutex
	subs []func()
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{}
}

// Subscribe registers fn to be invoked on every Publish.
func (b *Broadcaster) Subscribe(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, fn)
}

// Publish invokes all subscribers in registration order.
func (b *Broadcaster) Publish() {
	b.mu.Lock()
	subs := make([]func(), len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}
