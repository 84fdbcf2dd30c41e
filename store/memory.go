package store

import (
	"context"
	"sync"

	"github.com/anyoshi/bingo-live/game"
)

// MemoryStore keeps the document in memory. Used by tests and ephemeral
// runs; state is lost on restart. Implements Watcher with the same
// write-then-notify behavior as the database-backed store.
type MemoryStore struct {
	mu    sync.RWMutex
	state *game.State
	subs  *notifier
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{subs: newNotifier()}
}

func (m *MemoryStore) Load(ctx context.Context) (*game.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state == nil {
		return nil, ErrNotFound
	}
	return m.state.Clone(), nil
}

func (m *MemoryStore) Save(ctx context.Context, s *game.State, initial bool) error {
	m.mu.Lock()
	m.state = s.Clone()
	m.mu.Unlock()

	m.subs.notify(s)
	return nil
}

func (m *MemoryStore) Subscribe(onChange func(*game.State), onError func(error)) (func(), error) {
	return m.subs.add(onChange, onError), nil
}

// notifier is the subscriber registry shared by Watcher implementations.
// Callbacks run synchronously on the writer's goroutine, each with its own
// copy of the document.
type notifier struct {
	mu   sync.Mutex
	next int
	subs map[int]subscriber
}

type subscriber struct {
	onChange func(*game.State)
	onError  func(error)
}

func newNotifier() *notifier {
	return &notifier{subs: make(map[int]subscriber)}
}

func (n *notifier) add(onChange func(*game.State), onError func(error)) func() {
	n.mu.Lock()
	id := n.next
	n.next++
	n.subs[id] = subscriber{onChange: onChange, onError: onError}
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.subs, id)
		n.mu.Unlock()
	}
}

func (n *notifier) snapshot() []subscriber {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]subscriber, 0, len(n.subs))
	for _, s := range n.subs {
		out = append(out, s)
	}
	return out
}

func (n *notifier) notify(s *game.State) {
	for _, sub := range n.snapshot() {
		if sub.onChange != nil {
			sub.onChange(s.Clone())
		}
	}
}
