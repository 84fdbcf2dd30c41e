package store

import (
	"context"
	"errors"
	"testing"

	"github.com/anyoshi/bingo-live/game"
)

func TestMemoryStoreLoadNotFound(t *testing.T) {
	m := NewMemoryStore()
	if _, err := m.Load(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreSaveLoad(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	s := game.NewState(10, map[string][]int{"A": {1, 2}})

	if err := m.Save(ctx, s, true); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := m.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.PoolMax != 10 || len(got.RemainingPool) != 10 {
		t.Fatalf("loaded state mismatch: %+v", got)
	}
	if len(got.RegisteredCards["A"]) != 2 {
		t.Fatalf("cards not persisted: %v", got.RegisteredCards)
	}

	// The store must hand out copies, not its internal document.
	got.RegisteredCards["A"][0] = 99
	again, _ := m.Load(ctx)
	if again.RegisteredCards["A"][0] == 99 {
		t.Fatalf("Load leaked the internal document")
	}
}

func TestMemoryStoreNotifiesOnSave(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	var seen []*game.State
	cancel, err := m.Subscribe(func(s *game.State) { seen = append(seen, s) }, nil)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	s := game.NewState(5, nil)
	if err := m.Save(ctx, s, true); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(seen) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(seen))
	}
	if seen[0].PoolMax != 5 {
		t.Fatalf("notification carried wrong state: %+v", seen[0])
	}

	// Writer's own saves notify too: that is the only update path.
	if _, err := game.DrawOne(s); err != nil {
		t.Fatalf("DrawOne: %v", err)
	}
	if err := m.Save(ctx, s, false); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(seen) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(seen))
	}

	cancel()
	cancel() // safe to call twice
	if err := m.Save(ctx, s, false); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(seen) != 2 {
		t.Fatalf("cancelled subscriber still notified")
	}
}
