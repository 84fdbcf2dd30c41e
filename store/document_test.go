package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/anyoshi/bingo-live/game"
	"github.com/anyoshi/bingo-live/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.GameDocument{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestDocumentStoreCreateThenUpdate(t *testing.T) {
	ctx := context.Background()
	d := NewDocumentStore(testDB(t))

	if _, err := d.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	s := game.NewState(10, map[string][]int{"A": {3, 7}})
	if err := d.Save(ctx, s, true); err != nil {
		t.Fatalf("initial Save: %v", err)
	}
	rev, err := d.Revision(ctx)
	if err != nil || rev != 1 {
		t.Fatalf("revision = %d (%v), want 1", rev, err)
	}

	if _, err := game.DrawOne(s); err != nil {
		t.Fatalf("DrawOne: %v", err)
	}
	if err := d.Save(ctx, s, false); err != nil {
		t.Fatalf("update Save: %v", err)
	}
	rev, _ = d.Revision(ctx)
	if rev != 2 {
		t.Fatalf("revision = %d, want 2", rev)
	}

	got, err := d.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.DrawnBalls) != 1 || len(got.RemainingPool) != 9 {
		t.Fatalf("loaded state mismatch: drawn=%v pool=%d", got.DrawnBalls, len(got.RemainingPool))
	}
	if len(got.RegisteredCards["A"]) != 2 {
		t.Fatalf("cards lost across round-trip: %v", got.RegisteredCards)
	}
}

func TestDocumentStoreUpdateWithoutDocument(t *testing.T) {
	ctx := context.Background()
	d := NewDocumentStore(testDB(t))

	err := d.Save(ctx, game.NewState(10, nil), false)
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want PersistenceError", err)
	}
}

func TestDocumentStoreNotifiesSubscribers(t *testing.T) {
	ctx := context.Background()
	d := NewDocumentStore(testDB(t))

	var count int
	cancel, err := d.Subscribe(func(*game.State) { count++ }, nil)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer cancel()

	s := game.NewState(5, nil)
	if err := d.Save(ctx, s, true); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := d.Save(ctx, s, false); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 notifications, got %d", count)
	}
}
