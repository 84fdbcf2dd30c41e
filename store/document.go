package store

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/anyoshi/bingo-live/game"
	"github.com/anyoshi/bingo-live/models"
)

// DocumentKey is the fixed key of the single shared game document.
const DocumentKey = "state"

// DocumentStore persists the document as one keyed row with a JSON payload.
// Works against Postgres (shared deployment) and SQLite (local deployment)
// through whatever dialector the *gorm.DB was opened with. The revision
// column increments on every save but is informational only: saves never
// reject on a stale revision, the last writer wins.
type DocumentStore struct {
	db   *gorm.DB
	key  string
	subs *notifier
}

func NewDocumentStore(db *gorm.DB) *DocumentStore {
	return &DocumentStore{db: db, key: DocumentKey, subs: newNotifier()}
}

func (d *DocumentStore) Load(ctx context.Context) (*game.State, error) {
	var doc models.GameDocument
	err := d.db.WithContext(ctx).Where("key = ?", d.key).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &PersistenceError{Op: "load", Err: err}
	}

	var s game.State
	if err := json.Unmarshal(doc.Payload, &s); err != nil {
		return nil, &PersistenceError{Op: "load", Err: err}
	}
	if s.RegisteredCards == nil {
		s.RegisteredCards = map[string][]int{}
	}
	return &s, nil
}

func (d *DocumentStore) Save(ctx context.Context, s *game.State, initial bool) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}

	if initial {
		doc := models.GameDocument{
			Key:      d.key,
			Payload:  datatypes.JSON(payload),
			Revision: 1,
		}
		if err := d.db.WithContext(ctx).Create(&doc).Error; err != nil {
			return &PersistenceError{Op: "save", Err: err}
		}
	} else {
		res := d.db.WithContext(ctx).Model(&models.GameDocument{}).
			Where("key = ?", d.key).
			Updates(map[string]any{
				"payload":  datatypes.JSON(payload),
				"revision": gorm.Expr("revision + 1"),
			})
		if res.Error != nil {
			return &PersistenceError{Op: "save", Err: res.Error}
		}
		if res.RowsAffected == 0 {
			return &PersistenceError{Op: "save", Err: ErrNotFound}
		}
	}

	d.subs.notify(s)
	return nil
}

func (d *DocumentStore) Subscribe(onChange func(*game.State), onError func(error)) (func(), error) {
	return d.subs.add(onChange, onError), nil
}

// Revision reports the current revision counter, 0 when no document exists.
func (d *DocumentStore) Revision(ctx context.Context) (uint64, error) {
	var doc models.GameDocument
	err := d.db.WithContext(ctx).Select("revision").Where("key = ?", d.key).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, &PersistenceError{Op: "load", Err: err}
	}
	return doc.Revision, nil
}
