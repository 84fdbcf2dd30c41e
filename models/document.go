package models

import (
	"time"

	"gorm.io/datatypes"
)

// GameDocument is the single-row storage form of the shared game state.
// Payload holds the full GameState JSON; Revision counts committed saves
// (informational, saves are last-writer-wins).
type GameDocument struct {
	ID        uint           `gorm:"primaryKey"`
	Key       string         `gorm:"uniqueIndex;not null"`
	Payload   datatypes.JSON `gorm:"not null"`
	Revision  uint64         `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
