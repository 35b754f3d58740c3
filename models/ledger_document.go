package models

import (
	"time"

	"gorm.io/datatypes"
)

// LedgerDocument stores one profile's serialized reward ledger.
type LedgerDocument struct {
	ProfileID string         `gorm:"primaryKey;size:64" json:"profile_id"`
	Document  datatypes.JSON `gorm:"not null" json:"document"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
