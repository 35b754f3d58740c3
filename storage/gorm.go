package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/momentum/ledger"
	"github.com/cppla/momentum/models"
)

// GormStore keeps ledger documents in the ledger_documents table.
type GormStore struct {
	db *gorm.DB
}

var _ ledger.Store = (*GormStore)(nil)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Load(ctx context.Context, profile string) ([]byte, error) {
	var doc models.LedgerDocument
	err := s.db.WithContext(ctx).Where("profile_id = ?", profile).First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrNoDocument
		}
		return nil, err
	}
	return []byte(doc.Document), nil
}

// Save upserts so concurrent first writes for a profile cannot collide on the primary key.
func (s *GormStore) Save(ctx context.Context, profile string, doc []byte) error {
	now := time.Now()
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "profile_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"document": datatypes.JSON(doc), "updated_at": now}),
	}).Create(&models.LedgerDocument{
		ProfileID: profile,
		Document:  datatypes.JSON(doc),
		CreatedAt: now,
		UpdatedAt: now,
	}).Error
}
