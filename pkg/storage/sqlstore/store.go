package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JKPrasad01/FoodAppFrontend/pkg/db"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/storage"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is one persisted slot of one visitor.
type Entry struct {
	VisitorID string    `gorm:"column:visitor_id;primaryKey;size:64"`
	Slot      string    `gorm:"column:slot;primaryKey;size:32"`
	Value     string    `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (Entry) TableName() string { return "client_state_entries" }

// Store keeps client state in SQLite or Postgres through GORM.
type Store struct {
	client *db.Client
	now    func() time.Time
}

var _ storage.Backend = (*Store)(nil)

// New migrates the state table and returns the backend.
func New(ctx context.Context, client *db.Client) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if err := client.Migrate(ctx, &Entry{}); err != nil {
		return nil, err
	}
	return &Store{client: client, now: time.Now}, nil
}

func (s *Store) Get(ctx context.Context, visitorID string, key storage.Key) ([]byte, error) {
	var entry Entry
	err := s.client.DB().WithContext(ctx).
		Where("visitor_id = ? AND slot = ?", visitorID, string(key)).
		Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return []byte(entry.Value), nil
}

func (s *Store) Put(ctx context.Context, visitorID string, key storage.Key, value []byte) error {
	entry := Entry{
		VisitorID: visitorID,
		Slot:      string(key),
		Value:     string(value),
		UpdatedAt: s.now().UTC(),
	}
	err := s.client.DB().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "visitor_id"}, {Name: "slot"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, visitorID string, key storage.Key) error {
	err := s.client.DB().WithContext(ctx).
		Where("visitor_id = ? AND slot = ?", visitorID, string(key)).
		Delete(&Entry{}).Error
	if err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}
