package localstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okestore/storefront-sync/pkg/db"
	"github.com/okestore/storefront-sync/pkg/migrate"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is one persisted collection.
type Entry struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     string    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (Entry) TableName() string { return "local_entries" }

// SQL stores entries in a gorm-managed table, normally an sqlite file next to the binary.
type SQL struct {
	db  *gorm.DB
	now func() time.Time
}

// OpenSQLite opens the file at path and applies the local store migrations.
func OpenSQLite(ctx context.Context, path string) (*SQL, *db.Client, error) {
	client, err := db.OpenSQLite(path)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := client.SQL()
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	if err := migrate.Up(ctx, sqlDB, client.Driver(), migrate.SetLocalStore); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("migrating local store: %w", err)
	}
	return NewSQL(client.DB()), client, nil
}

// NewSQL wraps an already migrated connection.
func NewSQL(conn *gorm.DB) *SQL {
	return &SQL{db: conn, now: time.Now}
}

func (s *SQL) Get(ctx context.Context, key string) (string, bool, error) {
	var entry Entry
	err := s.db.WithContext(ctx).Where("key = ?", key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.Value, true, nil
}

func (s *SQL) Set(ctx context.Context, key, value string) error {
	entry := Entry{Key: key, Value: value, UpdatedAt: s.now().UTC()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (s *SQL) Remove(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("key = ?", key).Delete(&Entry{}).Error
}
