package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/feiralocal-backend/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// appState mirrors the app_state table created by the goose migrations.
type appState struct {
	StateKey  string    `gorm:"column:state_key;primaryKey"`
	Payload   string    `gorm:"column:payload;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (appState) TableName() string {
	return "app_state"
}

// SQLBackend stores slots as rows of app_state (postgres or sqlite).
type SQLBackend struct {
	db  *db.Client
	now func() time.Time
}

func NewSQLBackend(client *db.Client) *SQLBackend {
	return &SQLBackend{db: client, now: time.Now}
}

func (s *SQLBackend) Get(ctx context.Context, key string) (string, bool, error) {
	var row appState
	err := s.db.DB().WithContext(ctx).Where("state_key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return row.Payload, true, nil
}

func (s *SQLBackend) Set(ctx context.Context, key, value string) error {
	row := appState{StateKey: key, Payload: value, UpdatedAt: s.now().UTC()}
	return s.db.DB().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "state_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(&row).Error
}

func (s *SQLBackend) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.db.DB().WithContext(ctx).Where("state_key IN ?", keys).Delete(&appState{}).Error
}

func (s *SQLBackend) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
