package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lk2023060901/ai-chat-backend/internal/chat/types"
)

// topicRecordModel is the GORM persistence model. Messages are stored as one
// JSONB document per topic, matching the whole-record overwrite contract.
type topicRecordModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)"`
	Seq       int64     `gorm:"not null;default:0"`
	Messages  []byte    `gorm:"type:jsonb"`
	UpdatedAt time.Time `gorm:"index"`
}

// TableName implements the GORM table naming convention
func (topicRecordModel) TableName() string {
	return "topic_records"
}

// PostgresStore persists topic records in PostgreSQL via GORM
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore creates a PostgreSQL-backed DurableStore and ensures its
// schema exists
func NewPostgresStore(db *gorm.DB) (*PostgresStore, error) {
	if err := db.AutoMigrate(&topicRecordModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate topic records: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Put implements DurableStore
func (s *PostgresStore) Put(ctx context.Context, rec *TopicRecord) error {
	payload, err := json.Marshal(rec.Messages)
	if err != nil {
		return fmt.Errorf("failed to encode messages: %w", err)
	}

	model := topicRecordModel{
		ID:        rec.ID,
		Seq:       rec.Seq,
		Messages:  payload,
		UpdatedAt: rec.UpdatedAt,
	}

	// the update clause only fires for records fresher than the stored row
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"seq", "messages", "updated_at"}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "topic_records.seq < excluded.seq"},
		}},
	}).Create(&model).Error
	if err != nil {
		return fmt.Errorf("failed to store topic record: %w", err)
	}
	return nil
}

// Get implements DurableStore
func (s *PostgresStore) Get(ctx context.Context, id string) (*TopicRecord, error) {
	var model topicRecordModel
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to load topic record: %w", err)
	}

	var messages []*types.Message
	if len(model.Messages) > 0 {
		if err := json.Unmarshal(model.Messages, &messages); err != nil {
			return nil, fmt.Errorf("failed to decode messages: %w", err)
		}
	}

	return &TopicRecord{
		ID:        model.ID,
		Seq:       model.Seq,
		Messages:  messages,
		UpdatedAt: model.UpdatedAt,
	}, nil
}

// Delete implements DurableStore
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&topicRecordModel{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete topic record: %w", err)
	}
	return nil
}
