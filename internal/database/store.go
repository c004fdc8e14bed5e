package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/jimdaga/first-sip/internal/models"
)

// ErrNotFound is returned when no briefing matches a lookup.
var ErrNotFound = errors.New("briefing not found")

// BriefingStore persists archived briefings.
type BriefingStore struct {
	db *gorm.DB
}

// NewBriefingStore wraps an open GORM connection.
func NewBriefingStore(db *gorm.DB) *BriefingStore {
	return &BriefingStore{db: db}
}

// Create inserts a pending briefing.
func (s *BriefingStore) Create(ctx context.Context, source string) (*models.Briefing, error) {
	briefing := models.Briefing{
		Source: source,
		Status: models.BriefingStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(&briefing).Error; err != nil {
		return nil, fmt.Errorf("failed to create briefing: %w", err)
	}
	return &briefing, nil
}

// Get loads a briefing by id.
func (s *BriefingStore) Get(ctx context.Context, id uint) (*models.Briefing, error) {
	var briefing models.Briefing
	if err := s.db.WithContext(ctx).First(&briefing, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &briefing, nil
}

// FindActive returns a pending or processing briefing, if any.
func (s *BriefingStore) FindActive(ctx context.Context) (*models.Briefing, error) {
	var briefing models.Briefing
	err := s.db.WithContext(ctx).
		Where("status IN ?", []string{models.BriefingStatusPending, models.BriefingStatusProcessing}).
		Order("created_at DESC").
		First(&briefing).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &briefing, nil
}

// Latest returns the most recently generated completed briefing.
func (s *BriefingStore) Latest(ctx context.Context) (*models.Briefing, error) {
	var briefing models.Briefing
	err := s.db.WithContext(ctx).
		Where("status = ?", models.BriefingStatusCompleted).
		Order("generated_at DESC").
		First(&briefing).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &briefing, nil
}

// MarkProcessing moves a briefing to processing.
func (s *BriefingStore) MarkProcessing(ctx context.Context, id uint) error {
	return s.update(ctx, id, map[string]interface{}{
		"status": models.BriefingStatusProcessing,
	})
}

// Complete stores the generated content and marks the briefing completed.
func (s *BriefingStore) Complete(ctx context.Context, id uint, content models.BriefingContent, generatedAt time.Time) error {
	jsonBytes, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal content: %w", err)
	}
	return s.update(ctx, id, map[string]interface{}{
		"status":        models.BriefingStatusCompleted,
		"content":       datatypes.JSON(jsonBytes),
		"generated_at":  generatedAt,
		"error_message": "",
	})
}

// Fail records why generation failed.
func (s *BriefingStore) Fail(ctx context.Context, id uint, message string) error {
	return s.update(ctx, id, map[string]interface{}{
		"status":        models.BriefingStatusFailed,
		"error_message": message,
	})
}

// MarkRead sets read_at once; later calls keep the first timestamp.
func (s *BriefingStore) MarkRead(ctx context.Context, id uint, at time.Time) (*models.Briefing, error) {
	briefing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if briefing.ReadAt != nil {
		return briefing, nil
	}
	if err := s.update(ctx, id, map[string]interface{}{"read_at": at}); err != nil {
		return nil, err
	}
	briefing.ReadAt = &at
	return briefing, nil
}

func (s *BriefingStore) update(ctx context.Context, id uint, updates map[string]interface{}) error {
	result := s.db.WithContext(ctx).Model(&models.Briefing{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update briefing %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("failed to load briefing: %w", err)
}
