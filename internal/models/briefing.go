package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Briefing status constants
const (
	BriefingStatusPending    = "pending"
	BriefingStatusProcessing = "processing"
	BriefingStatusCompleted  = "completed"
	BriefingStatusFailed     = "failed"
)

// Briefing source constants
const (
	BriefingSourceManual    = "manual"
	BriefingSourceScheduled = "scheduled"
)

// Briefing is an archived daily briefing with JSONB content and status lifecycle
type Briefing struct {
	gorm.Model
	Source       string         `gorm:"not null;default:'manual'"`
	Content      datatypes.JSON `gorm:"type:jsonb"`
	Status       string         `gorm:"not null;default:'pending';index"`
	ErrorMessage string         `gorm:"column:error_message;type:text"`
	GeneratedAt  *time.Time
	ReadAt       *time.Time
}

// BriefingContent is the JSON stored in Briefing.Content.
type BriefingContent struct {
	Prompt   string `json:"prompt"`
	Briefing string `json:"briefing"`
}

// IsTerminal reports whether the briefing has finished, successfully or not.
func (b *Briefing) IsTerminal() bool {
	return b.Status == BriefingStatusCompleted || b.Status == BriefingStatusFailed
}
