// Package streams fans completed briefings out over a Redis Stream.
package streams

import "time"

// StreamBriefingEvents carries one message per completed briefing.
const StreamBriefingEvents = "briefing:events"

// Schema version constant
const (
	SchemaVersionV1 = "v1"
)

// BriefingEvent announces a completed briefing.
type BriefingEvent struct {
	BriefingID  uint      `json:"briefing_id"`
	Source      string    `json:"source"` // manual/scheduled
	Briefing    string    `json:"briefing"`
	GeneratedAt time.Time `json:"generated_at"`
}
