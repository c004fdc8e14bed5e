// Package briefing gathers goals, tasks and events into a briefing prompt
// and keeps chat histories acceptable to the AI service.
package briefing

import "strings"

// Conversation roles accepted by the AI service.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Part is one text fragment of a turn.
type Part struct {
	Text string `json:"text"`
}

// Turn is one message of the chat transcript.
type Turn struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// UserTurn returns a single-part user turn.
func UserTurn(text string) Turn {
	return Turn{Role: RoleUser, Parts: []Part{{Text: text}}}
}

// ModelTurn returns a single-part model turn.
func ModelTurn(text string) Turn {
	return Turn{Role: RoleModel, Parts: []Part{{Text: text}}}
}

// Text concatenates the text of every part.
func (t Turn) Text() string {
	if len(t.Parts) == 1 {
		return t.Parts[0].Text
	}
	var sb strings.Builder
	for _, p := range t.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}
