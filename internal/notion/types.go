// Package notion queries Notion databases for goals and daily tasks.
package notion

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// UntitledTitle is rendered for records without a title.
const UntitledTitle = "Untitled"

// Record is a Notion page kept as opaque JSON. Only its title is consumed.
type Record struct {
	raw json.RawMessage
}

// NewRecord wraps raw page JSON.
func NewRecord(raw []byte) Record {
	return Record{raw: json.RawMessage(raw)}
}

// UnmarshalJSON keeps the page body verbatim.
func (r *Record) UnmarshalJSON(data []byte) error {
	r.raw = append(r.raw[:0], data...)
	return nil
}

// MarshalJSON returns the page body verbatim.
func (r Record) MarshalJSON() ([]byte, error) {
	if len(r.raw) == 0 {
		return []byte("null"), nil
	}
	return r.raw, nil
}

// Title returns properties.<property>.title[0].plain_text, or
// UntitledTitle when any step of that path is missing or the text is blank.
func (r Record) Title(property string) string {
	if len(r.raw) == 0 {
		return UntitledTitle
	}
	path := "properties." + gjson.Escape(property) + ".title.0.plain_text"
	text := gjson.GetBytes(r.raw, path).String()
	if strings.TrimSpace(text) == "" {
		return UntitledTitle
	}
	return text
}

// Filter is a database query filter. A filter is either a compound Or of
// nested filters or a single property condition.
type Filter struct {
	Or       []Filter       `json:"or,omitempty"`
	Property string         `json:"property,omitempty"`
	Date     *DateCondition `json:"date,omitempty"`
}

// DateCondition matches a date property. Equals is a YYYY-MM-DD string.
type DateCondition struct {
	Equals string `json:"equals,omitempty"`
}

type queryRequest struct {
	Filter      *Filter `json:"filter,omitempty"`
	StartCursor string  `json:"start_cursor,omitempty"`
	PageSize    int     `json:"page_size,omitempty"`
}

type queryResponse struct {
	Results    []Record `json:"results"`
	HasMore    bool     `json:"has_more"`
	NextCursor string   `json:"next_cursor"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
