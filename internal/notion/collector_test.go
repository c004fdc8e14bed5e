package notion

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type queryCall struct {
	databaseID string
	filter     *Filter
}

type fakeQuerier struct {
	calls   []queryCall
	records []Record
	err     error
}

func (f *fakeQuerier) Query(_ context.Context, databaseID string, filter *Filter) ([]Record, error) {
	f.calls = append(f.calls, queryCall{databaseID: databaseID, filter: filter})
	return f.records, f.err
}

var testDatabases = Databases{
	AnnualGoals:    "annual-db",
	QuarterlyGoals: "quarterly-db",
	WeeklyGoals:    "weekly-db",
	DailyPlanner:   "daily-db",
}

func TestGoalCollectorsQueryTheirDatabaseUnfiltered(t *testing.T) {
	q := &fakeQuerier{}
	c := NewCollector(q, testDatabases, time.UTC)
	ctx := context.Background()

	_, err := c.AnnualGoals(ctx)
	require.NoError(t, err)
	_, err = c.QuarterlyGoals(ctx)
	require.NoError(t, err)
	_, err = c.WeeklyGoals(ctx)
	require.NoError(t, err)

	require.Len(t, q.calls, 3)
	assert.Equal(t, queryCall{databaseID: "annual-db"}, q.calls[0])
	assert.Equal(t, queryCall{databaseID: "quarterly-db"}, q.calls[1])
	assert.Equal(t, queryCall{databaseID: "weekly-db"}, q.calls[2])
}

func TestDailyTasksFilterCoversYesterdayAndToday(t *testing.T) {
	q := &fakeQuerier{}
	now := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)
	c := NewCollector(q, testDatabases, time.UTC).WithClock(func() time.Time { return now })

	_, err := c.DailyTasks(context.Background())
	require.NoError(t, err)

	require.Len(t, q.calls, 1)
	assert.Equal(t, "daily-db", q.calls[0].databaseID)

	got, err := json.Marshal(q.calls[0].filter)
	require.NoError(t, err)
	want := `{"or":[{"property":"Date","date":{"equals":"2025-07-31"}},{"property":"Date","date":{"equals":"2025-08-01"}}]}`
	assert.JSONEq(t, want, string(got))
}

func TestDailyTasksFilterUsesCollectorLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	q := &fakeQuerier{}
	// 20:00 UTC on July 31st is already August 1st in Tokyo.
	now := time.Date(2025, 7, 31, 20, 0, 0, 0, time.UTC)
	c := NewCollector(q, testDatabases, tokyo).WithClock(func() time.Time { return now })

	_, err = c.DailyTasks(context.Background())
	require.NoError(t, err)

	filter := q.calls[0].filter
	assert.Equal(t, "2025-07-31", filter.Or[0].Date.Equals)
	assert.Equal(t, "2025-08-01", filter.Or[1].Date.Equals)
}

func TestCollectorWrapsErrors(t *testing.T) {
	upstream := errors.New("rate limited")
	c := NewCollector(&fakeQuerier{err: upstream}, testDatabases, time.UTC)

	_, err := c.WeeklyGoals(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, upstream)
	assert.Contains(t, err.Error(), "weekly goals")
}

func TestCollectorRejectsUnconfiguredDatabase(t *testing.T) {
	q := &fakeQuerier{}
	c := NewCollector(q, Databases{}, time.UTC)

	_, err := c.AnnualGoals(context.Background())
	require.Error(t, err)
	assert.Empty(t, q.calls)
}

func TestRecordTitle(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		property string
		want     string
	}{
		{"goal title", `{"properties":{"Goal":{"title":[{"plain_text":"X"}]}}}`, "Goal", "X"},
		{"task name", `{"properties":{"Name":{"title":[{"plain_text":"Write report"},{"plain_text":" ignored"}]}}}`, "Name", "Write report"},
		{"missing properties", `{"object":"page"}`, "Goal", UntitledTitle},
		{"wrong property", `{"properties":{"Name":{"title":[{"plain_text":"X"}]}}}`, "Goal", UntitledTitle},
		{"empty title array", `{"properties":{"Goal":{"title":[]}}}`, "Goal", UntitledTitle},
		{"blank text", `{"properties":{"Goal":{"title":[{"plain_text":"  "}]}}}`, "Goal", UntitledTitle},
		{"property with spaces", `{"properties":{"Task Name":{"title":[{"plain_text":"Y"}]}}}`, "Task Name", "Y"},
		{"property with dot", `{"properties":{"v1.Goal":{"title":[{"plain_text":"Z"}]}}}`, "v1.Goal", "Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewRecord([]byte(tt.raw)).Title(tt.property))
		})
	}

	assert.Equal(t, UntitledTitle, Record{}.Title("Goal"))
}

func TestRecordRoundTripsRawJSON(t *testing.T) {
	raw := `{"id":"abc","properties":{"Goal":{"title":[{"plain_text":"X"}]}}}`
	var records []Record
	require.NoError(t, json.Unmarshal([]byte("["+raw+"]"), &records))

	out, err := json.Marshal(records[0])
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}
