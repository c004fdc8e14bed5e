package notion

import (
	"context"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Databases names the four databases the briefing reads.
type Databases struct {
	AnnualGoals    string
	QuarterlyGoals string
	WeeklyGoals    string
	DailyPlanner   string
}

// Querier is the subset of Client the collector needs.
type Querier interface {
	Query(ctx context.Context, databaseID string, filter *Filter) ([]Record, error)
}

// Collector fetches goals and tasks from the configured databases.
type Collector struct {
	querier   Querier
	databases Databases
	location  *time.Location
	now       func() time.Time
}

// NewCollector creates a collector. Daily task dates are computed in loc.
func NewCollector(q Querier, dbs Databases, loc *time.Location) *Collector {
	if loc == nil {
		loc = time.Local
	}
	return &Collector{
		querier:   q,
		databases: dbs,
		location:  loc,
		now:       time.Now,
	}
}

// WithClock returns a copy of the collector reading the time from now.
func (c *Collector) WithClock(now func() time.Time) *Collector {
	cp := *c
	cp.now = now
	return &cp
}

// AnnualGoals returns every page of the annual goals database.
func (c *Collector) AnnualGoals(ctx context.Context) ([]Record, error) {
	return c.query(ctx, "annual goals", c.databases.AnnualGoals, nil)
}

// QuarterlyGoals returns every page of the quarterly goals database.
func (c *Collector) QuarterlyGoals(ctx context.Context) ([]Record, error) {
	return c.query(ctx, "quarterly goals", c.databases.QuarterlyGoals, nil)
}

// WeeklyGoals returns every page of the weekly goals database.
func (c *Collector) WeeklyGoals(ctx context.Context) ([]Record, error) {
	return c.query(ctx, "weekly goals", c.databases.WeeklyGoals, nil)
}

// DailyTasks returns daily planner pages dated yesterday or today.
func (c *Collector) DailyTasks(ctx context.Context) ([]Record, error) {
	return c.query(ctx, "daily tasks", c.databases.DailyPlanner, DailyTasksFilter(c.now().In(c.location)))
}

func (c *Collector) query(ctx context.Context, name, databaseID string, filter *Filter) ([]Record, error) {
	if databaseID == "" {
		return nil, fmt.Errorf("%s: database id is not configured", name)
	}
	records, err := c.querier.Query(ctx, databaseID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", name, err)
	}
	return records, nil
}

// DailyTasksFilter matches pages whose Date property equals the calendar
// day before now or the day of now, both in now's location.
func DailyTasksFilter(now time.Time) *Filter {
	yesterday := now.AddDate(0, 0, -1)
	return &Filter{
		Or: []Filter{
			{Property: "Date", Date: &DateCondition{Equals: yesterday.Format(dateLayout)}},
			{Property: "Date", Date: &DateCondition{Equals: now.Format(dateLayout)}},
		},
	}
}
