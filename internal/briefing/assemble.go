package briefing

import (
	"strings"
	"time"

	"github.com/jimdaga/first-sip/internal/calendar"
	"github.com/jimdaga/first-sip/internal/notion"
)

// Title properties of the goal and daily planner databases.
const (
	GoalTitleProperty = "Goal"
	TaskTitleProperty = "Name"
)

// EventTimeLayout renders event start times.
const EventTimeLayout = "1/2/2006, 3:04:05 PM"

const (
	listSeparator = ", "
	noStartTime   = "N/A"
	dateOnly      = "2006-01-02"
)

// Sources holds everything the collectors returned for one briefing.
type Sources struct {
	AnnualGoals    []notion.Record
	QuarterlyGoals []notion.Record
	WeeklyGoals    []notion.Record
	DailyTasks     []notion.Record
	Events         []*calendar.Event
}

// Assemble renders the briefing prompt. It is a pure function of its
// inputs: each category is rendered as a labelled, comma separated line,
// empty categories leave the value blank. Event start times are rendered
// in loc.
func Assemble(contextBlob string, in Sources, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}

	var sb strings.Builder
	sb.WriteString("\n## My Personal Context & Directives\n")
	sb.WriteString(contextBlob)
	sb.WriteString("\n\n## Daily Briefing Data\n")
	writeLine(&sb, "Annual Goals", titles(in.AnnualGoals, GoalTitleProperty))
	writeLine(&sb, "Quarterly Goals", titles(in.QuarterlyGoals, GoalTitleProperty))
	writeLine(&sb, "Weekly Goals", titles(in.WeeklyGoals, GoalTitleProperty))
	writeLine(&sb, "Daily Tasks", titles(in.DailyTasks, TaskTitleProperty))
	writeLine(&sb, "Calendar Events Today", eventLines(in.Events, loc))
	return sb.String()
}

func writeLine(sb *strings.Builder, label string, values []string) {
	sb.WriteString(label)
	sb.WriteString(": ")
	sb.WriteString(strings.Join(values, listSeparator))
	sb.WriteString("\n")
}

func titles(records []notion.Record, property string) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Title(property))
	}
	return out
}

func eventLines(events []*calendar.Event, loc *time.Location) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		if e == nil {
			continue
		}
		summary := e.Summary
		if strings.TrimSpace(summary) == "" {
			summary = notion.UntitledTitle
		}
		out = append(out, summary+" (Start: "+EventStart(e, loc)+")")
	}
	return out
}

// EventStart renders an event's start in loc. Timed events use their
// dateTime, all-day events midnight of their date in loc. Values that do
// not parse are returned verbatim and a missing start renders "N/A".
func EventStart(e *calendar.Event, loc *time.Location) string {
	if e == nil || e.Start == nil {
		return noStartTime
	}
	switch {
	case e.Start.DateTime != "":
		t, err := time.Parse(time.RFC3339, e.Start.DateTime)
		if err != nil {
			return e.Start.DateTime
		}
		return t.In(loc).Format(EventTimeLayout)
	case e.Start.Date != "":
		t, err := time.ParseInLocation(dateOnly, e.Start.Date, loc)
		if err != nil {
			return e.Start.Date
		}
		return t.Format(EventTimeLayout)
	default:
		return noStartTime
	}
}
