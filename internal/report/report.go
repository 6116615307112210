// Package report aggregates finished sessions into per-category summaries
// and renders them as a text table or CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"activitytracker/internal/db/models"
)

// Summary is the accumulated time for one activity category.
type Summary struct {
	Category string
	Total    time.Duration
	Hours    float64
	Sessions int
}

// Periods accepted by Range.
const (
	PeriodToday = "today"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// Range converts a named period into a [from, to) interval in loc.
func Range(period string, now time.Time, loc *time.Location) (time.Time, time.Time, error) {
	now = now.In(loc)
	switch period {
	case PeriodToday:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		return start, now, nil
	case PeriodWeek:
		return now.AddDate(0, 0, -7), now, nil
	case PeriodMonth:
		return now.AddDate(0, -1, 0), now, nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("invalid time period %q", period)
	}
}

// Summarize groups finished sessions by category, longest total first.
// Open sessions are skipped.
func Summarize(activities []*models.Activity) []Summary {
	totals := make(map[string]*Summary)
	for _, a := range activities {
		if a.EndTime == nil {
			continue
		}
		s, ok := totals[a.Category]
		if !ok {
			s = &Summary{Category: a.Category}
			totals[a.Category] = s
		}
		s.Total += a.EndTime.Sub(a.StartTime)
		s.Sessions++
	}

	out := make([]Summary, 0, len(totals))
	for _, s := range totals {
		s.Hours = s.Total.Hours()
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// FormatTable renders summaries as a fixed-width table.
func FormatTable(summaries []Summary) string {
	headers := []string{"CATEGORY", "TOTAL", "SESSIONS"}
	rows := make([][]string, 0, len(summaries))
	var total time.Duration
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Category,
			FormatDuration(s.Total),
			fmt.Sprintf("%d", s.Sessions),
		})
		total += s.Total
	}
	rows = append(rows, []string{"TOTAL", FormatDuration(total), ""})

	// Find the maximum width for each column
	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = len(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var result strings.Builder
	for i, header := range headers {
		result.WriteString(fmt.Sprintf("%-*s", widths[i]+2, header))
	}
	result.WriteString("\n")
	for _, width := range widths {
		result.WriteString(strings.Repeat("-", width+2))
	}
	result.WriteString("\n")
	for _, row := range rows {
		for i, cell := range row {
			result.WriteString(fmt.Sprintf("%-*s", widths[i]+2, cell))
		}
		result.WriteString("\n")
	}
	return result.String()
}

// WriteCSV writes one line per finished session.
func WriteCSV(w io.Writer, activities []*models.Activity) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"user", "category", "description", "start", "end", "hours"}); err != nil {
		return err
	}
	for _, a := range activities {
		if a.EndTime == nil {
			continue
		}
		hours := ""
		if a.Hours != nil {
			hours = fmt.Sprintf("%.4f", *a.Hours)
		} else {
			hours = fmt.Sprintf("%.4f", a.EndTime.Sub(a.StartTime).Hours())
		}
		record := []string{
			a.UserID,
			a.Category,
			a.Description,
			a.StartTime.Format(time.RFC3339),
			a.EndTime.Format(time.RFC3339),
			hours,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
