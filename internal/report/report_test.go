package report

import (
	"strings"
	"testing"
	"time"

	"activitytracker/internal/db/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func closedActivity(user, category string, start time.Time, d time.Duration) *models.Activity {
	end := start.Add(d)
	hours := d.Hours()
	return &models.Activity{
		ID:        uuid.New(),
		UserID:    user,
		Category:  category,
		StartTime: start,
		EndTime:   &end,
		Hours:     &hours,
	}
}

func TestSummarizeGroupsAndSorts(t *testing.T) {
	start := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	activities := []*models.Activity{
		closedActivity("alice", "Reuniões", start, 30*time.Minute),
		closedActivity("alice", "Documentação", start.Add(time.Hour), 2*time.Hour),
		closedActivity("alice", "Reuniões", start.Add(4*time.Hour), 45*time.Minute),
		// Open session must be ignored.
		{ID: uuid.New(), UserID: "alice", Category: "Custos", StartTime: start},
	}

	summaries := Summarize(activities)
	require.Len(t, summaries, 2)
	require.Equal(t, "Documentação", summaries[0].Category)
	require.Equal(t, 2*time.Hour, summaries[0].Total)
	require.Equal(t, 1, summaries[0].Sessions)
	require.Equal(t, "Reuniões", summaries[1].Category)
	require.Equal(t, 75*time.Minute, summaries[1].Total)
	require.Equal(t, 2, summaries[1].Sessions)
}

func TestFormatDuration(t *testing.T) {
	require.Equal(t, "2h 5m 0s", FormatDuration(2*time.Hour+5*time.Minute))
	require.Equal(t, "5m 30s", FormatDuration(5*time.Minute+30*time.Second))
	require.Equal(t, "42s", FormatDuration(42*time.Second))
}

func TestFormatTable(t *testing.T) {
	start := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	summaries := Summarize([]*models.Activity{
		closedActivity("alice", "Cadastro", start, time.Hour),
	})

	table := FormatTable(summaries)
	require.Contains(t, table, "CATEGORY")
	require.Contains(t, table, "Cadastro")
	require.Contains(t, table, "1h 0m 0s")
	require.Contains(t, table, "TOTAL")
}

func TestWriteCSVSkipsOpenSessions(t *testing.T) {
	start := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	activities := []*models.Activity{
		closedActivity("alice", "RNC", start, time.Hour),
		{ID: uuid.New(), UserID: "alice", Category: "Custos", StartTime: start},
	}

	var buf strings.Builder
	require.NoError(t, WriteCSV(&buf, activities))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "user,category,description,start,end,hours", lines[0])
	require.Contains(t, lines[1], "RNC")
	require.Contains(t, lines[1], "1.0000")
}

func TestRange(t *testing.T) {
	loc := time.UTC
	now := time.Date(2024, 3, 5, 15, 30, 0, 0, loc)

	from, to, err := Range(PeriodToday, now, loc)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, loc), from)
	require.Equal(t, now, to)

	from, _, err = Range(PeriodWeek, now, loc)
	require.NoError(t, err)
	require.Equal(t, now.AddDate(0, 0, -7), from)

	_, _, err = Range("fortnight", now, loc)
	require.Error(t, err)
}
