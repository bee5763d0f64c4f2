package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wedabay-ops/duty-attendance/backend/internal/attendance"
	"github.com/wedabay-ops/duty-attendance/backend/internal/domain"
	"github.com/wedabay-ops/duty-attendance/backend/internal/roster"
	"github.com/wedabay-ops/duty-attendance/backend/internal/source"
)

var (
	loc    = time.FixedZone("WIT", 9*60*60)
	monday = time.Date(2025, time.January, 6, 0, 0, 0, 0, loc)
)

type fakeEvents struct {
	byDay  map[string][]domain.AttendanceEvent
	failOn map[string]bool
}

func (f *fakeEvents) Events(ctx context.Context, date time.Time) ([]domain.AttendanceEvent, error) {
	day := date.Format(domain.DateLayout)
	if f.failOn[day] {
		return nil, errors.New("sheet unavailable")
	}
	return f.byDay[day], nil
}

type fakeStatuses struct {
	byDay map[string]map[string]string
	err   error
}

func (f *fakeStatuses) Statuses(ctx context.Context, date time.Time) (map[string]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byDay[date.Format(domain.DateLayout)], nil
}

func at(day time.Time, h, m int) domain.AttendanceEvent {
	return domain.AttendanceEvent{EmployeeName: "John", Timestamp: day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)}
}

func newService(t *testing.T, events *fakeEvents, statuses *fakeStatuses) *Service {
	t.Helper()

	r, err := roster.New([]domain.Division{
		{Name: "TLB", Code: "TLB", Priority: 1, Members: []string{"John", "Amir"}},
		{Name: "APRON", Code: "APR", Priority: 2, Members: []string{"Budi"}},
	})
	require.NoError(t, err)

	return NewService(events, statuses, r, attendance.New(attendance.DefaultParameters), loc)
}

func TestDailyReport(t *testing.T) {
	events := &fakeEvents{byDay: map[string][]domain.AttendanceEvent{
		"2025-01-06": {at(monday, 6, 50), at(monday, 11, 45), at(monday, 12, 45), at(monday, 17, 10)},
	}}
	statuses := &fakeStatuses{byDay: map[string]map[string]string{
		"2025-01-06": {"Amir": "SAKIT"},
	}}
	s := newService(t, events, statuses)

	report, err := s.DailyReport(context.Background(), monday.Add(15*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, monday, report.Date)
	require.Len(t, report.Rows, 3)
	assert.Equal(t, domain.StatusFullDuty, report.Rows[0].Status)
	assert.Equal(t, domain.StatusPermit, report.Rows[1].Status)
	assert.Equal(t, domain.StatusAbsent, report.Rows[2].Status)
	assert.Equal(t, report.Metrics.Total, report.Metrics.Present+report.Metrics.Absent+report.Metrics.Permit)
}

func TestDailyReportSourceFailure(t *testing.T) {
	events := &fakeEvents{failOn: map[string]bool{"2025-01-06": true}}
	s := newService(t, events, &fakeStatuses{})

	_, err := s.DailyReport(context.Background(), monday)
	assert.ErrorIs(t, err, source.ErrNoData)

	s = newService(t, &fakeEvents{}, &fakeStatuses{err: source.ErrMissingColumns})
	_, err = s.DailyReport(context.Background(), monday)
	assert.ErrorIs(t, err, source.ErrNoData)
	assert.ErrorIs(t, err, source.ErrMissingColumns)
}

func TestRangeReportSkipsFailingDays(t *testing.T) {
	events := &fakeEvents{failOn: map[string]bool{"2025-01-07": true}}
	s := newService(t, events, &fakeStatuses{})

	reports, err := s.RangeReport(context.Background(), monday, monday.AddDate(0, 0, 2))
	require.NoError(t, err)

	require.Len(t, reports, 2)
	assert.Equal(t, "2025-01-06", reports[0].Date.Format(domain.DateLayout))
	assert.Equal(t, "2025-01-08", reports[1].Date.Format(domain.DateLayout))
}

func TestRangeReportAllDaysFail(t *testing.T) {
	events := &fakeEvents{failOn: map[string]bool{"2025-01-06": true}}
	s := newService(t, events, &fakeStatuses{})

	_, err := s.RangeReport(context.Background(), monday, monday)
	assert.ErrorIs(t, err, source.ErrNoData)
}

func TestAnomaliesAcrossDays(t *testing.T) {
	tuesday := monday.AddDate(0, 0, 1)
	events := &fakeEvents{byDay: map[string][]domain.AttendanceEvent{
		"2025-01-06": {at(monday, 7, 0), at(monday, 17, 0)},
		"2025-01-07": {at(tuesday, 7, 0)},
	}}
	s := newService(t, events, &fakeStatuses{})

	anomalies := s.Anomalies(context.Background(), monday, tuesday, 12*time.Hour)

	require.Len(t, anomalies, 1)
	assert.InDelta(t, 14.0, anomalies[0].GapHours, 0.001)
	assert.Equal(t, "TLB", anomalies[0].Division)
}

func TestDivisionStats(t *testing.T) {
	events := &fakeEvents{byDay: map[string][]domain.AttendanceEvent{
		"2025-01-06": {at(monday, 7, 0)},
	}}
	s := newService(t, events, &fakeStatuses{})

	stats, err := s.DivisionStats(context.Background(), monday)
	require.NoError(t, err)

	require.Len(t, stats, 2)
	assert.Equal(t, "TLB", stats[0].Division)
	assert.Equal(t, 1, stats[0].Present)
	assert.Equal(t, 1, stats[0].Absent)
	assert.Equal(t, 0, stats[1].Present)
}

func TestWeeklyTrends(t *testing.T) {
	events := &fakeEvents{byDay: map[string][]domain.AttendanceEvent{
		"2025-01-06": {at(monday, 7, 0), at(monday, 17, 0)},
		"2024-12-31": {at(monday.AddDate(0, 0, -6), 7, 0)},
	}}
	s := newService(t, events, &fakeStatuses{})

	trends := s.WeeklyTrends(context.Background(), monday, 1)

	require.Len(t, trends, 2)
	assert.Equal(t, 1, trends[0].Week)
	assert.Equal(t, 1, trends[0].TotalEvents)
	assert.Equal(t, 2, trends[1].Week)
	assert.Equal(t, 2, trends[1].TotalEvents)
}
