package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wedabay-ops/duty-attendance/backend/internal/attendance"
	"github.com/wedabay-ops/duty-attendance/backend/internal/domain"
	"github.com/wedabay-ops/duty-attendance/backend/internal/roster"
	"github.com/wedabay-ops/duty-attendance/backend/internal/source"
)

type Service struct {
	events   source.EventSource
	statuses source.ManualStatusSource
	roster   *roster.Roster
	engine   *attendance.Engine
	loc      *time.Location
}

func NewService(events source.EventSource, statuses source.ManualStatusSource, r *roster.Roster, engine *attendance.Engine, loc *time.Location) *Service {
	return &Service{
		events:   events,
		statuses: statuses,
		roster:   r,
		engine:   engine,
		loc:      loc,
	}
}

func (s *Service) Roster() *roster.Roster {
	return s.roster
}

// Day 把任意时刻转成考勤时区中的当天零点
func (s *Service) Day(t time.Time) time.Time {
	return domain.DateOf(t.In(s.loc))
}

func (s *Service) DailyReport(ctx context.Context, date time.Time) (*domain.DayReport, error) {
	date = s.Day(date)

	events, err := s.events.Events(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", source.ErrNoData, err)
	}

	statuses, err := s.statuses.Statuses(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", source.ErrNoData, err)
	}

	report := s.engine.BuildDay(date, events, statuses, s.roster.Entries())
	return &report, nil
}

// RangeReport 逐日生成日报，获取失败的日期会被跳过
func (s *Service) RangeReport(ctx context.Context, from, to time.Time) ([]*domain.DayReport, error) {
	reports := make([]*domain.DayReport, 0)
	for day := s.Day(from); !day.After(s.Day(to)); day = day.AddDate(0, 0, 1) {
		report, err := s.DailyReport(ctx, day)
		if err != nil {
			slog.Warn("skipping date without a report", "date", day.Format(domain.DateLayout), "error", err)
			continue
		}
		reports = append(reports, report)
	}

	if len(reports) == 0 {
		return nil, source.ErrNoData
	}

	return reports, nil
}

func (s *Service) eventsBetween(ctx context.Context, from, to time.Time) []domain.AttendanceEvent {
	events := make([]domain.AttendanceEvent, 0)
	for day := s.Day(from); !day.After(s.Day(to)); day = day.AddDate(0, 0, 1) {
		dayEvents, err := s.events.Events(ctx, day)
		if err != nil {
			slog.Warn("skipping date without punch events", "date", day.Format(domain.DateLayout), "error", err)
			continue
		}
		events = append(events, dayEvents...)
	}
	return events
}

func (s *Service) Anomalies(ctx context.Context, from, to time.Time, threshold time.Duration) []domain.Anomaly {
	anomalies := attendance.DetectAnomalies(s.eventsBetween(ctx, from, to), threshold)
	for i := range anomalies {
		// 名册外的人员保持为空
		anomalies[i].Division, _ = s.roster.DivisionOf(anomalies[i].EmployeeName)
	}
	return anomalies
}

func (s *Service) DivisionStats(ctx context.Context, date time.Time) ([]domain.DivisionStat, error) {
	report, err := s.DailyReport(ctx, date)
	if err != nil {
		return nil, err
	}

	return attendance.DivisionStats(s.roster.Divisions(), report.Rows), nil
}

func (s *Service) WeeklyTrends(ctx context.Context, end time.Time, weeks int) []domain.WeeklyTrend {
	from, to := attendance.WeekWindow(s.Day(end), weeks)
	return attendance.WeeklyTrends(s.eventsBetween(ctx, from, to))
}
