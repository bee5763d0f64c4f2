package source

import (
	"context"
	"errors"
	"time"

	"github.com/wedabay-ops/duty-attendance/backend/internal/domain"
)

var (
	ErrMissingColumns = errors.New("required columns are missing")
	ErrNoData         = errors.New("no data available for this request")
)

// EventSource 提供某天的原始打卡数据
type EventSource interface {
	Events(ctx context.Context, date time.Time) ([]domain.AttendanceEvent, error)
}

// ManualStatusSource 提供某天人工登记的状态，key 为员工姓名
type ManualStatusSource interface {
	Statuses(ctx context.Context, date time.Time) (map[string]string, error)
}

// StatusMap 把记录转成 map，同一员工出现多次时后读到的覆盖先读到的
func StatusMap(records []domain.ManualStatusRecord, date time.Time) map[string]string {
	day := date.Format(domain.DateLayout)
	statuses := make(map[string]string)
	for _, record := range records {
		if record.Date.Format(domain.DateLayout) != day {
			continue
		}
		statuses[record.EmployeeName] = record.StatusText
	}
	return statuses
}

func eventsOn(events []domain.AttendanceEvent, date time.Time) []domain.AttendanceEvent {
	day := date.Format(domain.DateLayout)
	filtered := make([]domain.AttendanceEvent, 0)
	for _, ev := range events {
		if ev.Timestamp.Format(domain.DateLayout) == day {
			filtered = append(filtered, ev)
		}
	}
	return filtered
}
