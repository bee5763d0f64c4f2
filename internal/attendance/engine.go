package attendance

import (
	"time"

	"github.com/wedabay-ops/duty-attendance/backend/internal/domain"
)

type Parameters struct {
	ShortDay      time.Weekday  // 短日，例如周五
	LateThreshold time.Duration // 迟到阈值，距零点的时长
}

var DefaultParameters = Parameters{
	ShortDay:      time.Friday,
	LateThreshold: 7*time.Hour + 5*time.Minute,
}

// Engine 把一天的打卡、人工状态和名册组合成日报，本身不持有可变状态
type Engine struct {
	classifier    Classifier
	lateThreshold time.Duration
}

func New(parameters Parameters) *Engine {
	return &Engine{
		classifier:    NewClassifier(parameters.ShortDay),
		lateThreshold: parameters.LateThreshold,
	}
}

// BuildDay 生成某天的完整日报（名册顺序）以及对应的统计
func (e *Engine) BuildDay(date time.Time, events []domain.AttendanceEvent, statuses map[string]string, entries []domain.RosterEntry) domain.DayReport {
	day := date.Format(domain.DateLayout)

	sameDay := make([]domain.AttendanceEvent, 0, len(events))
	for _, ev := range events {
		if ev.Timestamp.Format(domain.DateLayout) == day {
			sameDay = append(sameDay, ev)
		}
	}

	rows := MergeRoster(entries, date, e.Aggregate(sameDay))
	for i := range rows {
		rows[i].ManualStatus = statuses[rows[i].EmployeeName]
		rows[i].Status, rows[i].IsLate = ClassifyStatus(rows[i].Slots(), rows[i].ManualStatus, e.lateThreshold)
	}

	return domain.DayReport{
		Date:     domain.DateOf(date),
		ShortDay: e.classifier.IsShortDay(date),
		Rows:     rows,
		Metrics:  CalculateMetrics(rows),
	}
}
