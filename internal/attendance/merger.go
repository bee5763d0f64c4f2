package attendance

import (
	"time"

	"github.com/wedabay-ops/duty-attendance/backend/internal/domain"
)

// MergeRoster 以名册为左表关联当天的时段记录，输出顺序与名册一致
// 名册之外的记录会被丢弃，没有记录的成员四个时段均为空
func MergeRoster(entries []domain.RosterEntry, date time.Time, records []domain.DailySlotRecord) []domain.AttendanceDayReport {
	day := date.Format(domain.DateLayout)

	byName := make(map[string]domain.DailySlotRecord, len(records))
	for _, record := range records {
		if record.Date.Format(domain.DateLayout) != day {
			continue
		}
		if _, exists := byName[record.EmployeeName]; exists {
			continue
		}
		byName[record.EmployeeName] = record
	}

	rows := make([]domain.AttendanceDayReport, 0, len(entries))
	for _, entry := range entries {
		row := domain.AttendanceDayReport{
			EmployeeName: entry.EmployeeName,
			Division:     entry.Division,
			Date:         domain.DateOf(date),
		}
		if record, ok := byName[entry.EmployeeName]; ok {
			row.Morning = record.Morning
			row.BreakOut = record.BreakOut
			row.BreakIn = record.BreakIn
			row.Evening = record.Evening
		}
		rows = append(rows, row)
	}

	return rows
}
