package attendance

import (
	"log/slog"
	"sort"
	"time"

	"github.com/wedabay-ops/duty-attendance/backend/internal/domain"
)

type groupKey struct {
	name string
	date string
}

// Aggregate 按 (员工, 日期) 分组，并把每组的打卡归入四个时段
// MORNING / BREAK_OUT / BREAK_IN 取最早的一次，EVENING 取最晚的一次
func (e *Engine) Aggregate(events []domain.AttendanceEvent) []domain.DailySlotRecord {
	groups := make(map[groupKey][]domain.AttendanceEvent)
	for _, ev := range events {
		if ev.EmployeeName == "" || ev.Timestamp.IsZero() {
			continue
		}
		key := groupKey{name: ev.EmployeeName, date: ev.Timestamp.Format(domain.DateLayout)}
		groups[key] = append(groups[key], ev)
	}

	keys := make([]groupKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	// map 的遍历顺序不固定，这里排序保证结果可重现
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].date != keys[j].date {
			return keys[i].date < keys[j].date
		}
		return keys[i].name < keys[j].name
	})

	records := make([]domain.DailySlotRecord, 0, len(keys))
	for _, key := range keys {
		record, ok := e.resolveGroup(groups[key])
		if !ok {
			continue
		}
		records = append(records, record)
	}

	return records
}

func (e *Engine) resolveGroup(group []domain.AttendanceEvent) (domain.DailySlotRecord, bool) {
	sorted := make([]domain.AttendanceEvent, len(group))
	copy(sorted, group)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	record := domain.DailySlotRecord{
		EmployeeName: sorted[0].EmployeeName,
		Date:         domain.DateOf(sorted[0].Timestamp),
	}

	filled := false
	for _, ev := range sorted {
		value := ev.Timestamp.Format(domain.TimeLayout)

		switch slot := e.classifier.Classify(ev.Timestamp); slot {
		case SlotMorning:
			record.Morning = firstWins(record.Morning, value)
		case SlotBreakOut:
			record.BreakOut = firstWins(record.BreakOut, value)
		case SlotBreakIn:
			record.BreakIn = firstWins(record.BreakIn, value)
		case SlotEvening:
			record.Evening = value
		default:
			slog.Debug("punch outside every slot, ignored", "employee", ev.EmployeeName, "time", ev.Timestamp.Format(time.DateTime))
			continue
		}
		filled = true
	}

	return record, filled
}

func firstWins(current, candidate string) string {
	if current != "" {
		return current
	}
	return candidate
}
