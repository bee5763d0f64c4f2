package attendance

import (
	"sort"
	"time"

	"github.com/wedabay-ops/duty-attendance/backend/internal/domain"
)

// DivisionStats 按部门统计当天的出勤，出勤 = FULL_DUTY 或 PARTIAL_DUTY
func DivisionStats(divisions []domain.Division, rows []domain.AttendanceDayReport) []domain.DivisionStat {
	present := make(map[string]bool, len(rows))
	for _, row := range rows {
		if row.Status == domain.StatusFullDuty || row.Status == domain.StatusPartialDuty {
			present[row.EmployeeName] = true
		}
	}

	stats := make([]domain.DivisionStat, 0, len(divisions))
	for _, division := range divisions {
		stat := domain.DivisionStat{
			Division: division.Name,
			Code:     division.Code,
			Total:    len(division.Members),
		}
		for _, member := range division.Members {
			if present[member] {
				stat.Present++
			}
		}
		stat.Absent = stat.Total - stat.Present
		if stat.Total > 0 {
			stat.Rate = float64(stat.Present) / float64(stat.Total) * 100
		}
		stats = append(stats, stat)
	}

	return stats
}

// WeeklyTrends 按 ISO 周统计打卡人数和打卡次数
func WeeklyTrends(events []domain.AttendanceEvent) []domain.WeeklyTrend {
	type week struct{ year, week int }

	employees := make(map[week]map[string]struct{})
	counts := make(map[week]int)
	for _, ev := range events {
		if ev.EmployeeName == "" || ev.Timestamp.IsZero() {
			continue
		}
		y, w := ev.Timestamp.ISOWeek()
		key := week{year: y, week: w}
		if _, exists := employees[key]; !exists {
			employees[key] = make(map[string]struct{})
		}
		employees[key][ev.EmployeeName] = struct{}{}
		counts[key]++
	}

	trends := make([]domain.WeeklyTrend, 0, len(counts))
	for key, count := range counts {
		trends = append(trends, domain.WeeklyTrend{
			Year:            key.year,
			Week:            key.week,
			UniqueEmployees: len(employees[key]),
			TotalEvents:     count,
		})
	}
	sort.Slice(trends, func(i, j int) bool {
		if trends[i].Year != trends[j].Year {
			return trends[i].Year < trends[j].Year
		}
		return trends[i].Week < trends[j].Week
	})

	return trends
}

// WeekWindow 返回 [end - weeks*7 天, end] 的起止日期
func WeekWindow(end time.Time, weeks int) (time.Time, time.Time) {
	end = domain.DateOf(end)
	return end.AddDate(0, 0, -7*weeks), end
}
