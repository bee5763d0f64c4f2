package attendance

import (
	"sort"
	"time"

	"github.com/wedabay-ops/duty-attendance/backend/internal/domain"
)

const AnomalyLargeGap = "LARGE_GAP"

// DetectAnomalies 找出同一员工相邻两次打卡间隔超过阈值的情况
// 结果按员工首次出现的顺序排列，同一员工内按时间排列
func DetectAnomalies(events []domain.AttendanceEvent, threshold time.Duration) []domain.Anomaly {
	order := make([]string, 0)
	byEmployee := make(map[string][]time.Time)
	for _, ev := range events {
		if ev.EmployeeName == "" || ev.Timestamp.IsZero() {
			continue
		}
		if _, exists := byEmployee[ev.EmployeeName]; !exists {
			order = append(order, ev.EmployeeName)
		}
		byEmployee[ev.EmployeeName] = append(byEmployee[ev.EmployeeName], ev.Timestamp)
	}

	anomalies := make([]domain.Anomaly, 0)
	for _, name := range order {
		times := byEmployee[name]
		sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

		for i := 0; i+1 < len(times); i++ {
			gap := times[i+1].Sub(times[i])
			if gap > threshold {
				anomalies = append(anomalies, domain.Anomaly{
					EmployeeName: name,
					Type:         AnomalyLargeGap,
					GapHours:     gap.Hours(),
					Time1:        times[i],
					Time2:        times[i+1],
				})
			}
		}
	}

	return anomalies
}
