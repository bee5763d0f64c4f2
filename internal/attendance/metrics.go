package attendance

import (
	"fmt"
	"time"

	"github.com/wedabay-ops/duty-attendance/backend/internal/domain"
)

// CalculateMetrics 对一天的报表做一次归约
// present + absent + permit == total，迟到是独立的标记
func CalculateMetrics(rows []domain.AttendanceDayReport) domain.DayMetrics {
	m := domain.DayMetrics{
		Total:       len(rows),
		LateList:    []domain.LateEntry{},
		PermitList:  []domain.PermitEntry{},
		AbsentList:  []string{},
		PartialList: []domain.PartialEntry{},
	}

	lateMinutes := 0
	for _, row := range rows {
		switch row.Status {
		case domain.StatusPermit:
			m.Permit++
			m.PermitList = append(m.PermitList, domain.PermitEntry{EmployeeName: row.EmployeeName, StatusText: row.ManualStatus})
			continue
		case domain.StatusAbsent:
			m.Absent++
			m.AbsentList = append(m.AbsentList, row.EmployeeName)
			continue
		case domain.StatusPartialDuty:
			empty := 0
			for _, s := range row.Slots() {
				if s == "" {
					empty++
				}
			}
			m.PartialList = append(m.PartialList, domain.PartialEntry{EmployeeName: row.EmployeeName, EmptySlots: empty})
		}

		m.Present++
		if row.IsLate {
			m.Late++
			m.LateList = append(m.LateList, domain.LateEntry{EmployeeName: row.EmployeeName, Morning: row.Morning})
			if t, err := time.Parse(domain.TimeLayout, row.Morning); err == nil {
				lateMinutes += t.Hour()*60 + t.Minute()
			}
		}
	}

	if m.Total > 0 {
		m.AttendanceRate = float64(m.Present) / float64(m.Total) * 100
	}
	if m.Present > 0 {
		m.PunctualityRate = float64(m.Present-m.Late) / float64(m.Present) * 100
	}
	if m.Late > 0 {
		avg := lateMinutes / m.Late
		m.AvgLateArrival = fmt.Sprintf("%02d:%02d", avg/60, avg%60)
	}

	return m
}
