package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wedabay-ops/duty-attendance/backend/internal/domain"
)

func row(name string, status domain.DutyStatus, late bool, slots [4]string) domain.AttendanceDayReport {
	return domain.AttendanceDayReport{
		EmployeeName: name,
		Morning:      slots[0],
		BreakOut:     slots[1],
		BreakIn:      slots[2],
		Evening:      slots[3],
		Status:       status,
		IsLate:       late,
	}
}

func TestCalculateMetricsPartition(t *testing.T) {
	rows := []domain.AttendanceDayReport{
		row("A", domain.StatusFullDuty, false, [4]string{"06:50", "11:40", "12:40", "16:30"}),
		row("B", domain.StatusFullDuty, true, [4]string{"07:20", "11:40", "12:40", "16:30"}),
		row("C", domain.StatusPartialDuty, true, [4]string{"07:40", "", "", "16:30"}),
		row("D", domain.StatusAbsent, false, [4]string{}),
		row("E", domain.StatusPermit, false, [4]string{}),
	}
	rows[4].ManualStatus = "CUTI"

	m := CalculateMetrics(rows)

	assert.Equal(t, 5, m.Total)
	assert.Equal(t, m.Total, m.Present+m.Absent+m.Permit)
	assert.Equal(t, 3, m.Present)
	assert.Equal(t, 2, m.Late)
	assert.InDelta(t, 60.0, m.AttendanceRate, 0.001)
	assert.InDelta(t, 100.0/3, m.PunctualityRate, 0.001)
	assert.Equal(t, "07:30", m.AvgLateArrival)

	assert.Equal(t, []domain.LateEntry{{EmployeeName: "B", Morning: "07:20"}, {EmployeeName: "C", Morning: "07:40"}}, m.LateList)
	assert.Equal(t, []domain.PermitEntry{{EmployeeName: "E", StatusText: "CUTI"}}, m.PermitList)
	assert.Equal(t, []string{"D"}, m.AbsentList)
	assert.Equal(t, []domain.PartialEntry{{EmployeeName: "C", EmptySlots: 2}}, m.PartialList)
}

func TestCalculateMetricsEmpty(t *testing.T) {
	m := CalculateMetrics(nil)

	assert.Equal(t, 0, m.Total)
	assert.Zero(t, m.AttendanceRate)
	assert.Zero(t, m.PunctualityRate)
	assert.Empty(t, m.AvgLateArrival)
	assert.NotNil(t, m.LateList)
	assert.NotNil(t, m.AbsentList)
}

func TestCalculateMetricsAllPermit(t *testing.T) {
	rows := []domain.AttendanceDayReport{
		row("A", domain.StatusPermit, false, [4]string{}),
		row("B", domain.StatusPermit, false, [4]string{}),
	}

	m := CalculateMetrics(rows)

	assert.Equal(t, 2, m.Permit)
	assert.Zero(t, m.Present)
	assert.Zero(t, m.AttendanceRate)
	assert.Zero(t, m.PunctualityRate)
}
