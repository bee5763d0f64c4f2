package domain

import "time"

type DutyStatus string

const (
	StatusFullDuty    DutyStatus = "FULL_DUTY"
	StatusPartialDuty DutyStatus = "PARTIAL_DUTY"
	StatusAbsent      DutyStatus = "ABSENT"
	StatusPermit      DutyStatus = "PERMIT"
)

// DailySlotRecord 某员工某天四个时段的打卡时间（HH:MM），空字符串表示缺失
type DailySlotRecord struct {
	EmployeeName string    `json:"employeeName"`
	Date         time.Time `json:"date"`
	Morning      string    `json:"morning"`
	BreakOut     string    `json:"breakOut"`
	BreakIn      string    `json:"breakIn"`
	Evening      string    `json:"evening"`
}

func (r DailySlotRecord) Slots() [4]string {
	return [4]string{r.Morning, r.BreakOut, r.BreakIn, r.Evening}
}

// EmptySlots 统计为空的时段数量
func (r DailySlotRecord) EmptySlots() int {
	n := 0
	for _, s := range r.Slots() {
		if s == "" {
			n++
		}
	}
	return n
}

type AttendanceDayReport struct {
	EmployeeName string     `json:"employeeName"`
	Division     string     `json:"division"`
	Date         time.Time  `json:"date"`
	Morning      string     `json:"morning"`
	BreakOut     string     `json:"breakOut"`
	BreakIn      string     `json:"breakIn"`
	Evening      string     `json:"evening"`
	ManualStatus string     `json:"manualStatus"`
	Status       DutyStatus `json:"status"`
	IsLate       bool       `json:"isLate"`
}

func (r AttendanceDayReport) Slots() [4]string {
	return [4]string{r.Morning, r.BreakOut, r.BreakIn, r.Evening}
}

type LateEntry struct {
	EmployeeName string `json:"employeeName"`
	Morning      string `json:"morning"`
}

type PermitEntry struct {
	EmployeeName string `json:"employeeName"`
	StatusText   string `json:"statusText"`
}

type PartialEntry struct {
	EmployeeName string `json:"employeeName"`
	EmptySlots   int    `json:"emptySlots"`
}

type DayMetrics struct {
	Total           int            `json:"total"`
	Present         int            `json:"present"`
	Permit          int            `json:"permit"`
	Absent          int            `json:"absent"`
	Late            int            `json:"late"`
	AttendanceRate  float64        `json:"attendanceRate"`
	PunctualityRate float64        `json:"punctualityRate"`
	AvgLateArrival  string         `json:"avgLateArrival"`
	LateList        []LateEntry    `json:"lateList"`
	PermitList      []PermitEntry  `json:"permitList"`
	AbsentList      []string       `json:"absentList"`
	PartialList     []PartialEntry `json:"partialList"`
}

type DayReport struct {
	Date     time.Time             `json:"date"`
	ShortDay bool                  `json:"shortDay"`
	Rows     []AttendanceDayReport `json:"rows"`
	Metrics  DayMetrics            `json:"metrics"`
}

type Anomaly struct {
	EmployeeName string    `json:"employeeName"`
	Division     string    `json:"division,omitempty"`
	Type         string    `json:"type"`
	GapHours     float64   `json:"gapHours"`
	Time1        time.Time `json:"time1"`
	Time2        time.Time `json:"time2"`
}

type DivisionStat struct {
	Division string  `json:"division"`
	Code     string  `json:"code"`
	Total    int     `json:"total"`
	Present  int     `json:"present"`
	Absent   int     `json:"absent"`
	Rate     float64 `json:"rate"`
}

type WeeklyTrend struct {
	Year            int `json:"year"`
	Week            int `json:"week"`
	UniqueEmployees int `json:"uniqueEmployees"`
	TotalEvents     int `json:"totalEvents"`
}
