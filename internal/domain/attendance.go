package domain

import "time"

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// AttendanceEvent 一次打卡（签到或签退）
type AttendanceEvent struct {
	EmployeeName string    `json:"employeeName"`
	Timestamp    time.Time `json:"timestamp"`
}

type ManualStatusRecord struct {
	EmployeeName string    `json:"employeeName"`
	Date         time.Time `json:"date"`
	StatusText   string    `json:"statusText"`
}

// DateOf 截断到 t 所在时区的零点
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ClockOf 返回 t 距离当天零点的时长
func ClockOf(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}
