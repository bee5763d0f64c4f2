package attendance

import (
	"time"

	"github.com/wedabay-ops/duty-attendance/backend/internal/domain"
)

// Slot 一天中固定的四个值班时段
type Slot int

const (
	SlotUnassigned Slot = iota
	SlotMorning
	SlotBreakOut
	SlotBreakIn
	SlotEvening
)

func (s Slot) String() string {
	switch s {
	case SlotMorning:
		return "MORNING"
	case SlotBreakOut:
		return "BREAK_OUT"
	case SlotBreakIn:
		return "BREAK_IN"
	case SlotEvening:
		return "EVENING"
	default:
		return "UNASSIGNED"
	}
}

// Thresholds 以距离零点的时长表示各时段边界
// MORNING:   t <  MorningEnd
// BREAK_OUT: MorningEnd <= t < BreakOutEnd
// BREAK_IN:  BreakOutEnd <= t <= BreakInEnd
// EVENING:   t >= EveningStart
type Thresholds struct {
	MorningEnd   time.Duration
	BreakOutEnd  time.Duration
	BreakInEnd   time.Duration
	EveningStart time.Duration
}

func clock(h, m int) time.Duration {
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute
}

var (
	StandardThresholds = Thresholds{
		MorningEnd:   clock(11, 30),
		BreakOutEnd:  clock(12, 30),
		BreakInEnd:   clock(16, 0),
		EveningStart: clock(16, 0),
	}

	// 短日的 BREAK_IN 与 EVENING 之间 (14:00, 17:00) 没有覆盖，落在其中的打卡不计入任何时段
	ShortDayThresholds = Thresholds{
		MorningEnd:   clock(12, 0),
		BreakOutEnd:  clock(13, 0),
		BreakInEnd:   clock(14, 0),
		EveningStart: clock(17, 0),
	}
)

func (th Thresholds) classify(tod time.Duration) Slot {
	switch {
	case tod < th.MorningEnd:
		return SlotMorning
	case tod < th.BreakOutEnd:
		return SlotBreakOut
	case tod <= th.BreakInEnd:
		return SlotBreakIn
	case tod >= th.EveningStart:
		return SlotEvening
	}
	return SlotUnassigned
}

type Classifier struct {
	ShortDay time.Weekday
	Standard Thresholds
	Short    Thresholds
}

func NewClassifier(shortDay time.Weekday) Classifier {
	return Classifier{
		ShortDay: shortDay,
		Standard: StandardThresholds,
		Short:    ShortDayThresholds,
	}
}

func (c Classifier) IsShortDay(date time.Time) bool {
	return date.Weekday() == c.ShortDay
}

// ClassifyTimeOfDay 根据时刻和是否为短日判断所属时段
func (c Classifier) ClassifyTimeOfDay(tod time.Duration, shortDay bool) Slot {
	if shortDay {
		return c.Short.classify(tod)
	}
	return c.Standard.classify(tod)
}

func (c Classifier) Classify(ts time.Time) Slot {
	return c.ClassifyTimeOfDay(domain.ClockOf(ts), c.IsShortDay(ts))
}
