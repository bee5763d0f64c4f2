package attendance

import (
	"time"

	"github.com/wedabay-ops/duty-attendance/backend/internal/domain"
)

// ClassifyStatus 按以下顺序判断：
//  1. 有人工登记的状态 -> PERMIT（覆盖所有打卡数据）
//  2. 四个时段全空 -> ABSENT
//  3. 部分为空 -> PARTIAL_DUTY
//  4. 全部有值 -> FULL_DUTY
//
// 迟到只针对 PARTIAL_DUTY / FULL_DUTY 计算，且只看 MORNING 时段
func ClassifyStatus(slots [4]string, manualStatus string, lateThreshold time.Duration) (domain.DutyStatus, bool) {
	if manualStatus != "" {
		return domain.StatusPermit, false
	}

	empty := 0
	for _, s := range slots {
		if s == "" {
			empty++
		}
	}

	switch empty {
	case len(slots):
		return domain.StatusAbsent, false
	case 0:
		return domain.StatusFullDuty, IsLate(slots[0], lateThreshold)
	default:
		return domain.StatusPartialDuty, IsLate(slots[0], lateThreshold)
	}
}

// IsLate 判断 HH:MM 格式的时间是否严格晚于阈值，无法解析时视为不迟到
func IsLate(morning string, threshold time.Duration) bool {
	if morning == "" {
		return false
	}
	t, err := time.Parse(domain.TimeLayout, morning)
	if err != nil {
		return false
	}
	return domain.ClockOf(t) > threshold
}
