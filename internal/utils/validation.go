package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/wedabay-ops/duty-attendance/backend/internal/domain"
)

const (
	MinTrendWeeks = 1
	MaxTrendWeeks = 52
)

var ErrInvalidDate = errors.New("date must use YYYY-MM-DD")

// ParseDate 解析查询参数中的日期，结果为 loc 时区的当天零点
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(domain.DateLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return t, nil
}

// ParseDateOr 参数为空时使用 fallback
func ParseDateOr(value string, loc *time.Location, fallback time.Time) (time.Time, error) {
	if value == "" {
		return domain.DateOf(fallback.In(loc)), nil
	}
	return ParseDate(value, loc)
}

func ValidateDateRange(from, to time.Time, maxDays int) error {
	if from.After(to) {
		return errors.New("start date must not be after end date")
	}

	// 两端都包含在内
	days := int(to.Sub(from).Hours()/24) + 1
	if maxDays > 0 && days > maxDays {
		return fmt.Errorf("date range must not exceed %d days", maxDays)
	}

	return nil
}

func ValidateWeeks(weeks int) error {
	if weeks < MinTrendWeeks || weeks > MaxTrendWeeks {
		return fmt.Errorf("weeks must be between %d and %d", MinTrendWeeks, MaxTrendWeeks)
	}
	return nil
}
