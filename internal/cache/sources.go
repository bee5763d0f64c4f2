package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/wedabay-ops/duty-attendance/backend/internal/domain"
	"github.com/wedabay-ops/duty-attendance/backend/internal/source"
)

func EventsKey(date time.Time) string {
	return fmt.Sprintf("attendance:events:%s", date.Format(domain.DateLayout))
}

func StatusesKey(date time.Time) string {
	return fmt.Sprintf("attendance:statuses:%s", date.Format(domain.DateLayout))
}

type EventSource struct {
	inner source.EventSource
	cache *Cache
}

func NewEventSource(inner source.EventSource, c *Cache) *EventSource {
	return &EventSource{inner: inner, cache: c}
}

func (s *EventSource) Events(ctx context.Context, date time.Time) ([]domain.AttendanceEvent, error) {
	return Remember(ctx, s.cache, EventsKey(date), func(ctx context.Context) ([]domain.AttendanceEvent, error) {
		return s.inner.Events(ctx, date)
	})
}

type StatusSource struct {
	inner source.ManualStatusSource
	cache *Cache
}

func NewStatusSource(inner source.ManualStatusSource, c *Cache) *StatusSource {
	return &StatusSource{inner: inner, cache: c}
}

func (s *StatusSource) Statuses(ctx context.Context, date time.Time) (map[string]string, error) {
	return Remember(ctx, s.cache, StatusesKey(date), func(ctx context.Context) (map[string]string, error) {
		return s.inner.Statuses(ctx, date)
	})
}
