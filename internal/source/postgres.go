package source

import (
	"context"
	"time"

	"github.com/wedabay-ops/duty-attendance/backend/internal/domain"
	"github.com/wedabay-ops/duty-attendance/backend/internal/repository"
)

// Postgres 从数据库读取打卡和人工状态
type Postgres struct {
	repo *repository.Repository
	loc  *time.Location
}

func NewPostgres(repo *repository.Repository, loc *time.Location) *Postgres {
	return &Postgres{repo: repo, loc: loc}
}

func (p *Postgres) Events(ctx context.Context, date time.Time) ([]domain.AttendanceEvent, error) {
	from := domain.DateOf(date.In(p.loc))
	events, err := p.repo.GetEventsBetween(ctx, from, from.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	for i := range events {
		events[i].Timestamp = events[i].Timestamp.In(p.loc)
	}
	return eventsOn(events, from), nil
}

func (p *Postgres) Statuses(ctx context.Context, date time.Time) (map[string]string, error) {
	day := domain.DateOf(date.In(p.loc))
	records, err := p.repo.GetManualStatusesByDate(ctx, day)
	if err != nil {
		return nil, err
	}

	for i := range records {
		records[i].Date = day
	}
	return StatusMap(records, day), nil
}
