package report

import (
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wedabay-ops/duty-attendance/backend/internal/attendance"
	"github.com/wedabay-ops/duty-attendance/backend/internal/cache"
	"github.com/wedabay-ops/duty-attendance/backend/internal/config"
	"github.com/wedabay-ops/duty-attendance/backend/internal/repository"
	"github.com/wedabay-ops/duty-attendance/backend/internal/roster"
	"github.com/wedabay-ops/duty-attendance/backend/internal/source"
)

// NewFromConfig 按配置组装数据源、缓存、名册和引擎，api 和 mail 共用
func NewFromConfig(cfg *config.Config, repo *repository.Repository, rdb *redis.Client) (*Service, error) {
	loc := cfg.Location()

	var (
		events   source.EventSource
		statuses source.ManualStatusSource
	)
	switch cfg.Source.Driver {
	case "postgres":
		pg := source.NewPostgres(repo, loc)
		events, statuses = pg, pg
	default:
		sheets := source.NewSheets(cfg.Source.EventsURL, cfg.Source.StatusURL, time.Duration(cfg.Source.HTTPTimeout)*time.Second, loc)
		events, statuses = sheets, sheets
	}

	c := cache.New(
		rdb,
		time.Duration(cfg.Cache.TTL)*time.Second,
		time.Duration(cfg.Redis.OperationTimeout)*time.Second,
		time.Duration(cfg.Cache.FetchTimeout)*time.Second,
	)
	events = cache.NewEventSource(events, c)
	statuses = cache.NewStatusSource(statuses, c)

	r, err := roster.Load(cfg.RosterFile)
	if err != nil {
		return nil, err
	}

	engine := attendance.New(attendance.Parameters{
		ShortDay:      time.Weekday(cfg.Attendance.ShortWeekday),
		LateThreshold: cfg.LateThresholdOffset(),
	})

	return NewService(events, statuses, r, engine, loc), nil
}
