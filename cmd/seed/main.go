package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/wedabay-ops/duty-attendance/backend/internal/config"
	"github.com/wedabay-ops/duty-attendance/backend/internal/domain"
	"github.com/wedabay-ops/duty-attendance/backend/internal/repository"
	"github.com/wedabay-ops/duty-attendance/backend/internal/roster"
	"github.com/wedabay-ops/duty-attendance/backend/internal/seed"
	"github.com/wedabay-ops/duty-attendance/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var days int
	var file string

	flag.IntVar(&op, "op", 0, "operation to run (1: random users, 2: random punch events, 3: random manual statuses, 4: import events CSV, 5: import manual statuses CSV)")
	flag.IntVar(&n, "n", 5, "number of records to insert")
	flag.IntVar(&days, "days", 7, "number of days of punch events to generate, ending today")
	flag.StringVar(&file, "file", "", "path of the CSV file to import")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("failed to open database pool", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("failed to connect to database", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)
	loc := cfg.Location()
	today := domain.DateOf(time.Now().In(loc))

	// 执行操作
	switch op {
	case 0:
		slog.Error("no operation specified")
	case 1:
		if n <= 0 {
			slog.Error("invalid user count")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
				if err != nil {
					slog.Error("failed to generate random user", slog.String("error", err.Error()))
					continue
				}

				if err := repo.CreateUser(user); err != nil {
					slog.Error("failed to insert user", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("users inserted", slog.Int("count", n-cnt))
		}
	case 2:
		if days <= 0 {
			slog.Error("invalid day count")
			return
		}

		r, err := roster.Load(cfg.RosterFile)
		if err != nil {
			slog.Error("failed to load roster", slog.String("error", err.Error()))
			return
		}

		// 为名册中的每个人生成过去若干天的打卡记录
		cnt := 0
		for d := days - 1; d >= 0; d-- {
			day := today.AddDate(0, 0, -d)
			events := make([]domain.AttendanceEvent, 0)
			for _, name := range r.Names() {
				events = append(events, utils.GenerateRandomEvents(name, day)...)
			}

			if err := repo.InsertEvents(events); err != nil {
				slog.Error("failed to insert punch events", slog.String("date", day.Format(domain.DateLayout)), slog.String("error", err.Error()))
				continue
			}
			cnt += len(events)
		}

		slog.Info("punch events inserted", slog.Int("count", cnt))
	case 3:
		if n <= 0 {
			slog.Error("invalid manual status count")
			return
		}

		r, err := roster.Load(cfg.RosterFile)
		if err != nil {
			slog.Error("failed to load roster", slog.String("error", err.Error()))
			return
		}
		names := r.Names()
		if len(names) == 0 {
			slog.Error("roster is empty")
			return
		}

		// 随机挑人、随机挑天
		cnt := 0
		for i := 0; i < n; i++ {
			name := names[rand.Intn(len(names))]
			day := today.AddDate(0, 0, -rand.Intn(max(days, 1)))
			if err := repo.UpsertManualStatus(utils.GenerateRandomStatus(name, day)); err != nil {
				slog.Error("failed to insert manual status", slog.String("error", err.Error()))
				continue
			}
			cnt++
		}

		slog.Info("manual statuses inserted", slog.Int("count", cnt))
	case 4:
		if file == "" {
			slog.Error("a CSV file must be given with -file")
			return
		}

		cnt, err := seed.ImportEventsCSV(repo, file, loc)
		if err != nil {
			slog.Error("failed to import punch events", slog.String("error", err.Error()))
			return
		}

		slog.Info("punch events imported", slog.Int("count", cnt))
	case 5:
		if file == "" {
			slog.Error("a CSV file must be given with -file")
			return
		}

		cnt, err := seed.ImportStatusesCSV(repo, file, loc)
		if err != nil {
			slog.Error("failed to import manual statuses", slog.String("error", err.Error()))
			return
		}

		slog.Info("manual statuses imported", slog.Int("count", cnt))
	default:
		slog.Error("unknown operation")
	}
}
