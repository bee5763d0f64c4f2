package repository

import (
	"context"
	"time"

	"github.com/wedabay-ops/duty-attendance/backend/internal/domain"
)

// GetEventsBetween 返回 [from, to) 内的打卡记录，按时间排序
func (r *Repository) GetEventsBetween(ctx context.Context, from, to time.Time) ([]domain.AttendanceEvent, error) {
	query := `
		SELECT person_name, event_time
		FROM attendance_events
		WHERE event_time >= $1 AND event_time < $2 AND btrim(person_name) <> ''
		ORDER BY event_time
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]domain.AttendanceEvent, 0)
	for rows.Next() {
		var ev domain.AttendanceEvent
		if err := rows.Scan(&ev.EmployeeName, &ev.Timestamp); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// InsertEvents 在一个事务中批量插入打卡记录
func (r *Repository) InsertEvents(events []domain.AttendanceEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `INSERT INTO attendance_events (person_name, event_time) VALUES ($1, $2)`
	for _, ev := range events {
		if _, err := tx.ExecContext(ctx, query, ev.EmployeeName, ev.Timestamp); err != nil {
			return err
		}
	}

	return tx.Commit()
}
