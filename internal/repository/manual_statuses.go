package repository

import (
	"context"
	"time"

	"github.com/wedabay-ops/duty-attendance/backend/internal/domain"
)

func (r *Repository) GetManualStatusesByDate(ctx context.Context, date time.Time) ([]domain.ManualStatusRecord, error) {
	query := `
		SELECT employee_name, status_date, upper(btrim(status_text))
		FROM manual_statuses
		WHERE status_date = $1 AND btrim(status_text) <> ''
		ORDER BY id
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, date.Format(domain.DateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.ManualStatusRecord, 0)
	for rows.Next() {
		var record domain.ManualStatusRecord
		if err := rows.Scan(&record.EmployeeName, &record.Date, &record.StatusText); err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// UpsertManualStatus 同一员工同一天只保留最新的一条
func (r *Repository) UpsertManualStatus(record *domain.ManualStatusRecord) error {
	query := `
		INSERT INTO manual_statuses (employee_name, status_date, status_text)
		VALUES ($1, $2, $3)
		ON CONFLICT (employee_name, status_date)
		DO UPDATE SET status_text = EXCLUDED.status_text
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, record.EmployeeName, record.Date.Format(domain.DateLayout), record.StatusText)
	return err
}
