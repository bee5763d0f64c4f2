package seed

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/wedabay-ops/duty-attendance/backend/internal/repository"
	"github.com/wedabay-ops/duty-attendance/backend/internal/source"
)

// ImportEventsCSV 导入与打卡表格式相同的 CSV（Person Name, Event Time）
func ImportEventsCSV(r *repository.Repository, path string, loc *time.Location) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	events, dropped, err := source.ParseEvents(file, loc)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	if dropped > 0 {
		slog.Warn("skipped unparseable punch events", "path", path, "dropped", dropped)
	}

	if err := r.InsertEvents(events); err != nil {
		return 0, err
	}

	return len(events), nil
}

// ImportStatusesCSV 导入人工状态表（Nama Karyawan, Tanggal, Keterangan），同一人同一天以最后一行为准
func ImportStatusesCSV(r *repository.Repository, path string, loc *time.Location) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	records, dropped, err := source.ParseStatuses(file, loc)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	if dropped > 0 {
		slog.Warn("skipped unparseable manual statuses", "path", path, "dropped", dropped)
	}

	cnt := 0
	for i := range records {
		if err := r.UpsertManualStatus(&records[i]); err != nil {
			slog.Error("failed to insert manual status", "employee", records[i].EmployeeName, "error", err)
			continue
		}
		cnt++
	}

	return cnt, nil
}
