package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/wedabay-ops/duty-attendance/backend/internal/domain"
)

// Sheets 从发布为 CSV 的在线表格读取数据
type Sheets struct {
	eventsURL string
	statusURL string
	client    *http.Client
	loc       *time.Location
}

func NewSheets(eventsURL, statusURL string, timeout time.Duration, loc *time.Location) *Sheets {
	return &Sheets{
		eventsURL: eventsURL,
		statusURL: statusURL,
		client:    &http.Client{Timeout: timeout},
		loc:       loc,
	}
}

func (s *Sheets) fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	return resp.Body, nil
}

func (s *Sheets) Events(ctx context.Context, date time.Time) ([]domain.AttendanceEvent, error) {
	body, err := s.fetch(ctx, s.eventsURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	events, dropped, err := ParseEvents(body, s.loc)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		slog.Debug("dropped invalid punch events", "count", dropped)
	}

	return eventsOn(events, date.In(s.loc)), nil
}

func (s *Sheets) Statuses(ctx context.Context, date time.Time) (map[string]string, error) {
	body, err := s.fetch(ctx, s.statusURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	records, dropped, err := ParseStatuses(body, s.loc)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		slog.Debug("dropped invalid manual statuses", "count", dropped)
	}

	return StatusMap(records, date.In(s.loc)), nil
}
