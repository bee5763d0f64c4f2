package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/wedabay-ops/duty-attendance/backend/internal/domain"
)

const (
	ColPersonName   = "Person Name"
	ColEventTime    = "Event Time"
	ColEmployeeName = "Nama Karyawan"
	ColDate         = "Tanggal"
	ColStatus       = "Keterangan"
)

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"1/2/2006",
	"2 January 2006",
	"January 2, 2006",
	"2-Jan-2006",
}

// ParseTimestamp 依次尝试已知格式，不含时区的格式按 loc 解释
func ParseTimestamp(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.In(loc), true
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func ParseDate(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	if t, ok := ParseTimestamp(value, loc); ok {
		return domain.DateOf(t), true
	}
	return time.Time{}, false
}

type table struct {
	columns map[string]int
	rows    [][]string
}

func readTable(r io.Reader, required ...string) (*table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty sheet", ErrMissingColumns)
		}
		return nil, err
	}

	columns := make(map[string]int, len(headers))
	for i, header := range headers {
		header = strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
		if _, exists := columns[header]; !exists {
			columns[header] = i
		}
	}

	for _, col := range required {
		if _, ok := columns[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumns, col)
		}
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	return &table{columns: columns, rows: rows}, nil
}

func (t *table) cell(row []string, col string) string {
	i := t.columns[col]
	if i >= len(row) {
		return ""
	}
	return row[i]
}

// ParseEvents 解析打卡表，姓名为空或时间无法解析的行会被丢弃
func ParseEvents(r io.Reader, loc *time.Location) ([]domain.AttendanceEvent, int, error) {
	t, err := readTable(r, ColPersonName, ColEventTime)
	if err != nil {
		return nil, 0, err
	}

	dropped := 0
	events := make([]domain.AttendanceEvent, 0, len(t.rows))
	for _, row := range t.rows {
		name := strings.TrimSpace(t.cell(row, ColPersonName))
		ts, ok := ParseTimestamp(t.cell(row, ColEventTime), loc)
		if name == "" || !ok {
			dropped++
			continue
		}
		events = append(events, domain.AttendanceEvent{EmployeeName: name, Timestamp: ts})
	}

	return events, dropped, nil
}

// ParseStatuses 解析人工状态表，状态文本去空格并转为大写
func ParseStatuses(r io.Reader, loc *time.Location) ([]domain.ManualStatusRecord, int, error) {
	t, err := readTable(r, ColEmployeeName, ColDate, ColStatus)
	if err != nil {
		return nil, 0, err
	}

	dropped := 0
	records := make([]domain.ManualStatusRecord, 0, len(t.rows))
	for _, row := range t.rows {
		name := strings.TrimSpace(t.cell(row, ColEmployeeName))
		date, ok := ParseDate(t.cell(row, ColDate), loc)
		status := strings.ToUpper(strings.TrimSpace(t.cell(row, ColStatus)))
		if name == "" || !ok || status == "" {
			dropped++
			continue
		}
		records = append(records, domain.ManualStatusRecord{EmployeeName: name, Date: date, StatusText: status})
	}

	return records, dropped, nil
}
