package export

import (
	"errors"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/wedabay-ops/duty-attendance/backend/internal/domain"
)

const (
	ContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	SheetNameDate = "02-Jan"
)

var headers = []any{"Employee", "Morning", "Break Out", "Break In", "Evening", "Remarks"}

var ErrNoReports = errors.New("no reports to export")

// Exporter 负责把日报渲染成 xlsx，颜色等展示信息只存在于这里
type Exporter struct{}

func NewExporter() *Exporter {
	return &Exporter{}
}

func (e *Exporter) DailyWorkbook(report *domain.DayReport) (*excelize.File, error) {
	return e.RangeWorkbook([]*domain.DayReport{report})
}

// RangeWorkbook 每个日期一个工作表，顺序与传入的顺序一致
func (e *Exporter) RangeWorkbook(reports []*domain.DayReport) (*excelize.File, error) {
	if len(reports) == 0 {
		return nil, ErrNoReports
	}

	f := excelize.NewFile()
	styles, err := newStyleSet(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	defaultSheet := f.GetSheetName(0)
	for i, report := range reports {
		name := report.Date.Format(SheetNameDate)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				f.Close()
				return nil, err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, err
		}

		if err := writeSheet(f, name, styles, report); err != nil {
			f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	return f, nil
}

func (e *Exporter) WriteDaily(w io.Writer, report *domain.DayReport) error {
	f, err := e.DailyWorkbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	return f.Write(w)
}

func (e *Exporter) WriteRange(w io.Writer, reports []*domain.DayReport) error {
	f, err := e.RangeWorkbook(reports)
	if err != nil {
		return err
	}
	defer f.Close()

	return f.Write(w)
}

// sheetWriter 记录第一个错误，后续的写入全部跳过
type sheetWriter struct {
	f     *excelize.File
	sheet string
	err   error
}

func (sw *sheetWriter) cell(col, row int, value any, style int) {
	if sw.err != nil {
		return
	}
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		sw.err = err
		return
	}
	if err := sw.f.SetCellValue(sw.sheet, name, value); err != nil {
		sw.err = err
		return
	}
	sw.err = sw.f.SetCellStyle(sw.sheet, name, name, style)
}

func writeSheet(f *excelize.File, sheet string, styles *styleSet, report *domain.DayReport) error {
	sw := &sheetWriter{f: f, sheet: sheet}

	for i, header := range headers {
		sw.cell(i+1, 1, header, styles.header)
	}

	for i, row := range report.Rows {
		r := i + 2
		sw.cell(1, r, row.EmployeeName, styles.normal)
		sw.cell(6, r, row.ManualStatus, styles.normal)

		slots := row.Slots()
		for j, value := range slots {
			col := j + 2
			switch row.Status {
			case domain.StatusPermit:
				sw.cell(col, r, "", styles.normal)
			case domain.StatusAbsent:
				sw.cell(col, r, "", styles.absent)
			default:
				style := styles.normal
				switch {
				case value == "":
					style = styles.missing
				case j == 0 && row.IsLate:
					style = styles.late
				}
				sw.cell(col, r, value, style)
			}
		}
	}
	if sw.err != nil {
		return sw.err
	}

	if err := f.SetColWidth(sheet, "A", "A", 30); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "B", "F", 15)
}
