package export

import "github.com/xuri/excelize/v2"

const (
	colorHeader  = "#4CAF50"
	colorMissing = "#FF0000"
	colorAbsent  = "#FFFF00"
	colorLate    = "#FF0000"
)

type styleSet struct {
	header  int
	normal  int
	missing int
	absent  int
	late    int
}

func border() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "#000000", Style: 1},
		{Type: "top", Color: "#000000", Style: 1},
		{Type: "right", Color: "#000000", Style: 1},
		{Type: "bottom", Color: "#000000", Style: 1},
	}
}

func center() *excelize.Alignment {
	return &excelize.Alignment{Horizontal: "center", Vertical: "center"}
}

func fill(color string) excelize.Fill {
	return excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1}
}

func newStyleSet(f *excelize.File) (*styleSet, error) {
	s := &styleSet{}
	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&s.header, &excelize.Style{Font: &excelize.Font{Bold: true, Color: "#FFFFFF"}, Fill: fill(colorHeader), Border: border(), Alignment: center()}},
		{&s.normal, &excelize.Style{Border: border(), Alignment: center()}},
		{&s.missing, &excelize.Style{Fill: fill(colorMissing), Border: border(), Alignment: center()}},
		{&s.absent, &excelize.Style{Fill: fill(colorAbsent), Border: border(), Alignment: center()}},
		{&s.late, &excelize.Style{Font: &excelize.Font{Bold: true, Color: colorLate}, Border: border(), Alignment: center()}},
	}

	for _, def := range defs {
		id, err := f.NewStyle(def.style)
		if err != nil {
			return nil, err
		}
		*def.dst = id
	}

	return s, nil
}
