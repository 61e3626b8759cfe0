package issueapp

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/jcpaschoal/propman/business/domain/issuebus"
	"github.com/xuri/excelize/v2"
)

const (
	sheetName = "Tickets"
	xlsxType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var exportHeaders = []string{
	"Created", "Building", "Apartment", "Floor", "Title", "Category",
	"Priority", "Status", "Reporter", "Reporter Email", "Location", "Description",
}

var exportWidths = []float64{20, 24, 12, 8, 36, 14, 10, 12, 24, 30, 24, 48}

// Workbook is a spreadsheet download.
type Workbook struct {
	data     []byte
	filename string
}

// Encode implements the web.Encoder interface.
func (wb Workbook) Encode() ([]byte, string, error) {
	return wb.data, xlsxType, nil
}

// HTTPHeader implements the web package httpHeader interface.
func (wb Workbook) HTTPHeader() http.Header {
	h := make(http.Header)
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", wb.filename))
	return h
}

func toWorkbook(reports []issuebus.Report, now time.Time) (Workbook, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return Workbook{}, fmt.Errorf("new sheet: %w", err)
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return Workbook{}, fmt.Errorf("delete sheet: %w", err)
	}

	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		return Workbook{}, fmt.Errorf("header style: %w", err)
	}

	header := make([]any, len(exportHeaders))
	for i, h := range exportHeaders {
		header[i] = h
	}

	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return Workbook{}, fmt.Errorf("header row: %w", err)
	}

	last, err := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	if err != nil {
		return Workbook{}, err
	}

	if err := f.SetCellStyle(sheetName, "A1", last, headerStyle); err != nil {
		return Workbook{}, fmt.Errorf("header style: %w", err)
	}

	for i, w := range exportWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return Workbook{}, err
		}

		if err := f.SetColWidth(sheetName, col, col, w); err != nil {
			return Workbook{}, fmt.Errorf("column width: %w", err)
		}
	}

	for i, r := range reports {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return Workbook{}, err
		}

		row := []any{
			r.CreatedAt.Format(time.RFC3339),
			r.BuildingName,
			r.ApartmentNumber,
			r.Floor,
			r.Title,
			r.Category.String(),
			r.Priority.String(),
			r.Status.String(),
			r.ReporterName,
			r.ReporterEmail.Address,
			r.LocationDetails,
			r.Description,
		}

		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return Workbook{}, fmt.Errorf("row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return Workbook{}, fmt.Errorf("freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return Workbook{}, fmt.Errorf("write: %w", err)
	}

	wb := Workbook{
		data:     buf.Bytes(),
		filename: fmt.Sprintf("tickets-%s.xlsx", now.Format("20060102")),
	}

	return wb, nil
}
