// Package export renders a seating chart as an Excel workbook.
package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/neonwatty/seatify-sub000/internal/models"
)

const (
	chartSheet  = "Seating Chart"
	reportSheet = "Report"
)

// Exporter writes seating charts to xlsx workbooks.
type Exporter struct {
	logger *slog.Logger
}

// NewExporter creates a new Exporter.
func NewExporter(logger *slog.Logger) *Exporter {
	return &Exporter{logger: logger}
}

// Workbook renders the roster and optimization result into an xlsx file.
// It returns the file content and a suggested filename.
func (e *Exporter) Workbook(guests []models.Guest, tables []models.Table, result models.OptimizationResult) (*bytes.Buffer, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(chartSheet)
	if err != nil {
		return nil, "", fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if _, err := f.NewSheet(reportSheet); err != nil {
		return nil, "", fmt.Errorf("creating sheet: %w", err)
	}
	// Drop the default sheet.
	_ = f.DeleteSheet("Sheet1")

	_ = f.SetColWidth(chartSheet, "A", "A", 22)
	_ = f.SetColWidth(chartSheet, "B", "B", 10)
	_ = f.SetColWidth(chartSheet, "C", "C", 10)
	_ = f.SetColWidth(chartSheet, "D", "D", 60)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	e.writeChartSheet(f, headerStyle, guests, tables, result.Assignments)
	e.writeReportSheet(f, headerStyle, result)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		e.logger.Error("writing workbook", "error", err)
		return nil, "", fmt.Errorf("writing workbook: %w", err)
	}

	filename := fmt.Sprintf("seating_chart_%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	return buf, filename, nil
}

// writeChartSheet lays out one row per table with its seated guests, then a
// final row for anyone left unseated.
func (e *Exporter) writeChartSheet(f *excelize.File, headerStyle int, guests []models.Guest, tables []models.Table, assignments map[string]string) {
	byTable := make(map[string][]string)
	var unseated []string
	for _, g := range guests {
		if tid, ok := assignments[g.ID]; ok {
			byTable[tid] = append(byTable[tid], g.Name)
		} else {
			unseated = append(unseated, g.Name)
		}
	}

	_ = f.SetCellValue(chartSheet, "A1", "Table")
	_ = f.SetCellValue(chartSheet, "B1", "Capacity")
	_ = f.SetCellValue(chartSheet, "C1", "Seated")
	_ = f.SetCellValue(chartSheet, "D1", "Guests")
	_ = f.SetCellStyle(chartSheet, "A1", "D1", headerStyle)

	row := 2
	for _, t := range tables {
		name := t.Name
		if name == "" {
			name = t.ID
		}
		seated := byTable[t.ID]
		_ = f.SetCellValue(chartSheet, cell("A", row), name)
		_ = f.SetCellValue(chartSheet, cell("B", row), t.Capacity)
		_ = f.SetCellValue(chartSheet, cell("C", row), len(seated))
		_ = f.SetCellValue(chartSheet, cell("D", row), strings.Join(seated, ", "))
		row++
	}
	if len(unseated) > 0 {
		_ = f.SetCellValue(chartSheet, cell("A", row), "Unseated")
		_ = f.SetCellValue(chartSheet, cell("C", row), len(unseated))
		_ = f.SetCellValue(chartSheet, cell("D", row), strings.Join(unseated, ", "))
	}
}

// writeReportSheet records the score and each violation.
func (e *Exporter) writeReportSheet(f *excelize.File, headerStyle int, result models.OptimizationResult) {
	_ = f.SetColWidth(reportSheet, "A", "A", 24)
	_ = f.SetColWidth(reportSheet, "B", "B", 70)

	_ = f.SetCellValue(reportSheet, "A1", "Score")
	_ = f.SetCellValue(reportSheet, "B1", result.Score)

	_ = f.SetCellValue(reportSheet, "A3", "Violation")
	_ = f.SetCellValue(reportSheet, "B3", "Detail")
	_ = f.SetCellStyle(reportSheet, "A3", "B3", headerStyle)

	row := 4
	for _, v := range result.Violations {
		_ = f.SetCellValue(reportSheet, cell("A", row), string(v.Kind))
		_ = f.SetCellValue(reportSheet, cell("B", row), v.Message)
		row++
	}
	if len(result.Violations) == 0 {
		_ = f.SetCellValue(reportSheet, cell("A", row), "none")
	}
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
