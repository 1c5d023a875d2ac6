package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"court_filing_app_go/models"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// MaxExportRows caps a single spreadsheet export
const MaxExportRows = 10000

const (
	sheetCases   = "Cases"
	sheetSummary = "Summary"
)

var caseExportHeaders = []string{
	"Case Number", "Title", "Case Type", "Status", "Payment Status", "Filing Fee",
	"Plaintiffs", "Defendants", "Court", "Filed By", "Filed By Email", "Filed At",
}

// ExportCasesXLSX writes the cases matching the filter to a spreadsheet.
// Admins export every case, other callers only their own.
func ExportCasesXLSX(db *gorm.DB, caller *models.User, filter CaseFilter, now time.Time) (*bytes.Buffer, error) {
	var cases []models.Case
	sort := ParseSort(filter.SortBy, filter.SortOrder, caseSortColumns, Sort{Column: "created_at", Desc: true})
	if err := CaseQuery(db, caller, filter).
		Preload("FiledByUser").
		Order(sort.Clause()).
		Limit(MaxExportRows).
		Find(&cases).Error; err != nil {
		return nil, fmt.Errorf("failed to load cases for export: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetCases)
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"1E3A8A"}, Pattern: 1},
	})
	for i, header := range caseExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetCases, cell, header)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(caseExportHeaders), 1)
	f.SetCellStyle(sheetCases, "A1", lastHeader, headerStyle)
	f.SetColWidth(sheetCases, "A", "A", 20)
	f.SetColWidth(sheetCases, "B", "B", 40)
	f.SetColWidth(sheetCases, "C", "L", 18)

	var totalFees, paidFees float64
	for i, c := range cases {
		row := i + 2
		filedBy, filedByEmail := "", ""
		if c.FiledByUser != nil {
			filedBy, filedByEmail = c.FiledByUser.Name, c.FiledByUser.Email
		}
		values := []interface{}{
			c.CaseNumber, c.Title, c.CaseType, c.Status, c.PaymentStatus, c.FilingFee,
			strings.Join(c.Plaintiffs, "; "), strings.Join(c.Defendants, "; "), c.Court,
			filedBy, filedByEmail, c.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheetCases, cell, v)
		}
		totalFees += c.FilingFee
		if c.IsPaid() {
			paidFees += c.FilingFee
		}
	}

	f.NewSheet(sheetSummary)
	summary := [][]interface{}{
		{"Generated", now.Format("2006-01-02 15:04 MST")},
		{"Cases", len(cases)},
		{"Total filing fees", totalFees},
		{"Fees paid", paidFees},
	}
	for i, line := range summary {
		f.SetCellValue(sheetSummary, fmt.Sprintf("A%d", i+1), line[0])
		f.SetCellValue(sheetSummary, fmt.Sprintf("B%d", i+1), line[1])
	}
	f.SetColWidth(sheetSummary, "A", "A", 22)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write spreadsheet: %w", err)
	}
	return buf, nil
}

// ExportFileName names an export by date
func ExportFileName(now time.Time) string {
	return "cases-" + now.Format("20060102-150405") + ".xlsx"
}
