package services

import (
	"testing"
	"time"

	"court_filing_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportCasesXLSX(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "exp-owner@example.com", models.RoleUser)
	other := createUser(t, db, "exp-other@example.com", models.RoleUser)
	admin := createUser(t, db, "exp-admin@example.com", models.RoleAdmin)
	paid := createCase(t, db, owner, models.CaseStatusApproved, models.PaymentStatusPaid)
	createCase(t, db, owner, models.CaseStatusPending, models.PaymentStatusUnpaid)
	createCase(t, db, other, models.CaseStatusPending, models.PaymentStatusUnpaid)
	now := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)

	buf, err := ExportCasesXLSX(db, admin, CaseFilter{PaymentStatus: models.PaymentStatusPaid}, now)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetCases)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, caseExportHeaders, rows[0])
	assert.Equal(t, paid.CaseNumber, rows[1][0])
	assert.Equal(t, "exp-owner@example.com", rows[1][10])

	count, err := f.GetCellValue(sheetSummary, "B2")
	require.NoError(t, err)
	assert.Equal(t, "1", count)

	t.Run("Non-admin export is scoped", func(t *testing.T) {
		buf, err := ExportCasesXLSX(db, owner, CaseFilter{}, now)
		require.NoError(t, err)
		f, err := excelize.OpenReader(buf)
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows(sheetCases)
		require.NoError(t, err)
		assert.Len(t, rows, 3)
	})
}

func TestExportFileName(t *testing.T) {
	assert.Equal(t, "cases-20260201-093000.xlsx", ExportFileName(time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)))
}
