package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupModelDB(t *testing.T) *gorm.DB {
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(All()...))
	return database
}

func TestCaseDefaultsAndJSONColumns(t *testing.T) {
	database := setupModelDB(t)

	c := &Case{
		CaseNumber: "CASE-2026-000001",
		Title:      "Land dispute",
		Plaintiffs: []string{"A. Sharma"},
		Defendants: []string{"B. Rao", "C. Iyer"},
		FilingFee:  2000,
		FiledBy:    "user-1",
	}
	require.NoError(t, database.Create(c).Error)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, CaseStatusPending, c.Status)
	assert.Equal(t, PaymentStatusUnpaid, c.PaymentStatus)

	var loaded Case
	require.NoError(t, database.First(&loaded, "id = ?", c.ID).Error)
	assert.Equal(t, []string{"B. Rao", "C. Iyer"}, loaded.Defendants)
	assert.True(t, loaded.OwnerDeletable())
	assert.False(t, loaded.IsPaid())
}

func TestEvidenceDefaults(t *testing.T) {
	database := setupModelDB(t)

	e := &Evidence{
		CaseID:     "case-1",
		UploadedBy: "user-1",
		Title:      "Contract",
		FileURL:    "/uploads/evidence/case-1/1-contract.pdf",
		StorageKey: "evidence/case-1/1-contract.pdf",
		FileName:   "contract.pdf",
		FileSize:   10,
		Tags:       []string{"contract"},
	}
	require.NoError(t, database.Create(e).Error)
	assert.Equal(t, ApprovalPending, e.ApprovalStatus)
	assert.False(t, e.IsApproved)
	assert.True(t, e.IsPendingReview())
}

func TestValidators(t *testing.T) {
	assert.True(t, IsValidCaseStatus(CaseStatusInProgress))
	assert.False(t, IsValidCaseStatus("open"))
	assert.True(t, IsValidHearingStatus(HearingStatusPostponed))
	assert.False(t, IsValidHearingStatus("closed"))
	assert.True(t, IsValidRole(RoleAdmin))
	assert.False(t, IsValidRole("lawyer"))
	assert.True(t, IsValidPaymentStatus(PaymentStatusPending))
}
