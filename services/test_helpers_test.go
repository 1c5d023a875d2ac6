package services

import (
	"testing"

	"court_filing_app_go/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// Unique shared memory name isolates tests while letting goroutines share the DB
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, testDB.AutoMigrate(models.All()...))
	return testDB
}

func createUser(t *testing.T, db *gorm.DB, email, role string) *models.User {
	hash, err := HashPassword("filing2026")
	require.NoError(t, err)
	user := &models.User{
		Name:       "Test " + email,
		Email:      email,
		Password:   hash,
		Role:       role,
		IsVerified: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createCase(t *testing.T, db *gorm.DB, owner *models.User, status, paymentStatus string) *models.Case {
	c := &models.Case{
		CaseNumber:    "CASE-2026-" + uuid.New().String()[:6],
		Title:         "Boundary dispute",
		Description:   "Neighbour moved the fence",
		Plaintiffs:    []string{owner.Name},
		Defendants:    []string{"R. Verma"},
		CaseType:      models.CaseTypeProperty,
		Status:        status,
		PaymentStatus: paymentStatus,
		FilingFee:     StandardFilingFee,
		FiledBy:       owner.ID,
	}
	require.NoError(t, db.Create(c).Error)
	return c
}
