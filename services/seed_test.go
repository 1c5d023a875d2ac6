package services

import (
	"testing"

	"court_filing_app_go/config"
	"court_filing_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureAdmin(t *testing.T) {
	t.Run("CreatesVerifiedAdmin", func(t *testing.T) {
		db := setupTestDB(t)
		user, created, err := EnsureAdmin(db, AdminSeed{Name: "Registrar", Email: " Registrar@Court.example ", Password: "Bench2026x"})
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "registrar@court.example", user.Email)
		assert.Equal(t, models.RoleAdmin, user.Role)
		assert.True(t, user.IsVerified)
		assert.True(t, VerifyPassword(user.Password, "Bench2026x"))
	})

	t.Run("PromotesExistingUser", func(t *testing.T) {
		db := setupTestDB(t)
		existing := createUser(t, db, "clerk@court.example", models.RoleUser)
		user, created, err := EnsureAdmin(db, AdminSeed{Email: "clerk@court.example"})
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, existing.ID, user.ID)
		assert.Equal(t, models.RoleAdmin, user.Role)
		assert.Equal(t, existing.Password, user.Password)
	})

	t.Run("WeakPasswordRejected", func(t *testing.T) {
		db := setupTestDB(t)
		_, _, err := EnsureAdmin(db, AdminSeed{Email: "new@court.example", Password: "short"})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestSeedAdmin(t *testing.T) {
	t.Run("CreatesWhenNoAdmin", func(t *testing.T) {
		db := setupTestDB(t)
		cfg := &config.Config{AdminEmail: "seed@court.example", AdminPassword: "Seeded2026x", AdminName: "Seed Admin"}

		require.NoError(t, SeedAdmin(db, cfg))

		var user models.User
		require.NoError(t, db.Where("email = ?", "seed@court.example").First(&user).Error)
		assert.Equal(t, models.RoleAdmin, user.Role)
		assert.Equal(t, "Seed Admin", user.Name)
	})

	t.Run("SkipsWhenAdminExists", func(t *testing.T) {
		db := setupTestDB(t)
		createUser(t, db, "first@court.example", models.RoleAdmin)
		cfg := &config.Config{AdminEmail: "second@court.example", AdminPassword: "Seeded2026x"}

		require.NoError(t, SeedAdmin(db, cfg))

		var count int64
		db.Model(&models.User{}).Where("email = ?", "second@court.example").Count(&count)
		assert.Zero(t, count)
	})

	t.Run("SkipsWithoutEnv", func(t *testing.T) {
		db := setupTestDB(t)
		require.NoError(t, SeedAdmin(db, &config.Config{}))
	})
}
