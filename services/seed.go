package services

import (
	"errors"
	"fmt"
	"strings"

	"court_filing_app_go/config"
	"court_filing_app_go/logger"
	"court_filing_app_go/models"

	"gorm.io/gorm"
)

// AdminSeed is the account EnsureAdmin creates or promotes
type AdminSeed struct {
	Name     string
	Email    string
	Password string
}

// EnsureAdmin makes the account with seed.Email a verified admin.
// An existing account is promoted and keeps its password; otherwise a new one is created
// and the password must pass ValidatePassword. created reports which path was taken.
func EnsureAdmin(db *gorm.DB, seed AdminSeed) (user *models.User, created bool, err error) {
	email := NormalizeEmail(seed.Email)
	if email == "" {
		return nil, false, Invalid("email is required")
	}

	var existing models.User
	err = db.Where("email = ?", email).First(&existing).Error
	switch {
	case err == nil:
		existing.Role = models.RoleAdmin
		existing.IsVerified = true
		existing.VerificationToken = nil
		existing.VerificationTokenExpiry = nil
		if err := db.Save(&existing).Error; err != nil {
			return nil, false, fmt.Errorf("failed to promote user: %w", err)
		}
		logger.Security("ADMIN_PROMOTED", existing.ID, existing.Email)
		return &existing, false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := ValidatePassword("password", seed.Password); err != nil {
		return nil, false, err
	}
	hash, err := HashPassword(seed.Password)
	if err != nil {
		return nil, false, err
	}

	name := CleanText(seed.Name)
	if name == "" {
		name = strings.Split(email, "@")[0]
	}
	user = &models.User{
		Name:       name,
		Email:      email,
		Password:   hash,
		Role:       models.RoleAdmin,
		IsVerified: true,
	}
	if err := db.Create(user).Error; err != nil {
		return nil, false, fmt.Errorf("failed to create admin: %w", err)
	}

	logger.Security("ADMIN_CREATED", user.ID, user.Email)
	return user, true, nil
}

// SeedAdmin creates the first admin from ADMIN_EMAIL / ADMIN_PASSWORD / ADMIN_NAME.
// It does nothing when the variables are unset or an admin already exists.
func SeedAdmin(db *gorm.DB, cfg *config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	var admins int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&admins).Error; err != nil {
		return err
	}
	if admins > 0 {
		logger.Log.Debug("[SEED] Admin already exists, skipping seed")
		return nil
	}

	user, _, err := EnsureAdmin(db, AdminSeed{Name: cfg.AdminName, Email: cfg.AdminEmail, Password: cfg.AdminPassword})
	if err != nil {
		return err
	}
	logger.Log.WithField("email", user.Email).Info("[SEED] Created admin user")
	return nil
}
