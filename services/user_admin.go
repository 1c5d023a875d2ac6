package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"court_filing_app_go/logger"
	"court_filing_app_go/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RequestAdminAccess records an admin application. The applicant is created with role admin
// but stays unverified until an existing admin activates the account.
func RequestAdminAccess(ctx context.Context, db *gorm.DB, in RegisterInput, photo Upload) (*models.User, error) {
	in.Email = NormalizeEmail(in.Email)
	in.Name = CleanText(in.Name)
	if err := ValidateStruct(&in); err != nil {
		return nil, err
	}
	if err := ValidatePassword("password", in.Password); err != nil {
		return nil, err
	}
	if err := ensureEmailFree(db, in.Email); err != nil {
		return nil, err
	}

	checked, err := CheckUpload(photo, IdentityPhotoMimeTypes, MaxIdentityPhotoSize)
	if err != nil {
		return nil, err
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	key := GenerateIdentityPhotoKey(in.Email, checked.FileName, time.Now())
	stored, err := Storage.UploadReader(ctx, checked.Content, key, checked.ContentType, checked.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to store identity photo: %w", err)
	}

	user := &models.User{
		Name:       in.Name,
		Email:      in.Email,
		Password:   hash,
		Role:       models.RoleAdmin,
		IsVerified: false,
		Phone:      CleanText(in.Phone),
		Address:    CleanText(in.Address),
		IDPhotoURL: stored.URL,
		IDPhotoKey: stored.Key,
	}
	if err := db.Create(user).Error; err != nil {
		deleteStoredFile(ctx, stored.Key)
		return nil, fmt.Errorf("failed to create admin applicant: %w", err)
	}

	logger.Security("ADMIN_ACCESS_REQUESTED", user.ID, user.Email)
	return user, nil
}

// UserFilter holds the admin user list parameters
type UserFilter struct {
	Role     string
	Verified *bool
	Search   string
	Page     Page
}

// ListUsers returns one page of users. Admin only.
func ListUsers(db *gorm.DB, caller *models.User, f UserFilter) ([]models.User, Pagination, error) {
	if err := Authorize(caller, "", RuleAdminOnly); err != nil {
		return nil, Pagination{}, err
	}
	query := db.Model(&models.User{})
	if f.Role != "" {
		query = query.Where("role = ?", f.Role)
	}
	if f.Verified != nil {
		query = query.Where("is_verified = ?", *f.Verified)
	}
	if strings.TrimSpace(f.Search) != "" {
		pattern := likePattern(f.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to count users: %w", err)
	}
	var users []models.User
	if err := query.Order("created_at DESC").Limit(f.Page.Limit).Offset(f.Page.Offset()).Find(&users).Error; err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to fetch users: %w", err)
	}
	return users, f.Page.Meta(total), nil
}

// GetUser loads any user. Admin only.
func GetUser(db *gorm.DB, caller *models.User, id string) (*models.User, error) {
	if err := Authorize(caller, "", RuleAdminOnly); err != nil {
		return nil, err
	}
	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "user")
	}
	return &user, nil
}

// AdminUserUpdate is what an admin may change on an account
type AdminUserUpdate struct {
	Name       *string `json:"name"`
	Phone      *string `json:"phone"`
	Address    *string `json:"address"`
	Role       *string `json:"role"`
	IsVerified *bool   `json:"isVerified"`
}

// AdminUserUpdateResult reports whether the account was activated by this update
type AdminUserUpdateResult struct {
	User      *models.User
	Activated bool
}

// UpdateUser applies an admin edit. Admins cannot demote themselves.
func UpdateUser(db *gorm.DB, caller *models.User, id string, in AdminUserUpdate) (*AdminUserUpdateResult, error) {
	user, err := GetUser(db, caller, id)
	if err != nil {
		return nil, err
	}
	wasVerified := user.IsVerified

	if in.Name != nil {
		name := CleanText(*in.Name)
		if name == "" {
			return nil, Invalid("name cannot be empty")
		}
		user.Name = name
	}
	if in.Phone != nil {
		user.Phone = CleanText(*in.Phone)
	}
	if in.Address != nil {
		user.Address = CleanText(*in.Address)
	}
	if in.Role != nil && *in.Role != user.Role {
		if !models.IsValidRole(*in.Role) {
			return nil, Invalid("unknown role %q", *in.Role)
		}
		if user.ID == caller.ID {
			return nil, fmt.Errorf("admins cannot change their own role: %w", ErrForbidden)
		}
		user.Role = *in.Role
	}
	if in.IsVerified != nil {
		user.IsVerified = *in.IsVerified
		if user.IsVerified {
			user.VerificationToken = nil
			user.VerificationTokenExpiry = nil
		}
	}

	if err := db.Save(user).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	result := &AdminUserUpdateResult{User: user, Activated: !wasVerified && user.IsVerified}
	logger.Log.WithFields(logrus.Fields{
		"user_id":   user.ID,
		"by":        caller.ID,
		"role":      user.Role,
		"activated": result.Activated,
	}).Info("User updated by admin")
	return result, nil
}

// DeleteUser removes an account and its identity photo. Admins cannot delete themselves.
func DeleteUser(ctx context.Context, db *gorm.DB, caller *models.User, id string) error {
	user, err := GetUser(db, caller, id)
	if err != nil {
		return err
	}
	if user.ID == caller.ID {
		return fmt.Errorf("you cannot delete your own account: %w", ErrForbidden)
	}

	if err := db.Delete(user).Error; err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	deleteStoredFile(ctx, user.IDPhotoKey)

	logger.Security("USER_DELETED", caller.ID, user.ID)
	return nil
}

// ProfileUpdate is the self-service profile payload
type ProfileUpdate struct {
	Name            *string `json:"name"`
	Phone           *string `json:"phone"`
	Address         *string `json:"address"`
	CurrentPassword string  `json:"currentPassword"`
	NewPassword     string  `json:"newPassword"`
}

// UpdateProfile lets users edit their own contact details and password
func UpdateProfile(db *gorm.DB, user *models.User, in ProfileUpdate) (*models.User, error) {
	if user == nil {
		return nil, ErrUnauthorized
	}
	if in.Name != nil {
		name := CleanText(*in.Name)
		if name == "" {
			return nil, Invalid("name cannot be empty")
		}
		user.Name = name
	}
	if in.Phone != nil {
		user.Phone = CleanText(*in.Phone)
	}
	if in.Address != nil {
		user.Address = CleanText(*in.Address)
	}
	if in.NewPassword != "" {
		if !VerifyPassword(user.Password, in.CurrentPassword) {
			logger.Security("PASSWORD_CHANGE_FAILED", user.ID, "wrong current password")
			return nil, &ValidationError{
				Message: "current password is incorrect",
				Fields:  map[string][]string{"currentPassword": {"current password is incorrect"}},
			}
		}
		if err := ValidatePassword("newPassword", in.NewPassword); err != nil {
			return nil, err
		}
		hash, err := HashPassword(in.NewPassword)
		if err != nil {
			return nil, err
		}
		user.Password = hash
	}

	if err := db.Model(user).Select("name", "phone", "address", "password").Updates(user).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}
