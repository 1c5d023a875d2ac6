package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Name     string `gorm:"not null" json:"name"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Role     string `gorm:"not null;default:user;index" json:"role"` // user, admin

	// Verification
	IsVerified              bool       `gorm:"not null;default:false" json:"isVerified"`
	VerificationToken       *string    `gorm:"index" json:"-"`
	VerificationTokenExpiry *time.Time `json:"-"`

	// Contact details
	Phone   string `json:"phone,omitempty"`
	Address string `gorm:"type:text" json:"address,omitempty"`

	// Identity photo uploaded by admin applicants
	IDPhotoURL string `json:"idPhotoUrl,omitempty"`
	IDPhotoKey string `json:"-"`

	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// BeforeCreate hook to generate UUID
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsValidRole checks if a role is valid
func IsValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}
