package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"court_filing_app_go/logger"
	"court_filing_app_go/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10
	// VerificationTokenLength is the length of the email verification token in bytes (64 chars hex)
	VerificationTokenLength = 32
	// DefaultSessionDuration is the default session duration (7 days)
	DefaultSessionDuration = 7 * 24 * time.Hour
	// VerificationTokenDuration is how long an email verification link stays valid
	VerificationTokenDuration = 24 * time.Hour
)

// SessionClaims is the payload of the signed session token
type SessionClaims struct {
	Sub  string `json:"sub"`  // user ID
	Role string `json:"role"` // user, admin
	jwt.RegisteredClaims
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// VerifyPassword verifies a password against a bcrypt hash
func VerifyPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// IssueSessionToken signs a session token for the user
func IssueSessionToken(secret string, user *models.User, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("session secret not configured")
	}
	now := time.Now()
	claims := &SessionClaims{
		Sub:  user.ID,
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// ParseSessionToken validates signature and expiry and returns the claims
func ParseSessionToken(secret, tokenStr string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid session token: %w", ErrUnauthorized)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || claims.Sub == "" {
		return nil, fmt.Errorf("invalid session claims: %w", ErrUnauthorized)
	}
	return claims, nil
}

// GenerateVerificationToken generates a cryptographically secure random token
func GenerateVerificationToken() (string, error) {
	bytes := make([]byte, VerificationTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate verification token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// RegisterInput is the self-service registration payload
type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Phone    string `json:"phone" validate:"max=30"`
	Address  string `json:"address" validate:"max=500"`
}

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterUser creates a verified user account. A verification token is still issued so
// the verify-email link in the welcome mail keeps working.
func RegisterUser(db *gorm.DB, in RegisterInput) (*models.User, error) {
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

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	token, err := GenerateVerificationToken()
	if err != nil {
		return nil, err
	}
	expiry := time.Now().Add(VerificationTokenDuration)

	user := &models.User{
		Name:                    in.Name,
		Email:                   in.Email,
		Password:                hash,
		Role:                    models.RoleUser,
		IsVerified:              true,
		VerificationToken:       &token,
		VerificationTokenExpiry: &expiry,
		Phone:                   CleanText(in.Phone),
		Address:                 CleanText(in.Address),
	}
	if err := db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.Log.WithField("user_id", user.ID).Info("User registered")
	return user, nil
}

func ensureEmailFree(db *gorm.DB, email string) error {
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("email already registered: %w", ErrConflict)
	}
	return nil
}

// Authenticate checks credentials and stamps the last login time
func Authenticate(db *gorm.DB, email, password string) (*models.User, error) {
	var user models.User
	if err := db.Where("email = ?", NormalizeEmail(email)).First(&user).Error; err != nil {
		// Timing attack mitigation
		VerifyPassword(dummyHash, password)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Security("LOGIN_UNKNOWN_EMAIL", "", email)
			return nil, fmt.Errorf("invalid email or password: %w", ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !VerifyPassword(user.Password, password) {
		logger.Security("LOGIN_FAILED", user.ID, "wrong password")
		return nil, fmt.Errorf("invalid email or password: %w", ErrUnauthorized)
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := db.Model(&user).Update("last_login_at", now).Error; err != nil {
		logger.Log.WithError(err).Warn("Failed to stamp last login")
	}
	return &user, nil
}

var dummyHash = func() string {
	hash, _ := HashPassword("dummy_password_for_timing_mitigation")
	return hash
}()

// VerifyEmail consumes a verification token and marks the account verified
func VerifyEmail(db *gorm.DB, token string) (*models.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, Invalid("verification token is required")
	}

	var user models.User
	if err := db.Where("verification_token = ?", token).First(&user).Error; err != nil {
		return nil, notFoundOr(err, "verification token")
	}
	if user.IsAdmin() && !user.IsVerified {
		return nil, fmt.Errorf("admin applications are reviewed by an administrator: %w", ErrForbidden)
	}
	if user.VerificationTokenExpiry != nil && time.Now().After(*user.VerificationTokenExpiry) {
		return nil, Invalid("verification token has expired")
	}

	if err := db.Model(&user).Updates(map[string]interface{}{
		"is_verified":               true,
		"verification_token":        nil,
		"verification_token_expiry": nil,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to verify user: %w", err)
	}
	user.IsVerified = true
	user.VerificationToken = nil
	user.VerificationTokenExpiry = nil
	return &user, nil
}

// RefreshVerificationToken issues a new token for an unverified account
func RefreshVerificationToken(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	if err := db.Where("email = ?", NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, notFoundOr(err, "user")
	}
	if user.IsVerified {
		return nil, fmt.Errorf("account already verified: %w", ErrConflict)
	}
	if user.IsAdmin() {
		return nil, fmt.Errorf("admin applications are reviewed by an administrator: %w", ErrForbidden)
	}

	token, err := GenerateVerificationToken()
	if err != nil {
		return nil, err
	}
	expiry := time.Now().Add(VerificationTokenDuration)
	if err := db.Model(&user).Updates(map[string]interface{}{
		"verification_token":        token,
		"verification_token_expiry": expiry,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to store verification token: %w", err)
	}
	user.VerificationToken = &token
	user.VerificationTokenExpiry = &expiry
	return &user, nil
}
