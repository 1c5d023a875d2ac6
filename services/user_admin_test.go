package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"court_filing_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestAdminAccess(t *testing.T) {
	db := setupTestDB(t)
	useLocalStorage(t)
	ctx := context.Background()

	photo := Upload{FileName: "my id.png", Size: int64(len(pngHeader)), DeclaredType: "image/png", Content: bytes.NewReader(pngHeader)}
	user, err := RequestAdminAccess(ctx, db, RegisterInput{
		Name: "Clerk Rao", Email: " Clerk@Court.test ", Password: "registry2026",
	}, photo)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.False(t, user.IsVerified)
	assert.Equal(t, "clerk@court.test", user.Email)
	assert.True(t, strings.HasPrefix(user.IDPhotoKey, "admin-verification/"))
	assert.Equal(t, "/uploads/"+user.IDPhotoKey, user.IDPhotoURL)

	t.Run("Applicant cannot sign in as a verified admin", func(t *testing.T) {
		assert.Empty(t, AdminEmails(db))
	})

	t.Run("Duplicate email", func(t *testing.T) {
		_, err := RequestAdminAccess(ctx, db, RegisterInput{Name: "Again", Email: "clerk@court.test", Password: "registry2026"},
			Upload{FileName: "id.png", Size: int64(len(pngHeader)), Content: bytes.NewReader(pngHeader)})
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("Photo must be an image", func(t *testing.T) {
		_, err := RequestAdminAccess(ctx, db, RegisterInput{Name: "Doc", Email: "doc@court.test", Password: "registry2026"},
			Upload{FileName: "id.pdf", Size: int64(len(pdfHeader)), Content: bytes.NewReader(pdfHeader)})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestAdminUserManagement(t *testing.T) {
	db := setupTestDB(t)
	useLocalStorage(t)
	admin := createUser(t, db, "um-admin@example.com", models.RoleAdmin)
	user := createUser(t, db, "um-user@example.com", models.RoleUser)
	applicant := createUser(t, db, "um-applicant@example.com", models.RoleAdmin)
	require.NoError(t, db.Model(applicant).Update("is_verified", false).Error)

	t.Run("List with filters", func(t *testing.T) {
		unverified := false
		users, meta, err := ListUsers(db, admin, UserFilter{Role: models.RoleAdmin, Verified: &unverified, Page: ParsePage("", "")})
		require.NoError(t, err)
		assert.Equal(t, int64(1), meta.Total)
		assert.Equal(t, applicant.ID, users[0].ID)

		_, meta, err = ListUsers(db, admin, UserFilter{Search: "UM-USER", Page: ParsePage("", "")})
		require.NoError(t, err)
		assert.Equal(t, int64(1), meta.Total)

		_, _, err = ListUsers(db, user, UserFilter{Page: ParsePage("", "")})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("Activate applicant", func(t *testing.T) {
		verified := true
		res, err := UpdateUser(db, admin, applicant.ID, AdminUserUpdate{IsVerified: &verified})
		require.NoError(t, err)
		assert.True(t, res.Activated)
		assert.True(t, res.User.IsVerified)
		assert.Contains(t, AdminEmails(db), applicant.Email)

		res, err = UpdateUser(db, admin, applicant.ID, AdminUserUpdate{IsVerified: &verified})
		require.NoError(t, err)
		assert.False(t, res.Activated)
	})

	t.Run("Role changes", func(t *testing.T) {
		role := models.RoleAdmin
		res, err := UpdateUser(db, admin, user.ID, AdminUserUpdate{Role: &role})
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, res.User.Role)

		demote := models.RoleUser
		_, err = UpdateUser(db, admin, admin.ID, AdminUserUpdate{Role: &demote})
		assert.ErrorIs(t, err, ErrForbidden)

		bogus := "judge"
		_, err = UpdateUser(db, admin, user.ID, AdminUserUpdate{Role: &bogus})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("Delete", func(t *testing.T) {
		ctx := context.Background()
		assert.ErrorIs(t, DeleteUser(ctx, db, admin, admin.ID), ErrForbidden)
		require.NoError(t, DeleteUser(ctx, db, admin, user.ID))
		_, err := GetUser(db, admin, user.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUpdateProfile(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "profile@example.com", models.RoleUser)

	name, phone := "Asha Rao", "+91 98450 00000"
	updated, err := UpdateProfile(db, user, ProfileUpdate{Name: &name, Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", updated.Name)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", user.ID).Error)
	assert.Equal(t, phone, reloaded.Phone)
	assert.Equal(t, models.RoleUser, reloaded.Role)

	_, err = UpdateProfile(db, user, ProfileUpdate{CurrentPassword: "wrong", NewPassword: "newpass2026"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = UpdateProfile(db, user, ProfileUpdate{CurrentPassword: "filing2026", NewPassword: "short"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = UpdateProfile(db, user, ProfileUpdate{CurrentPassword: "filing2026", NewPassword: "newpass2026"})
	require.NoError(t, err)
	_, err = Authenticate(db, "profile@example.com", "newpass2026")
	assert.NoError(t, err)
}
