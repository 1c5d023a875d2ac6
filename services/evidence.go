package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"court_filing_app_go/logger"
	"court_filing_app_go/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// EvidenceInput is the metadata sent with an evidence file
type EvidenceInput struct {
	CaseID      string   `json:"caseId" validate:"required"`
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=5000"`
	Tags        []string `json:"tags" validate:"max=20,dive,max=50"`
}

// CreateEvidence stores the file and records it against the case.
// Non-admins may only add evidence to their own paid cases.
func CreateEvidence(ctx context.Context, db *gorm.DB, caller *models.User, in EvidenceInput, upload Upload) (*models.Evidence, error) {
	if in.Title = CleanText(in.Title); in.Title == "" {
		in.Title = CleanText(upload.FileName)
	}
	in.Tags = CleanList(in.Tags)
	if err := ValidateStruct(&in); err != nil {
		return nil, err
	}

	c, err := LoadCase(db, caller, in.CaseID, RuleOwnerOrAdmin)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && !c.IsPaid() {
		return nil, fmt.Errorf("the filing fee must be paid before evidence can be added: %w", ErrForbidden)
	}

	checked, err := CheckUpload(upload, EvidenceMimeTypes, MaxEvidenceSize)
	if err != nil {
		return nil, err
	}

	key := GenerateEvidenceKey(c.ID, checked.FileName, time.Now())
	stored, err := Storage.UploadReader(ctx, checked.Content, key, checked.ContentType, checked.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to store evidence file: %w", err)
	}

	e := &models.Evidence{
		ID:             uuid.New().String(),
		CaseID:         c.ID,
		UploadedBy:     caller.ID,
		Title:          in.Title,
		Description:    CleanText(in.Description),
		FileURL:        stored.URL,
		StorageKey:     stored.Key,
		FileName:       checked.FileName,
		FileType:       checked.ContentType,
		FileSize:       stored.FileSize,
		ApprovalStatus: models.ApprovalPending,
		IsApproved:     false,
		Tags:           in.Tags,
	}
	if e.FileURL == "" {
		// private bucket
		e.FileURL = EvidenceDownloadPath(e.ID)
	}
	if err := db.Create(e).Error; err != nil {
		deleteStoredFile(ctx, stored.Key)
		return nil, fmt.Errorf("failed to save evidence: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"evidence_id": e.ID,
		"case_id":     c.ID,
		"size":        e.FileSize,
		"type":        e.FileType,
	}).Info("Evidence uploaded")
	return e, nil
}

// EvidenceDownloadPath is the API route that streams an evidence file
func EvidenceDownloadPath(id string) string {
	return "/api/evidence/" + id + "/file"
}

// EvidenceFilter holds the list query parameters
type EvidenceFilter struct {
	CaseID         string
	ApprovalStatus string
	Page           Page
}

// ListEvidence returns evidence the caller uploaded or that belongs to their cases (admins: all)
func ListEvidence(db *gorm.DB, caller *models.User, f EvidenceFilter) ([]models.Evidence, Pagination, error) {
	query := db.Model(&models.Evidence{})
	if !caller.IsAdmin() {
		query = query.Where("uploaded_by = ? OR case_id IN (?)",
			caller.ID, db.Model(&models.Case{}).Select("id").Where("filed_by = ?", caller.ID))
	}
	if f.CaseID != "" {
		query = query.Where("case_id = ?", f.CaseID)
	}
	if f.ApprovalStatus != "" {
		query = query.Where("approval_status = ?", f.ApprovalStatus)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to count evidence: %w", err)
	}

	var items []models.Evidence
	if err := query.
		Preload("UploadedByUser").
		Order("created_at DESC").
		Limit(f.Page.Limit).
		Offset(f.Page.Offset()).
		Find(&items).Error; err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to fetch evidence: %w", err)
	}
	return items, f.Page.Meta(total), nil
}

// GetEvidence loads one item for an admin, its uploader or the case owner
func GetEvidence(db *gorm.DB, caller *models.User, id string) (*models.Evidence, error) {
	var e models.Evidence
	if err := db.Preload("Case").Preload("UploadedByUser").First(&e, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "evidence")
	}
	if caller != nil && e.Case != nil && caller.ID == e.Case.FiledBy {
		return &e, nil
	}
	if err := Authorize(caller, e.UploadedBy, RuleOwnerOrAdmin); err != nil {
		return nil, err
	}
	return &e, nil
}

// EvidenceUpdate is the admin review payload
type EvidenceUpdate struct {
	IsApproved *bool     `json:"isApproved"`
	Notes      *string   `json:"notes"`
	Tags       *[]string `json:"tags"`
}

// EvidenceUpdateResult reports whether the approval decision changed
type EvidenceUpdateResult struct {
	Evidence        *models.Evidence
	DecisionChanged bool
}

// UpdateEvidence applies an admin review. Setting isApproved stamps the reviewer and time.
func UpdateEvidence(db *gorm.DB, caller *models.User, id string, in EvidenceUpdate) (*EvidenceUpdateResult, error) {
	if err := Authorize(caller, "", RuleAdminOnly); err != nil {
		return nil, err
	}
	var e models.Evidence
	if err := db.Preload("Case").Preload("UploadedByUser").First(&e, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "evidence")
	}
	previous := e.ApprovalStatus

	if in.Notes != nil {
		e.Notes = CleanText(*in.Notes)
	}
	if in.Tags != nil {
		e.Tags = CleanList(*in.Tags)
	}
	if in.IsApproved != nil {
		next := models.ApprovalRejected
		if *in.IsApproved {
			next = models.ApprovalApproved
		}
		if err := models.EvidenceTransitions.Check(e.ApprovalStatus, next); err != nil {
			return nil, &ValidationError{Message: err.Error()}
		}
		now := time.Now()
		e.ApprovalStatus = next
		e.IsApproved = *in.IsApproved
		e.ApprovedBy = &caller.ID
		e.ApprovedAt = &now
	}

	if err := db.Omit("Case", "UploadedByUser").Save(&e).Error; err != nil {
		return nil, fmt.Errorf("failed to update evidence: %w", err)
	}
	return &EvidenceUpdateResult{Evidence: &e, DecisionChanged: previous != e.ApprovalStatus}, nil
}

// DeleteEvidence removes the record and its stored file.
// Admins may always delete; uploaders only while the item awaits review.
func DeleteEvidence(ctx context.Context, db *gorm.DB, caller *models.User, id string) error {
	var e models.Evidence
	if err := db.First(&e, "id = ?", id).Error; err != nil {
		return notFoundOr(err, "evidence")
	}
	if err := Authorize(caller, e.UploadedBy, RuleOwnerOrAdmin); err != nil {
		return err
	}
	if !caller.IsAdmin() && !e.IsPendingReview() {
		return fmt.Errorf("reviewed evidence can only be removed by an administrator: %w", ErrForbidden)
	}

	if err := db.Delete(&e).Error; err != nil {
		return fmt.Errorf("failed to delete evidence: %w", err)
	}
	deleteStoredFile(ctx, e.StorageKey)
	return nil
}

// OpenEvidenceFile streams the stored file for anyone allowed to read the record
func OpenEvidenceFile(ctx context.Context, db *gorm.DB, caller *models.User, id string) (io.ReadCloser, *models.Evidence, error) {
	e, err := GetEvidence(db, caller, id)
	if err != nil {
		return nil, nil, err
	}
	reader, _, err := Storage.Get(ctx, e.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open evidence file: %w", err)
	}
	return reader, e, nil
}
