package handlers

import (
	"net/http"
	"testing"

	"court_filing_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadEvidence(t *testing.T, user *models.User, caseID string) (int, models.Evidence) {
	c, rec := multipartContext(t, "/api/evidence", user, map[string]string{
		"caseId":      caseID,
		"title":       "Lease agreement",
		"description": "Signed copy",
		"tags":        "lease, contract",
	}, "file", "lease.pdf", "application/pdf", pdfBytes)
	require.NoError(t, CreateEvidenceHandler(c))
	var e models.Evidence
	if rec.Code == http.StatusCreated {
		decode(t, rec, &e)
	}
	return rec.Code, e
}

func TestCreateEvidenceHandler(t *testing.T) {
	env := setupTestDB(t)
	admin := createUser(t, env.db, "admin@example.com", models.RoleAdmin)
	owner := createUser(t, env.db, "owner@example.com", models.RoleUser)
	stranger := createUser(t, env.db, "stranger@example.com", models.RoleUser)

	unpaid := createCase(t, env.db, owner, models.CaseStatusPending, models.PaymentStatusUnpaid)
	paid := createCase(t, env.db, owner, models.CaseStatusApproved, models.PaymentStatusPaid)

	t.Run("UnpaidCaseForbidden", func(t *testing.T) {
		code, _ := uploadEvidence(t, owner, unpaid.ID)
		assert.Equal(t, http.StatusForbidden, code)
	})

	t.Run("AdminBypassesPayment", func(t *testing.T) {
		code, _ := uploadEvidence(t, admin, unpaid.ID)
		assert.Equal(t, http.StatusCreated, code)
	})

	t.Run("StrangerForbidden", func(t *testing.T) {
		code, _ := uploadEvidence(t, stranger, paid.ID)
		assert.Equal(t, http.StatusForbidden, code)
	})

	t.Run("PaidCase", func(t *testing.T) {
		code, e := uploadEvidence(t, owner, paid.ID)
		require.Equal(t, http.StatusCreated, code)
		assert.Equal(t, models.ApprovalPending, e.ApprovalStatus)
		assert.False(t, e.IsApproved)
		assert.Equal(t, "application/pdf", e.FileType)
		assert.Equal(t, int64(len(pdfBytes)), e.FileSize)
		assert.Equal(t, []string{"lease", "contract"}, []string(e.Tags))
	})

	t.Run("MissingFile", func(t *testing.T) {
		c, rec := multipartContext(t, "/api/evidence", owner, map[string]string{"caseId": paid.ID, "title": "Nothing"}, "", "", "", nil)
		require.NoError(t, CreateEvidenceHandler(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("DisallowedType", func(t *testing.T) {
		c, rec := multipartContext(t, "/api/evidence", owner, map[string]string{"caseId": paid.ID, "title": "Script"},
			"file", "run.sh", "application/x-sh", []byte("#!/bin/sh\nrm -rf /\n"))
		require.NoError(t, CreateEvidenceHandler(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUpdateEvidenceHandler(t *testing.T) {
	env := setupTestDB(t)
	admin := createUser(t, env.db, "admin@example.com", models.RoleAdmin)
	owner := createUser(t, env.db, "owner@example.com", models.RoleUser)
	paid := createCase(t, env.db, owner, models.CaseStatusApproved, models.PaymentStatusPaid)
	code, e := uploadEvidence(t, owner, paid.ID)
	require.Equal(t, http.StatusCreated, code)

	review := func(user *models.User, payload map[string]interface{}) (int, models.Evidence) {
		c, rec := jsonContext(http.MethodPatch, "/api/evidence/"+e.ID, user, payload)
		c.SetParamNames("id")
		c.SetParamValues(e.ID)
		require.NoError(t, UpdateEvidenceHandler(c))
		var out models.Evidence
		if rec.Code == http.StatusOK {
			decode(t, rec, &out)
		}
		return rec.Code, out
	}

	code, _ = review(owner, map[string]interface{}{"isApproved": true})
	assert.Equal(t, http.StatusForbidden, code)

	code, out := review(admin, map[string]interface{}{"isApproved": false, "notes": "Illegible scan"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, models.ApprovalRejected, out.ApprovalStatus)
	require.NotNil(t, out.ApprovedBy)
	assert.Equal(t, admin.ID, *out.ApprovedBy)

	decisions := env.mail.byTemplate("evidence_decision")
	require.Len(t, decisions, 1)
	assert.Equal(t, []string{owner.Email}, decisions[0].To)

	// notes alone do not notify
	code, _ = review(admin, map[string]interface{}{"notes": "Resubmit as PDF"})
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, env.mail.byTemplate("evidence_decision"), 1)
}

func TestDownloadEvidenceHandler(t *testing.T) {
	env := setupTestDB(t)
	owner := createUser(t, env.db, "owner@example.com", models.RoleUser)
	stranger := createUser(t, env.db, "stranger@example.com", models.RoleUser)
	paid := createCase(t, env.db, owner, models.CaseStatusApproved, models.PaymentStatusPaid)
	code, e := uploadEvidence(t, owner, paid.ID)
	require.Equal(t, http.StatusCreated, code)

	c, rec := jsonContext(http.MethodGet, "/api/evidence/"+e.ID+"/file", owner, nil)
	c.SetParamNames("id")
	c.SetParamValues(e.ID)
	require.NoError(t, DownloadEvidenceHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, pdfBytes, rec.Body.Bytes())

	c, rec = jsonContext(http.MethodGet, "/api/evidence/"+e.ID+"/file", stranger, nil)
	c.SetParamNames("id")
	c.SetParamValues(e.ID)
	require.NoError(t, DownloadEvidenceHandler(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteEvidenceHandler(t *testing.T) {
	env := setupTestDB(t)
	owner := createUser(t, env.db, "owner@example.com", models.RoleUser)
	paid := createCase(t, env.db, owner, models.CaseStatusApproved, models.PaymentStatusPaid)
	code, e := uploadEvidence(t, owner, paid.ID)
	require.Equal(t, http.StatusCreated, code)

	c, rec := jsonContext(http.MethodDelete, "/api/evidence/"+e.ID, owner, nil)
	c.SetParamNames("id")
	c.SetParamValues(e.ID)
	require.NoError(t, DeleteEvidenceHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var remaining int64
	env.db.Model(&models.Evidence{}).Count(&remaining)
	assert.Zero(t, remaining)
}
