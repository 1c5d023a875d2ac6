package handlers

import (
	"io"
	"net/http"

	"court_filing_app_go/db"
	"court_filing_app_go/services"

	"github.com/labstack/echo/v4"
)

// CreateEvidenceHandler accepts a multipart evidence upload for a case
func CreateEvidenceHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}

	upload, closer, err := formUpload(c, "file")
	if err != nil {
		return respondError(c, err)
	}
	defer closer.Close()

	var tags []string
	if form, err := c.MultipartForm(); err == nil {
		tags = splitTags(form.Value["tags"])
	}

	evidence, err := services.CreateEvidence(c.Request().Context(), db.DB, user, services.EvidenceInput{
		CaseID:      c.FormValue("caseId"),
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Tags:        tags,
	}, upload)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, evidence)
}

// GetEvidenceListHandler returns a page of evidence visible to the caller
func GetEvidenceListHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}

	items, pagination, err := services.ListEvidence(db.DB, user, services.EvidenceFilter{
		CaseID:         c.QueryParam("caseId"),
		ApprovalStatus: c.QueryParam("approvalStatus"),
		Page:           pageFromQuery(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, listResponse{Data: items, Pagination: pagination})
}

// GetEvidenceHandler returns one evidence record
func GetEvidenceHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}
	evidence, err := services.GetEvidence(db.DB, user, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, evidence)
}

// DownloadEvidenceHandler streams the stored file
func DownloadEvidenceHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}

	reader, evidence, err := services.OpenEvidenceFile(c.Request().Context(), db.DB, user, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	defer reader.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, `inline; filename="`+evidence.FileName+`"`)
	c.Response().Header().Set(echo.HeaderContentType, evidence.FileType)
	c.Response().WriteHeader(http.StatusOK)
	_, err = io.Copy(c.Response(), reader)
	return err
}

// UpdateEvidenceHandler records an admin review. A changed decision is mailed to the uploader.
func UpdateEvidenceHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}

	var in services.EvidenceUpdate
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, err)
	}

	result, err := services.UpdateEvidence(db.DB, user, c.Param("id"), in)
	if err != nil {
		return respondError(c, err)
	}

	e := result.Evidence
	if result.DecisionChanged && e.UploadedByUser != nil && e.Case != nil {
		services.Notify.Dispatch(services.BuildEvidenceDecisionEmail(links(c), e.UploadedByUser, e.Case, e))
	}

	return c.JSON(http.StatusOK, e)
}

// DeleteEvidenceHandler removes an evidence record and its file
func DeleteEvidenceHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := services.DeleteEvidence(c.Request().Context(), db.DB, user, c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Evidence deleted"})
}
