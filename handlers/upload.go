package handlers

import (
	"errors"
	"io"
	"net/http"

	"court_filing_app_go/services"

	"github.com/labstack/echo/v4"
)

// formUpload opens a multipart file field. The caller must close the returned closer.
func formUpload(c echo.Context, field string) (services.Upload, io.Closer, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return services.Upload{}, nil, &services.ValidationError{
				Message: "a file is required",
				Fields:  map[string][]string{field: {"This field is required"}},
			}
		}
		return services.Upload{}, nil, services.Invalid("invalid multipart form")
	}

	src, err := fh.Open()
	if err != nil {
		return services.Upload{}, nil, err
	}

	return services.Upload{
		FileName:     fh.Filename,
		Size:         fh.Size,
		DeclaredType: fh.Header.Get(echo.HeaderContentType),
		Content:      src,
	}, src, nil
}
