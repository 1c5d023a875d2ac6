package services

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/h2non/filetype"
)

const (
	MaxEvidenceSize      = 50 * 1024 * 1024 // 50MB
	MaxIdentityPhotoSize = 5 * 1024 * 1024  // 5MB

	// filetype reads zip entry names this far to tell OOXML documents from plain archives
	sniffLength = 8 * 1024

	zipMIME = "application/zip"
)

// EvidenceMimeTypes is the allow-list for evidence uploads
var EvidenceMimeTypes = map[string]bool{
	// Documents
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/vnd.ms-powerpoint":                                     true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
	"text/plain":      true,
	"text/csv":        true,
	"application/rtf": true,
	"text/rtf":        true,
	// Images
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
	"image/tiff": true,
	// Video
	"video/mp4":       true,
	"video/mpeg":      true,
	"video/quicktime": true,
	"video/webm":      true,
	"video/x-msvideo": true,
	"video/avi":       true,
	// Audio
	"audio/mpeg":  true,
	"audio/wav":   true,
	"audio/x-wav": true,
	"audio/ogg":   true,
	"audio/mp4":   true,
	"audio/x-m4a": true,
	"audio/m4a":   true,
	"audio/aac":   true,
	"audio/webm":  true,
}

// officeOpenXMLTypes are zip containers that may still sniff as plain zip
// when their identifying entry sits past the sniffed window
var officeOpenXMLTypes = map[string]bool{
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
}

// IdentityPhotoMimeTypes is the allow-list for admin applicant photos
var IdentityPhotoMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Upload is a file received from a client
type Upload struct {
	FileName     string
	Size         int64
	DeclaredType string // Content-Type of the multipart part
	Content      io.Reader
}

// CheckedUpload is an upload whose type and size passed validation.
// Content replays the sniffed bytes followed by the rest of the stream.
type CheckedUpload struct {
	FileName    string
	Size        int64
	ContentType string
	Content     io.Reader
}

// CheckUpload sniffs the content type from magic bytes, falling back to the declared type,
// and enforces the size limit and MIME allow-list.
func CheckUpload(u Upload, allowed map[string]bool, maxSize int64) (*CheckedUpload, error) {
	if u.Content == nil || u.Size == 0 {
		return nil, Invalid("file is required")
	}
	if u.Size > maxSize {
		return nil, Invalid("file exceeds the maximum size of %dMB", maxSize/(1024*1024))
	}

	head := make([]byte, sniffLength)
	n, err := io.ReadFull(u.Content, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]

	contentType := DetectContentType(head, u.DeclaredType)
	if !allowed[contentType] {
		if contentType == "" {
			return nil, Invalid("file type could not be determined")
		}
		return nil, Invalid("file type %s is not allowed", contentType)
	}

	return &CheckedUpload{
		FileName:    SafeFileName(u.FileName),
		Size:        u.Size,
		ContentType: contentType,
		Content:     io.MultiReader(bytes.NewReader(head), u.Content),
	}, nil
}

// DetectContentType prefers the magic-byte match and uses the declared type otherwise.
// A zip match defers to a declared Office Open XML type.
func DetectContentType(head []byte, declared string) string {
	declaredType := parseMediaType(declared)
	if kind, err := filetype.Match(head); err == nil && kind != filetype.Unknown {
		if kind.MIME.Value == zipMIME && officeOpenXMLTypes[declaredType] {
			return declaredType
		}
		return kind.MIME.Value
	}
	return declaredType
}

func parseMediaType(declared string) string {
	if declared == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return ""
	}
	return strings.ToLower(mediaType)
}
