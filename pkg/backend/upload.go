package backend

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

const (
	// DefaultMaxUploadSize caps admin uploads before they reach the backend.
	DefaultMaxUploadSize int64 = 20 << 20

	MIMEOctetStream    = "application/octet-stream"
	mimeDetectionBytes = 512
)

// Upload validation error codes.
const (
	CodeEmptyFile    = "empty_file"
	CodeFileTooLarge = "file_too_large"
	CodeInvalidMIME  = "invalid_mime"
)

// AllowedUploadTypes are the detected MIME patterns accepted for materials.
// Office documents are zip containers and detect as application/zip.
var AllowedUploadTypes = []string{
	"application/pdf",
	"application/zip",
	"text/plain",
	"image/*",
}

// ValidationError describes a rejected upload.
type ValidationError struct {
	err     error
	Code    string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return e.err }

// OpenUpload validates a file from an admin form and turns it into an Upload.
// The caller must call the returned close func once the upload is sent.
func OpenUpload(fh *multipart.FileHeader, in DocumentInput, maxSize int64) (Upload, func() error, error) {
	if fh == nil || fh.Size == 0 {
		return Upload{}, nil, &ValidationError{err: ErrEmptyFile, Code: CodeEmptyFile, Message: "file is empty"}
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	if fh.Size > maxSize {
		return Upload{}, nil, &ValidationError{
			err:     ErrFileTooLarge,
			Code:    CodeFileTooLarge,
			Message: fmt.Sprintf("file size %d exceeds limit of %d bytes", fh.Size, maxSize),
		}
	}

	f, err := fh.Open()
	if err != nil {
		return Upload{}, nil, fmt.Errorf("backend: open upload: %w", err)
	}

	detected := detectMIME(f)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = f.Close()
		return Upload{}, nil, fmt.Errorf("backend: rewind upload: %w", err)
	}

	if !matchesMIME(detected, AllowedUploadTypes) {
		_ = f.Close()
		return Upload{}, nil, &ValidationError{
			err:     ErrInvalidMIME,
			Code:    CodeInvalidMIME,
			Message: fmt.Sprintf("file type %s is not allowed", normalizeMIME(detected)),
		}
	}

	// Prefer the browser's declared type for zip containers (docx, pptx).
	contentType := detected
	if declared := fh.Header.Get("Content-Type"); declared != "" && normalizeMIME(detected) == "application/zip" {
		contentType = declared
	}

	return Upload{
		DocumentInput: in,
		Body:          f,
		FileName:      fh.Filename,
		ContentType:   contentType,
	}, f.Close, nil
}

func detectMIME(r io.Reader) string {
	buf := make([]byte, mimeDetectionBytes)
	n, err := io.ReadFull(r, buf)
	if n == 0 && err != nil {
		return MIMEOctetStream
	}
	return http.DetectContentType(buf[:n])
}

func normalizeMIME(mimeType string) string {
	mimeType, _, _ = strings.Cut(mimeType, ";")
	return strings.TrimSpace(strings.ToLower(mimeType))
}

// matchesMIME reports whether mimeType matches one of the patterns.
// Patterns may end in "/*".
func matchesMIME(mimeType string, allowed []string) bool {
	mimeType = normalizeMIME(mimeType)
	for _, pattern := range allowed {
		pattern = strings.TrimSpace(strings.ToLower(pattern))
		if mimeType == pattern {
			return true
		}
		if prefix, ok := strings.CutSuffix(pattern, "*"); ok && strings.HasSuffix(prefix, "/") && strings.HasPrefix(mimeType, prefix) {
			return true
		}
	}
	return false
}
