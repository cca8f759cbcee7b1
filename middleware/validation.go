package middleware

import (
	"net/http"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
)

const (
	DefaultMaxTextBytes = 1000000
	MaxFilenameLength   = 255
)

type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidateText checks a pasted-text submission before it is parsed.
func ValidateText(text string, maxBytes int) []ValidationError {
	var errors []ValidationError

	switch {
	case strings.TrimSpace(text) == "":
		errors = append(errors, ValidationError{
			Field:  "text",
			Reason: "Text is required and cannot be empty",
		})
	case len(text) > maxBytes:
		errors = append(errors, ValidationError{
			Field:  "text",
			Reason: "Text exceeds maximum size",
		})
	case strings.ContainsRune(text, 0):
		errors = append(errors, ValidationError{
			Field:  "text",
			Reason: "Text contains invalid null bytes",
		})
	}

	return errors
}

// ValidateUpload checks the metadata of an uploaded file.
func ValidateUpload(filename string, size, maxBytes int64) []ValidationError {
	var errors []ValidationError

	if filename == "" {
		errors = append(errors, ValidationError{
			Field:  "file",
			Reason: "File name is required",
		})
	} else if len(filename) > MaxFilenameLength {
		errors = append(errors, ValidationError{
			Field:  "file",
			Reason: "File name exceeds maximum length",
		})
	}

	if strings.Contains(filename, "..") || strings.ContainsAny(filename, `/\`) || filepath.IsAbs(filename) {
		errors = append(errors, ValidationError{
			Field:  "file",
			Reason: "File name contains path components",
		})
	}

	if size > maxBytes {
		errors = append(errors, ValidationError{
			Field:  "file",
			Reason: "File exceeds maximum upload size",
		})
	}

	return errors
}

// SanitizeInput drops control characters other than newline, carriage return and tab.
func SanitizeInput(input string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, input)
}

// BodyLimit caps the number of bytes a handler may read from the request body.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
