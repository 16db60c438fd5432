package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/khabar-news/khabar/internal/models"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9 \-]{5,18}[0-9]$`)
)

// Field length limits, counted in characters
const (
	MaxNameLength        = 100
	MaxSubjectLength     = 200
	MaxMessageLength     = 5000
	MaxTitleLength       = 300
	MaxDescriptionLength = 10000
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// ValidateContact validates a contact form payload
func ValidateContact(req *models.ContactRequest) []ValidationError {
	var errors []ValidationError

	errors = appendRequired(errors, "name", req.Name, MaxNameLength)

	// Validate email
	email := strings.TrimSpace(req.Email)
	if email == "" {
		errors = append(errors, ValidationError{Field: "email", Message: "email is required"})
	} else if !emailRegex.MatchString(email) {
		errors = append(errors, ValidationError{Field: "email", Message: "invalid email format", Value: req.Email})
	}

	// Validate phone if present
	if phone := strings.TrimSpace(req.Phone); phone != "" && !phoneRegex.MatchString(phone) {
		errors = append(errors, ValidationError{Field: "phone", Message: "invalid phone number", Value: req.Phone})
	}

	errors = appendRequired(errors, "subject", req.Subject, MaxSubjectLength)
	errors = appendRequired(errors, "message", req.Message, MaxMessageLength)

	return errors
}

// ValidateSubmission validates a reader news submission
func ValidateSubmission(req *models.SubmissionRequest) []ValidationError {
	var errors []ValidationError

	errors = appendRequired(errors, "title", req.Title, MaxTitleLength)
	errors = appendRequired(errors, "description", req.Description, MaxDescriptionLength)
	errors = appendRequired(errors, "reporterName", req.ReporterName, MaxNameLength)
	errors = appendRequired(errors, "contact", req.Contact, MaxNameLength)

	// Validate driveLink if present
	if link := strings.TrimSpace(req.DriveLink); link != "" && !isHTTPURL(link) {
		errors = append(errors, ValidationError{Field: "driveLink", Message: "driveLink must be an http(s) URL", Value: req.DriveLink})
	}

	return errors
}

// IsEmail reports whether s, once trimmed, is a single well-formed address
func IsEmail(s string) bool {
	return emailRegex.MatchString(strings.TrimSpace(s))
}

// Fields lists the names of the failing fields
func Fields(errs []ValidationError) []string {
	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
	}
	return fields
}

func appendRequired(errors []ValidationError, field, value string, maxLen int) []ValidationError {
	value = strings.TrimSpace(value)
	if value == "" {
		return append(errors, ValidationError{Field: field, Message: field + " is required"})
	}
	if n := utf8.RuneCountInString(value); n > maxLen {
		return append(errors, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%s exceeds maximum of %d characters (has %d)", field, maxLen, n),
		})
	}
	return errors
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
