package models

// Email provider identifiers as stored in the settings documents
const (
	EmailServiceSMTP     = "smtp"
	EmailServiceSendGrid = "sendgrid"
	EmailServiceResend   = "resend"
)

// DeliverySettings is the shared shape of the contact and submission settings documents.
// It is read from the CMS on every request.
type DeliverySettings struct {
	RecipientEmail string `json:"recipientEmail"`
	IsActive       bool   `json:"isActive"`
	EmailService   string `json:"emailService"`
	FromEmail      string `json:"fromEmail,omitempty"`
	FromName       string `json:"fromName,omitempty"`

	SMTPHost   string `json:"smtpHost,omitempty"`
	SMTPPort   int    `json:"smtpPort,omitempty"`
	SMTPUser   string `json:"smtpUser,omitempty"`
	SMTPPass   string `json:"smtpPass,omitempty"`
	SMTPSecure bool   `json:"smtpSecure,omitempty"`

	SendGridAPIKey string `json:"sendgridApiKey,omitempty"`
	ResendAPIKey   string `json:"resendApiKey,omitempty"`
}

// ContactRequest is the body of POST /api/contact
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// SubmissionRequest is the body of POST /api/submissions
type SubmissionRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ReporterName string `json:"reporterName"`
	Contact      string `json:"contact"`
	DriveLink    string `json:"driveLink,omitempty"`
	Location     string `json:"location,omitempty"`
}
