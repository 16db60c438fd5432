package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/khabar-news/khabar/internal/models"
)

// Body is a rendered email ready to be wrapped in a Message
type Body struct {
	Subject string
	HTML    string
	Text    string
}

type field struct {
	Label string
	Value string
	Link  bool
}

type bodyData struct {
	Site     string
	Heading  string
	Fields   []field
	Received string
}

var bodyTemplate = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html lang="hi">
<head><meta charset="utf-8"><title>{{.Heading}}</title></head>
<body style="font-family: 'Noto Sans Devanagari', Arial, sans-serif; color: #222;">
  <h2 style="color: #b91c1c;">{{.Heading}}</h2>
  <table cellpadding="6" style="border-collapse: collapse;">
    {{- range .Fields}}
    <tr>
      <td style="font-weight: bold; vertical-align: top;">{{.Label}}</td>
      <td style="white-space: pre-wrap;">{{if .Link}}<a href="{{.Value}}">{{.Value}}</a>{{else}}{{.Value}}{{end}}</td>
    </tr>
    {{- end}}
  </table>
  <p style="color: #666; font-size: 12px;">{{.Site}} · {{.Received}}</p>
</body>
</html>`))

// ContactBody formats a contact form message
func ContactBody(req models.ContactRequest, site string, now time.Time) (Body, error) {
	fields := []field{
		{Label: "नाम / Name", Value: req.Name},
		{Label: "ईमेल / Email", Value: req.Email},
	}
	if req.Phone != "" {
		fields = append(fields, field{Label: "फ़ोन / Phone", Value: req.Phone})
	}
	fields = append(fields,
		field{Label: "विषय / Subject", Value: req.Subject},
		field{Label: "संदेश / Message", Value: req.Message},
	)

	return render(fmt.Sprintf("नया संपर्क संदेश: %s", req.Subject), "संपर्क फ़ॉर्म / Contact form", site, fields, now)
}

// SubmissionBody formats a reader news submission
func SubmissionBody(req models.SubmissionRequest, site string, now time.Time) (Body, error) {
	fields := []field{
		{Label: "शीर्षक / Title", Value: req.Title},
		{Label: "विवरण / Description", Value: req.Description},
		{Label: "संवाददाता / Reporter", Value: req.ReporterName},
		{Label: "संपर्क / Contact", Value: req.Contact},
	}
	if req.Location != "" {
		fields = append(fields, field{Label: "स्थान / Location", Value: req.Location})
	}
	if req.DriveLink != "" {
		fields = append(fields, field{Label: "ड्राइव लिंक / Drive link", Value: req.DriveLink, Link: true})
	}

	return render(fmt.Sprintf("नई खबर प्रस्तुति: %s", req.Title), "खबर प्रस्तुति / News submission", site, fields, now)
}

func render(subject, heading, site string, fields []field, now time.Time) (Body, error) {
	data := bodyData{
		Site:     site,
		Heading:  heading,
		Fields:   fields,
		Received: now.Format("02 Jan 2006 15:04 MST"),
	}

	var html bytes.Buffer
	if err := bodyTemplate.Execute(&html, data); err != nil {
		return Body{}, fmt.Errorf("rendering email body: %w", err)
	}

	var text strings.Builder
	text.WriteString(heading + "\n\n")
	for _, f := range fields {
		text.WriteString(f.Label + ": " + f.Value + "\n")
	}
	text.WriteString("\n" + site + " · " + data.Received + "\n")

	return Body{Subject: subject, HTML: html.String(), Text: text.String()}, nil
}
