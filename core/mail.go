package core

import (
	"bytes"
	htmltmpl "html/template"
	"net/mail"
	"strings"
	"sync"
	texttmpl "text/template"

	"github.com/pkg/errors"

	appfs "github.com/jpcarvalho/diario/fs"
)

var (
	textTemplates *texttmpl.Template
	htmlTemplates *htmltmpl.Template
	tmplInit      sync.Once
	tmplInitErr   error
)

type (
	Attachment struct {
		Content     *bytes.Buffer
		ContentType string
		Filename    string
	}

	EmailMessage struct {
		To          []mail.Address
		Cc          []mail.Address
		Bcc         []mail.Address
		Subject     string
		BodyStr     string // simple text/plain, non-templated content
		Attachments []Attachment

		// templated contents
		TemplateName string // without ext
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

func loadTemplates() {
	textTemplates, tmplInitErr = texttmpl.ParseFS(appfs.FS, "templates/*.txt.tmpl")
	if tmplInitErr != nil {
		return
	}
	htmlTemplates, tmplInitErr = htmltmpl.ParseFS(appfs.FS, "templates/*.html.tmpl")
}

// Render fills TextContent and HTMLContent. Non-templated messages only carry
// their BodyStr over; templated ones render both the .txt.tmpl and .html.tmpl
// variants of TemplateName from the embedded assets.
func (m *EmailMessage) Render() error {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
	}
	if m.TemplateName == "" {
		return nil
	}

	tmplInit.Do(loadTemplates)
	if tmplInitErr != nil {
		return errors.Wrap(tmplInitErr, "parsing mail templates")
	}

	var txt strings.Builder
	if err := textTemplates.ExecuteTemplate(&txt, m.TemplateName+".txt.tmpl", m.TemplateData); err != nil {
		return errors.Wrapf(err, "rendering %s.txt.tmpl", m.TemplateName)
	}
	m.TextContent = txt.String()

	var html strings.Builder
	if err := htmlTemplates.ExecuteTemplate(&html, m.TemplateName+".html.tmpl", m.TemplateData); err != nil {
		return errors.Wrapf(err, "rendering %s.html.tmpl", m.TemplateName)
	}
	m.HTMLContent = html.String()
	return nil
}

func (m *EmailMessage) HasRecipients() bool {
	return len(m.To) > 0 || len(m.Cc) > 0 || len(m.Bcc) > 0
}

func (m *EmailMessage) HasContent() bool {
	return m.BodyStr != "" || m.TextContent != "" || m.HTMLContent != "" || m.TemplateName != ""
}

func (m *EmailMessage) HasAttachments() bool {
	return len(m.Attachments) > 0
}
