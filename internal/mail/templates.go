package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"html/template"
	"io"
	"regexp"
	"strings"
)

const (
	TemplateNewComment        = "new_comment"
	TemplateEmailVerification = "email_verification"
	TemplatePasswordReset     = "password_reset"
	TemplateResetPasswordForm = "reset_password_form"
)

var subjects = map[string]string{
	TemplateNewComment:        "New comment on your post",
	TemplateEmailVerification: "Confirm your email",
	TemplatePasswordReset:     "Password reset",
}

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(
	template.New("mail").Option("missingkey=zero").ParseFS(templateFS, "templates/*.html"))

// Render builds the message for a named email template.
func Render(to, name string, params map[string]string) (Message, error) {
	subject, ok := subjects[name]
	if !ok {
		return Message{}, fmt.Errorf("mail.Render: unknown template %q", name)
	}
	var buf bytes.Buffer
	if err := Execute(&buf, name, params); err != nil {
		return Message{}, err
	}
	body := buf.String()
	return Message{
		To:      to,
		Subject: subject,
		HTML:    body,
		Text:    plainText(body),
	}, nil
}

// Execute writes the named template to w. It also serves pages that are
// not sent by email, such as the password reset form.
func Execute(w io.Writer, name string, params map[string]string) error {
	if err := templates.ExecuteTemplate(w, name+".html", params); err != nil {
		return fmt.Errorf("mail.Execute %s: %w", name, err)
	}
	return nil
}

var (
	tagRe   = regexp.MustCompile(`<[^>]*>`)
	blankRe = regexp.MustCompile(`\n\s*\n+`)
)

func plainText(body string) string {
	text := tagRe.ReplaceAllString(body, "")
	text = html.UnescapeString(text)
	text = blankRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
