// Package mail builds account emails and delivers them through an outbox so
// that sending never blocks the request that triggered it.
package mail

import (
	"bytes"
	"fmt"
	"html/template"
)

// Message is a single outbound HTML email.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

var verificationTmpl = template.Must(template.New("verify").Parse(
	`<p>Hello {{.Name}}, please click the link below to verify your email address:</p>` +
		`<a href="{{.Link}}">{{.Link}}</a>`))

var resetTmpl = template.Must(template.New("reset").Parse(
	`<p>You are receiving this because you (or someone else) have requested the reset of the password for your account.</p>` +
		`<p>Please click on the following link, or paste this into your browser to complete the process:</p>` +
		`<a href="{{.Link}}">{{.Link}}</a>` +
		`<p>If you did not request this, please ignore this email and your password will remain unchanged.</p>`))

// VerificationMessage builds the email-verification mail sent after signup.
func VerificationMessage(to, name, link string) (Message, error) {
	body, err := render(verificationTmpl, name, link)
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "FindMate - Verify Your Email Address", HTML: body}, nil
}

// ResetMessage builds the password-reset mail.
func ResetMessage(to, link string) (Message, error) {
	body, err := render(resetTmpl, "", link)
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "FindMate - Password Reset Request", HTML: body}, nil
}

func render(t *template.Template, name, link string) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, struct{ Name, Link string }{name, link}); err != nil {
		return "", fmt.Errorf("rendering %s mail: %w", t.Name(), err)
	}
	return buf.String(), nil
}
