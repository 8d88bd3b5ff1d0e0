package notify

import (
	"strings"
	"text/template"
)

const (
	KindVerificationCode   = "verification_code"
	KindWelcome            = "welcome"
	KindLeaveSubmitted     = "leave_submitted"
	KindLeaveForApproval   = "leave_for_approval"
	KindLeaveStatusChanged = "leave_status_changed"
)

type mailTemplate struct {
	subject string
	body    *template.Template
}

var templates = map[string]mailTemplate{
	KindVerificationCode: {
		subject: "Your verification code",
		body: template.Must(template.New(KindVerificationCode).Parse(
			`Your verification code is {{.Code}}.
It expires in {{.TTL}}. If you did not request it, ignore this email.
`)),
	},
	KindWelcome: {
		subject: "Welcome to the team",
		body: template.Must(template.New(KindWelcome).Parse(
			`Hello {{.Name}},

An account was created for you. Sign in with {{.Email}} and the password your administrator gave you.
`)),
	},
	KindLeaveSubmitted: {
		subject: "Leave request submitted",
		body: template.Must(template.New(KindLeaveSubmitted).Parse(
			`Hello {{.Name}},

Your leave request #{{.ID}} from {{.Start}} to {{.End}} was submitted and is waiting for approval.
`)),
	},
	KindLeaveForApproval: {
		subject: "New leave request",
		body: template.Must(template.New(KindLeaveForApproval).Parse(
			`{{.Name}} ({{.Email}}) requested leave #{{.ID}} from {{.Start}} to {{.End}}.
{{if .Reason}}Reason: {{.Reason}}
{{end}}`)),
	},
	KindLeaveStatusChanged: {
		subject: "Leave request updated",
		body: template.Must(template.New(KindLeaveStatusChanged).Parse(
			`Hello {{.Name}},

Your leave request #{{.ID}} from {{.Start}} to {{.End}} is now {{.Status}}.
{{if .Remarks}}Remarks: {{.Remarks}}
{{end}}`)),
	},
}

func render(kind, to string, data any) (Message, error) {
	tmpl := templates[kind]

	var body strings.Builder
	if err := tmpl.body.Execute(&body, data); err != nil {
		return Message{}, err
	}

	return Message{To: to, Subject: tmpl.subject, Body: body.String()}, nil
}
