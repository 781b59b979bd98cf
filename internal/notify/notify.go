// Package notify delivers best-effort email notifications.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/mail"
	"text/template"
)

// Template names a notification message.
type Template string

const (
	TemplateTaskCreated    Template = "task_created"
	TemplateTaskAssigned   Template = "task_assigned"
	TemplateProjectCreated Template = "project_created"
)

// Notifier sends a rendered template to recipients.
type Notifier interface {
	Notify(ctx context.Context, recipients []string, tmpl Template, data map[string]string) error
}

// Message is a rendered notification.
type Message struct {
	Subject string
	Body    string
}

type messageTemplate struct {
	subject string
	body    *template.Template
}

var templates = map[Template]messageTemplate{
	TemplateTaskCreated: {
		subject: "New task created",
		body: template.Must(template.New(string(TemplateTaskCreated)).Option("missingkey=zero").Parse(
			"Hello {{.name}},\n\nA new task \"{{.task}}\" has been created in project \"{{.project}}\" and assigned to you.\nDue date: {{.due_date}}\n")),
	},
	TemplateTaskAssigned: {
		subject: "Task assigned to you",
		body: template.Must(template.New(string(TemplateTaskAssigned)).Option("missingkey=zero").Parse(
			"Hello {{.name}},\n\nYou have been assigned the task \"{{.task}}\".\nDue date: {{.due_date}}\n")),
	},
	TemplateProjectCreated: {
		subject: "New project created",
		body: template.Must(template.New(string(TemplateProjectCreated)).Option("missingkey=zero").Parse(
			"Hello,\n\nThe project \"{{.project}}\" has been created and you are part of its team.\n")),
	},
}

// Render builds the message for tmpl.
func Render(tmpl Template, data map[string]string) (Message, error) {
	t, ok := templates[tmpl]
	if !ok {
		return Message{}, fmt.Errorf("unknown template %q", tmpl)
	}
	var buf bytes.Buffer
	if err := t.body.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("render %s: %w", tmpl, err)
	}
	return Message{Subject: t.subject, Body: buf.String()}, nil
}

// ValidRecipients keeps the parseable, de-duplicated addresses of list.
func ValidRecipients(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	res := make([]string, 0, len(list))
	for _, r := range list {
		addr, err := mail.ParseAddress(r)
		if err != nil {
			continue
		}
		if _, dup := seen[addr.Address]; dup {
			continue
		}
		seen[addr.Address] = struct{}{}
		res = append(res, addr.Address)
	}
	return res
}
