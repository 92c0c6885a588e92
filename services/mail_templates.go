package services

import (
	"fmt"
	"html/template"
	"strings"
)

type emailMetaItem struct {
	Label string
	Value string
}

type emailContent struct {
	Subject    string
	Paragraphs []string
	Meta       []emailMetaItem
	ButtonText string
	ButtonURL  string
	Footer     string
}

// Named mail templates.
const (
	TemplateWelcome            = "welcome"
	TemplateSubmissionReceived = "submission_received"
	TemplateReviewerAssigned   = "reviewer_assigned"
	TemplateReviewReminder     = "review_reminder"
	TemplateDecisionNotice     = "decision_notice"
	TemplateWeeklyDigest       = "weekly_digest"
)

// buildEmailContent renders a named template with its data into subject,
// paragraphs and a meta table. Unknown names are an error so that a typo in
// a caller cannot silently drop a notification.
func buildEmailContent(name string, data map[string]string) (*emailContent, error) {
	get := func(key string) string { return strings.TrimSpace(data[key]) }

	switch name {
	case TemplateWelcome:
		return &emailContent{
			Subject: "Welcome to the conference system",
			Paragraphs: []string{
				fmt.Sprintf("Dear %s,", get("name")),
				fmt.Sprintf("Your account has been created with the %s role. You can now sign in and use the dashboard.", get("role")),
			},
		}, nil

	case TemplateSubmissionReceived:
		return &emailContent{
			Subject: "Submission received",
			Paragraphs: []string{
				fmt.Sprintf("Dear %s,", get("author_name")),
				"Your paper has been received and will enter the review process.",
			},
			Meta: []emailMetaItem{
				{Label: "Paper", Value: get("submission_title")},
				{Label: "Conference", Value: get("conference_name")},
			},
		}, nil

	case TemplateReviewerAssigned:
		return &emailContent{
			Subject: "New review assignment",
			Paragraphs: []string{
				fmt.Sprintf("Dear %s,", get("reviewer_name")),
				"You have been assigned a paper to review. Please submit your review before the conference begins.",
			},
			Meta: []emailMetaItem{
				{Label: "Paper", Value: get("submission_title")},
				{Label: "Conference", Value: get("conference_name")},
			},
		}, nil

	case TemplateReviewReminder:
		return &emailContent{
			Subject: "Review reminder",
			Paragraphs: []string{
				fmt.Sprintf("Dear %s,", get("reviewer_name")),
				fmt.Sprintf("The conference starts on %s and your review for the paper below has not been submitted yet.", get("start_date")),
			},
			Meta: []emailMetaItem{
				{Label: "Paper", Value: get("submission_title")},
				{Label: "Conference", Value: get("conference_name")},
			},
		}, nil

	case TemplateDecisionNotice:
		return &emailContent{
			Subject: "Decision on your submission",
			Paragraphs: []string{
				fmt.Sprintf("Dear %s,", get("author_name")),
				fmt.Sprintf("A decision has been made on your paper \"%s\".", get("submission_title")),
			},
			Meta: []emailMetaItem{
				{Label: "Decision", Value: get("decision")},
				{Label: "Conference", Value: get("conference_name")},
			},
		}, nil

	case TemplateWeeklyDigest:
		return &emailContent{
			Subject: fmt.Sprintf("Weekly digest: %s", get("conference_name")),
			Paragraphs: []string{
				fmt.Sprintf("Dear %s,", get("organizer_name")),
				"Here is the weekly summary of submission and review activity for your conference.",
			},
			Meta: []emailMetaItem{
				{Label: "Total submissions", Value: get("total_submissions")},
				{Label: "Reviews in progress", Value: get("in_progress_reviews")},
				{Label: "Reviews completed", Value: get("completed_reviews")},
				{Label: "Accepted", Value: get("accepted")},
				{Label: "Rejected", Value: get("rejected")},
				{Label: "Awaiting decision", Value: get("awaiting_decision")},
			},
		}, nil
	}

	return nil, fmt.Errorf("unknown mail template %q", name)
}

// renderHTML lays the content out as a styled, table-based HTML email.
func (c *emailContent) renderHTML() string {
	var contentBuilder strings.Builder
	for _, paragraph := range c.Paragraphs {
		trimmed := strings.TrimSpace(paragraph)
		if trimmed == "" {
			continue
		}
		escaped := template.HTMLEscapeString(trimmed)
		contentBuilder.WriteString(`<p style="margin:0 0 18px 0;line-height:1.7;word-break:break-word;">`)
		contentBuilder.WriteString(escaped)
		contentBuilder.WriteString(`</p>`)
	}

	metaSection := ""
	rows := make([]emailMetaItem, 0, len(c.Meta))
	for _, item := range c.Meta {
		label := strings.TrimSpace(item.Label)
		value := strings.TrimSpace(item.Value)
		if label == "" || value == "" {
			continue
		}
		rows = append(rows, emailMetaItem{Label: label, Value: value})
	}
	if len(rows) > 0 {
		var metaBuilder strings.Builder
		metaBuilder.WriteString(`<div style="margin:0 0 24px 0;">
<table role="presentation" cellpadding="0" cellspacing="0" width="100%" style="border:1px solid #e5e7eb;border-radius:12px;background-color:#f9fafb;">
<tbody>`)
		for i, row := range rows {
			border := "border-bottom:1px solid #e5e7eb;"
			if i == len(rows)-1 {
				border = ""
			}
			metaBuilder.WriteString(fmt.Sprintf(`<tr>
<td style="padding:12px 16px;font-size:13px;color:#6b7280;width:38%%;%s;word-break:break-word;">%s</td>
<td style="padding:12px 16px;font-size:15px;color:#111827;font-weight:600;%s;word-break:break-word;white-space:pre-wrap;">%s</td>
</tr>
`, border, template.HTMLEscapeString(row.Label), border, template.HTMLEscapeString(row.Value)))
		}
		metaBuilder.WriteString(`</tbody>
</table>
</div>`)
		metaSection = metaBuilder.String()
	}

	buttonSection := ""
	if strings.TrimSpace(c.ButtonText) != "" && strings.TrimSpace(c.ButtonURL) != "" {
		buttonSection = fmt.Sprintf(`<div style="text-align:center;margin:12px 0 24px 0;">
<a href="%s" style="display:inline-block;padding:12px 28px;background-color:#2563eb;color:#ffffff;text-decoration:none;border-radius:999px;font-weight:600;word-break:break-word;">%s</a>
</div>`, template.HTMLEscapeString(c.ButtonURL), template.HTMLEscapeString(c.ButtonText))
	}

	footerSection := ""
	if strings.TrimSpace(c.Footer) != "" {
		footerSection = fmt.Sprintf(`<div style="color:#6b7280;font-size:13px;line-height:1.7;">%s</div>`,
			template.HTMLEscapeString(c.Footer))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="margin:0;padding:24px;background-color:#f3f4f6;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,sans-serif;">
<div style="max-width:600px;margin:0 auto;background-color:#ffffff;border-radius:16px;padding:32px;">
<h2 style="margin:0 0 24px 0;font-size:20px;color:#111827;">%s</h2>
%s%s%s%s
</div>
</body>
</html>`, template.HTMLEscapeString(c.Subject), contentBuilder.String(), metaSection, buttonSection, footerSection)
}

// renderText is the plain-text alternative body.
func (c *emailContent) renderText() string {
	var b strings.Builder
	for _, paragraph := range c.Paragraphs {
		trimmed := strings.TrimSpace(paragraph)
		if trimmed == "" {
			continue
		}
		b.WriteString(trimmed)
		b.WriteString("\n\n")
	}
	for _, item := range c.Meta {
		label := strings.TrimSpace(item.Label)
		value := strings.TrimSpace(item.Value)
		if label == "" || value == "" {
			continue
		}
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\n")
	}
	if c.ButtonURL != "" {
		b.WriteString("\n")
		b.WriteString(c.ButtonURL)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}
