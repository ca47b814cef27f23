package email

import (
	"fmt"
	"html"
	"strings"

	"github.com/google/uuid"

	"golists/internal/config"
	"golists/internal/models"
)

// excerptRunes bounds how much of a comment is quoted back.
const excerptRunes = 120

// Message is one rendered notification. Summary is the in-app line; the
// other fields make up the email.
type Message struct {
	Subject string
	Summary string
	HTML    string
	Text    string
}

// Templates provides email template generation.
type Templates struct {
	cfg *config.Config
}

// NewTemplates creates a new templates instance.
func NewTemplates(cfg *config.Config) *Templates {
	return &Templates{cfg: cfg}
}

func (t *Templates) subject(format string, args ...any) string {
	return fmt.Sprintf("[%s] ", t.cfg.SiteTitle) + fmt.Sprintf(format, args...)
}

func (t *Templates) listURL(listID uuid.UUID) string {
	return fmt.Sprintf("%s/lists/%s", strings.TrimRight(t.cfg.BaseURL, "/"), listID)
}

// layout wraps body paragraphs in the shared HTML shell. Paragraphs are
// escaped here; link is added as a button when non-empty.
func (t *Templates) layout(title string, paragraphs []string, link, linkText string) string {
	var body strings.Builder
	for _, p := range paragraphs {
		fmt.Fprintf(&body, "<p>%s</p>\n", html.EscapeString(p))
	}
	if link != "" {
		fmt.Fprintf(&body, `<p><a href="%s" style="background:#0f766e;color:#fff;padding:10px 20px;border-radius:6px;text-decoration:none">%s</a></p>`+"\n",
			html.EscapeString(link), html.EscapeString(linkText))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>%s</title></head>
<body style="font-family:-apple-system,'Segoe UI',Roboto,sans-serif;color:#1f2937;max-width:600px;margin:0 auto;padding:20px">
<h2 style="color:#0f766e">%s</h2>
%s<hr style="border:none;border-top:1px solid #e5e7eb">
<p style="font-size:12px;color:#6b7280">Sent by %s &middot; <a href="%s">%s</a></p>
</body>
</html>`,
		html.EscapeString(title),
		html.EscapeString(title),
		body.String(),
		html.EscapeString(t.cfg.SiteTitle),
		html.EscapeString(t.cfg.BaseURL),
		html.EscapeString(t.cfg.BaseURL),
	)
}

func (t *Templates) text(paragraphs []string, link string) string {
	var b strings.Builder
	for _, p := range paragraphs {
		b.WriteString(p)
		b.WriteString("\n\n")
	}
	if link != "" {
		b.WriteString(link)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "--\n%s\n%s", t.cfg.SiteTitle, t.cfg.BaseURL)
	return b.String()
}

func (t *Templates) build(subject, summary string, paragraphs []string, link, linkText string) Message {
	return Message{
		Subject: subject,
		Summary: summary,
		HTML:    t.layout(subject, paragraphs, link, linkText),
		Text:    t.text(paragraphs, link),
	}
}

// excerpt shortens s to excerptRunes runes.
func excerpt(s string) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= excerptRunes {
		return string(r)
	}
	return string(r[:excerptRunes-1]) + "…"
}

func displayName(u *models.User) string {
	if u == nil {
		return "a moderator"
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

// SuggestionApproved tells an author their suggestion became a list item.
func (t *Templates) SuggestionApproved(c *models.Comment, reviewer *models.User) Message {
	title := excerpt(c.Content)
	return t.build(
		t.subject("Your suggestion %q was approved", title),
		fmt.Sprintf("Your suggestion %q was approved and added to the list.", title),
		[]string{
			fmt.Sprintf("Good news: %s approved your suggestion and it is now on the list.", displayName(reviewer)),
			"Suggestion: " + title,
		},
		t.listURL(c.ListID), "View the list",
	)
}

// SuggestionRejected tells an author their suggestion was declined.
func (t *Templates) SuggestionRejected(c *models.Comment, reviewer *models.User) Message {
	title := excerpt(c.Content)
	return t.build(
		t.subject("Your suggestion %q was not accepted", title),
		fmt.Sprintf("Your suggestion %q was not accepted.", title),
		[]string{
			fmt.Sprintf("%s reviewed your suggestion and decided not to add it to the list.", displayName(reviewer)),
			"Suggestion: " + title,
		},
		t.listURL(c.ListID), "View the list",
	)
}

// CommentReported tells moderators a comment received its first report.
func (t *Templates) CommentReported(c *models.Comment, r *models.Report) Message {
	paragraphs := []string{
		"A comment was reported and is waiting in the moderation queue.",
		"Comment: " + excerpt(c.Content),
	}
	if r.Reason != "" {
		paragraphs = append(paragraphs, "Reason: "+excerpt(r.Reason))
	}
	return t.build(
		t.subject("Comment reported"),
		"A comment was reported: "+excerpt(c.Content),
		paragraphs,
		strings.TrimRight(t.cfg.BaseURL, "/")+"/moderation", "Open the moderation queue",
	)
}

// PenaltyApplied tells an author a moderator recorded a penalty against them.
func (t *Templates) PenaltyApplied(p *models.PenaltyRecord) Message {
	var reason string
	switch p.Action {
	case models.PenaltyDelete:
		reason = "one of your comments was removed by a moderator"
	case models.PenaltyEdit:
		reason = "one of your comments was edited by a moderator"
	default:
		reason = "a report against one of your comments was upheld"
	}
	return t.build(
		t.subject("A moderation penalty was applied"),
		fmt.Sprintf("A penalty of %d was applied because %s.", p.Score, reason),
		[]string{
			fmt.Sprintf("A penalty of %d was applied to your account because %s.", p.Score, reason),
			"Repeated penalties lower your trust score. Please review the community guidelines.",
		},
		"", "",
	)
}
