package email

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"golists/internal/config"
	"golists/internal/models"
)

func testTemplates() *Templates {
	return NewTemplates(&config.Config{SiteTitle: "GoLists", BaseURL: "https://lists.example.com/"})
}

func TestTemplates_SuggestionReviewed(t *testing.T) {
	tmpl := testTemplates()
	listID := uuid.New()
	c := &models.Comment{ListID: listID, Content: "Café Naderi"}
	reviewer := &models.User{Name: "Mina"}

	approved := tmpl.SuggestionApproved(c, reviewer)
	if !strings.HasPrefix(approved.Subject, "[GoLists] ") || !strings.Contains(approved.Subject, "approved") {
		t.Errorf("approved subject = %q", approved.Subject)
	}
	if !strings.Contains(approved.Text, "https://lists.example.com/lists/"+listID.String()) {
		t.Errorf("approved text missing list link:\n%s", approved.Text)
	}
	if !strings.Contains(approved.Text, "Mina approved") {
		t.Errorf("approved text missing reviewer:\n%s", approved.Text)
	}

	rejected := tmpl.SuggestionRejected(c, nil)
	if !strings.Contains(rejected.Summary, "not accepted") || !strings.Contains(rejected.Text, "a moderator reviewed") {
		t.Errorf("rejected = %+v", rejected)
	}
}

func TestTemplates_EscapesHTML(t *testing.T) {
	tmpl := testTemplates()
	c := &models.Comment{Content: `<script>alert("x")</script>`}

	msg := tmpl.CommentReported(c, &models.Report{Reason: "<b>spam</b>"})
	if strings.Contains(msg.HTML, "<script>") || strings.Contains(msg.HTML, "<b>spam") {
		t.Errorf("HTML body not escaped:\n%s", msg.HTML)
	}
	if !strings.Contains(msg.HTML, "&lt;script&gt;") {
		t.Errorf("HTML body missing escaped content:\n%s", msg.HTML)
	}
	if !strings.Contains(msg.Text, `<script>alert("x")</script>`) {
		t.Error("text body should carry the raw content")
	}
}

func TestTemplates_PenaltyApplied(t *testing.T) {
	tmpl := testTemplates()

	tests := []struct {
		action string
		want   string
	}{
		{models.PenaltyDelete, "removed by a moderator"},
		{models.PenaltyEdit, "edited by a moderator"},
		{models.PenaltyReport, "report against one of your comments was upheld"},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			msg := tmpl.PenaltyApplied(&models.PenaltyRecord{Action: tt.action, Score: -10})
			if !strings.Contains(msg.Summary, "-10") || !strings.Contains(msg.Summary, tt.want) {
				t.Errorf("summary = %q, want it to mention -10 and %q", msg.Summary, tt.want)
			}
		})
	}
}

func TestExcerpt(t *testing.T) {
	long := strings.Repeat("ب", excerptRunes+10)

	got := []rune(excerpt(long))
	if len(got) != excerptRunes {
		t.Errorf("excerpt length = %d runes, want %d", len(got), excerptRunes)
	}
	if got[len(got)-1] != '…' {
		t.Errorf("excerpt should end with an ellipsis")
	}
	if excerpt("  short  ") != "short" {
		t.Errorf("excerpt(short) = %q", excerpt("  short  "))
	}
}
