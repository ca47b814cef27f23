package models

import "testing"

func TestComment_NeedsModeration(t *testing.T) {
	tests := []struct {
		name     string
		comment  Comment
		expected bool
	}{
		{"clean comment", Comment{}, false},
		{"filtered", Comment{IsFiltered: true}, true},
		{"reported", Comment{ReportCount: 2}, true},
		{"filtered and reported", Comment{IsFiltered: true, ReportCount: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.comment.NeedsModeration(); got != tt.expected {
				t.Errorf("NeedsModeration() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestComment_IsPending(t *testing.T) {
	tests := []struct {
		name     string
		comment  Comment
		expected bool
	}{
		{"pending suggestion", Comment{Kind: KindSuggestion, SuggestionStatus: StatusPending}, true},
		{"approved suggestion", Comment{Kind: KindSuggestion, SuggestionStatus: StatusApproved}, false},
		{"rejected suggestion", Comment{Kind: KindSuggestion, SuggestionStatus: StatusRejected}, false},
		{"plain comment", Comment{Kind: KindComment, SuggestionStatus: StatusNone}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.comment.IsPending(); got != tt.expected {
				t.Errorf("IsPending() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRateLimits_Durations(t *testing.T) {
	global := 10
	limits := RateLimits{PerTargetMinutes: 5, GlobalMinutes: &global}

	if got := limits.PerTarget().Minutes(); got != 5 {
		t.Errorf("PerTarget() = %v minutes, want 5", got)
	}
	d, ok := limits.Global()
	if !ok || d.Minutes() != 10 {
		t.Errorf("Global() = %v, %v, want 10m, true", d, ok)
	}
	if _, ok := limits.RejectedCooldown(); ok {
		t.Error("RejectedCooldown() configured = true, want false")
	}
}
