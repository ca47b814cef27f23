package validation

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"golists/internal/models"
)

// MaxReasonLength bounds the free-text reason on a report.
const MaxReasonLength = 500

// ValidateContent checks that comment text is non-blank and at most max
// characters. Length is counted in runes, not bytes.
func ValidateContent(content string, max int) (bool, string) {
	if strings.TrimSpace(content) == "" {
		return false, "Content is required"
	}
	if max > 0 && utf8.RuneCountInString(content) > max {
		return false, fmt.Sprintf("Content must be at most %d characters", max)
	}
	if !utf8.ValidString(content) {
		return false, "Content must be valid UTF-8"
	}
	return true, ""
}

// ValidateVote checks that a vote is +1 or -1.
func ValidateVote(value int) (bool, string) {
	if !models.ValidVote(value) {
		return false, "Vote must be 1 or -1"
	}
	return true, ""
}

// ValidateReason checks a report reason.
func ValidateReason(reason string) (bool, string) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return false, "Reason is required"
	}
	if utf8.RuneCountInString(reason) > MaxReasonLength {
		return false, fmt.Sprintf("Reason must be at most %d characters", MaxReasonLength)
	}
	return true, ""
}

// ValidateURL checks if a URL is valid and uses an allowed scheme (http/https only).
// This prevents javascript:, data:, vbscript:, and other dangerous URL schemes.
func ValidateURL(urlStr string) (bool, string) {
	if urlStr == "" {
		return false, "URL is required"
	}

	// Parse the URL
	u, err := url.Parse(urlStr)
	if err != nil {
		return false, "Invalid URL format"
	}

	// Check scheme - only allow http and https
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false, "URL must use http:// or https:// scheme"
	}

	// Ensure host is present
	if u.Host == "" {
		return false, "URL must have a valid host"
	}

	return true, ""
}

// ValidateOptionalURL accepts an empty string, otherwise applies ValidateURL.
func ValidateOptionalURL(urlStr string) (bool, string) {
	if urlStr == "" {
		return true, ""
	}
	return ValidateURL(urlStr)
}
