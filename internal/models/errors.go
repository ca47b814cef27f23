package models

import "errors"

// Sentinels returned by stores. Both the Postgres store and the in-memory
// test store report these, so callers never depend on a driver package.
var (
	// User errors
	ErrUserNotFound = errors.New("user not found")

	// Comment errors
	ErrCommentNotFound            = errors.New("comment not found")
	ErrNotSuggestion              = errors.New("comment is not a suggestion")
	ErrNotPending                 = errors.New("suggestion has already been reviewed")
	ErrDuplicatePendingSuggestion = errors.New("a pending suggestion with this text already exists")

	// Report errors
	ErrReportNotFound = errors.New("report not found")

	// Notification errors
	ErrNotificationNotFound = errors.New("notification not found")

	// Settings errors
	ErrInvalidBadWord = errors.New("bad word must be non-empty")
)
