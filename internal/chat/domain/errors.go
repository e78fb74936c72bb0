package domain

import "errors"

// 操作層錯誤分類，只回給發起者，不會廣播給其他成員
var (
	// ErrNotAMember room operation without an authorized membership
	ErrNotAMember = errors.New("NotAMember")
	// ErrInvalidPayload missing required fields
	ErrInvalidPayload = errors.New("InvalidPayload")
	// ErrNotFound room or message no longer exists
	ErrNotFound = errors.New("NotFound")
	// ErrForbidden delete attempted by a non-sender
	ErrForbidden = errors.New("Forbidden")
	// ErrAuthentication bad, missing or expired credential, connection refused
	ErrAuthentication = errors.New("AuthenticationFailed")
)
