package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this username already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrTokenNotFound indicates that refresh token was not found
	ErrTokenNotFound = errors.New("refresh token not found")

	// ErrDeviceNotFound indicates that device was not found
	ErrDeviceNotFound = errors.New("device not found")

	// ErrDeviceAlreadyExists indicates that device with this interaction id already exists
	ErrDeviceAlreadyExists = errors.New("device already exists")

	// ErrSubmissionNotFound indicates that submission was not found
	ErrSubmissionNotFound = errors.New("submission not found")

	// ErrDuplicateSubmission indicates an active submission for the same device and half month
	ErrDuplicateSubmission = errors.New("submission for this half month already exists")
)
