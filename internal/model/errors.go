package model

import "errors"

var (
	// ErrEmptyText is returned when a required text field is empty after
	// sanitization.
	ErrEmptyText = errors.New("text must not be empty")

	// ErrTextTooLong is returned when a single text exceeds the per-text
	// limit.
	ErrTextTooLong = errors.New("text exceeds maximum length")

	// ErrCombinedTooLong is returned when both texts together exceed the
	// combined limit.
	ErrCombinedTooLong = errors.New("combined text exceeds maximum length")

	// ErrInvalidSensitivity is returned when the sensitivity field is not
	// one of low, medium, or high.
	ErrInvalidSensitivity = errors.New("invalid sensitivity")
)
