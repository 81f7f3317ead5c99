package domain

import "errors"

var (
	// ErrMalformedPayload is returned when a source payload lacks its required top-level container
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrImageRetriesExhausted is returned when a paid-image fetch fails on every allowed attempt
	ErrImageRetriesExhausted = errors.New("image retries exhausted")

	// ErrDefaultImageUnavailable is returned when the default asset cannot be read twice in a row
	ErrDefaultImageUnavailable = errors.New("default image unavailable")

	// ErrRecipientGone is returned when a delivery fails because the recipient blocked or removed the sender
	ErrRecipientGone = errors.New("recipient gone")
)
