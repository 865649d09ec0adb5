package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation failed")

	// ErrBackendUnavailable marks a failed primary-storage operation; the
	// service layer reacts by latching into fallback mode.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrExtraction means no name and no ingredients were found after all
	// extraction tiers ran.
	ErrExtraction = errors.New("could not parse recipe structure")

	// ErrSourceBlocked means the recipe page could not be fetched at all
	// (non-200 response or transport failure).
	ErrSourceBlocked = errors.New("source blocked the request")
)
