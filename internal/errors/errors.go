package gerr

import "errors"

var (
	// ErrDataIntegrity signals that the supplied datasets do not belong
	// together: a required join key is missing for the majority of rows.
	ErrDataIntegrity = errors.New("dataset join coverage below usability threshold")

	// ErrInvalidFilter signals a malformed filter supplied by the caller.
	ErrInvalidFilter = errors.New("invalid filter")
)
