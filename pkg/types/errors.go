package types

import "errors"

// Lookup and resolution errors. Callers test with errors.Is; wrapped errors
// name the offending identifier or path.
var (
	// ErrNotFound reports a catalog entity that must exist but does not.
	ErrNotFound = errors.New("not found")

	// ErrParse reports a malformed line in a delimited input file.
	ErrParse = errors.New("parse error")

	// ErrTransfer reports a failed or non-successful remote fetch.
	ErrTransfer = errors.New("transfer failed")

	// ErrUnsafePath reports a derived path that fails validation or escapes
	// its root directory.
	ErrUnsafePath = errors.New("unsafe path")

	// ErrMissingAPIKey reports that the structured API was used without a key.
	ErrMissingAPIKey = errors.New("api key is not set")
)
