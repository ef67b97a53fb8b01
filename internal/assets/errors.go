package assets

import "errors"

var (
	// ErrNotFound reports a missing store folder, index file or object.
	ErrNotFound = errors.New("not found")
	// ErrParse reports an index file that is not valid JSON.
	ErrParse = errors.New("invalid index json")
	// ErrSchema reports an index document without an `objects` mapping.
	ErrSchema = errors.New("invalid index schema")
	// ErrInvalidPattern reports a filter pattern that does not compile.
	ErrInvalidPattern = errors.New("invalid pattern")
	// ErrMalformedEntry reports an index entry that cannot be materialised.
	ErrMalformedEntry = errors.New("malformed entry")
	// ErrOutputLocked reports another extraction holding the output directory.
	ErrOutputLocked = errors.New("output directory locked by another process")
)
