package posemetrics

import "errors"

var (
	// ErrShape is returned when inputs violate the expected shapes or value
	// ranges, such as mismatched batch sizes or out of range visibility
	ErrShape = errors.New("shape violation")
	// ErrConfig is returned for invalid metric or matcher configuration
	ErrConfig = errors.New("configuration error")
	// ErrIncompleteMatch is returned when matching did not account for every
	// ground truth object
	ErrIncompleteMatch = errors.New("incomplete match")
)
