package scoring

import "errors"

// Sentinel error kinds for scoring.
var (
	ErrMissingRule = errors.New("no scoring rule for question")
)
