package catalog

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidCatalog  = errors.New("invalid catalog")
	ErrUnknownCategory = errors.New("unknown category")
	ErrInvalidAnswers  = errors.New("invalid answers")
	ErrLoadCatalog     = errors.New("load catalog failed")
)
