package simulate

import (
	"errors"
	"time"
)

// HTTP status code constants.
const (
	StatusOK       = 200
	StatusAccepted = 202
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	DefaultDrainTimeout  = 2 * time.Minute
	DefaultPollInterval  = 500 * time.Millisecond
	PercentageMultiplier = 100
)

// ErrInconsistent reports stored results that contradict the service's own
// rules or acknowledgements.
var ErrInconsistent = errors.New("inconsistent results")
