package policy

import "errors"

// Construction errors. Constructors wrap them with context; test with errors.Is.
var (
	ErrNegativeCapacity = errors.New("policy: capacity must be >= 0")
	ErrNonPositiveTTL   = errors.New("policy: ttl must be > 0")
)
