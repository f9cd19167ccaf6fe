package resource

import "errors"

// ErrMemoryLimitExceeded is returned when a single request is larger than
// the configured memory limit.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")
