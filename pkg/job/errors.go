package job

import "errors"

// ErrJobNotFound is returned when a job handle doesn't resolve
var ErrJobNotFound = errors.New("job not found")

// ErrJobConflict is returned when a job that is already running or finished
// is claimed again
var ErrJobConflict = errors.New("job is not ready to process")
