package metrics

import "errors"

// ErrObserveFailed wraps failures reading collected values back.
var ErrObserveFailed = errors.New("metrics observe failed")
