// Package errorspkg provides common app errors.
package errorspkg

import "errors"

// ErrInternal indicates an unexpected failure reported to the user without details.
var ErrInternal = errors.New("internal error")
