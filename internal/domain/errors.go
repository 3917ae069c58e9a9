package domain

import "errors"

// ErrNotFound is shared by every store so callers can test for it without
// knowing which backend answered.
var ErrNotFound = errors.New("not found")
