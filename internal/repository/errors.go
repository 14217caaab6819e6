package repository

import "errors"

// ErrNotFound reports a write that matched no row.
var ErrNotFound = errors.New("not found")
