package store

import "errors"

// ErrNotReady is returned by mutations issued before Initialize completes
var ErrNotReady = errors.New("saved recipes are still loading")
