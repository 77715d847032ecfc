package lua

import "errors"

// ErrRuntimeClosed is returned by operations on a closed Runtime.
var ErrRuntimeClosed = errors.New("lua runtime is closed")
