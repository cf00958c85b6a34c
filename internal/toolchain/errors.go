package toolchain

import "errors"

var (
	// ErrToolNotFound means neither the search path nor the repository
	// fallback produced a usable generator.
	ErrToolNotFound = errors.New("no code generator found")
)
