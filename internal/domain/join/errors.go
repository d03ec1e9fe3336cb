package join

import "errors"

// Sentinel kinds for join errors.
var (
	ErrJoin = errors.New("join failed")
)
