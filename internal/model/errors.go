package model

import "errors"

// ErrInvalidInput marks caller errors (empty entity name, text below the
// minimum length). This is the only error class that propagates out of the
// enrichment core; provider and cache faults are absorbed.
var ErrInvalidInput = errors.New("invalid input")
