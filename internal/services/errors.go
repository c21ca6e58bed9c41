package services

import "errors"

// ErrValidation marks malformed or cross-referencing-inconsistent input at
// creation time. Callers must not retry without correcting the input.
var ErrValidation = errors.New("validation failed")
