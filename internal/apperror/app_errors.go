package apperror

import "errors"

var (
	ErrInvalidCell     = errors.New("invalid cell index")
	ErrOutOfRange      = errors.New("move index out of range")
	ErrSessionNotFound = errors.New("session not found")
	ErrCorruptHistory  = errors.New("corrupt move history")
)
