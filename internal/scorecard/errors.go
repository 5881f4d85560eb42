package scorecard

import "errors"

var (
	ErrOutOfRange             = errors.New("index out of range")
	ErrInvalidDimensions      = errors.New("invalid scorecard dimensions")
	ErrPersistenceUnavailable = errors.New("scorecard storage unavailable")
	ErrCorruptRecord          = errors.New("corrupt or incompatible scorecard record")
)
