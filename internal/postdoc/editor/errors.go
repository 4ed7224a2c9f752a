package editor

import "errors"

// Ошибки валидации преобразований. При любой из них документ не меняется.
var (
	ErrInvalidSelection = errors.New("selection does not address a valid position")
	ErrInvalidAttribute = errors.New("attribute is not defined for node type or value is out of range")
	ErrInvalidTableSize = errors.New("table rows and cols must be positive")
	ErrEmptyHref        = errors.New("link href is empty")
	ErrInvalidHref      = errors.New("link href uses a forbidden protocol")
	ErrNotAtomic        = errors.New("node type is not atomic")
	ErrUnsupportedKind  = errors.New("node type is not supported by this transform")
	ErrUnknownOp        = errors.New("unknown command op")
)
