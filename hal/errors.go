package hal

import "errors"

// Paging errors, as contracted in spec section 4.1.
var (
	ErrInvalidAddress   = errors.New("invalid address")
	ErrAlreadyMapped    = errors.New("already mapped")
	ErrPageNotMapped    = errors.New("page not mapped")
	ErrOutOfMemory      = errors.New("out of memory")
	ErrPermissionDenied = errors.New("permission denied")
)
