package memory

import "github.com/optimatax/reliefdesk/pkg/domain/interfaces"

var (
	ErrNotFound      = interfaces.ErrNotFound
	ErrAlreadyExists = interfaces.ErrAlreadyExists
	ErrConflict      = interfaces.ErrConflict
)
