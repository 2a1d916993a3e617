package interfaces

import "github.com/m-mizutani/goerr/v2"

// Repository errors shared by every backend
var (
	ErrNotFound      = goerr.New("resource not found")
	ErrAlreadyExists = goerr.New("resource already exists")
	ErrConflict      = goerr.New("resource was modified concurrently")
)
