// internal/core/domain/errors.go
package domain

import "errors"

// Errores de dominio comunes.
var (
	// Target errors
	ErrEmptyTarget   = errors.New("target cannot be empty")
	ErrInvalidTarget = errors.New("invalid target")
	ErrInvalidPort   = errors.New("invalid port")

	// Tool errors
	ErrUnknownTool = errors.New("unknown network tool")

	// Cache errors
	ErrInvalidRecord = errors.New("invalid cache record")
	ErrStoreClosed   = errors.New("result store is closed")
)
