package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound      = errors.New("record not found")
	ErrInvalidRecord = errors.New("invalid record")
	ErrStageConflict = errors.New("stage order conflict")
	ErrWrongProgram  = errors.New("stage belongs to another program")
)
