package store

import (
	domainerrors "github.com/mydiary/mydiary/internal/errors"
)

// Sentinel errors. They are coded domain errors, so errors.Is also matches
// the generic domainerrors.ErrNotFound and friends.
var (
	ErrNotFound      = domainerrors.NotFound("record not found")
	ErrAlreadyExists = domainerrors.AlreadyExists("record already exists")

	// ErrSchemaTooNew means the database was written by a newer release.
	ErrSchemaTooNew = domainerrors.Internal("database schema is newer than this build supports")
)
