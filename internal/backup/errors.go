// Package backup exports diary entries to portable files and imports them back.
package backup

import domainerrors "github.com/mydiary/mydiary/internal/errors"

var (
	// ErrInvalidBackup indicates the file is not a JSON array of entries.
	ErrInvalidBackup = domainerrors.Validation("backup is not a JSON array of entries")

	// ErrBackupNotFound indicates the requested backup does not exist.
	ErrBackupNotFound = domainerrors.NotFound("backup not found")
)
