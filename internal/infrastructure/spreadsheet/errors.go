package spreadsheet

import "errors"

// Error codes reported to clients
const (
	ErrCodeImportInvalidFile  = "ERR_IMPORT_INVALID_FILE"
	ErrCodeImportEmptyFile    = "ERR_IMPORT_EMPTY_FILE"
	ErrCodeImportFileTooLarge = "ERR_IMPORT_FILE_TOO_LARGE"
	ErrCodeImportTooManyRows  = "ERR_IMPORT_TOO_MANY_ROWS"
	ErrCodeImportEncoding     = "ERR_IMPORT_INVALID_ENCODING"
)

// Common import errors
var (
	ErrEmptyFile         = errors.New("file is empty")
	ErrInvalidEncoding   = errors.New("invalid file encoding")
	ErrMissingHeader     = errors.New("file missing header row")
	ErrNoDataRows        = errors.New("file contains no data rows")
	ErrTooManyRows       = errors.New("file exceeds maximum row count")
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// Code maps a read error to its client error code.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrEmptyFile), errors.Is(err, ErrMissingHeader), errors.Is(err, ErrNoDataRows):
		return ErrCodeImportEmptyFile
	case errors.Is(err, ErrInvalidEncoding):
		return ErrCodeImportEncoding
	case errors.Is(err, ErrTooManyRows):
		return ErrCodeImportTooManyRows
	default:
		return ErrCodeImportInvalidFile
	}
}
