package apperrors

import "errors"

var (
	ErrNotFound                 = errors.New("not found")
	ErrSourceNotFound           = errors.New("source file not found")
	ErrNoInput                  = errors.New("no input records in any source")
	ErrFailureThresholdExceeded = errors.New("validation failure rate above threshold")
	ErrUnsupportedDriver        = errors.New("unsupported database driver")
	ErrUnsupportedFormat        = errors.New("unsupported source format")
)
