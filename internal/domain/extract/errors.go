package extract

import "errors"

// Sentinel kinds for table extraction errors.
var (
	ErrTableNotFound = errors.New("table not found")
	ErrNoHeader      = errors.New("table has no header row")
)
