package backup

import "errors"

// ErrInvalidDocument indicates an import document that can't be restored.
var ErrInvalidDocument = errors.New("invalid backup document")
