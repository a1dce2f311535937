package strategy

import "errors"

// ErrNoSourceData signals that every source for a category came back empty.
var ErrNoSourceData = errors.New("no source returned data")
