package analyses

import "errors"

var ErrNotFound = errors.New("recommendation not found")
