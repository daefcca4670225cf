package models

import "errors"

// ErrDuplicate is returned by stores when a unique key would be violated.
var ErrDuplicate = errors.New("duplicate entry")
