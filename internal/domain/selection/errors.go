package selection

import "errors"

// ErrInvalidArgument is returned for a negative selection size or an empty user id.
var ErrInvalidArgument = errors.New("selection: invalid argument")
