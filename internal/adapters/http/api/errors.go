package api

import "errors"

// ErrBadRequest marks request validation failures.
var ErrBadRequest = errors.New("bad request")
