package kdl

import "errors"

var ErrSyntax = errors.New("kdl: syntax error")
