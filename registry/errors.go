package registry

import "github.com/pkg/errors"

// DuplicateKeyError is returned from Registry.Register when the provided key already
// maps to a live value. The existing mapping is left untouched.
var DuplicateKeyError error = errors.New("a value is already registered under this key")
