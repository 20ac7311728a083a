package kb

import "errors"

// ErrNotConfluent is returned by operations that require the active rule
// set to be confluent (Gilman graph extraction, finiteness, normal form
// enumeration) when it has not been shown to be.
var ErrNotConfluent = errors.New("congru: kb: active rules are not confluent")
