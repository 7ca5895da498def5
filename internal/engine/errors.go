package engine

import "errors"

// ErrProviderUnavailable is returned in strict mode when every query in
// a request failed against the search provider. In the default
// best-effort mode the engine returns an empty payload instead.
var ErrProviderUnavailable = errors.New("search provider unavailable")
