package oracle

import "errors"

// ErrUnavailable marks transient transport or provider failures. These are
// the only errors the client retries.
var ErrUnavailable = errors.New("oracle unavailable")

// ErrResponseInvalid marks a response that reached us but could not be
// parsed or failed validation. Never retried.
var ErrResponseInvalid = errors.New("oracle response invalid")
