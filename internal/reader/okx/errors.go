package okx

import "errors"

// ErrMalformedResponse reports that an exchange payload is missing expected
// fields or carries non-numeric values. For REST fetches it propagates to the
// caller; for stream messages the offending message is dropped with a
// warning.
var ErrMalformedResponse = errors.New("malformed exchange response")
