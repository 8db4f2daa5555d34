package togi

import "errors"

// DecodeError reports that a wire record could not be decoded: malformed
// JSON, a missing or unknown "type" discriminator, a missing required
// field, or a field of the wrong type. Malformed input is never silently
// recovered.
type DecodeError struct {
	Err error // underlying cause
}

func (e *DecodeError) Error() string {
	return "decode record: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeError reports whether any error in err's chain is a *DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
