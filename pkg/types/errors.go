package types

import (
	"errors"
	"fmt"
)

var (
	// Booking errors
	ErrInvalidDue     = errors.New("due instant is not after now")
	ErrAlreadyLeased  = errors.New("mobile is already in use")
	ErrUnknownMobile  = errors.New("mobile is not in the catalog")
	ErrInvalidRequest = errors.New("invalid request")

	// Return errors
	ErrNotFound        = errors.New("mobile is not booked")
	ErrForbiddenHolder = errors.New("mobile is booked by a different requester")
)

// carries the current holder alongside ErrAlreadyLeased or ErrForbiddenHolder
type HolderError struct {
	Err    error
	Mobile string
	Holder string
}

func (e *HolderError) Error() string {
	return fmt.Sprintf("%s: %v (held by %s)", e.Mobile, e.Err, e.Holder)
}

func (e *HolderError) Unwrap() error { return e.Err }

// returns the holder reported by a HolderError anywhere in err's chain
func HolderOf(err error) (string, bool) {
	var he *HolderError
	if errors.As(err, &he) {
		return he.Holder, true
	}
	return "", false
}
