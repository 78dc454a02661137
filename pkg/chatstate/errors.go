package chatstate

import (
	"errors"
	"fmt"
)

// ErrUnauthorized means there is no usable identity: either the session
// token is gone or the API refused it. Callers decide whether to re-login;
// no cached state is touched when it is returned.
var ErrUnauthorized = errors.New("unauthorized")

// TransportError wraps a collaborator failure (network, decode, server
// error). Cached state is always preserved as a stale-but-valid fallback
// when one of these surfaces.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError wraps err unless it already carries a classification.
func NewTransportError(op string, err error) error {
	if errors.Is(err, ErrUnauthorized) {
		return err
	}
	var te *TransportError
	if errors.As(err, &te) {
		return err
	}
	return &TransportError{Op: op, Err: err}
}
