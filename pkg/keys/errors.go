// Package keys implements the key material this library needs: raw and
// WIF-encoded private keys, public keys, BIP32 extended keys, and
// Electrum v1 deterministic derivation. It has no notion of a "coin" —
// callers supply whatever version/prefix bytes a CoinPolicy carries.
package keys

import "fmt"

// KeyError reports a malformed or out-of-range key: a scalar outside
// [1, n-1], a point not on the curve, or a WIF whose version byte doesn't
// match the expected network.
type KeyError struct {
	Msg string
	Err error
}

func (e *KeyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("keys: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("keys: %s", e.Msg)
}

func (e *KeyError) Unwrap() error { return e.Err }

func keyErrorf(format string, args ...any) *KeyError {
	return &KeyError{Msg: fmt.Sprintf(format, args...)}
}

func wrapKeyError(msg string, err error) *KeyError {
	return &KeyError{Msg: msg, Err: err}
}

// DerivationError reports a failure specific to hierarchical or
// deterministic derivation: attempting a hardened BIP32 child from a
// public-only key, or an Electrum seed that isn't 128 bits.
type DerivationError struct {
	Msg string
	Err error
}

func (e *DerivationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("keys: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("keys: %s", e.Msg)
}

func (e *DerivationError) Unwrap() error { return e.Err }

func derivationErrorf(format string, args ...any) *DerivationError {
	return &DerivationError{Msg: fmt.Sprintf(format, args...)}
}
