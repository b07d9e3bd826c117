package coins

import "fmt"

// CoinError reports a misuse of the Coin façade: an unrecognized coin
// or network in the registry, an address that doesn't decode under a
// policy's version bytes, or a Send called with no transport attached.
type CoinError struct {
	Msg string
	Err error
}

func (e *CoinError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *CoinError) Unwrap() error { return e.Err }

func coinErrorf(format string, args ...any) *CoinError {
	return &CoinError{Msg: fmt.Sprintf(format, args...)}
}

func wrapCoinError(msg string, err error) *CoinError {
	return &CoinError{Msg: msg, Err: err}
}
