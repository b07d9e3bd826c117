package tx

import "fmt"

// CodecError reports a malformed transaction on the wire: a truncated
// field (including a witness section shorter than its input count
// requires), a bad txid in NewOutpoint, or a marker/flag pair with no
// input carrying a witness.
type CodecError struct {
	Msg string
	Err error
}

func (e *CodecError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tx: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("tx: %s", e.Msg)
}

func (e *CodecError) Unwrap() error { return e.Err }

func codecErrorf(format string, args ...any) *CodecError {
	return &CodecError{Msg: fmt.Sprintf(format, args...)}
}

func wrapCodecError(msg string, err error) *CodecError {
	return &CodecError{Msg: msg, Err: err}
}

// SigningError reports a failure specific to signature construction: a
// SegWit input missing its prevout amount, an input whose scriptPubKey
// matches no known template, or a signer whose public key isn't present
// in a multisig redeem script.
type SigningError struct {
	Msg string
	Err error
}

func (e *SigningError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tx: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("tx: %s", e.Msg)
}

func (e *SigningError) Unwrap() error { return e.Err }

func signingErrorf(format string, args ...any) *SigningError {
	return &SigningError{Msg: fmt.Sprintf(format, args...)}
}

func wrapSigningError(msg string, err error) *SigningError {
	return &SigningError{Msg: msg, Err: err}
}
