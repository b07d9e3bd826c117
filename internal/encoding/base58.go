package encoding

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
)

// ChecksumError is returned by DecodeCheck when the trailing 4-byte
// checksum doesn't match the double-SHA256 of the payload.
type ChecksumError struct {
	Want, Got [4]byte
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("encoding: base58check checksum mismatch: want %x got %x", e.Want, e.Got)
}

// InvalidCharacterError is returned by DecodeCheck when the input contains
// a byte outside the Base58 alphabet.
type InvalidCharacterError struct {
	Input string
}

func (e *InvalidCharacterError) Error() string {
	return fmt.Sprintf("encoding: invalid base58 character in %q", e.Input)
}

// ErrTooShort is returned by DecodeCheck when the decoded payload is
// shorter than the 4-byte checksum it's supposed to carry.
var ErrTooShort = errors.New("encoding: base58check payload shorter than checksum")

// EncodeCheck base58-encodes payload with a trailing 4-byte checksum taken
// from the first four bytes of Dhash(payload). payload is expected to
// already carry any version-byte prefix (P2PKH version, WIF prefix, BIP32
// magic, ...); unlike btcutil's CheckEncode this isn't limited to a single
// version byte.
func EncodeCheck(payload []byte) string {
	buf := make([]byte, len(payload)+4)
	copy(buf, payload)
	checksum := Dhash(payload)
	copy(buf[len(payload):], checksum[:4])
	return base58.Encode(buf)
}

// DecodeCheck reverses EncodeCheck, validating the checksum and returning
// the payload (still carrying its version-byte prefix) on success.
func DecodeCheck(s string) ([]byte, error) {
	decoded := base58.Decode(s)
	if len(decoded) == 0 && s != "" {
		return nil, &InvalidCharacterError{Input: s}
	}
	if len(decoded) < 4 {
		return nil, ErrTooShort
	}

	payload := decoded[:len(decoded)-4]
	var want, got [4]byte
	copy(got[:], decoded[len(decoded)-4:])
	copy(want[:], Dhash(payload)[:4])
	if want != got {
		return nil, &ChecksumError{Want: want, Got: got}
	}
	return payload, nil
}
