package keys

import (
	"encoding/hex"
	"fmt"

	"github.com/olehkaliuzhnyi/cryptos/internal/ecc"
	"github.com/olehkaliuzhnyi/cryptos/internal/encoding"
)

// Encoding records how a PrivateKey was originally supplied. This is a
// property of the key, not of each call site: it decides whether the
// derived public key is compressed and therefore which address/sighash
// bytes come out the other end.
type Encoding int

const (
	// RawHex/RawBytes keys have no compression flag of their own; by
	// convention (matching the brainwallet derivation path) they derive
	// an uncompressed public key.
	RawHex Encoding = iota
	RawBytes
	WIFCompressed
	WIFUncompressed
)

// PrivateKey is an immutable 256-bit secp256k1 scalar plus the encoding
// hint that decides public-key compression.
type PrivateKey struct {
	scalar   *ecc.PrivateKey
	encoding Encoding
}

// NewPrivateKeyFromHex parses a 64-character hex-encoded scalar.
func NewPrivateKeyFromHex(s string) (*PrivateKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, wrapKeyError("decode hex private key", err)
	}
	priv, err := NewPrivateKeyFromBytes(b)
	if err != nil {
		return nil, err
	}
	priv.encoding = RawHex
	return priv, nil
}

// NewPrivateKeyFromBytes parses a 32-byte raw scalar.
func NewPrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	scalar, err := ecc.NewPrivateKeyFromScalar(b)
	if err != nil {
		return nil, wrapKeyError("parse private scalar", err)
	}
	return &PrivateKey{scalar: scalar, encoding: RawBytes}, nil
}

// NewPrivateKeyFromWIF decodes a Wallet Import Format string, validating
// that its version byte matches wifVersion.
func NewPrivateKeyFromWIF(wif string, wifVersion byte) (*PrivateKey, error) {
	payload, err := encoding.DecodeCheck(wif)
	if err != nil {
		return nil, wrapKeyError("decode WIF", err)
	}
	if len(payload) == 0 || payload[0] != wifVersion {
		return nil, keyErrorf("WIF version byte mismatch: want 0x%02x", wifVersion)
	}

	body := payload[1:]
	enc := WIFUncompressed
	switch len(body) {
	case 32:
		enc = WIFUncompressed
	case 33:
		if body[32] != 0x01 {
			return nil, keyErrorf("WIF compression suffix must be 0x01, got 0x%02x", body[32])
		}
		enc = WIFCompressed
		body = body[:32]
	default:
		return nil, keyErrorf("WIF payload has unexpected length %d", len(body))
	}

	scalar, err := ecc.NewPrivateKeyFromScalar(body)
	if err != nil {
		return nil, wrapKeyError("parse WIF scalar", err)
	}
	return &PrivateKey{scalar: scalar, encoding: enc}, nil
}

// ToWIF encodes the key as Wallet Import Format under wifVersion,
// appending the compression suffix iff the key's encoding hint says the
// key is compressed.
func (p *PrivateKey) ToWIF(wifVersion byte) string {
	body := p.scalar.Bytes()
	payload := make([]byte, 0, 1+len(body)+1)
	payload = append(payload, wifVersion)
	payload = append(payload, body...)
	if p.Compressed() {
		payload = append(payload, 0x01)
	}
	return encoding.EncodeCheck(payload)
}

// Scalar returns the 32-byte big-endian private scalar.
func (p *PrivateKey) Scalar() []byte { return p.scalar.Bytes() }

// EC exposes the underlying curve scalar for callers in this module
// that need raw EC operations (the signing engine in pkg/tx).
func (p *PrivateKey) EC() *ecc.PrivateKey { return p.scalar }

// Hex returns the private scalar as a lowercase hex string.
func (p *PrivateKey) Hex() string { return hex.EncodeToString(p.Scalar()) }

// Encoding returns the hint this key was constructed with.
func (p *PrivateKey) Encoding() Encoding { return p.encoding }

// Compressed reports whether this key's public key should be encoded
// compressed, per its encoding hint.
func (p *PrivateKey) Compressed() bool {
	return p.encoding == WIFCompressed
}

// WithCompression returns a copy of p with a forced compression hint,
// for callers that need to derive both address forms from one scalar
// (e.g. the façade's privtop2w, which always wants a compressed key).
func (p *PrivateKey) WithCompression(compressed bool) *PrivateKey {
	enc := WIFUncompressed
	if compressed {
		enc = WIFCompressed
	}
	return &PrivateKey{scalar: p.scalar, encoding: enc}
}

// PubKey derives the public key, compressed or uncompressed per p's
// encoding hint.
func (p *PrivateKey) PubKey() *PublicKey {
	return &PublicKey{point: p.scalar.PubKey(), compressed: p.Compressed()}
}

func (p *PrivateKey) String() string {
	return fmt.Sprintf("PrivateKey(%s...)", p.Hex()[:8])
}
