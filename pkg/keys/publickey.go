package keys

import (
	"encoding/hex"

	"github.com/olehkaliuzhnyi/cryptos/internal/ecc"
	"github.com/olehkaliuzhnyi/cryptos/internal/encoding"
)

// PublicKey is a secp256k1 curve point, encoded compressed or
// uncompressed depending on the PrivateKey it was derived from (or the
// form it was parsed in).
type PublicKey struct {
	point      *ecc.PublicKey
	compressed bool
}

// ParsePublicKey decodes a compressed (33-byte) or uncompressed (65-byte)
// point, inferring compression from its length.
func ParsePublicKey(b []byte) (*PublicKey, error) {
	point, err := ecc.ParsePublicKey(b)
	if err != nil {
		return nil, wrapKeyError("parse public key", err)
	}
	return &PublicKey{point: point, compressed: len(b) == 33}, nil
}

// ParsePublicKeyHex decodes a hex-encoded public key.
func ParsePublicKeyHex(s string) (*PublicKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, wrapKeyError("decode hex public key", err)
	}
	return ParsePublicKey(b)
}

// Bytes returns the point encoded per this key's compression flag.
func (p *PublicKey) Bytes() []byte {
	if p.compressed {
		return p.point.SerializeCompressed()
	}
	return p.point.SerializeUncompressed()
}

// Hex returns Bytes() hex-encoded.
func (p *PublicKey) Hex() string { return hex.EncodeToString(p.Bytes()) }

// Compressed reports whether Bytes() returns the compressed encoding.
func (p *PublicKey) Compressed() bool { return p.compressed }

// Hash160 returns RIPEMD160(SHA256(Bytes())), the payload P2PKH/P2SH/
// P2WPKH addresses are built from.
func (p *PublicKey) Hash160() []byte {
	return encoding.Hash160(p.Bytes())
}

// Point exposes the underlying curve point for callers in this module
// that need raw EC operations (BIP32 child derivation).
func (p *PublicKey) Point() *ecc.PublicKey { return p.point }
