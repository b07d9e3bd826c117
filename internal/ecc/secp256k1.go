// Package ecc wraps the secp256k1 scalar/point arithmetic and ECDSA
// machinery this library needs — key generation, compressed/uncompressed
// point codec, RFC 6979 deterministic signing, verification, and public-key
// recovery — behind a small surface so the rest of the module never touches
// btcec's types directly.
package ecc

import (
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
)

// ScalarSize is the byte length of a secp256k1 scalar (private key).
const ScalarSize = 32

// Order is the secp256k1 group order n.
var Order = new(big.Int).Set(btcec.S256().N)

// PrivateKey is a secp256k1 scalar in [1, n-1].
type PrivateKey struct {
	inner *btcec.PrivateKey
}

// NewPrivateKeyFromScalar parses a 32-byte big-endian scalar, rejecting 0
// and values >= the curve order.
func NewPrivateKeyFromScalar(scalar []byte) (*PrivateKey, error) {
	if len(scalar) != ScalarSize {
		return nil, fmt.Errorf("ecc: private scalar must be %d bytes, got %d", ScalarSize, len(scalar))
	}

	d := new(big.Int).SetBytes(scalar)
	if d.Sign() == 0 || d.Cmp(Order) >= 0 {
		return nil, fmt.Errorf("ecc: scalar is zero or exceeds curve order")
	}

	priv, _ := btcec.PrivKeyFromBytes(scalar)
	return &PrivateKey{inner: priv}, nil
}

// Bytes returns the 32-byte big-endian scalar.
func (p *PrivateKey) Bytes() []byte {
	b := p.inner.Serialize()
	out := make([]byte, ScalarSize)
	copy(out[ScalarSize-len(b):], b)
	return out
}

// Int returns the scalar as a big.Int, for callers doing modular
// arithmetic on it directly.
func (p *PrivateKey) Int() *big.Int {
	return new(big.Int).SetBytes(p.Bytes())
}

// PubKey returns the public point d*G.
func (p *PrivateKey) PubKey() *PublicKey {
	return &PublicKey{inner: p.inner.PubKey()}
}

func (p *PrivateKey) btcec() *btcec.PrivateKey { return p.inner }

// PublicKey is a secp256k1 curve point.
type PublicKey struct {
	inner *btcec.PublicKey
}

// ParsePublicKey decodes a compressed (33-byte) or uncompressed (65-byte)
// point, validating that it lies on the curve and isn't the identity.
func ParsePublicKey(b []byte) (*PublicKey, error) {
	pub, err := btcec.ParsePubKey(b)
	if err != nil {
		return nil, fmt.Errorf("ecc: parse public key: %w", err)
	}
	return &PublicKey{inner: pub}, nil
}

// NewPublicKeyFromCoords builds a PublicKey from affine coordinates,
// validating that the point lies on the curve.
func NewPublicKeyFromCoords(x, y *big.Int) (*PublicKey, error) {
	if !btcec.S256().IsOnCurve(x, y) {
		return nil, fmt.Errorf("ecc: point is not on curve")
	}
	compressed := compressPoint(x, y)
	return ParsePublicKey(compressed)
}

func compressPoint(x, y *big.Int) []byte {
	out := make([]byte, 33)
	if y.Bit(0) == 0 {
		out[0] = 0x02
	} else {
		out[0] = 0x03
	}
	xb := x.Bytes()
	copy(out[33-len(xb):], xb)
	return out
}

// SerializeCompressed returns the 33-byte compressed point encoding.
func (p *PublicKey) SerializeCompressed() []byte {
	return p.inner.SerializeCompressed()
}

// SerializeUncompressed returns the 65-byte uncompressed point encoding.
func (p *PublicKey) SerializeUncompressed() []byte {
	return p.inner.SerializeUncompressed()
}

// Coords returns the public key's affine (x, y) coordinates.
func (p *PublicKey) Coords() (x, y *big.Int) {
	return p.inner.X(), p.inner.Y()
}

func (p *PublicKey) btcec() *btcec.PublicKey { return p.inner }

// AddScalarMultG returns p + scalar*G, the point-side half of BIP32 normal
// child derivation (parent_pub + IL*G).
func AddScalarMultG(p *PublicKey, scalar []byte) (*PublicKey, error) {
	tweak, err := NewPrivateKeyFromScalar(scalar)
	if err != nil {
		return nil, err
	}
	tweakPoint := tweak.PubKey()

	px, py := p.Coords()
	tx, ty := tweakPoint.Coords()
	x, y := btcec.S256().Add(px, py, tx, ty)
	if x.Sign() == 0 && y.Sign() == 0 {
		return nil, fmt.Errorf("ecc: tweak produced point at infinity")
	}
	return NewPublicKeyFromCoords(x, y)
}

// AddScalars returns (a + b) mod n as a 32-byte big-endian scalar, along
// with whether the result is zero (the BIP32 "advance to the next index"
// case).
func AddScalars(a, b []byte) (sum []byte, isZero bool) {
	ai := new(big.Int).SetBytes(a)
	bi := new(big.Int).SetBytes(b)
	r := new(big.Int).Add(ai, bi)
	r.Mod(r, Order)

	out := make([]byte, ScalarSize)
	rb := r.Bytes()
	copy(out[ScalarSize-len(rb):], rb)
	return out, r.Sign() == 0
}
