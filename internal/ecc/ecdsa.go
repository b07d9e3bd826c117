package ecc

import (
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// Signature is a DER-encodable ECDSA (r, s) pair, always normalized to
// low-S by Sign per spec (RFC 6979 deterministic k, low-S enforced).
type Signature struct {
	inner *ecdsa.Signature
}

// Sign produces a deterministic (RFC 6979) ECDSA signature over the
// 32-byte message digest e, normalized to low-S.
func Sign(priv *PrivateKey, e []byte) (*Signature, error) {
	if len(e) != 32 {
		return nil, fmt.Errorf("ecc: message digest must be 32 bytes, got %d", len(e))
	}
	sig := ecdsa.Sign(priv.btcec(), e)
	return &Signature{inner: sig}, nil
}

// DER returns the DER encoding of the signature (minimal-length r/s with
// leading-zero padding only when the top bit is set).
func (s *Signature) DER() []byte {
	return s.inner.Serialize()
}

// RS returns the signature's r and s values as big-endian big.Ints.
func (s *Signature) RS() (r, sVal *big.Int) {
	rScalar := s.inner.R()
	sScalar := s.inner.S()
	rBytes := rScalar.Bytes()
	sBytes := sScalar.Bytes()
	return new(big.Int).SetBytes(rBytes[:]), new(big.Int).SetBytes(sBytes[:])
}

// ParseDER parses a DER-encoded ECDSA signature.
func ParseDER(b []byte) (*Signature, error) {
	sig, err := ecdsa.ParseDERSignature(b)
	if err != nil {
		return nil, fmt.Errorf("ecc: parse DER signature: %w", err)
	}
	return &Signature{inner: sig}, nil
}

// Verify reports whether sig is a valid signature over digest e by pub.
// Both low-S and high-S signatures verify here; callers enforcing strict
// low-S relay policy must check that separately (see IsLowS).
func Verify(sig *Signature, e []byte, pub *PublicKey) bool {
	return sig.inner.Verify(e, pub.btcec())
}

// halfOrder is n/2, the BIP146 low-S/high-S boundary.
var halfOrder = new(big.Int).Rsh(Order, 1)

// IsLowS reports whether sig's S value is already at or below n/2, the
// BIP146 standardness rule some coin policies enforce strictly.
func IsLowS(sig *Signature) bool {
	_, s := sig.RS()
	return s.Cmp(halfOrder) <= 0
}

// Recover reconstructs the public key from a signature, recovery id
// (0-3), and message digest e.
func Recover(sig *Signature, recID byte, e []byte) (*PublicKey, error) {
	if recID > 3 {
		return nil, fmt.Errorf("ecc: recovery id must be in [0,3], got %d", recID)
	}

	r, s := sig.RS()
	compact := make([]byte, 65)
	compact[0] = 27 + recID
	rBytes, sBytes := r.Bytes(), s.Bytes()
	copy(compact[1+32-len(rBytes):33], rBytes)
	copy(compact[33+32-len(sBytes):65], sBytes)

	pub, _, err := ecdsa.RecoverCompact(compact, e)
	if err != nil {
		return nil, fmt.Errorf("ecc: recover public key: %w", err)
	}
	return &PublicKey{inner: pub}, nil
}
