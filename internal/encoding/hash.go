package encoding

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // RIPEMD-160 is required by the Bitcoin hash160 construction
)

// Sha256 returns the single SHA-256 digest of data.
func Sha256(data []byte) []byte {
	h := sha256.Sum256(data)
	return h[:]
}

// Dhash returns the double-SHA-256 digest of data, used for TXIDs,
// Base58Check checksums, and legacy/BIP143 sighash preimages.
func Dhash(data []byte) []byte {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return second[:]
}

// Hash160 returns RIPEMD160(SHA256(data)), the digest used for P2PKH and
// P2SH payloads.
func Hash160(data []byte) []byte {
	sha := sha256.Sum256(data)
	r := ripemd160.New()
	r.Write(sha[:]) //nolint:errcheck // ripemd160.Write never returns an error
	return r.Sum(nil)
}

// HMACSHA512 computes HMAC-SHA512(key, data), the primitive BIP32 master
// and child derivation build on.
func HMACSHA512(key, data []byte) []byte {
	mac := hmac.New(sha512.New, key)
	mac.Write(data) //nolint:errcheck // hmac.Write never returns an error
	return mac.Sum(nil)
}
