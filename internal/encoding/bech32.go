package encoding

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

// SegwitVersion0 is the only witness version this library encodes or
// decodes, matching spec's P2WPKH-only scope.
const SegwitVersion0 = 0

// EncodeSegwitAddress encodes a version-0 witness program (the 20-byte
// hash160 of a public key) as a BIP173 Bech32 address under hrp.
func EncodeSegwitAddress(hrp string, program []byte) (string, error) {
	converted, err := bech32.ConvertBits(program, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("encoding: convert bits: %w", err)
	}

	data := make([]byte, 0, len(converted)+1)
	data = append(data, SegwitVersion0)
	data = append(data, converted...)

	encoded, err := bech32.Encode(hrp, data)
	if err != nil {
		return "", fmt.Errorf("encoding: bech32 encode: %w", err)
	}
	return encoded, nil
}

// DecodeSegwitAddress decodes a Bech32 address, validating the HRP and
// witness version, and returns the witness program bytes.
func DecodeSegwitAddress(hrp, address string) ([]byte, error) {
	gotHRP, data, err := bech32.Decode(address)
	if err != nil {
		return nil, fmt.Errorf("encoding: bech32 decode: %w", err)
	}
	if gotHRP != hrp {
		return nil, fmt.Errorf("encoding: bech32 hrp mismatch: want %q got %q", hrp, gotHRP)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("encoding: bech32 payload empty")
	}
	version := data[0]
	if version != SegwitVersion0 {
		return nil, fmt.Errorf("encoding: unsupported witness version %d", version)
	}

	program, err := bech32.ConvertBits(data[1:], 5, 8, false)
	if err != nil {
		return nil, fmt.Errorf("encoding: convert bits: %w", err)
	}
	return program, nil
}
