// Package encoding implements the numeric and text codecs consensus-critical
// transaction serialization depends on: CompactSize varints, Base58Check,
// Bech32/BIP173, and the hash helpers used throughout key and address
// derivation.
package encoding

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrNonCanonicalVarInt is returned by DecodeVarIntStrict when a value was
// encoded with a wider prefix than its magnitude requires.
var ErrNonCanonicalVarInt = errors.New("encoding: non-canonical varint")

// EncodeVarInt encodes n using the Bitcoin CompactSize rule: values below
// 0xfd are a single byte, otherwise a 1-byte prefix (0xfd/0xfe/0xff) selects
// a 2/4/8-byte little-endian payload.
func EncodeVarInt(n uint64) []byte {
	switch {
	case n < 0xfd:
		return []byte{byte(n)}
	case n <= 0xffff:
		buf := make([]byte, 3)
		buf[0] = 0xfd
		binary.LittleEndian.PutUint16(buf[1:], uint16(n))
		return buf
	case n <= 0xffffffff:
		buf := make([]byte, 5)
		buf[0] = 0xfe
		binary.LittleEndian.PutUint32(buf[1:], uint32(n))
		return buf
	default:
		buf := make([]byte, 9)
		buf[0] = 0xff
		binary.LittleEndian.PutUint64(buf[1:], n)
		return buf
	}
}

// DecodeVarInt reads a CompactSize varint from r. It tolerates
// non-canonical encodings (e.g. 0xfd 0x00 0x00 for the value 0), matching
// historical Bitcoin Core decode behavior.
func DecodeVarInt(r io.Reader) (uint64, error) {
	return decodeVarInt(r, false)
}

// DecodeVarIntStrict is identical to DecodeVarInt but rejects encodings
// wider than the shortest form for their value, returning
// ErrNonCanonicalVarInt.
func DecodeVarIntStrict(r io.Reader) (uint64, error) {
	return decodeVarInt(r, true)
}

func decodeVarInt(r io.Reader, strict bool) (uint64, error) {
	var prefix [1]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return 0, fmt.Errorf("encoding: read varint prefix: %w", err)
	}

	switch prefix[0] {
	case 0xfd:
		var buf [2]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, fmt.Errorf("encoding: read varint payload: %w", err)
		}
		v := uint64(binary.LittleEndian.Uint16(buf[:]))
		if strict && v < 0xfd {
			return 0, ErrNonCanonicalVarInt
		}
		return v, nil
	case 0xfe:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, fmt.Errorf("encoding: read varint payload: %w", err)
		}
		v := uint64(binary.LittleEndian.Uint32(buf[:]))
		if strict && v <= 0xffff {
			return 0, ErrNonCanonicalVarInt
		}
		return v, nil
	case 0xff:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, fmt.Errorf("encoding: read varint payload: %w", err)
		}
		v := binary.LittleEndian.Uint64(buf[:])
		if strict && v <= 0xffffffff {
			return 0, ErrNonCanonicalVarInt
		}
		return v, nil
	default:
		return uint64(prefix[0]), nil
	}
}

// VarIntSize returns the number of bytes EncodeVarInt(n) would produce.
func VarIntSize(n uint64) int {
	switch {
	case n < 0xfd:
		return 1
	case n <= 0xffff:
		return 3
	case n <= 0xffffffff:
		return 5
	default:
		return 9
	}
}
