// Package sighash computes the message digest a signature is taken
// over: the legacy pre-SegWit form (with anyone-can-pay/single/none
// masking), the BIP143 witness form, and the BCH fork-id variant of
// BIP143.
package sighash

import (
	"encoding/binary"

	"github.com/olehkaliuzhnyi/cryptos/internal/encoding"
)

// HashType is the low byte appended to a sighash preimage, selecting
// which inputs/outputs the signature covers.
type HashType byte

const (
	All          HashType = 0x01
	None         HashType = 0x02
	Single       HashType = 0x03
	AnyoneCanPay HashType = 0x80

	baseMask HashType = 0x1f

	// ForkID is Bitcoin Cash's replay-protection bit.
	ForkID HashType = 0x40
)

// Base returns the hash type with the anyone-can-pay and fork-id bits
// masked off, leaving just All/None/Single.
func (h HashType) Base() HashType { return h & baseMask & 0x3f }

// AnyoneCanPaySet reports whether the anyone-can-pay bit is set.
func (h HashType) AnyoneCanPaySet() bool { return h&AnyoneCanPay != 0 }

// Input is the minimal view of a transaction input the sighash
// algorithms need: its outpoint (serialized wire bytes) and sequence.
// The scriptCode of the input being signed is passed to
// WitnessPreimage separately.
type Input struct {
	Outpoint [36]byte // outpoint.Hash || outpoint.Index, little-endian
	Sequence uint32
}

// Output is the minimal view of a transaction output the sighash
// algorithms need.
type Output struct {
	Value        int64
	ScriptPubKey []byte
}

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func le64(v int64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, uint64(v))
	return b
}

func serializeOutput(o Output) []byte {
	out := make([]byte, 0, 8+1+len(o.ScriptPubKey))
	out = append(out, le64(o.Value)...)
	out = append(out, encoding.EncodeVarInt(uint64(len(o.ScriptPubKey)))...)
	out = append(out, o.ScriptPubKey...)
	return out
}
