package sighash

import "github.com/olehkaliuzhnyi/cryptos/internal/encoding"

// HashPrevouts returns dhash(concat(outpoint_i LE)) over every input,
// or 32 zero bytes if maskedOut is true (NONE/SINGLE without
// anyone-can-pay leave hashSequence/hashOutputs masked, but hashPrevouts
// is masked only by anyone-can-pay).
func HashPrevouts(inputs []Input, maskedOut bool) []byte {
	if maskedOut {
		return make([]byte, 32)
	}
	var buf []byte
	for _, in := range inputs {
		buf = append(buf, in.Outpoint[:]...)
	}
	return encoding.Dhash(buf)
}

// HashSequence returns dhash(concat(sequence_i LE)) over every input, or
// 32 zero bytes if maskedOut (anyone-can-pay, or hashType base is not
// ALL).
func HashSequence(inputs []Input, maskedOut bool) []byte {
	if maskedOut {
		return make([]byte, 32)
	}
	var buf []byte
	for _, in := range inputs {
		buf = append(buf, le32(in.Sequence)...)
	}
	return encoding.Dhash(buf)
}

// HashOutputs returns dhash(concat(serialized_outputs)) for the given
// outputs, or 32 zero bytes if maskedOut. Callers pass every output for
// ALL, an empty slice for NONE, or a single-element slice for SINGLE.
func HashOutputs(outputs []Output, maskedOut bool) []byte {
	if maskedOut {
		return make([]byte, 32)
	}
	var buf []byte
	for _, o := range outputs {
		buf = append(buf, serializeOutput(o)...)
	}
	return encoding.Dhash(buf)
}

// WitnessPreimage assembles the BIP143 sighash preimage for signing
// input index i: version || hashPrevouts || hashSequence || outpoint ||
// scriptCode || amount || sequence || hashOutputs || locktime ||
// hashcode, where hashcode is htype (optionally OR-ed with ForkID and
// carrying a fork-id in its high 3 bytes — the caller builds that u32).
func WitnessPreimage(version int32, hashPrevouts, hashSequence []byte, outpoint [36]byte, scriptCode []byte, amount int64, sequence uint32, hashOutputs []byte, locktime uint32, hashcode uint32) []byte {
	var buf []byte
	buf = append(buf, le32(uint32(version))...)
	buf = append(buf, hashPrevouts...)
	buf = append(buf, hashSequence...)
	buf = append(buf, outpoint[:]...)
	buf = append(buf, encoding.EncodeVarInt(uint64(len(scriptCode)))...)
	buf = append(buf, scriptCode...)
	buf = append(buf, le64(amount)...)
	buf = append(buf, le32(sequence)...)
	buf = append(buf, hashOutputs...)
	buf = append(buf, le32(locktime)...)
	buf = append(buf, le32(hashcode)...)
	return buf
}

// ForkIDHashcode builds the u32 appended to a BCH preimage: the low
// byte is htype OR-ed with ForkID, and the high 3 bytes carry the
// coin's fork-id, little-endian overall.
func ForkIDHashcode(htype HashType, forkID uint32) uint32 {
	return uint32(htype|ForkID) | (forkID << 8)
}
