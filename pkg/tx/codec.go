package tx

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/olehkaliuzhnyi/cryptos/internal/encoding"
)

const (
	segwitMarker byte = 0x00
	segwitFlag   byte = 0x01
)

// Serialize encodes t: legacy form if no input carries a witness,
// BIP141 SegWit form (marker/flag + witness vectors) if any does.
func (t *Transaction) Serialize() []byte {
	if !t.HasWitness() {
		return t.serializeLegacy()
	}
	return t.serializeSegwit()
}

func (t *Transaction) serializeLegacy() []byte {
	var buf bytes.Buffer
	t.writeVersion(&buf)
	t.writeInputs(&buf)
	t.writeOutputs(&buf)
	t.writeLocktime(&buf)
	return buf.Bytes()
}

func (t *Transaction) serializeSegwit() []byte {
	var buf bytes.Buffer
	t.writeVersion(&buf)
	buf.WriteByte(segwitMarker)
	buf.WriteByte(segwitFlag)
	t.writeInputs(&buf)
	t.writeOutputs(&buf)
	for _, in := range t.Inputs {
		buf.Write(encoding.EncodeVarInt(uint64(len(in.Witness))))
		for _, item := range in.Witness {
			buf.Write(encoding.EncodeVarInt(uint64(len(item))))
			buf.Write(item)
		}
	}
	t.writeLocktime(&buf)
	return buf.Bytes()
}

func (t *Transaction) writeVersion(buf *bytes.Buffer) {
	var v [4]byte
	binary.LittleEndian.PutUint32(v[:], uint32(t.Version))
	buf.Write(v[:])
}

func (t *Transaction) writeInputs(buf *bytes.Buffer) {
	buf.Write(encoding.EncodeVarInt(uint64(len(t.Inputs))))
	for _, in := range t.Inputs {
		buf.Write(in.Outpoint.Hash[:])
		var idx [4]byte
		binary.LittleEndian.PutUint32(idx[:], in.Outpoint.Index)
		buf.Write(idx[:])
		buf.Write(encoding.EncodeVarInt(uint64(len(in.ScriptSig))))
		buf.Write(in.ScriptSig)
		var seq [4]byte
		binary.LittleEndian.PutUint32(seq[:], in.Sequence)
		buf.Write(seq[:])
	}
}

func (t *Transaction) writeOutputs(buf *bytes.Buffer) {
	buf.Write(encoding.EncodeVarInt(uint64(len(t.Outputs))))
	for _, out := range t.Outputs {
		var val [8]byte
		binary.LittleEndian.PutUint64(val[:], uint64(out.Value))
		buf.Write(val[:])
		buf.Write(encoding.EncodeVarInt(uint64(len(out.ScriptPubKey))))
		buf.Write(out.ScriptPubKey)
	}
}

func (t *Transaction) writeLocktime(buf *bytes.Buffer) {
	var lt [4]byte
	binary.LittleEndian.PutUint32(lt[:], t.Locktime)
	buf.Write(lt[:])
}

// Deserialize parses a transaction from its wire encoding, detecting the
// SegWit marker/flag by peeking at the two bytes following the version
// field.
func Deserialize(raw []byte) (*Transaction, error) {
	br := bytes.NewReader(raw)
	t := &Transaction{}

	var v [4]byte
	if _, err := io.ReadFull(br, v[:]); err != nil {
		return nil, wrapCodecError("read version", err)
	}
	t.Version = int32(binary.LittleEndian.Uint32(v[:]))

	var peek [2]byte
	if _, err := io.ReadFull(br, peek[:]); err != nil {
		return nil, wrapCodecError("peek marker/flag", err)
	}

	segwit := peek[0] == segwitMarker && peek[1] == segwitFlag
	var r io.Reader = br
	if !segwit {
		r = io.MultiReader(bytes.NewReader(peek[:]), br)
	}

	if err := t.readInputs(r); err != nil {
		return nil, err
	}
	if err := t.readOutputs(r); err != nil {
		return nil, err
	}

	if segwit {
		for _, in := range t.Inputs {
			count, err := encoding.DecodeVarInt(r)
			if err != nil {
				return nil, wrapCodecError("read witness stack size", err)
			}
			items := make([][]byte, 0, count)
			for i := uint64(0); i < count; i++ {
				length, err := encoding.DecodeVarInt(r)
				if err != nil {
					return nil, wrapCodecError("read witness item length", err)
				}
				item := make([]byte, length)
				if _, err := io.ReadFull(r, item); err != nil {
					return nil, wrapCodecError("read witness item", err)
				}
				items = append(items, item)
			}
			in.Witness = items
		}
	}

	var lt [4]byte
	if _, err := io.ReadFull(r, lt[:]); err != nil {
		return nil, wrapCodecError("read locktime", err)
	}
	t.Locktime = binary.LittleEndian.Uint32(lt[:])

	if segwit && !t.HasWitness() {
		return nil, codecErrorf("marker/flag present but no input carries a witness")
	}
	return t, nil
}

func (t *Transaction) readInputs(r io.Reader) error {
	n, err := encoding.DecodeVarInt(r)
	if err != nil {
		return wrapCodecError("read input count", err)
	}
	t.Inputs = make([]*TxInput, n)
	for i := uint64(0); i < n; i++ {
		in := &TxInput{}
		if _, err := io.ReadFull(r, in.Outpoint.Hash[:]); err != nil {
			return wrapCodecError("read outpoint hash", err)
		}
		var idx [4]byte
		if _, err := io.ReadFull(r, idx[:]); err != nil {
			return wrapCodecError("read outpoint index", err)
		}
		in.Outpoint.Index = binary.LittleEndian.Uint32(idx[:])

		scriptLen, err := encoding.DecodeVarInt(r)
		if err != nil {
			return wrapCodecError("read scriptSig length", err)
		}
		in.ScriptSig = make([]byte, scriptLen)
		if _, err := io.ReadFull(r, in.ScriptSig); err != nil {
			return wrapCodecError("read scriptSig", err)
		}

		var seq [4]byte
		if _, err := io.ReadFull(r, seq[:]); err != nil {
			return wrapCodecError("read sequence", err)
		}
		in.Sequence = binary.LittleEndian.Uint32(seq[:])
		t.Inputs[i] = in
	}
	return nil
}

func (t *Transaction) readOutputs(r io.Reader) error {
	n, err := encoding.DecodeVarInt(r)
	if err != nil {
		return wrapCodecError("read output count", err)
	}
	t.Outputs = make([]*TxOutput, n)
	for i := uint64(0); i < n; i++ {
		out := &TxOutput{}
		var val [8]byte
		if _, err := io.ReadFull(r, val[:]); err != nil {
			return wrapCodecError("read output value", err)
		}
		out.Value = int64(binary.LittleEndian.Uint64(val[:]))

		scriptLen, err := encoding.DecodeVarInt(r)
		if err != nil {
			return wrapCodecError("read scriptPubKey length", err)
		}
		out.ScriptPubKey = make([]byte, scriptLen)
		if _, err := io.ReadFull(r, out.ScriptPubKey); err != nil {
			return wrapCodecError("read scriptPubKey", err)
		}
		t.Outputs[i] = out
	}
	return nil
}
