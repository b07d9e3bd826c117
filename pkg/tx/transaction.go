// Package tx implements the transaction model, wire codec, and signing
// engine: legacy and BIP141 SegWit serialization, TXID/WTXID, and sighash
// construction and signature assembly per input kind.
package tx

import (
	"encoding/hex"

	"github.com/olehkaliuzhnyi/cryptos/internal/encoding"
)

// Outpoint identifies a previous transaction's output by its txid (32
// bytes, little-endian on the wire, displayed big-endian/reversed) and
// output index.
type Outpoint struct {
	Hash  [32]byte
	Index uint32
}

// NewOutpoint builds an Outpoint from a big-endian (display-order) hex
// txid, reversing it to the wire's little-endian storage order.
func NewOutpoint(txidHex string, index uint32) (Outpoint, error) {
	b, err := hex.DecodeString(txidHex)
	if err != nil {
		return Outpoint{}, wrapCodecError("decode outpoint txid", err)
	}
	if len(b) != 32 {
		return Outpoint{}, codecErrorf("outpoint txid must be 32 bytes, got %d", len(b))
	}
	var op Outpoint
	for i := 0; i < 32; i++ {
		op.Hash[i] = b[31-i]
	}
	op.Index = index
	return op, nil
}

// TxIDHex returns the outpoint's txid in the conventional big-endian
// display order.
func (o Outpoint) TxIDHex() string {
	rev := make([]byte, 32)
	for i := 0; i < 32; i++ {
		rev[i] = o.Hash[31-i]
	}
	return hex.EncodeToString(rev)
}

// TxInput is one spend of a prior output. ScriptSig is empty until
// signed (or always empty for a pure-witness input). Amount and
// Segwit must be set before signing a SegWit input; Witness holds the
// stack items [sig_blob, pubkey, ...] once signed.
type TxInput struct {
	Outpoint  Outpoint
	ScriptSig []byte
	Sequence  uint32

	// PrevScript is the prevout's scriptPubKey, required by the signing
	// engine to classify the input template. Not part of the wire
	// encoding.
	PrevScript []byte
	// RedeemScript is the P2SH redeem script, required when PrevScript
	// is a P2SH template (bare multisig, or the nested-P2WPKH wrapper).
	// Not part of the wire encoding.
	RedeemScript []byte
	// Amount is the prevout value in satoshis, required for BIP143/BCH
	// SegWit signing. Not part of the wire encoding.
	Amount int64
	// Segwit marks this input as spending a witness output (native or
	// nested P2WPKH), selecting BIP143 sighash and witness placement.
	Segwit bool

	Witness [][]byte

	// multisigSigs accumulates partial bare-multisig signatures across
	// successive Sign calls, in the order they were produced; sign.go
	// re-orders them to match the redeem script's public-key order
	// before assembling ScriptSig.
	multisigSigs []multisigSig
}

// HasWitness reports whether this input carries a non-empty witness
// stack.
func (in *TxInput) HasWitness() bool { return len(in.Witness) > 0 }

// Signed reports whether this input has been assigned either a
// non-empty scriptSig or a non-empty witness.
func (in *TxInput) Signed() bool { return len(in.ScriptSig) > 0 || in.HasWitness() }

// TxOutput pays Value satoshis to ScriptPubKey.
type TxOutput struct {
	Value        int64
	ScriptPubKey []byte
}

// Transaction is the in-memory model: mutable during construction,
// conceptually frozen once serialized.
type Transaction struct {
	Version  int32
	Inputs   []*TxInput
	Outputs  []*TxOutput
	Locktime uint32
}

// NewTransaction returns an empty transaction with version 1 and no
// locktime, the conventional defaults for a freshly built spend.
func NewTransaction() *Transaction {
	return &Transaction{Version: 1}
}

// AddInput appends an input spending outpoint, with PrevScript/Amount/
// Segwit set by the caller (typically CoinPolicy-aware construction in
// pkg/coins) before Sign is called.
func (t *Transaction) AddInput(in *TxInput) {
	t.Inputs = append(t.Inputs, in)
}

// AddOutput appends an output paying value to scriptPubKey.
func (t *Transaction) AddOutput(value int64, scriptPubKey []byte) {
	t.Outputs = append(t.Outputs, &TxOutput{Value: value, ScriptPubKey: scriptPubKey})
}

// HasWitness reports whether any input carries a non-empty witness,
// the condition under which the SegWit marker/flag must be emitted.
func (t *Transaction) HasWitness() bool {
	for _, in := range t.Inputs {
		if in.HasWitness() {
			return true
		}
	}
	return false
}

// Copy returns a deep copy of t, used by the signing engine to compute
// sighashes against a modified scriptSig without mutating the caller's
// transaction.
func (t *Transaction) Copy() *Transaction {
	out := &Transaction{
		Version:  t.Version,
		Locktime: t.Locktime,
		Inputs:   make([]*TxInput, len(t.Inputs)),
		Outputs:  make([]*TxOutput, len(t.Outputs)),
	}
	for i, in := range t.Inputs {
		cp := *in
		cp.ScriptSig = append([]byte{}, in.ScriptSig...)
		cp.PrevScript = append([]byte{}, in.PrevScript...)
		cp.RedeemScript = append([]byte{}, in.RedeemScript...)
		cp.multisigSigs = append([]multisigSig{}, in.multisigSigs...)
		if in.Witness != nil {
			cp.Witness = make([][]byte, len(in.Witness))
			for j, item := range in.Witness {
				cp.Witness[j] = append([]byte{}, item...)
			}
		}
		out.Inputs[i] = &cp
	}
	for i, o := range t.Outputs {
		cp := *o
		cp.ScriptPubKey = append([]byte{}, o.ScriptPubKey...)
		out.Outputs[i] = &cp
	}
	return out
}

// TxID is the double-SHA-256 of the legacy (witness-free) serialization,
// in wire (little-endian) byte order.
func (t *Transaction) TxID() [32]byte {
	var id [32]byte
	copy(id[:], encoding.Dhash(t.serializeLegacy()))
	return id
}

// TxIDHex returns TxID in the conventional big-endian display order.
func (t *Transaction) TxIDHex() string {
	id := t.TxID()
	return reverseHex(id[:])
}

// WTxID is the double-SHA-256 of the full SegWit serialization
// (including witness data). Equal to TxID when the transaction carries
// no witness.
func (t *Transaction) WTxID() [32]byte {
	var id [32]byte
	copy(id[:], encoding.Dhash(t.Serialize()))
	return id
}

// WTxIDHex returns WTxID in the conventional big-endian display order.
func (t *Transaction) WTxIDHex() string {
	id := t.WTxID()
	return reverseHex(id[:])
}

// EstimatedVSize returns the transaction's virtual size in vbytes per
// BIP141's weight/4 formula, using each input's current ScriptSig/
// Witness contents as a size estimate. Used by fee estimation; callers
// building an unsigned transaction should call it after a dummy
// signature pass to size the final fee correctly.
func (t *Transaction) EstimatedVSize() int {
	legacy := len(t.serializeLegacy())
	if !t.HasWitness() {
		return legacy
	}
	full := len(t.Serialize())
	witnessBytes := full - legacy
	weight := legacy*4 + witnessBytes
	return (weight + 3) / 4
}

func reverseHex(b []byte) string {
	rev := make([]byte, len(b))
	for i := range b {
		rev[i] = b[len(b)-1-i]
	}
	return hex.EncodeToString(rev)
}
