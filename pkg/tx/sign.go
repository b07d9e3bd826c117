package tx

import (
	"encoding/binary"

	"github.com/olehkaliuzhnyi/cryptos/internal/ecc"
	"github.com/olehkaliuzhnyi/cryptos/internal/encoding"
	"github.com/olehkaliuzhnyi/cryptos/internal/script"
	"github.com/olehkaliuzhnyi/cryptos/internal/sighash"
	"github.com/olehkaliuzhnyi/cryptos/pkg/keys"
)

// SignOptions parameterizes one Sign/SignAll call. HashType defaults to
// sighash.All (0x01) when left zero. UseForkID selects the BCH
// SIGHASH_FORKID variant: when set, every input — including legacy
// P2PKH ones — is signed with the BIP143 preimage, with ForkID (the
// coin policy's fork-id, zero for BCH itself) placed in the high 3
// bytes of the appended hashcode.
type SignOptions struct {
	HashType  sighash.HashType
	UseForkID bool
	ForkID    uint32
}

func (o SignOptions) hashType() sighash.HashType {
	if o.HashType == 0 {
		return sighash.All
	}
	return o.HashType
}

// Sign signs input index i of t with priv, selecting the sighash
// algorithm and scriptSig/witness shape from the prevout template. It
// is idempotent: if a single-sig input already carries a signature, or
// a bare-multisig input already carries this key's signature, Sign
// returns nil without modifying it. A bare-multisig input signed by a
// different key of its redeem script gains this key's signature.
func Sign(t *Transaction, i int, priv *keys.PrivateKey, opts SignOptions) error {
	if i < 0 || i >= len(t.Inputs) {
		return signingErrorf("input index %d out of range", i)
	}
	in := t.Inputs[i]
	kind := script.Classify(in.PrevScript)
	pub := priv.PubKey()

	// Bare multisig accumulates one signature per call and tracks its
	// own per-signer idempotency; every other kind is single-sig, so a
	// non-empty scriptSig/witness already means this input is done.
	if kind != script.KindP2SH || in.Segwit {
		if in.Signed() {
			return nil
		}
	}

	switch {
	case kind == script.KindP2WPKH:
		return signWitnessInput(t, i, priv, pub, script.P2PKH(pub.Hash160()), opts)

	case kind == script.KindP2SH && in.Segwit:
		if err := signWitnessInput(t, i, priv, pub, script.P2PKH(pub.Hash160()), opts); err != nil {
			return err
		}
		in.ScriptSig = script.P2WPKHInP2SHScriptSig(pub.Hash160())
		return nil

	case kind == script.KindP2SH:
		return signMultisigInput(t, i, priv, pub, opts)

	case kind == script.KindP2PKH:
		return signLegacyP2PKHInput(t, i, priv, pub, opts)

	default:
		return signingErrorf("input %d: prevout script matches no known template", i)
	}
}

// SignAll signs every input of t with priv in index order, equivalent
// to sequential Sign calls but offered as one atomic convenience.
func SignAll(t *Transaction, priv *keys.PrivateKey, opts SignOptions) error {
	for i := range t.Inputs {
		if err := Sign(t, i, priv, opts); err != nil {
			return err
		}
	}
	return nil
}

func signLegacyP2PKHInput(t *Transaction, i int, priv *keys.PrivateKey, pub *keys.PublicKey, opts SignOptions) error {
	in := t.Inputs[i]
	var digest []byte
	var hashcode uint32
	htype := opts.hashType()

	if opts.UseForkID {
		d, hc, err := bchDigest(t, i, in.PrevScript, htype, opts.ForkID)
		if err != nil {
			return err
		}
		digest, hashcode = d, hc
	} else {
		d := legacyDigest(t, i, in.PrevScript, htype)
		digest = d
		hashcode = uint32(htype)
	}

	sig, err := ecc.Sign(priv.EC(), digest)
	if err != nil {
		return wrapSigningError("sign legacy digest", err)
	}
	sigBlob := appendHashcodeByte(sig.DER(), hashcode)
	in.ScriptSig = script.P2PKHScriptSig(sigBlob, pub.Bytes())
	return nil
}

func signWitnessInput(t *Transaction, i int, priv *keys.PrivateKey, pub *keys.PublicKey, scriptCode []byte, opts SignOptions) error {
	in := t.Inputs[i]
	if in.Amount == 0 {
		return signingErrorf("input %d: SegWit signing requires a prevout amount", i)
	}
	htype := opts.hashType()

	var digest []byte
	var hashcode uint32
	if opts.UseForkID {
		d, hc := witnessDigest(t, i, scriptCode, htype, opts.ForkID)
		digest, hashcode = d, hc
	} else {
		digest = witnessDigestPlain(t, i, scriptCode, htype)
		hashcode = uint32(htype)
	}

	sig, err := ecc.Sign(priv.EC(), digest)
	if err != nil {
		return wrapSigningError("sign witness digest", err)
	}
	sigBlob := appendHashcodeByte(sig.DER(), hashcode)
	in.Witness = [][]byte{sigBlob, pub.Bytes()}
	return nil
}

func signMultisigInput(t *Transaction, i int, priv *keys.PrivateKey, pub *keys.PublicKey, opts SignOptions) error {
	in := t.Inputs[i]
	redeem := in.RedeemScript
	if len(redeem) == 0 {
		return signingErrorf("input %d: P2SH input has no redeem script", i)
	}
	_, pubKeys, ok := script.MultisigRedeemPubKeys(redeem)
	if !ok {
		return signingErrorf("input %d: redeem script is not a recognized bare-multisig template", i)
	}

	slot := -1
	pubBytes := pub.Bytes()
	for idx, k := range pubKeys {
		if byteSliceEqual(k, pubBytes) {
			slot = idx
			break
		}
	}
	if slot == -1 {
		return signingErrorf("input %d: signer's public key is not in the redeem script", i)
	}
	for _, existing := range in.multisigSigs {
		if existing.slot == slot {
			return nil
		}
	}

	htype := opts.hashType()
	var digest []byte
	var hashcode uint32
	if opts.UseForkID {
		d, hc, err := bchDigest(t, i, redeem, htype, opts.ForkID)
		if err != nil {
			return err
		}
		digest, hashcode = d, hc
	} else {
		digest = legacyDigest(t, i, redeem, htype)
		hashcode = uint32(htype)
	}

	sig, err := ecc.Sign(priv.EC(), digest)
	if err != nil {
		return wrapSigningError("sign multisig digest", err)
	}
	sigBlob := appendHashcodeByte(sig.DER(), hashcode)

	in.multisigSigs = append(in.multisigSigs, multisigSig{slot: slot, blob: sigBlob})
	sigs := orderedMultisigSigs(in.multisigSigs)
	in.ScriptSig = script.MultisigScriptSig(sigs, redeem)
	return nil
}

// legacyDigest computes the pre-SegWit sighash for signing input i with
// subscript as the scriptSig placeholder.
func legacyDigest(t *Transaction, i int, subscript []byte, htype sighash.HashType) []byte {
	work := t.Copy()
	for _, in := range work.Inputs {
		in.ScriptSig = nil
	}
	work.Inputs[i].ScriptSig = subscript

	switch htype.Base() {
	case sighash.None:
		work.Outputs = nil
	case sighash.Single:
		if i < len(work.Outputs) {
			single := work.Outputs[i]
			work.Outputs = make([]*TxOutput, i+1)
			for idx := range work.Outputs[:i] {
				work.Outputs[idx] = &TxOutput{Value: -1}
			}
			work.Outputs[i] = single
		} else {
			work.Outputs = nil
		}
	}
	if htype.Base() == sighash.None || htype.Base() == sighash.Single {
		for idx, in := range work.Inputs {
			if idx != i {
				in.Sequence = 0
			}
		}
	}

	if htype.AnyoneCanPaySet() {
		work.Inputs = []*TxInput{work.Inputs[i]}
	}

	raw := work.serializeLegacy()
	raw = append(raw, le32bytes(uint32(htype))...)
	return encoding.Dhash(raw)
}

// witnessDigestPlain computes the BIP143 sighash with no fork-id.
func witnessDigestPlain(t *Transaction, i int, scriptCode []byte, htype sighash.HashType) []byte {
	prevouts, sequences, outputs := bip143Components(t)
	in := t.Inputs[i]

	maskPrevouts := htype.AnyoneCanPaySet()
	maskSequence := htype.AnyoneCanPaySet() || htype.Base() != sighash.All
	hp := sighash.HashPrevouts(prevouts, maskPrevouts)
	hs := sighash.HashSequence(sequences, maskSequence)

	var ho []byte
	switch htype.Base() {
	case sighash.None:
		ho = sighash.HashOutputs(nil, true)
	case sighash.Single:
		if i < len(outputs) {
			ho = sighash.HashOutputs([]sighash.Output{outputs[i]}, false)
		} else {
			ho = sighash.HashOutputs(nil, true)
		}
	default:
		ho = sighash.HashOutputs(outputs, false)
	}

	preimage := sighash.WitnessPreimage(t.Version, hp, hs, outpointBytes(in.Outpoint), scriptCode, in.Amount, in.Sequence, ho, t.Locktime, uint32(htype))
	return encoding.Dhash(preimage)
}

// witnessDigest computes the BCH fork-id variant of the BIP143 sighash.
func witnessDigest(t *Transaction, i int, scriptCode []byte, htype sighash.HashType, forkID uint32) ([]byte, uint32) {
	prevouts, sequences, outputs := bip143Components(t)
	in := t.Inputs[i]

	maskPrevouts := htype.AnyoneCanPaySet()
	maskSequence := htype.AnyoneCanPaySet() || htype.Base() != sighash.All
	hp := sighash.HashPrevouts(prevouts, maskPrevouts)
	hs := sighash.HashSequence(sequences, maskSequence)

	var ho []byte
	switch htype.Base() {
	case sighash.None:
		ho = sighash.HashOutputs(nil, true)
	case sighash.Single:
		if i < len(outputs) {
			ho = sighash.HashOutputs([]sighash.Output{outputs[i]}, false)
		} else {
			ho = sighash.HashOutputs(nil, true)
		}
	default:
		ho = sighash.HashOutputs(outputs, false)
	}

	hashcode := sighash.ForkIDHashcode(htype, forkID)
	preimage := sighash.WitnessPreimage(t.Version, hp, hs, outpointBytes(in.Outpoint), scriptCode, in.Amount, in.Sequence, ho, t.Locktime, hashcode)
	return encoding.Dhash(preimage), hashcode
}

// bchDigest computes the BCH fork-id sighash for a legacy-shaped input:
// BIP143 form, using subscript as scriptCode.
func bchDigest(t *Transaction, i int, subscript []byte, htype sighash.HashType, forkID uint32) ([]byte, uint32, error) {
	in := t.Inputs[i]
	if in.Amount == 0 {
		return nil, 0, signingErrorf("input %d: BCH fork-id signing requires a prevout amount", i)
	}
	digest, hashcode := witnessDigest(t, i, subscript, htype, forkID)
	return digest, hashcode, nil
}

func bip143Components(t *Transaction) ([]sighash.Input, []sighash.Input, []sighash.Output) {
	inputs := make([]sighash.Input, len(t.Inputs))
	for i, in := range t.Inputs {
		inputs[i] = sighash.Input{Outpoint: outpointBytes(in.Outpoint), Sequence: in.Sequence}
	}
	outputs := make([]sighash.Output, len(t.Outputs))
	for i, out := range t.Outputs {
		outputs[i] = sighash.Output{Value: out.Value, ScriptPubKey: out.ScriptPubKey}
	}
	return inputs, inputs, outputs
}

func outpointBytes(o Outpoint) [36]byte {
	var b [36]byte
	copy(b[:32], o.Hash[:])
	binary.LittleEndian.PutUint32(b[32:], o.Index)
	return b
}

func appendHashcodeByte(der []byte, hashcode uint32) []byte {
	out := append([]byte{}, der...)
	return append(out, byte(hashcode))
}

func le32bytes(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func byteSliceEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// multisigSig is one signature produced so far for a bare-multisig
// input, tagged with its signer's slot in the redeem script's
// public-key list.
type multisigSig struct {
	slot int
	blob []byte
}

// orderedMultisigSigs returns the accumulated signature blobs sorted
// into the redeem script's public-key order.
func orderedMultisigSigs(sigs []multisigSig) [][]byte {
	ordered := append([]multisigSig{}, sigs...)
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && ordered[j-1].slot > ordered[j].slot; j-- {
			ordered[j-1], ordered[j] = ordered[j], ordered[j-1]
		}
	}
	out := make([][]byte, len(ordered))
	for i, s := range ordered {
		out[i] = s.blob
	}
	return out
}
