package tx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func fixtureOutpoint(b byte, index uint32) Outpoint {
	var op Outpoint
	for i := range op.Hash {
		op.Hash[i] = b
	}
	op.Index = index
	return op
}

func legacyFixture() *Transaction {
	t := NewTransaction()
	t.AddInput(&TxInput{Outpoint: fixtureOutpoint(0x11, 0), Sequence: 0xffffffff})
	t.AddInput(&TxInput{Outpoint: fixtureOutpoint(0x22, 1), Sequence: 0xffffffff})
	t.AddOutput(100000, []byte{0x76, 0xa9, 0x14})
	t.AddOutput(200000, []byte{0x76, 0xa9, 0x14})
	t.Locktime = 0
	return t
}

func segwitFixture() *Transaction {
	t := NewTransaction()
	t.AddInput(&TxInput{
		Outpoint: fixtureOutpoint(0x33, 0),
		Sequence: 0xffffffff,
		Witness:  [][]byte{{0x30, 0x44, 0x01}, {0x02, 0x03}},
	})
	t.AddOutput(90000, []byte{0x00, 0x14})
	return t
}

func TestLegacyRoundTrip(t *testing.T) {
	orig := legacyFixture()
	raw := orig.Serialize()

	parsed, err := Deserialize(raw)
	require.NoError(t, err)
	require.Equal(t, raw, parsed.Serialize())
	require.False(t, parsed.HasWitness())
}

func TestSegwitRoundTrip(t *testing.T) {
	orig := segwitFixture()
	raw := orig.Serialize()
	require.Equal(t, byte(0x00), raw[4])
	require.Equal(t, byte(0x01), raw[5])

	parsed, err := Deserialize(raw)
	require.NoError(t, err)
	require.Equal(t, raw, parsed.Serialize())
	require.True(t, parsed.HasWitness())
}

func TestTxIDIgnoresWitness(t *testing.T) {
	withWitness := segwitFixture()
	stripped := withWitness.Copy()
	for _, in := range stripped.Inputs {
		in.Witness = nil
	}

	require.Equal(t, stripped.TxID(), withWitness.TxID())
	require.NotEqual(t, withWitness.TxID(), withWitness.WTxID())
}

func TestDeserializeRejectsTruncatedInput(t *testing.T) {
	raw := legacyFixture().Serialize()
	_, err := Deserialize(raw[:len(raw)-10])
	var codecErr *CodecError
	require.ErrorAs(t, err, &codecErr)
}

func TestCopyIsIndependent(t *testing.T) {
	orig := legacyFixture()
	cp := orig.Copy()
	cp.Inputs[0].ScriptSig = []byte{0x01, 0x02}

	require.Empty(t, orig.Inputs[0].ScriptSig)
	require.NotEqual(t, orig.Serialize(), cp.Serialize())
}

func TestEstimatedVSizeMatchesLegacySizeWithoutWitness(t *testing.T) {
	tx := legacyFixture()
	require.Equal(t, len(tx.Serialize()), tx.EstimatedVSize())
}
