package keys

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var electrumTestSeed = "0123456789abcdef0123456789abcdef"[:32]

func TestElectrumMasterKeyRejectsShortSeed(t *testing.T) {
	_, err := NewElectrumMasterKey("abcd")
	var derivErr *DerivationError
	require.ErrorAs(t, err, &derivErr)
}

func TestElectrumMasterKeyDeterministic(t *testing.T) {
	m1, err := NewElectrumMasterKey(electrumTestSeed)
	require.NoError(t, err)
	m2, err := NewElectrumMasterKey(electrumTestSeed)
	require.NoError(t, err)

	require.Equal(t, m1.MPK(), m2.MPK())
	require.Len(t, m1.MPK(), 64)
}

func TestElectrumChildDeterministicAndDistinct(t *testing.T) {
	m, err := NewElectrumMasterKey(electrumTestSeed)
	require.NoError(t, err)

	c1, err := m.Child(0, false, electrumTestSeed)
	require.NoError(t, err)
	c2, err := m.Child(0, false, electrumTestSeed)
	require.NoError(t, err)
	require.Equal(t, c1.Scalar(), c2.Scalar())

	c3, err := m.Child(1, false, electrumTestSeed)
	require.NoError(t, err)
	require.NotEqual(t, c1.Scalar(), c3.Scalar())

	c4, err := m.Child(0, true, electrumTestSeed)
	require.NoError(t, err)
	require.NotEqual(t, c1.Scalar(), c4.Scalar())
}
