package encoding

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSegwitAddressRoundTrip(t *testing.T) {
	program := make([]byte, 20)
	for i := range program {
		program[i] = byte(i)
	}

	addr, err := EncodeSegwitAddress("bc", program)
	require.NoError(t, err)

	decoded, err := DecodeSegwitAddress("bc", addr)
	require.NoError(t, err)
	require.Equal(t, program, decoded)
}

func TestSegwitAddressRejectsWrongHRP(t *testing.T) {
	program := make([]byte, 20)
	addr, err := EncodeSegwitAddress("bc", program)
	require.NoError(t, err)

	_, err = DecodeSegwitAddress("tb", addr)
	require.Error(t, err)
}
