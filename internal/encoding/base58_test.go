package encoding

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/stretchr/testify/require"
)

func TestBase58CheckRoundTrip(t *testing.T) {
	payload := []byte{0x00, 0x01, 0x02, 0x03, 0x04}
	encoded := EncodeCheck(payload)

	decoded, err := DecodeCheck(encoded)
	require.NoError(t, err)
	require.Equal(t, payload, decoded)
}

func TestBase58CheckDetectsChecksumMismatch(t *testing.T) {
	payload := []byte{0xde, 0xad, 0xbe, 0xef}
	checksum := Dhash(payload)[:4]

	// Flip a bit in the checksum before encoding, bypassing EncodeCheck.
	tampered := append([]byte{}, checksum...)
	tampered[0] ^= 0x01

	raw := append(append([]byte{}, payload...), tampered...)
	encoded := base58.Encode(raw)

	_, err := DecodeCheck(encoded)
	var checksumErr *ChecksumError
	require.ErrorAs(t, err, &checksumErr)
}

func TestBase58CheckRejectsTooShort(t *testing.T) {
	_, err := DecodeCheck(base58.Encode([]byte{0x01, 0x02}))
	require.ErrorIs(t, err, ErrTooShort)
}
