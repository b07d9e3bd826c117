package ecc

import (
	"bytes"
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"
)

func testScalar(t *testing.T, seed string) *PrivateKey {
	t.Helper()
	h := sha256.Sum256([]byte(seed))
	priv, err := NewPrivateKeyFromScalar(h[:])
	require.NoError(t, err)
	return priv
}

func TestSignVerifyRoundTrip(t *testing.T) {
	priv := testScalar(t, "ecc sign/verify fixture")
	digest := sha256.Sum256([]byte("message"))

	sig, err := Sign(priv, digest[:])
	require.NoError(t, err)
	require.True(t, Verify(sig, digest[:], priv.PubKey()))
	require.True(t, IsLowS(sig))
}

func TestSignIsDeterministic(t *testing.T) {
	priv := testScalar(t, "rfc6979 fixture")
	digest := sha256.Sum256([]byte("same message every time"))

	sig1, err := Sign(priv, digest[:])
	require.NoError(t, err)
	sig2, err := Sign(priv, digest[:])
	require.NoError(t, err)

	require.Equal(t, sig1.DER(), sig2.DER())
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	priv := testScalar(t, "key one")
	other := testScalar(t, "key two")
	digest := sha256.Sum256([]byte("message"))

	sig, err := Sign(priv, digest[:])
	require.NoError(t, err)
	require.False(t, Verify(sig, digest[:], other.PubKey()))
}

func TestDERRoundTrip(t *testing.T) {
	priv := testScalar(t, "der fixture")
	digest := sha256.Sum256([]byte("payload"))

	sig, err := Sign(priv, digest[:])
	require.NoError(t, err)

	parsed, err := ParseDER(sig.DER())
	require.NoError(t, err)
	require.True(t, Verify(parsed, digest[:], priv.PubKey()))
}

func TestRecoverRoundTrip(t *testing.T) {
	priv := testScalar(t, "recovery fixture")
	digest := sha256.Sum256([]byte("recoverable message"))

	sig, err := Sign(priv, digest[:])
	require.NoError(t, err)

	want := priv.PubKey().SerializeCompressed()
	var recoveredOne bool
	for recID := byte(0); recID < 4; recID++ {
		pub, err := Recover(sig, recID, digest[:])
		if err != nil {
			continue
		}
		if bytes.Equal(pub.SerializeCompressed(), want) {
			recoveredOne = true
		}
	}
	require.True(t, recoveredOne, "no recovery id in [0,3] reconstructed the signing key")
}

func TestRecoverRejectsOutOfRangeID(t *testing.T) {
	priv := testScalar(t, "recovery fixture 2")
	digest := sha256.Sum256([]byte("message"))

	sig, err := Sign(priv, digest[:])
	require.NoError(t, err)

	_, err = Recover(sig, 4, digest[:])
	require.Error(t, err)
}

func TestAddScalarsMatchesPointAddition(t *testing.T) {
	priv := testScalar(t, "base")
	tweakDigest := sha256.Sum256([]byte("tweak"))

	sum, isZero := AddScalars(priv.Bytes(), tweakDigest[:])
	require.False(t, isZero)

	tweakedPriv, err := NewPrivateKeyFromScalar(sum)
	require.NoError(t, err)

	viaPoint, err := AddScalarMultG(priv.PubKey(), tweakDigest[:])
	require.NoError(t, err)

	require.Equal(t, tweakedPriv.PubKey().SerializeCompressed(), viaPoint.SerializeCompressed())
}
