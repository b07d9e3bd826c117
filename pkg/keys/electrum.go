package keys

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/olehkaliuzhnyi/cryptos/internal/ecc"
)

// electrumStretchRounds is the fixed SHA-256 iteration count Electrum v1
// uses to stretch its 128-bit seed into a secret scalar.
const electrumStretchRounds = 100_000

// ElectrumMasterKey is an Electrum v1 deterministic wallet root: a
// stretched secret scalar and its public point (MPK), from which child
// keys are derived by index and change flag rather than a BIP32 tree.
type ElectrumMasterKey struct {
	stretched *ecc.PrivateKey
}

// NewElectrumMasterKey derives the master key from a 128-bit hex seed,
// stretching it via 100,000 rounds of SHA-256.
func NewElectrumMasterKey(seedHex string) (*ElectrumMasterKey, error) {
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, wrapKeyError("decode Electrum seed hex", err)
	}
	if len(seed) != 16 {
		return nil, derivationErrorf("Electrum seed must be 128 bits (16 bytes), got %d", len(seed))
	}

	stretched := seed
	for i := 0; i < electrumStretchRounds; i++ {
		h := sha256.Sum256(append(append([]byte{}, stretched...), seed...))
		stretched = h[:]
	}

	priv, err := ecc.NewPrivateKeyFromScalar(stretched)
	if err != nil {
		return nil, wrapKeyError("stretched Electrum secret out of range", err)
	}
	return &ElectrumMasterKey{stretched: priv}, nil
}

// MPK returns the master public key as the 64-byte uncompressed point
// encoding with the leading 0x04 prefix stripped, matching how Electrum
// v1 displays it.
func (m *ElectrumMasterKey) MPK() []byte {
	return m.stretched.PubKey().SerializeUncompressed()[1:]
}

// Child derives the private key at sequence index i on the external
// (forChange=false) or internal (forChange=true) chain:
// stretched + SHA256("<i>:<change>:" || seed) mod n.
func (m *ElectrumMasterKey) Child(i int, forChange bool, seedHex string) (*PrivateKey, error) {
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, wrapKeyError("decode Electrum seed hex", err)
	}

	changeFlag := 0
	if forChange {
		changeFlag = 1
	}
	prefix := []byte(fmt.Sprintf("%d:%d:", i, changeFlag))
	tweak := sha256.Sum256(append(prefix, seed...))

	sum, isZero := ecc.AddScalars(m.stretched.Bytes(), tweak[:])
	if isZero {
		return nil, derivationErrorf("Electrum child %d (change=%v) hit the zero scalar", i, forChange)
	}

	priv, err := ecc.NewPrivateKeyFromScalar(sum)
	if err != nil {
		return nil, wrapKeyError("Electrum child scalar out of range", err)
	}
	return &PrivateKey{scalar: priv, encoding: WIFUncompressed}, nil
}
