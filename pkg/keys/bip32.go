package keys

import (
	"encoding/binary"
	"math/big"

	"github.com/olehkaliuzhnyi/cryptos/internal/ecc"
	"github.com/olehkaliuzhnyi/cryptos/internal/encoding"
)

// HardenedOffset is the child index at and above which BIP32 derives a
// hardened child (requiring the parent's private key).
const HardenedOffset = uint32(1) << 31

// bitcoinSeedKey is the fixed HMAC key BIP32 master-key derivation uses.
var bitcoinSeedKey = []byte("Bitcoin seed")

// ExtendedKey is a BIP32 node: depth, parent fingerprint, child index, and
// chain code, plus either a private scalar or a public point. It
// serializes to Base58Check over a 78-byte payload with network-specific
// version bytes supplied by the caller (a CoinPolicy).
type ExtendedKey struct {
	depth             byte
	parentFingerprint [4]byte
	childIndex        uint32
	chainCode         [32]byte
	priv              *ecc.PrivateKey // nil for a public-only node
	pub               *ecc.PublicKey
}

// NewMasterKey derives the root ExtendedKey from a seed via
// HMAC-SHA512(key="Bitcoin seed", msg=seed).
func NewMasterKey(seed []byte) (*ExtendedKey, error) {
	i := encoding.HMACSHA512(bitcoinSeedKey, seed)
	il, ir := i[:32], i[32:]

	priv, err := ecc.NewPrivateKeyFromScalar(il)
	if err != nil {
		return nil, wrapKeyError("master key scalar out of range", err)
	}

	k := &ExtendedKey{priv: priv, pub: priv.PubKey()}
	copy(k.chainCode[:], ir)
	return k, nil
}

// IsPrivate reports whether this node carries a private scalar.
func (k *ExtendedKey) IsPrivate() bool { return k.priv != nil }

// Depth is this node's distance from the master key.
func (k *ExtendedKey) Depth() byte { return k.depth }

// ChildIndex is the index this node was derived at.
func (k *ExtendedKey) ChildIndex() uint32 { return k.childIndex }

// ChainCode returns the 32-byte chain code.
func (k *ExtendedKey) ChainCode() [32]byte { return k.chainCode }

// PubKey returns the node's public key, always compressed (the BIP32
// convention for serialized extended keys).
func (k *ExtendedKey) PubKey() *PublicKey {
	return &PublicKey{point: k.pub, compressed: true}
}

// PrivKey returns the node's private key and true, or (nil, false) if
// this is a public-only node.
func (k *ExtendedKey) PrivKey() (*PrivateKey, bool) {
	if k.priv == nil {
		return nil, false
	}
	return &PrivateKey{scalar: k.priv, encoding: WIFCompressed}, true
}

// Neuter returns a public-only copy of k, stripping its private scalar.
func (k *ExtendedKey) Neuter() *ExtendedKey {
	n := *k
	n.priv = nil
	return &n
}

// fingerprint returns the first 4 bytes of Hash160(compressed pubkey),
// used as both this node's identity and its children's parent fingerprint.
func (k *ExtendedKey) fingerprint() [4]byte {
	var fp [4]byte
	copy(fp[:], encoding.Hash160(k.pub.SerializeCompressed())[:4])
	return fp
}

// Child derives the normal (index < HardenedOffset) or hardened child at
// index, retrying at index+1, index+2, ... if the HMAC output yields an
// invalid scalar (I-L >= n, or I-L + parent == 0 mod n). Hardened
// derivation from a public-only node fails with DerivationError.
func (k *ExtendedKey) Child(index uint32) (*ExtendedKey, error) {
	for i := index; ; i++ {
		hardened := i >= HardenedOffset
		if hardened && k.priv == nil {
			return nil, derivationErrorf("cannot derive hardened child %d from a public-only key", i)
		}

		data := make([]byte, 0, 37)
		if hardened {
			data = append(data, 0x00)
			data = append(data, k.priv.Bytes()...)
		} else {
			data = append(data, k.pub.SerializeCompressed()...)
		}
		data = append(data, be32(i)...)

		out := encoding.HMACSHA512(k.chainCode[:], data)
		il, ir := out[:32], out[32:]

		if !scalarInRange(il) {
			continue
		}

		child := &ExtendedKey{
			depth:             k.depth + 1,
			parentFingerprint: k.fingerprint(),
			childIndex:        i,
		}
		copy(child.chainCode[:], ir)

		if k.priv != nil {
			sum, isZero := ecc.AddScalars(k.priv.Bytes(), il)
			if isZero {
				continue
			}
			childPriv, err := ecc.NewPrivateKeyFromScalar(sum)
			if err != nil {
				continue
			}
			child.priv = childPriv
			child.pub = childPriv.PubKey()
		} else {
			childPub, err := ecc.AddScalarMultG(k.pub, il)
			if err != nil {
				continue
			}
			child.pub = childPub
		}
		return child, nil
	}
}

func scalarInRange(b []byte) bool {
	v := new(big.Int).SetBytes(b)
	return v.Sign() != 0 && v.Cmp(ecc.Order) < 0
}

func be32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

// ExtendedKeyVersions is the pair of 4-byte BIP32 magic values (private,
// public) a CoinPolicy supplies for xprv/xpub-style serialization.
type ExtendedKeyVersions struct {
	Private [4]byte
	Public  [4]byte
}

// Serialize encodes k as Base58Check over the standard 78-byte payload:
// version(4) depth(1) parentFingerprint(4) childIndex(4) chainCode(32)
// keyData(33), using versions.Private if k carries a private scalar or
// versions.Public otherwise.
func (k *ExtendedKey) Serialize(versions ExtendedKeyVersions) string {
	payload := make([]byte, 0, 78)
	if k.priv != nil {
		payload = append(payload, versions.Private[:]...)
	} else {
		payload = append(payload, versions.Public[:]...)
	}
	payload = append(payload, k.depth)
	payload = append(payload, k.parentFingerprint[:]...)
	payload = append(payload, be32(k.childIndex)...)
	payload = append(payload, k.chainCode[:]...)

	if k.priv != nil {
		payload = append(payload, 0x00)
		payload = append(payload, k.priv.Bytes()...)
	} else {
		payload = append(payload, k.pub.SerializeCompressed()...)
	}
	return encoding.EncodeCheck(payload)
}

// ParseExtendedKey decodes a Base58Check-encoded extended key, validating
// its version against versions and its length against the 78-byte shape.
func ParseExtendedKey(s string, versions ExtendedKeyVersions) (*ExtendedKey, error) {
	payload, err := encoding.DecodeCheck(s)
	if err != nil {
		return nil, wrapKeyError("decode extended key", err)
	}
	if len(payload) != 78 {
		return nil, keyErrorf("extended key payload has unexpected length %d", len(payload))
	}

	var version [4]byte
	copy(version[:], payload[:4])

	k := &ExtendedKey{depth: payload[4]}
	copy(k.parentFingerprint[:], payload[5:9])
	k.childIndex = binary.BigEndian.Uint32(payload[9:13])
	copy(k.chainCode[:], payload[13:45])

	keyData := payload[45:78]
	switch version {
	case versions.Private:
		if keyData[0] != 0x00 {
			return nil, keyErrorf("private extended key missing 0x00 prefix")
		}
		priv, err := ecc.NewPrivateKeyFromScalar(keyData[1:])
		if err != nil {
			return nil, wrapKeyError("extended private key scalar", err)
		}
		k.priv = priv
		k.pub = priv.PubKey()
	case versions.Public:
		pub, err := ecc.ParsePublicKey(keyData)
		if err != nil {
			return nil, wrapKeyError("extended public key point", err)
		}
		k.pub = pub
	default:
		return nil, keyErrorf("unrecognized extended key version %x", version)
	}
	return k, nil
}
