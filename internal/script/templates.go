package script

import "bytes"

// Kind identifies which standard template a scriptPubKey matches.
type Kind int

const (
	KindUnknown Kind = iota
	KindP2PKH
	KindP2SH
	KindP2WPKH
)

// P2PKH builds a standard pay-to-pubkey-hash scriptPubKey:
// OP_DUP OP_HASH160 <20> OP_EQUALVERIFY OP_CHECKSIG.
func P2PKH(pubKeyHash []byte) []byte {
	out := make([]byte, 0, 25)
	out = append(out, OP_DUP, OP_HASH160)
	out = append(out, pushData(pubKeyHash)...)
	out = append(out, OP_EQUALVERIFY, OP_CHECKSIG)
	return out
}

// P2SH builds a standard pay-to-script-hash scriptPubKey:
// OP_HASH160 <20> OP_EQUAL.
func P2SH(scriptHash []byte) []byte {
	out := make([]byte, 0, 23)
	out = append(out, OP_HASH160)
	out = append(out, pushData(scriptHash)...)
	out = append(out, OP_EQUAL)
	return out
}

// P2WPKH builds a native SegWit v0 scriptPubKey: OP_0 <20>.
func P2WPKH(pubKeyHash []byte) []byte {
	out := make([]byte, 0, 22)
	out = append(out, OP_0)
	out = append(out, pushData(pubKeyHash)...)
	return out
}

// P2WPKHRedeemScript builds the redeem script for P2WPKH nested in P2SH:
// OP_0 <20> hash160(pub), the same bytes as a bare P2WPKH scriptPubKey. The
// P2SH address wrapping it is Base58Check(P2SH_version, hash160(redeem)).
func P2WPKHRedeemScript(pubKeyHash []byte) []byte {
	return P2WPKH(pubKeyHash)
}

// P2WPKHInP2SHScriptSig builds the scriptSig that spends a P2SH output
// whose redeem script is P2WPKHRedeemScript: a single push of that 22-byte
// redeem script, <22> 00 14 <hash160(pub)>.
func P2WPKHInP2SHScriptSig(pubKeyHash []byte) []byte {
	return pushData(P2WPKHRedeemScript(pubKeyHash))
}

// Classify pattern-matches scriptPubKey against the exact byte shapes of
// the standard templates.
func Classify(scriptPubKey []byte) Kind {
	switch {
	case isP2PKH(scriptPubKey):
		return KindP2PKH
	case isP2SH(scriptPubKey):
		return KindP2SH
	case isP2WPKH(scriptPubKey):
		return KindP2WPKH
	default:
		return KindUnknown
	}
}

func isP2PKH(s []byte) bool {
	return len(s) == 25 &&
		s[0] == OP_DUP && s[1] == OP_HASH160 && s[2] == 0x14 &&
		s[23] == OP_EQUALVERIFY && s[24] == OP_CHECKSIG
}

func isP2SH(s []byte) bool {
	return len(s) == 23 && s[0] == OP_HASH160 && s[1] == 0x14 && s[22] == OP_EQUAL
}

func isP2WPKH(s []byte) bool {
	return len(s) == 22 && s[0] == OP_0 && s[1] == 0x14
}

// IsAddress reports whether scriptPubKey is a standard P2PKH template.
func IsAddress(scriptPubKey []byte) bool { return isP2PKH(scriptPubKey) }

// IsP2SH reports whether scriptPubKey is a standard P2SH template.
func IsP2SH(scriptPubKey []byte) bool { return isP2SH(scriptPubKey) }

// IsSegwit reports whether scriptPubKey is a native P2WPKH template.
func IsSegwit(scriptPubKey []byte) bool { return isP2WPKH(scriptPubKey) }

// ExtractHash160 returns the 20-byte hash embedded in a P2PKH, P2SH, or
// P2WPKH scriptPubKey, or nil if scriptPubKey matches none of them.
func ExtractHash160(scriptPubKey []byte) []byte {
	switch Classify(scriptPubKey) {
	case KindP2PKH:
		return scriptPubKey[3:23]
	case KindP2SH:
		return scriptPubKey[2:22]
	case KindP2WPKH:
		return scriptPubKey[2:22]
	default:
		return nil
	}
}

// MultisigRedeemPubKeys parses a bare CHECKMULTISIG redeem script of the
// form OP_m <pub1> ... <pubn> OP_n OP_CHECKMULTISIG and returns the
// required signature count m and the ordered public keys.
func MultisigRedeemPubKeys(redeem []byte) (m int, pubKeys [][]byte, ok bool) {
	if len(redeem) < 3 || redeem[len(redeem)-1] != OP_CHECKMULTISIG {
		return 0, nil, false
	}
	if redeem[0] < 0x51 || redeem[0] > 0x60 {
		return 0, nil, false
	}
	m = int(redeem[0] - 0x50)

	rest := redeem[1 : len(redeem)-2]
	n := int(redeem[len(redeem)-2] - 0x50)

	var keys [][]byte
	i := 0
	for i < len(rest) {
		length := int(rest[i])
		if length == 0 || length > 0x4b || i+1+length > len(rest) {
			return 0, nil, false
		}
		keys = append(keys, rest[i+1:i+1+length])
		i += 1 + length
	}
	if len(keys) != n {
		return 0, nil, false
	}
	return m, keys, true
}

// EqualScripts reports whether two scripts are byte-identical.
func EqualScripts(a, b []byte) bool { return bytes.Equal(a, b) }
