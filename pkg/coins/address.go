package coins

import (
	"github.com/olehkaliuzhnyi/cryptos/internal/encoding"
	"github.com/olehkaliuzhnyi/cryptos/internal/script"
)

// hash160ToP2PKHAddress Base58Check-encodes a 20-byte pubkey hash under
// this policy's P2PKH version byte.
func (p CoinPolicy) hash160ToP2PKHAddress(h160 []byte) string {
	payload := make([]byte, 0, 1+len(h160))
	payload = append(payload, p.P2PKHVersion)
	payload = append(payload, h160...)
	return encoding.EncodeCheck(payload)
}

// hash160ToP2SHAddress Base58Check-encodes a 20-byte script hash under
// this policy's P2SH version byte.
func (p CoinPolicy) hash160ToP2SHAddress(h160 []byte) string {
	payload := make([]byte, 0, 1+len(h160))
	payload = append(payload, p.P2SHVersion)
	payload = append(payload, h160...)
	return encoding.EncodeCheck(payload)
}

// ScriptToAddress renders a scriptPubKey in this policy's conventional
// address form: Base58Check for P2PKH/P2SH, Bech32 for P2WPKH when the
// policy carries an HRP.
func (p CoinPolicy) ScriptToAddress(scriptPubKey []byte) (string, error) {
	switch script.Classify(scriptPubKey) {
	case script.KindP2PKH:
		return p.hash160ToP2PKHAddress(script.ExtractHash160(scriptPubKey)), nil
	case script.KindP2SH:
		return p.hash160ToP2SHAddress(script.ExtractHash160(scriptPubKey)), nil
	case script.KindP2WPKH:
		if p.Bech32HRP == "" {
			return "", coinErrorf("coin %q has no bech32 HRP configured for native SegWit addresses", p.Name)
		}
		addr, err := encoding.EncodeSegwitAddress(p.Bech32HRP, script.ExtractHash160(scriptPubKey))
		if err != nil {
			return "", wrapCoinError("encode segwit address", err)
		}
		return addr, nil
	default:
		return "", coinErrorf("scriptPubKey matches no address-representable template")
	}
}

// AddressToScript parses address under this policy's version bytes/HRP
// and returns the scriptPubKey it pays.
func (p CoinPolicy) AddressToScript(address string) ([]byte, error) {
	if p.Bech32HRP != "" {
		if program, err := encoding.DecodeSegwitAddress(p.Bech32HRP, address); err == nil {
			return script.P2WPKH(program), nil
		}
	}

	payload, err := encoding.DecodeCheck(address)
	if err != nil {
		return nil, wrapCoinError("decode address", err)
	}
	if len(payload) != 21 {
		return nil, coinErrorf("address payload has unexpected length %d", len(payload))
	}
	version, h160 := payload[0], payload[1:]

	switch version {
	case p.P2PKHVersion:
		return script.P2PKH(h160), nil
	case p.P2SHVersion:
		return script.P2SH(h160), nil
	default:
		return nil, coinErrorf("address version byte 0x%02x matches neither coin %q's P2PKH (0x%02x) nor P2SH (0x%02x)",
			version, p.Name, p.P2PKHVersion, p.P2SHVersion)
	}
}
