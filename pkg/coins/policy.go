package coins

import "github.com/olehkaliuzhnyi/cryptos/pkg/keys"

// CoinPolicy is the per-coin, per-network data a single set of
// algorithms consults to do address/transaction work. Coins are
// distinguished by the values in this record, not by a type hierarchy
// or per-coin method overrides.
type CoinPolicy struct {
	// Name is the coin identifier ("btc", "bch", "ltc", "dash", "doge").
	Name string
	// Testnet marks this policy as the coin's testnet variant.
	Testnet bool

	// P2PKHVersion is the Base58Check version byte for legacy addresses.
	P2PKHVersion byte
	// P2SHVersion is the Base58Check version byte for script/nested
	// SegWit addresses.
	P2SHVersion byte
	// WIFVersion is the Base58Check version byte for WIF-encoded
	// private keys.
	WIFVersion byte
	// Bech32HRP is the BIP173 human-readable part for native SegWit
	// addresses, empty for coins that don't support them (Dash, Doge).
	Bech32HRP string

	// BIP32 carries the xprv/xpub-style extended-key version bytes this
	// policy serializes ExtendedKey values with.
	BIP32 keys.ExtendedKeyVersions

	// UseForkID selects the BCH SIGHASH_FORKID sighash variant; ForkID
	// is the 3-byte value mixed into the preimage (0 for BCH itself).
	UseForkID bool
	ForkID    uint32

	// StrictLowS records whether this coin's relay policy rejects high-S
	// signatures. It is data only: no verification path in this module
	// reads it, and ecc.Verify accepts both low-S and high-S (ecc.IsLowS
	// is the separate check). Signing always emits low-S regardless.
	StrictLowS bool

	// ExplorerName documents which backend this policy's addresses were
	// validated against; it carries no behavior, only provenance.
	ExplorerName string

	// DefaultSatPerByte is the fee rate used when a caller doesn't
	// supply one explicitly.
	DefaultSatPerByte int64
}
