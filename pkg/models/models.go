// Package models holds cross-cutting value types shared by the coin
// façade and the address-watch poller, independent of any one coin's
// key/transaction/transport implementation.
package models

// Coin identifies one of the supported coin+network combinations by the
// same name pkg/coins.Registry keys its policies with ("btc", "bch",
// "ltc", "dash", "doge").
type Coin string

const (
	CoinBTC  Coin = "btc"
	CoinBCH  Coin = "bch"
	CoinLTC  Coin = "ltc"
	CoinDash Coin = "dash"
	CoinDoge Coin = "doge"
)

// DerivedAddress holds a generated address alongside the derivation
// path and public key it came from.
type DerivedAddress struct {
	Coin           Coin   `json:"coin"`
	Address        string `json:"address"`
	DerivationPath string `json:"derivation_path"`
	PublicKey      string `json:"public_key"`
}

// WatchEvent is a change a Listener observed for one watched address:
// a new transaction, a confirmation-height change, or a reorg that
// evicted a previously seen transaction from the address's history.
type WatchEvent struct {
	Coin      Coin   `json:"coin"`
	Address   string `json:"address"`
	TxID      string `json:"tx_id"`
	Height    int64  `json:"height"` // 0 or negative: unconfirmed, per ElectrumX convention
	Confirmed bool   `json:"confirmed"`
	Reorged   bool   `json:"reorged,omitempty"`
}

// BroadcastRecord is what a TxStore persists against an idempotency
// key so a repeated Send call with the same key doesn't resubmit.
type BroadcastRecord struct {
	Coin   Coin   `json:"coin"`
	TxID   string `json:"tx_id"`
	RawHex string `json:"raw_hex"`
}
