// Package explorer defines the narrow contract the signing/transaction
// layers need from a block-explorer backend: list unspent outputs for an
// address, fetch a transaction by id, list an address's transaction
// history, and broadcast a signed transaction. No concrete backend
// (ElectrumX, a REST explorer, a full node's RPC) is assumed; callers
// inject whichever Transport implementation talks to theirs.
package explorer

import "context"

// UTXO is one unspent output reported for a watched address.
type UTXO struct {
	TxID   string
	Index  uint32
	Value  int64
	Height int64 // 0 for unconfirmed, matching ElectrumX's listunspent convention
	Segwit bool
}

// HistoryEntry is one transaction touching a watched address.
type HistoryEntry struct {
	TxID   string
	Height int64 // 0 or negative for unconfirmed/mempool entries
}

// PushResult is the outcome of broadcasting a raw transaction.
type PushResult struct {
	Status string
	TxID   string
}

// Transport is the adapter the coin façade and the ambient watch poller
// depend on. Implementations do not need to agree on wire format beyond
// this contract; the core performs no I/O of its own.
type Transport interface {
	// Unspent lists the unspent outputs currently paying address.
	Unspent(ctx context.Context, address string) ([]UTXO, error)
	// FetchTx returns the raw hex encoding of a transaction by its
	// big-endian-displayed txid.
	FetchTx(ctx context.Context, txid string) (string, error)
	// History lists transactions touching address, oldest first.
	History(ctx context.Context, address string) ([]HistoryEntry, error)
	// PushTx broadcasts rawHex and returns the explorer's acknowledgement.
	PushTx(ctx context.Context, rawHex string) (PushResult, error)
}
