// Package coins binds the key-material, transaction, and explorer-
// transport layers into a single per-coin façade: Bitcoin, BitcoinCash,
// Litecoin, Dash, and Doge share one implementation, parameterized by a
// CoinPolicy value rather than by a type hierarchy.
package coins

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/olehkaliuzhnyi/cryptos/internal/encoding"
	"github.com/olehkaliuzhnyi/cryptos/internal/script"
	"github.com/olehkaliuzhnyi/cryptos/internal/storage"
	"github.com/olehkaliuzhnyi/cryptos/pkg/explorer"
	"github.com/olehkaliuzhnyi/cryptos/pkg/keys"
	"github.com/olehkaliuzhnyi/cryptos/pkg/models"
	"github.com/olehkaliuzhnyi/cryptos/pkg/tx"
)

// Coin is a uniform façade over one coin+network's policy. Its methods
// dispatch to the shared keys/tx/explorer algorithms, consulting policy
// for version bytes, fork-id, and explorer identity. Coin values are
// immutable; WithTransport returns a new value rather than mutating the
// receiver.
type Coin struct {
	policy    CoinPolicy
	transport explorer.Transport
	txStore   storage.TxStore
	testnet   *Coin // nil on a Coin that is already the testnet variant
	logger    *slog.Logger
}

func newCoin(p CoinPolicy) *Coin {
	return &Coin{policy: p, logger: slog.Default().With("component", "coin", "coin", p.Name, "testnet", p.Testnet)}
}

func newCoinPair(registry *Registry, name string) *Coin {
	mainnet := newCoin(mustLookup(registry, name, false))
	testnet := newCoin(mustLookup(registry, name, true))
	mainnet.testnet = testnet
	return mainnet
}

var defaultRegistry = NewRegistry()

// Bitcoin, BitcoinCash, Litecoin, Dash, and Doge are the preconfigured
// mainnet façades; call Testnet() for the testnet sibling.
var (
	Bitcoin     = newCoinPair(defaultRegistry, "btc")
	BitcoinCash = newCoinPair(defaultRegistry, "bch")
	Litecoin    = newCoinPair(defaultRegistry, "ltc")
	Dash        = newCoinPair(defaultRegistry, "dash")
	Doge        = newCoinPair(defaultRegistry, "doge")
)

// Testnet returns the testnet sibling of a mainnet Coin, or c itself if
// c is already a testnet Coin.
func (c *Coin) Testnet() *Coin {
	if c.testnet != nil {
		return c.testnet
	}
	return c
}

// Policy returns the CoinPolicy this façade dispatches against.
func (c *Coin) Policy() CoinPolicy { return c.policy }

// WithTransport returns a copy of c bound to transport, for the
// explorer-dependent methods (Unspent, FetchTx, History, PushTx, Send).
func (c *Coin) WithTransport(transport explorer.Transport) *Coin {
	cp := *c
	cp.transport = transport
	return &cp
}

// WithTxStore returns a copy of c bound to a TxStore, enabling Send's
// idempotency-key dedup. Without one, every Send call broadcasts.
func (c *Coin) WithTxStore(store storage.TxStore) *Coin {
	cp := *c
	cp.txStore = store
	return &cp
}

// PrivToAddr derives the legacy P2PKH address priv's public key pays to
// under this coin's policy.
func (c *Coin) PrivToAddr(priv *keys.PrivateKey) (string, error) {
	return c.policy.hash160ToP2PKHAddress(priv.PubKey().Hash160()), nil
}

// DerivePath walks master through each index in path, in order, and
// returns a DerivedAddress holding the legacy P2PKH address the
// resulting node's public key pays to under this coin's policy, the
// path in m/a/b'/c form, and that public key's hex encoding. The
// derived node itself is not returned.
func (c *Coin) DerivePath(master *keys.ExtendedKey, path []uint32) (models.DerivedAddress, error) {
	node := master
	for _, index := range path {
		child, err := node.Child(index)
		if err != nil {
			return models.DerivedAddress{}, wrapCoinError("derive path", err)
		}
		node = child
	}

	pub := node.PubKey()
	return models.DerivedAddress{
		Coin:           models.Coin(c.policy.Name),
		Address:        c.policy.hash160ToP2PKHAddress(pub.Hash160()),
		DerivationPath: formatDerivationPath(path),
		PublicKey:      pub.Hex(),
	}, nil
}

// formatDerivationPath renders path in the conventional m/a/b'/c form,
// marking hardened indices with a trailing apostrophe.
func formatDerivationPath(path []uint32) string {
	b := strings.Builder{}
	b.WriteString("m")
	for _, index := range path {
		b.WriteString("/")
		if index >= keys.HardenedOffset {
			fmt.Fprintf(&b, "%d'", index-keys.HardenedOffset)
		} else {
			fmt.Fprintf(&b, "%d", index)
		}
	}
	return b.String()
}

// PrivToP2W derives the nested-SegWit (P2WPKH-in-P2SH) address for priv,
// always using a compressed public key regardless of priv's own
// encoding hint, since a SegWit program commits to a compressed key.
func (c *Coin) PrivToP2W(priv *keys.PrivateKey) (string, error) {
	pub := priv.WithCompression(true).PubKey()
	redeem := script.P2WPKHRedeemScript(pub.Hash160())
	return c.policy.hash160ToP2SHAddress(encoding.Hash160(redeem)), nil
}

// UnspentInput is one spendable output a caller wants included in a
// transaction built by MkTx.
type UnspentInput struct {
	TxID         string
	Index        uint32
	Value        int64
	PrevScript   []byte
	RedeemScript []byte
	Segwit       bool
}

// Output pays Value to Address, resolved to a scriptPubKey under this
// coin's policy.
type Output struct {
	Address string
	Value   int64
}

// MkTx builds an unsigned transaction spending inputs and paying
// outputs, resolving each output address to a scriptPubKey under this
// coin's policy.
func (c *Coin) MkTx(inputs []UnspentInput, outputs []Output) (*tx.Transaction, error) {
	t := tx.NewTransaction()
	for _, in := range inputs {
		op, err := tx.NewOutpoint(in.TxID, in.Index)
		if err != nil {
			return nil, wrapCoinError("mktx: input outpoint", err)
		}
		t.AddInput(&tx.TxInput{
			Outpoint:     op,
			Sequence:     0xffffffff,
			PrevScript:   in.PrevScript,
			RedeemScript: in.RedeemScript,
			Amount:       in.Value,
			Segwit:       in.Segwit,
		})
	}
	for _, out := range outputs {
		spk, err := c.policy.AddressToScript(out.Address)
		if err != nil {
			return nil, wrapCoinError("mktx: output address", err)
		}
		t.AddOutput(out.Value, spk)
	}
	return t, nil
}

func (c *Coin) signOptions() tx.SignOptions {
	return tx.SignOptions{UseForkID: c.policy.UseForkID, ForkID: c.policy.ForkID}
}

// Sign signs input i of t with priv, applying this coin's sighash
// policy (fork-id, when the coin requires it).
func (c *Coin) Sign(t *tx.Transaction, i int, priv *keys.PrivateKey) error {
	return tx.Sign(t, i, priv, c.signOptions())
}

// SignAll signs every input of t with priv.
func (c *Coin) SignAll(t *tx.Transaction, priv *keys.PrivateKey) error {
	return tx.SignAll(t, priv, c.signOptions())
}

// Unspent lists the unspent outputs paying address, via this Coin's
// attached transport.
func (c *Coin) Unspent(ctx context.Context, address string) ([]explorer.UTXO, error) {
	if err := c.requireTransport(); err != nil {
		return nil, err
	}
	return c.transport.Unspent(ctx, address)
}

// FetchTx returns the raw hex encoding of txid, via this Coin's
// attached transport.
func (c *Coin) FetchTx(ctx context.Context, txid string) (string, error) {
	if err := c.requireTransport(); err != nil {
		return "", err
	}
	return c.transport.FetchTx(ctx, txid)
}

// History lists transactions touching address, via this Coin's
// attached transport.
func (c *Coin) History(ctx context.Context, address string) ([]explorer.HistoryEntry, error) {
	if err := c.requireTransport(); err != nil {
		return nil, err
	}
	return c.transport.History(ctx, address)
}

// PushTx broadcasts rawHex, via this Coin's attached transport.
func (c *Coin) PushTx(ctx context.Context, rawHex string) (explorer.PushResult, error) {
	if err := c.requireTransport(); err != nil {
		return explorer.PushResult{}, err
	}
	return c.transport.PushTx(ctx, rawHex)
}

func (c *Coin) requireTransport() error {
	if c.transport == nil {
		return coinErrorf("coin %q has no transport attached; call WithTransport first", c.policy.Name)
	}
	return nil
}

// SendRequest parameterizes one Send call: a single-destination,
// legacy-P2PKH-sourced spend with automatic UTXO selection and change.
type SendRequest struct {
	From       *keys.PrivateKey
	To         string
	Amount     int64
	SatPerByte int64 // 0 uses the coin policy's DefaultSatPerByte
	MaxRetries int   // 0 uses 3

	// IdempotencyKey, when set and a TxStore is attached via
	// WithTxStore, makes a repeated Send with the same key return the
	// prior broadcast's result instead of resubmitting.
	IdempotencyKey string
}

// Send selects unspent outputs paying From's address, builds a
// transaction paying To and returning change to From, signs every
// input, and broadcasts it with retry. It assumes From's funds sit in
// ordinary legacy P2PKH outputs; callers spending SegWit or multisig
// funds should build and sign the transaction directly with MkTx/Sign.
func (c *Coin) Send(ctx context.Context, req SendRequest) (explorer.PushResult, error) {
	if err := c.requireTransport(); err != nil {
		return explorer.PushResult{}, err
	}
	if req.IdempotencyKey != "" && c.txStore != nil {
		if rec, err := c.txStore.Get(req.IdempotencyKey); err != nil {
			return explorer.PushResult{}, wrapCoinError("send: idempotency lookup", err)
		} else if rec != nil {
			return explorer.PushResult{Status: "ok", TxID: rec.TxID}, nil
		}
	}
	satPerByte := req.SatPerByte
	if satPerByte == 0 {
		satPerByte = c.policy.DefaultSatPerByte
	}
	maxRetries := req.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}

	fromAddr, err := c.PrivToAddr(req.From)
	if err != nil {
		return explorer.PushResult{}, wrapCoinError("send: derive source address", err)
	}
	fromScript, err := c.policy.AddressToScript(fromAddr)
	if err != nil {
		return explorer.PushResult{}, wrapCoinError("send: source scriptPubKey", err)
	}

	utxos, err := c.Unspent(ctx, fromAddr)
	if err != nil {
		return explorer.PushResult{}, err
	}

	// dummyVBytesPerInput/baseVBytes are a rough legacy-P2PKH size
	// estimate, used only to pick how many UTXOs to accumulate; the
	// actual fee charged comes from signing a throwaway transaction
	// with the selected inputs and measuring its real vsize below.
	const dummyVBytesPerInput = 148
	const baseVBytes = 44

	var selected []explorer.UTXO
	var total int64
	roughFee := int64(baseVBytes) * satPerByte
	for _, u := range utxos {
		selected = append(selected, u)
		total += u.Value
		roughFee = int64(baseVBytes+len(selected)*dummyVBytesPerInput) * satPerByte
		if total >= req.Amount+roughFee {
			break
		}
	}
	if total < req.Amount+roughFee {
		return explorer.PushResult{}, coinErrorf("send: insufficient funds: have %d, need %d (amount + estimated fee)", total, req.Amount+roughFee)
	}

	inputs := make([]UnspentInput, len(selected))
	for i, u := range selected {
		inputs[i] = UnspentInput{TxID: u.TxID, Index: u.Index, Value: u.Value, PrevScript: fromScript, Segwit: u.Segwit}
	}

	// Size a throwaway signed copy to learn the transaction's actual
	// vsize, then re-size with the fee that vsize implies until the two
	// agree: a DER signature can change length by a byte whenever the
	// change value, and so the signed digest, changes.
	actualFee := roughFee
	for attempt := 0; attempt < 10; attempt++ {
		sizingOutputs := []Output{{Address: req.To, Value: req.Amount}}
		if change := total - req.Amount - actualFee; change > 0 {
			sizingOutputs = append(sizingOutputs, Output{Address: fromAddr, Value: change})
		}
		sizingTxn, err := c.MkTx(inputs, sizingOutputs)
		if err != nil {
			return explorer.PushResult{}, err
		}
		if err := c.SignAll(sizingTxn, req.From); err != nil {
			return explorer.PushResult{}, wrapCoinError("send: size transaction", err)
		}
		sizedFee := int64(sizingTxn.EstimatedVSize()) * satPerByte
		if sizedFee == actualFee {
			break
		}
		actualFee = sizedFee
	}

	if total < req.Amount+actualFee {
		return explorer.PushResult{}, coinErrorf("send: insufficient funds: have %d, need %d (amount + actual fee)", total, req.Amount+actualFee)
	}

	outputs := []Output{{Address: req.To, Value: req.Amount}}
	change := total - req.Amount - actualFee
	if change > 0 {
		outputs = append(outputs, Output{Address: fromAddr, Value: change})
	}

	txn, err := c.MkTx(inputs, outputs)
	if err != nil {
		return explorer.PushResult{}, err
	}
	if err := c.SignAll(txn, req.From); err != nil {
		return explorer.PushResult{}, wrapCoinError("send: sign", err)
	}

	rawHex := fmt.Sprintf("%x", txn.Serialize())
	result, err := c.broadcastWithRetry(ctx, rawHex, maxRetries)
	if err != nil {
		return result, err
	}
	if req.IdempotencyKey != "" && c.txStore != nil {
		rec := &models.BroadcastRecord{Coin: models.Coin(c.policy.Name), TxID: result.TxID, RawHex: rawHex}
		if err := c.txStore.Put(req.IdempotencyKey, rec); err != nil {
			c.logger.Warn("idempotency record not persisted", "error", err)
		}
	}
	return result, nil
}

func (c *Coin) broadcastWithRetry(ctx context.Context, rawHex string, maxRetries int) (explorer.PushResult, error) {
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		result, err := c.PushTx(ctx, rawHex)
		if err == nil {
			c.logger.Info("broadcast succeeded", "attempt", attempt, "txid", result.TxID)
			return result, nil
		}
		lastErr = err
		c.logger.Warn("broadcast attempt failed", "attempt", attempt, "max_retries", maxRetries, "error", err)

		select {
		case <-time.After(time.Duration(attempt*attempt) * time.Second):
		case <-ctx.Done():
			return explorer.PushResult{}, ctx.Err()
		}
	}
	return explorer.PushResult{}, wrapCoinError(fmt.Sprintf("all %d broadcast attempts failed", maxRetries), lastErr)
}
