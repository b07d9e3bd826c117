package coins

import (
	"context"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/olehkaliuzhnyi/cryptos/internal/sighash"
	"github.com/olehkaliuzhnyi/cryptos/internal/storage"
	"github.com/olehkaliuzhnyi/cryptos/pkg/explorer"
	"github.com/olehkaliuzhnyi/cryptos/pkg/keys"
	"github.com/olehkaliuzhnyi/cryptos/pkg/models"
	"github.com/olehkaliuzhnyi/cryptos/pkg/tx"
)

const brainwalletPriv = "89d8d898b95addf569b458fbbd25620e9c9b19c9f730d5d60102abbabcb72678"

func brainwalletKey(t *testing.T) *keys.PrivateKey {
	t.Helper()
	priv, err := keys.NewPrivateKeyFromHex(brainwalletPriv)
	require.NoError(t, err)
	return priv
}

func TestPrivToAddrBrainwalletBitcoinTestnet(t *testing.T) {
	priv := brainwalletKey(t)
	require.False(t, priv.Compressed())
	require.True(t, strings.HasPrefix(priv.PubKey().Hex(), "041f763d81010db8ba3026"))

	addr, err := Bitcoin.Testnet().PrivToAddr(priv)
	require.NoError(t, err)
	require.Equal(t, "mwJUQbdhamwemrsR17oy7z9upFh4JtNxm1", addr)
}

func TestPrivToAddrBrainwalletAcrossCoins(t *testing.T) {
	priv := brainwalletKey(t)

	cases := []struct {
		coin *Coin
		want string
	}{
		{Bitcoin, "1GnX7YYimkWPzkPoHYqbJ4waxG6MN2cdSg"},
		{Litecoin, "Lb1UNkrYrQkTFZ5xTgpta61MAUTdUq7iJ1"},
		{Dash, "XrUMwoCcjTiz9gzP9S9p9bdNnbg3MvAB1F"},
		{Doge, "DLvceoVN5AQgXkaQ28q9qq7BqPpefFRp4E"},
	}
	for _, tc := range cases {
		addr, err := tc.coin.PrivToAddr(priv)
		require.NoError(t, err)
		require.Equal(t, tc.want, addr)
	}
}

func TestPrivToP2WNestedSegwitAddress(t *testing.T) {
	priv := brainwalletKey(t)
	addr, err := Litecoin.Testnet().PrivToP2W(priv)
	require.NoError(t, err)
	require.Equal(t, "2Mtj1R5qSfGowwJkJf7CYufFVNk5BRyAYZh", addr)
}

func TestDerivePathReturnsAddressAndPath(t *testing.T) {
	seed := brainwalletKey(t).Scalar()
	master, err := keys.NewMasterKey(seed)
	require.NoError(t, err)

	derived, err := Bitcoin.DerivePath(master, []uint32{44 + keys.HardenedOffset, 0 + keys.HardenedOffset, 0 + keys.HardenedOffset, 0, 0})
	require.NoError(t, err)

	require.Equal(t, models.CoinBTC, derived.Coin)
	require.Equal(t, "m/44'/0'/0'/0/0", derived.DerivationPath)
	require.NotEmpty(t, derived.Address)
	require.NotEmpty(t, derived.PublicKey)

	// Deriving the same path twice from the same master must be deterministic.
	again, err := Bitcoin.DerivePath(master, []uint32{44 + keys.HardenedOffset, 0 + keys.HardenedOffset, 0 + keys.HardenedOffset, 0, 0})
	require.NoError(t, err)
	require.Equal(t, derived.Address, again.Address)
}

func TestTestnetReturnsDistinctSibling(t *testing.T) {
	require.NotSame(t, Bitcoin, Bitcoin.Testnet())
	require.True(t, Bitcoin.Testnet().Policy().Testnet)
	require.False(t, Bitcoin.Policy().Testnet)
	require.Same(t, Bitcoin.Testnet(), Bitcoin.Testnet().Testnet())
}

func TestMkTxBuildsOutpointsAndScripts(t *testing.T) {
	priv := brainwalletKey(t)
	addr, err := Bitcoin.PrivToAddr(priv)
	require.NoError(t, err)
	fromScript, err := Bitcoin.Policy().AddressToScript(addr)
	require.NoError(t, err)

	txn, err := Bitcoin.MkTx(
		[]UnspentInput{{TxID: strings.Repeat("ab", 32), Index: 0, Value: 100000, PrevScript: fromScript}},
		[]Output{{Address: addr, Value: 90000}},
	)
	require.NoError(t, err)
	require.Len(t, txn.Inputs, 1)
	require.Len(t, txn.Outputs, 1)
	require.Equal(t, fromScript, txn.Outputs[0].ScriptPubKey)
}

func TestSignUsesForkIDForBitcoinCash(t *testing.T) {
	priv := brainwalletKey(t).WithCompression(true)
	addr, err := BitcoinCash.PrivToAddr(priv)
	require.NoError(t, err)
	spk, err := BitcoinCash.Policy().AddressToScript(addr)
	require.NoError(t, err)

	txn, err := BitcoinCash.MkTx(
		[]UnspentInput{{TxID: strings.Repeat("cd", 32), Index: 0, Value: 20000, PrevScript: spk}},
		[]Output{{Address: addr, Value: 19000}},
	)
	require.NoError(t, err)

	require.NoError(t, BitcoinCash.Sign(txn, 0, priv))

	sigLen := int(txn.Inputs[0].ScriptSig[0])
	hashcodeByte := txn.Inputs[0].ScriptSig[sigLen]
	require.Equal(t, byte(sighash.All)|byte(sighash.ForkID), hashcodeByte)
}

type fakeTransport struct {
	utxos  []explorer.UTXO
	pushed []string
}

func (f *fakeTransport) Unspent(ctx context.Context, address string) ([]explorer.UTXO, error) {
	return f.utxos, nil
}
func (f *fakeTransport) FetchTx(ctx context.Context, txid string) (string, error) { return "", nil }
func (f *fakeTransport) History(ctx context.Context, address string) ([]explorer.HistoryEntry, error) {
	return nil, nil
}
func (f *fakeTransport) PushTx(ctx context.Context, rawHex string) (explorer.PushResult, error) {
	f.pushed = append(f.pushed, rawHex)
	return explorer.PushResult{Status: "ok", TxID: "deadbeef"}, nil
}

func TestSendRequiresTransport(t *testing.T) {
	priv := brainwalletKey(t)
	_, err := Bitcoin.Send(context.Background(), SendRequest{From: priv, To: "1GnX7YYimkWPzkPoHYqbJ4waxG6MN2cdSg", Amount: 1000})
	var coinErr *CoinError
	require.ErrorAs(t, err, &coinErr)
}

func TestSendBuildsSignsAndBroadcasts(t *testing.T) {
	priv := brainwalletKey(t)

	transport := &fakeTransport{utxos: []explorer.UTXO{
		{TxID: strings.Repeat("11", 32), Index: 0, Value: 100000},
	}}
	coin := Bitcoin.WithTransport(transport)

	result, err := coin.Send(context.Background(), SendRequest{
		From: priv, To: "1GnX7YYimkWPzkPoHYqbJ4waxG6MN2cdSg", Amount: 50000, SatPerByte: 1,
	})
	require.NoError(t, err)
	require.Equal(t, "deadbeef", result.TxID)
	require.Len(t, transport.pushed, 1)
}

func TestSendFeeMatchesActualSignedVSize(t *testing.T) {
	priv := brainwalletKey(t)

	transport := &fakeTransport{utxos: []explorer.UTXO{
		{TxID: strings.Repeat("44", 32), Index: 0, Value: 100000},
	}}
	coin := Bitcoin.WithTransport(transport)

	_, err := coin.Send(context.Background(), SendRequest{
		From: priv, To: "1GnX7YYimkWPzkPoHYqbJ4waxG6MN2cdSg", Amount: 50000, SatPerByte: 3,
	})
	require.NoError(t, err)
	require.Len(t, transport.pushed, 1)

	rawBytes, err := hex.DecodeString(transport.pushed[0])
	require.NoError(t, err)
	broadcastTxn, err := tx.Deserialize(rawBytes)
	require.NoError(t, err)

	var totalOut int64
	for _, out := range broadcastTxn.Outputs {
		totalOut += out.Value
	}
	actualFee := int64(100000) - totalOut
	require.Equal(t, int64(broadcastTxn.EstimatedVSize())*3, actualFee)
}

func TestSendFailsOnInsufficientFunds(t *testing.T) {
	priv := brainwalletKey(t)
	transport := &fakeTransport{utxos: []explorer.UTXO{
		{TxID: strings.Repeat("22", 32), Index: 0, Value: 1000},
	}}
	coin := Bitcoin.WithTransport(transport)

	_, err := coin.Send(context.Background(), SendRequest{
		From: priv, To: "1GnX7YYimkWPzkPoHYqbJ4waxG6MN2cdSg", Amount: 50000, SatPerByte: 1,
	})
	var coinErr *CoinError
	require.ErrorAs(t, err, &coinErr)
}

func TestSendWithIdempotencyKeySkipsResubmit(t *testing.T) {
	priv := brainwalletKey(t)
	transport := &fakeTransport{utxos: []explorer.UTXO{
		{TxID: strings.Repeat("33", 32), Index: 0, Value: 100000},
	}}
	coin := Bitcoin.WithTransport(transport).WithTxStore(storage.NewMemoryTxStore())

	req := SendRequest{
		From: priv, To: "1GnX7YYimkWPzkPoHYqbJ4waxG6MN2cdSg", Amount: 50000, SatPerByte: 1,
		IdempotencyKey: "payment-42",
	}

	first, err := coin.Send(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, transport.pushed, 1)

	second, err := coin.Send(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, first.TxID, second.TxID)
	require.Len(t, transport.pushed, 1, "second Send with the same idempotency key must not rebroadcast")
}
