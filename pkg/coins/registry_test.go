package coins

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryLookupKnownCoins(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"btc", "bch", "ltc", "dash", "doge"} {
		for _, testnet := range []bool{false, true} {
			p, err := r.Lookup(name, testnet)
			require.NoError(t, err, "%s testnet=%v", name, testnet)
			require.Equal(t, name, p.Name)
			require.Equal(t, testnet, p.Testnet)
		}
	}
}

func TestRegistryLookupUnknownCoinFails(t *testing.T) {
	r := NewRegistry()
	_, err := r.Lookup("xyz", false)
	var coinErr *CoinError
	require.ErrorAs(t, err, &coinErr)
}

func TestRegistryFeeMultipliesVsizeBySatPerByte(t *testing.T) {
	r := NewRegistry()
	fee, err := r.Fee("btc", false, 225, 10)
	require.NoError(t, err)
	require.Equal(t, int64(2250), fee)
}

func TestRegistryFeeRejectsUnknownCoin(t *testing.T) {
	r := NewRegistry()
	_, err := r.Fee("nope", false, 225, 10)
	require.Error(t, err)
}

func TestBitcoinCashUsesForkID(t *testing.T) {
	r := NewRegistry()
	p, err := r.Lookup("bch", false)
	require.NoError(t, err)
	require.True(t, p.UseForkID)
	require.Equal(t, uint32(0), p.ForkID)
}

func TestDashAndDogeDisableStrictLowS(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"dash", "doge"} {
		p, err := r.Lookup(name, false)
		require.NoError(t, err)
		require.False(t, p.StrictLowS)
	}
}
