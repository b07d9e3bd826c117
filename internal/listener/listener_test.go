package listener

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/olehkaliuzhnyi/cryptos/internal/storage"
	"github.com/olehkaliuzhnyi/cryptos/pkg/explorer"
	"github.com/olehkaliuzhnyi/cryptos/pkg/models"
)

// fakeTransport serves canned History results per address, mutable
// between polls to simulate new transactions, confirmations, and reorgs.
type fakeTransport struct {
	mu      sync.Mutex
	history map[string][]explorer.HistoryEntry
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{history: make(map[string][]explorer.HistoryEntry)}
}

func (f *fakeTransport) setHistory(address string, entries []explorer.HistoryEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history[address] = entries
}

func (f *fakeTransport) Unspent(ctx context.Context, address string) ([]explorer.UTXO, error) {
	return nil, nil
}
func (f *fakeTransport) FetchTx(ctx context.Context, txid string) (string, error) { return "", nil }
func (f *fakeTransport) History(ctx context.Context, address string) ([]explorer.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]explorer.HistoryEntry{}, f.history[address]...), nil
}
func (f *fakeTransport) PushTx(ctx context.Context, rawHex string) (explorer.PushResult, error) {
	return explorer.PushResult{}, nil
}

func newTestListener() (*PollingListener, *storage.MemoryWatchStore, *fakeTransport) {
	ws := storage.NewMemoryWatchStore()
	transport := newFakeTransport()
	l := NewPollingListener(models.CoinBTC, 50*time.Millisecond, ws, transport)
	return l, ws, transport
}

func TestPollingListener_WatchUnwatch(t *testing.T) {
	l, ws, _ := newTestListener()

	if err := l.WatchAddress("1abc"); err != nil {
		t.Fatal(err)
	}
	if err := l.WatchAddress("1def"); err != nil {
		t.Fatal(err)
	}

	addrs, _ := ws.List()
	if len(addrs) != 2 {
		t.Errorf("expected 2 watched addresses, got %d", len(addrs))
	}

	if err := l.UnwatchAddress("1abc"); err != nil {
		t.Fatal(err)
	}

	addrs, _ = ws.List()
	if len(addrs) != 1 {
		t.Errorf("expected 1 watched address after unwatch, got %d", len(addrs))
	}
}

func TestPollingListener_Events(t *testing.T) {
	l, _, transport := newTestListener()

	if err := l.WatchAddress("1test"); err != nil {
		t.Fatal(err)
	}

	transport.setHistory("1test", []explorer.HistoryEntry{{TxID: "tx-1", Height: 0}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := l.Start(ctx); err != nil {
		t.Fatal(err)
	}

	select {
	case event := <-l.Events():
		if event.Coin != models.CoinBTC {
			t.Errorf("expected BTC coin, got %s", event.Coin)
		}
		if event.Address != "1test" {
			t.Errorf("expected event.Address=1test, got %s", event.Address)
		}
		if event.Confirmed {
			t.Error("event should not be confirmed yet")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}

	cancel()
	if err := l.Stop(); err != nil {
		t.Fatal(err)
	}
}

func TestPollingListener_Stop(t *testing.T) {
	l, _, _ := newTestListener()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := l.Start(ctx); err != nil {
		t.Fatal(err)
	}

	if err := l.Stop(); err != nil {
		t.Fatal(err)
	}

	_, ok := <-l.Events()
	if ok {
		t.Error("events channel should be closed after Stop")
	}
}

func TestPollingListener_Confirmation(t *testing.T) {
	l, _, transport := newTestListener()

	if err := l.WatchAddress("1addr"); err != nil {
		t.Fatal(err)
	}

	transport.setHistory("1addr", []explorer.HistoryEntry{{TxID: "tx1", Height: 0}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := l.Start(ctx); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-l.Events():
		if ev.Confirmed {
			t.Error("first event should be unconfirmed")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for unconfirmed event")
	}

	transport.setHistory("1addr", []explorer.HistoryEntry{{TxID: "tx1", Height: 700000}})

	select {
	case ev := <-l.Events():
		if !ev.Confirmed {
			t.Error("expected confirmed event after height reported")
		}
		if ev.TxID != "tx1" {
			t.Errorf("expected tx1, got %s", ev.TxID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for confirmed event")
	}

	cancel()
	if err := l.Stop(); err != nil {
		t.Fatal(err)
	}
}

func TestPollingListener_Reorg(t *testing.T) {
	// Use manual poll calls instead of Start() to avoid races on seen state.
	ws := storage.NewMemoryWatchStore()
	transport := newFakeTransport()
	l := NewPollingListener(models.CoinBTC, time.Hour, ws, transport)

	if err := l.WatchAddress("1addr"); err != nil {
		t.Fatal(err)
	}

	transport.setHistory("1addr", []explorer.HistoryEntry{{TxID: "tx1", Height: 0}})

	ctx := context.Background()
	if err := l.poll(ctx); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-l.Events():
		if ev.Reorged {
			t.Error("first event should not be reorged")
		}
		if ev.TxID != "tx1" {
			t.Errorf("expected tx1, got %s", ev.TxID)
		}
	default:
		t.Fatal("expected an event after poll")
	}

	// Reorg: tx1 drops out of history, replaced by tx1-new.
	transport.setHistory("1addr", []explorer.HistoryEntry{{TxID: "tx1-new", Height: 0}})

	if err := l.poll(ctx); err != nil {
		t.Fatal(err)
	}

	var gotReorg, gotNew bool
	for i := 0; i < 10; i++ {
		select {
		case ev := <-l.Events():
			if ev.Reorged && ev.TxID == "tx1" {
				gotReorg = true
			}
			if !ev.Reorged && ev.TxID == "tx1-new" {
				gotNew = true
			}
		default:
		}
		if gotReorg && gotNew {
			break
		}
	}

	if !gotReorg {
		t.Error("expected reorg event for tx1")
	}
	if !gotNew {
		t.Error("expected new event for tx1-new")
	}
}

func TestManager_RegisterAndWatchAddress(t *testing.T) {
	handler := func(event models.WatchEvent) error { return nil }
	mgr := NewManager(handler)

	ws := storage.NewMemoryWatchStore()
	transport := newFakeTransport()
	l := NewPollingListener(models.CoinBTC, 50*time.Millisecond, ws, transport)
	mgr.RegisterListener(models.CoinBTC, l)

	if err := mgr.WatchAddress(models.CoinBTC, "1addr"); err != nil {
		t.Fatal(err)
	}

	found, _ := ws.Contains("1addr")
	if !found {
		t.Error("address should be in watched list after WatchAddress")
	}
}

func TestManager_StartAllStopAll(t *testing.T) {
	var handlerCalled atomic.Int64

	handler := func(event models.WatchEvent) error {
		handlerCalled.Add(1)
		return nil
	}

	mgr := NewManager(handler)

	ws := storage.NewMemoryWatchStore()
	transport := newFakeTransport()
	l := NewPollingListener(models.CoinBTC, 50*time.Millisecond, ws, transport)
	if err := l.WatchAddress("1addr"); err != nil {
		t.Fatal(err)
	}

	transport.setHistory("1addr", []explorer.HistoryEntry{{TxID: "tx1", Height: 0}})

	mgr.RegisterListener(models.CoinBTC, l)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := mgr.StartAll(ctx); err != nil {
		t.Fatal(err)
	}

	time.Sleep(500 * time.Millisecond)
	mgr.StopAll()

	if handlerCalled.Load() == 0 {
		t.Error("handler should have been called at least once")
	}
}

func TestManager_UnknownCoin(t *testing.T) {
	handler := func(event models.WatchEvent) error { return nil }
	mgr := NewManager(handler)

	err := mgr.WatchAddress(models.CoinLTC, "1abc")
	if err == nil {
		t.Error("expected error for unregistered coin")
	}
}
