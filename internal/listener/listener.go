package listener

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/olehkaliuzhnyi/cryptos/internal/storage"
	"github.com/olehkaliuzhnyi/cryptos/pkg/explorer"
	"github.com/olehkaliuzhnyi/cryptos/pkg/models"
)

// Listener defines the interface for monitoring a coin's watched
// addresses for transaction activity.
type Listener interface {
	// Start begins listening for transactions to watched addresses.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the listener.
	Stop() error

	// WatchAddress adds an address to the watch list.
	WatchAddress(address string) error

	// UnwatchAddress removes an address from the watch list.
	UnwatchAddress(address string) error

	// Events returns a channel of detected watch events.
	Events() <-chan models.WatchEvent
}

// EventHandler processes detected watch events.
type EventHandler func(event models.WatchEvent) error

// addressHistory is the last poll's txid -> height snapshot for one
// watched address, used to detect new transactions, confirmations,
// and reorgs (a previously seen txid dropping out of history).
type addressHistory map[string]int64

// PollingListener implements Listener by periodically calling a
// Transport's History method for every watched address and diffing
// the result against the previous poll.
type PollingListener struct {
	coin         models.Coin
	pollInterval time.Duration
	events       chan models.WatchEvent
	watchStore   storage.WatchStore
	transport    explorer.Transport
	seen         map[string]addressHistory
	logger       *slog.Logger
	cancel       context.CancelFunc
	done         chan struct{}
}

func NewPollingListener(coin models.Coin, pollInterval time.Duration, ws storage.WatchStore, transport explorer.Transport) *PollingListener {
	return &PollingListener{
		coin:         coin,
		pollInterval: pollInterval,
		events:       make(chan models.WatchEvent, 100),
		watchStore:   ws,
		transport:    transport,
		seen:         make(map[string]addressHistory),
		done:         make(chan struct{}),
		logger:       slog.Default().With("component", "listener", "coin", string(coin)),
	}
}

func (l *PollingListener) Start(ctx context.Context) error {
	ctx, l.cancel = context.WithCancel(ctx)

	l.logger.Info("starting address listener", "poll_interval", l.pollInterval)

	go l.pollLoop(ctx)
	return nil
}

func (l *PollingListener) Stop() error {
	if l.cancel != nil {
		l.cancel()
	}
	<-l.done // wait for pollLoop to exit
	close(l.events)
	l.logger.Info("listener stopped")
	return nil
}

func (l *PollingListener) WatchAddress(address string) error {
	if err := l.watchStore.Add(address); err != nil {
		return err
	}
	l.logger.Info("watching address", "address", address)
	return nil
}

func (l *PollingListener) UnwatchAddress(address string) error {
	if err := l.watchStore.Remove(address); err != nil {
		return err
	}
	delete(l.seen, address)
	l.logger.Info("unwatched address", "address", address)
	return nil
}

func (l *PollingListener) Events() <-chan models.WatchEvent {
	return l.events
}

func (l *PollingListener) pollLoop(ctx context.Context) {
	defer close(l.done)
	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := l.poll(ctx); err != nil {
				l.logger.Error("poll failed", "error", err)
			}
		}
	}
}

func (l *PollingListener) poll(ctx context.Context) error {
	addrs, err := l.watchStore.List()
	if err != nil {
		return fmt.Errorf("list watched: %w", err)
	}

	for _, addr := range addrs {
		if err := l.pollAddress(ctx, addr); err != nil {
			return fmt.Errorf("poll %s: %w", addr, err)
		}
	}
	return nil
}

func (l *PollingListener) pollAddress(ctx context.Context, address string) error {
	history, err := l.transport.History(ctx, address)
	if err != nil {
		return fmt.Errorf("fetch history: %w", err)
	}

	current := make(addressHistory, len(history))
	for _, h := range history {
		current[h.TxID] = h.Height
	}
	prev := l.seen[address]

	for txid, height := range current {
		prevHeight, known := prev[txid]
		switch {
		case !known:
			if err := l.emit(ctx, models.WatchEvent{
				Coin: l.coin, Address: address, TxID: txid, Height: height, Confirmed: height > 0,
			}); err != nil {
				return err
			}
			l.logger.Info("detected transaction", "address", address, "tx", txid, "confirmed", height > 0)
		case prevHeight <= 0 && height > 0:
			if err := l.emit(ctx, models.WatchEvent{
				Coin: l.coin, Address: address, TxID: txid, Height: height, Confirmed: true,
			}); err != nil {
				return err
			}
			l.logger.Info("transaction confirmed", "address", address, "tx", txid, "height", height)
		}
	}

	for txid, prevHeight := range prev {
		if _, stillPresent := current[txid]; !stillPresent {
			if err := l.emit(ctx, models.WatchEvent{
				Coin: l.coin, Address: address, TxID: txid, Height: prevHeight, Reorged: true,
			}); err != nil {
				return err
			}
			l.logger.Warn("transaction dropped from history (reorg)", "address", address, "tx", txid)
		}
	}

	l.seen[address] = current
	return nil
}

func (l *PollingListener) emit(ctx context.Context, ev models.WatchEvent) error {
	select {
	case l.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ----- Multi-coin listener manager -----

// Manager coordinates listeners across multiple coins.
type Manager struct {
	listeners map[models.Coin]Listener
	handler   EventHandler
	logger    *slog.Logger
}

func NewManager(handler EventHandler) *Manager {
	return &Manager{
		listeners: make(map[models.Coin]Listener),
		handler:   handler,
		logger:    slog.Default().With("component", "listener_manager"),
	}
}

func (m *Manager) RegisterListener(coin models.Coin, listener Listener) {
	m.listeners[coin] = listener
}

// StartAll starts all registered listeners and routes events to the handler.
func (m *Manager) StartAll(ctx context.Context) error {
	for coin, listener := range m.listeners {
		if err := listener.Start(ctx); err != nil {
			return fmt.Errorf("start %s listener: %w", coin, err)
		}

		go func(c models.Coin, l Listener) {
			for event := range l.Events() {
				if err := m.handler(event); err != nil {
					m.logger.Error("handle event failed", "coin", c, "tx", event.TxID, "error", err)
				}
			}
		}(coin, listener)
	}

	m.logger.Info("all listeners started", "count", len(m.listeners))
	return nil
}

func (m *Manager) StopAll() {
	for coin, listener := range m.listeners {
		if err := listener.Stop(); err != nil {
			m.logger.Error("stop listener failed", "coin", coin, "error", err)
		}
	}
}

// WatchAddress adds an address to the appropriate coin's listener.
func (m *Manager) WatchAddress(coin models.Coin, address string) error {
	l, ok := m.listeners[coin]
	if !ok {
		return fmt.Errorf("no listener registered for %s", coin)
	}
	return l.WatchAddress(address)
}
