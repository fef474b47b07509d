package ethereum

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/ivoros/chainarb/business/blockchain/app"
	"github.com/ivoros/chainarb/business/blockchain/domain"
	"github.com/ivoros/chainarb/internal/logger"
)

// WatcherConfig holds configuration for the head watcher.
type WatcherConfig struct {
	// WSURLs maps chain ID to a websocket endpoint. Chains without one
	// fall back to HTTP polling.
	WSURLs       map[uint64]string
	PollInterval time.Duration
	BufferSize   int
}

// DefaultWatcherConfig returns sensible defaults.
func DefaultWatcherConfig() WatcherConfig {
	return WatcherConfig{
		WSURLs:       map[uint64]string{},
		PollInterval: 12 * time.Second,
		BufferSize:   16,
	}
}

var _ app.HeadWatcher = (*Watcher)(nil)

// watcherMetrics holds OTEL metric instruments.
type watcherMetrics struct {
	headsReceived metric.Int64Counter
	watchErrors   metric.Int64Counter
}

// chainState tracks one chain's latest head and connection mode.
type chainState struct {
	head  domain.Head
	seen  bool
	state domain.ConnectionState
}

// Watcher tracks chain heads over websocket subscriptions, polling over
// HTTP where no websocket endpoint is configured.
type Watcher struct {
	config  WatcherConfig
	clients map[uint64]*ethclient.Client
	logger  logger.LoggerInterface

	mu     sync.RWMutex
	chains map[uint64]*chainState

	heads   chan domain.Head
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	tracer  trace.Tracer
	metrics *watcherMetrics
}

// NewWatcher creates a head watcher over the given RPC clients.
func NewWatcher(cfg WatcherConfig, clients map[uint64]*ethclient.Client, log logger.LoggerInterface) (*Watcher, error) {
	w := &Watcher{
		config:  cfg,
		clients: clients,
		logger:  log,
		chains:  make(map[uint64]*chainState, len(clients)),
		heads:   make(chan domain.Head, cfg.BufferSize),
		tracer:  otel.Tracer(tracerName),
	}

	for chainID := range clients {
		w.chains[chainID] = &chainState{state: domain.StateDisconnected}
	}

	if err := w.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return w, nil
}

func (w *Watcher) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	w.metrics = &watcherMetrics{}

	w.metrics.headsReceived, err = meter.Int64Counter(
		"chain_heads_total",
		metric.WithDescription("Chain heads observed"),
		metric.WithUnit("{head}"),
	)
	if err != nil {
		return err
	}

	w.metrics.watchErrors, err = meter.Int64Counter(
		"chain_watch_errors_total",
		metric.WithDescription("Head watch errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Watch starts head tracking across all configured chains. It may be
// called once; the returned channel closes when the context ends.
func (w *Watcher) Watch(ctx context.Context) (<-chan domain.Head, error) {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return w.heads, nil
	}
	w.started = true
	ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	for chainID, client := range w.clients {
		w.wg.Add(1)
		go w.watchChain(ctx, chainID, client)
	}

	go func() {
		w.wg.Wait()
		close(w.heads)
	}()

	return w.heads, nil
}

func (w *Watcher) watchChain(ctx context.Context, chainID uint64, client *ethclient.Client) {
	defer w.wg.Done()

	wsURL, hasWS := w.config.WSURLs[chainID]
	if hasWS {
		if err := w.subscribeHeads(ctx, chainID, wsURL); err == nil {
			return // context done
		}
		w.logger.Warn(ctx, "head subscription failed, falling back to polling",
			"chain_id", chainID)
	}

	w.pollHeads(ctx, chainID, client)
}

// subscribeHeads follows new heads over websocket until the context ends
// or the subscription errors.
func (w *Watcher) subscribeHeads(ctx context.Context, chainID uint64, wsURL string) error {
	client, err := ethclient.DialContext(ctx, wsURL)
	if err != nil {
		w.metrics.watchErrors.Add(ctx, 1)
		return err
	}
	defer client.Close()

	ch := make(chan *types.Header, 16)
	sub, err := client.SubscribeNewHead(ctx, ch)
	if err != nil {
		w.metrics.watchErrors.Add(ctx, 1)
		return err
	}
	defer sub.Unsubscribe()

	w.setState(chainID, domain.StateConnected)
	w.logger.Info(ctx, "head subscription established", "chain_id", chainID)

	for {
		select {
		case <-ctx.Done():
			w.setState(chainID, domain.StateDisconnected)
			return nil
		case err := <-sub.Err():
			w.metrics.watchErrors.Add(ctx, 1)
			w.setState(chainID, domain.StateDisconnected)
			return err
		case header := <-ch:
			w.record(ctx, domain.Head{
				ChainID:   chainID,
				Number:    header.Number.Uint64(),
				Hash:      header.Hash().Hex(),
				Timestamp: time.Now(),
			})
		}
	}
}

// pollHeads polls the latest header over HTTP at the configured interval.
func (w *Watcher) pollHeads(ctx context.Context, chainID uint64, client *ethclient.Client) {
	w.setState(chainID, domain.StatePolling)

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.setState(chainID, domain.StateDisconnected)
			return
		case <-ticker.C:
			header, err := client.HeaderByNumber(ctx, nil)
			if err != nil {
				w.metrics.watchErrors.Add(ctx, 1)
				w.logger.Debug(ctx, "head poll failed", "chain_id", chainID, "error", err)
				continue
			}
			head := domain.Head{
				ChainID:   chainID,
				Number:    header.Number.Uint64(),
				Hash:      header.Hash().Hex(),
				Timestamp: time.Now(),
			}
			if latest, ok := w.Latest(chainID); ok && latest.Number >= head.Number {
				continue
			}
			w.record(ctx, head)
		}
	}
}

func (w *Watcher) record(ctx context.Context, head domain.Head) {
	w.mu.Lock()
	cs := w.chains[head.ChainID]
	cs.head = head
	cs.seen = true
	w.mu.Unlock()

	w.metrics.headsReceived.Add(ctx, 1,
		metric.WithAttributes(attribute.Int64("chain_id", int64(head.ChainID))))

	select {
	case w.heads <- head:
	default:
		// Drop when the consumer lags; Latest still advances.
	}
}

func (w *Watcher) setState(chainID uint64, state domain.ConnectionState) {
	w.mu.Lock()
	w.chains[chainID].state = state
	w.mu.Unlock()
}

// Latest returns the most recent head seen on the chain.
func (w *Watcher) Latest(chainID uint64) (domain.Head, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	cs, ok := w.chains[chainID]
	if !ok || !cs.seen {
		return domain.Head{}, false
	}
	return cs.head, true
}

// State returns the watcher's connection state for the chain.
func (w *Watcher) State(chainID uint64) domain.ConnectionState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	cs, ok := w.chains[chainID]
	if !ok {
		return domain.StateDisconnected
	}
	return cs.state
}

// Close stops all chain watchers.
func (w *Watcher) Close() error {
	w.mu.Lock()
	cancel := w.cancel
	w.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	return nil
}
