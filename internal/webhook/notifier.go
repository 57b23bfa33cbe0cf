// Package webhook delivers swap events to an HTTP endpoint through a
// bounded queue and a single background worker, so webhook latency never
// blocks event processing.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"raydium-alerts/internal/event"
	"raydium-alerts/internal/observability"
)

// queueCapacity sizes the delivery queue; enough to absorb burst traffic.
const queueCapacity = 1000

var (
	// ErrQueueFull is returned by TrySend when the queue is at capacity.
	ErrQueueFull = errors.New("webhook queue full")
	// ErrClosed is returned when sending after Close.
	ErrClosed = errors.New("webhook notifier closed")
)

// Notifier queues swap events and delivers them sequentially, one event
// fully resolved (delivered or exhausted) before the next is attempted.
// Delivery order is strict FIFO relative to enqueue order.
type Notifier struct {
	config  Config
	client  *http.Client
	logger  *zap.Logger
	metrics *observability.Metrics

	queue chan event.SwapEvent

	mu     sync.RWMutex
	closed bool

	done chan struct{}
}

// NewNotifier starts the delivery worker. Logger and metrics may be nil.
func NewNotifier(config Config, logger *zap.Logger, metrics *observability.Metrics) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}

	n := &Notifier{
		config:  config,
		client:  &http.Client{Timeout: config.Timeout},
		logger:  logger,
		metrics: metrics,
		queue:   make(chan event.SwapEvent, queueCapacity),
		done:    make(chan struct{}),
	}

	go n.deliveryLoop()
	return n
}

// Send queues an event, blocking while the queue is full. Returns ErrClosed
// after Close, or the context error if ctx ends first.
func (n *Notifier) Send(ctx context.Context, ev event.SwapEvent) error {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return ErrClosed
	}

	select {
	case n.queue <- ev:
		n.metrics.SetWebhookQueueDepth(len(n.queue))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySend queues an event without blocking. Processors use this form so
// webhook backpressure never stalls event processing.
func (n *Notifier) TrySend(ev event.SwapEvent) error {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return ErrClosed
	}

	select {
	case n.queue <- ev:
		n.metrics.SetWebhookQueueDepth(len(n.queue))
		return nil
	default:
		n.metrics.RecordWebhookDropped()
		return ErrQueueFull
	}
}

// QueueLen returns the number of events currently queued.
func (n *Notifier) QueueLen() int {
	return len(n.queue)
}

// Close stops accepting events, drains the queue through the full retry
// policy, and returns once the worker has exited. Safe to call twice.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		<-n.done
		return
	}
	n.closed = true
	n.mu.Unlock()

	close(n.queue)
	<-n.done
}

// deliveryLoop consumes the queue until it is closed and drained.
func (n *Notifier) deliveryLoop() {
	defer close(n.done)

	for ev := range n.queue {
		n.metrics.SetWebhookQueueDepth(len(n.queue))
		n.deliver(ev)
	}

	n.logger.Info("webhook delivery worker shutting down")
}

// deliver runs the retry loop for one event. A marshal failure drops the
// event immediately since it can never serialize correctly.
func (n *Notifier) deliver(ev event.SwapEvent) {
	body, err := json.Marshal(ev)
	if err != nil {
		n.logger.Error("failed to serialize swap event",
			zap.String("signature", ev.Signature),
			zap.Error(err))
		return
	}

	attempt := 0
	backoff := n.config.RetryBackoff

	for {
		attempt++
		err := n.post(body)
		if err == nil {
			n.logger.Debug("webhook delivered",
				zap.String("signature", ev.Signature),
				zap.Int("attempt", attempt))
			n.metrics.RecordWebhookDelivered()
			return
		}

		n.logger.Warn("webhook attempt failed",
			zap.String("signature", ev.Signature),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", n.config.MaxRetries+1),
			zap.Error(err))

		if attempt > n.config.MaxRetries {
			n.logger.Error("webhook delivery exhausted, dropping event",
				zap.String("signature", ev.Signature),
				zap.Int("attempts", attempt))
			n.metrics.RecordWebhookExhausted()
			return
		}

		time.Sleep(backoff)
		backoff *= 2
		n.metrics.RecordWebhookRetry()
	}
}

// post performs one HTTP attempt. Any non-2xx status counts as a failure.
func (n *Notifier) post(body []byte) error {
	req, err := http.NewRequest(http.MethodPost, n.config.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.New("unexpected status " + resp.Status)
	}
	return nil
}
