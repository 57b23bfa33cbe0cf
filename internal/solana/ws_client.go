package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSClientConfig configures WebSocket client behavior.
type WSClientConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultWSConfig returns default WebSocket configuration.
func DefaultWSConfig() WSClientConfig {
	return WSClientConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// BlockClient subscribes to blockSubscribe notifications over WebSocket.
// It reconnects with exponential backoff and resubscribes on its own; block
// order is preserved within one connection but blocks may be missed across a
// reconnect gap.
type BlockClient struct {
	endpoint string
	config   WSClientConfig
	logger   *zap.Logger

	conn      *websocket.Conn
	connMu    sync.Mutex
	closed    atomic.Bool
	requestID atomic.Uint64

	// blocks is the single subscription channel; blocking send, never dropped.
	blocks chan BlockNotification

	// subID is nonzero once a blockSubscribe was confirmed; used to decide
	// whether to resubscribe after reconnect.
	subID atomic.Int64

	reconnecting atomic.Bool
	reconnects   atomic.Uint64

	done chan struct{}
	wg   sync.WaitGroup
}

// NewBlockClient connects to the endpoint and starts the read and ping loops.
// Call Subscribe to start the block stream.
func NewBlockClient(ctx context.Context, endpoint string, config *WSClientConfig, logger *zap.Logger) (*BlockClient, error) {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &BlockClient{
		endpoint: endpoint,
		config:   cfg,
		logger:   logger,
		blocks:   make(chan BlockNotification, 64),
		done:     make(chan struct{}),
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	c.wg.Add(1)
	go c.readLoop()

	c.wg.Add(1)
	go c.pingLoop()

	return c, nil
}

// connect establishes the WebSocket connection.
func (c *BlockClient) connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	c.conn = conn
	return nil
}

// Subscribe sends the blockSubscribe request and returns the notification
// channel. Full transaction details with json encoding; failed transactions
// are still delivered and skipped by the caller.
func (c *BlockClient) Subscribe(ctx context.Context) (<-chan BlockNotification, error) {
	if c.closed.Load() {
		return nil, fmt.Errorf("client closed")
	}
	if err := c.sendSubscribe(); err != nil {
		return nil, err
	}
	return c.blocks, nil
}

// sendSubscribe writes the blockSubscribe request on the current connection.
func (c *BlockClient) sendSubscribe() error {
	req := wsRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  "blockSubscribe",
		Params: []interface{}{
			"all",
			map[string]interface{}{
				"commitment":                     "confirmed",
				"encoding":                       "json",
				"transactionDetails":             "full",
				"showRewards":                    false,
				"maxSupportedTransactionVersion": 0,
			},
		},
	}

	c.connMu.Lock()
	defer c.connMu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("not connected")
	}
	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	if err := c.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("write subscribe: %w", err)
	}
	return nil
}

// Reconnects returns the number of reconnects performed so far.
func (c *BlockClient) Reconnects() uint64 {
	return c.reconnects.Load()
}

// Close closes the connection and the block channel.
func (c *BlockClient) Close() error {
	if c.closed.Swap(true) {
		return nil // Already closed
	}

	close(c.done)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.conn.Close()
	}
	c.connMu.Unlock()

	c.wg.Wait()
	close(c.blocks)
	return nil
}

// readLoop reads messages and dispatches block notifications.
func (c *BlockClient) readLoop() {
	defer c.wg.Done()

	reconnectDelay := c.config.ReconnectDelay

	for !c.closed.Load() {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		if conn == nil {
			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}

			// Connection error - attempt reconnect with exponential backoff
			if !c.reconnecting.Swap(true) {
				go c.reconnect(reconnectDelay)
			}

			reconnectDelay = reconnectDelay * 2
			if reconnectDelay > c.config.MaxReconnectDelay {
				reconnectDelay = c.config.MaxReconnectDelay
			}

			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		// Reset delay on successful read
		reconnectDelay = c.config.ReconnectDelay

		c.handleMessage(message)
	}
}

// reconnect attempts to reconnect and resubscribe.
func (c *BlockClient) reconnect(delay time.Duration) {
	defer c.reconnecting.Store(false)

	if c.closed.Load() {
		return
	}

	select {
	case <-c.done:
		return
	case <-time.After(delay):
	}

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.connect(ctx); err != nil {
		// Reconnect failed, will retry on next read error
		c.logger.Warn("websocket reconnect failed", zap.Error(err))
		return
	}

	c.reconnects.Add(1)
	c.logger.Info("websocket reconnected", zap.String("endpoint", c.endpoint))

	if c.subID.Load() != 0 {
		if err := c.sendSubscribe(); err != nil {
			c.logger.Warn("resubscribe failed", zap.Error(err))
		}
	}
}

// handleMessage processes one incoming WebSocket message.
func (c *BlockClient) handleMessage(message []byte) {
	// Try to parse as subscription confirmation first
	var resp wsSubscribeResponse
	if err := json.Unmarshal(message, &resp); err == nil && resp.Result > 0 {
		c.subID.Store(resp.Result)
		c.logger.Debug("block subscription confirmed", zap.Int64("sub_id", resp.Result))
		return
	}

	// Try to parse as block notification
	var notif wsBlockNotification
	if err := json.Unmarshal(message, &notif); err == nil && notif.Method == "blockNotification" {
		c.handleBlockNotification(&notif)
		return
	}

	// Check for error response
	var errResp struct {
		JSONRPC string `json:"jsonrpc"`
		ID      uint64 `json:"id"`
		Error   *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(message, &errResp); err == nil && errResp.Error != nil {
		c.logger.Warn("websocket error response",
			zap.Int("code", errResp.Error.Code),
			zap.String("message", errResp.Error.Message))
	}
}

// handleBlockNotification converts and delivers one block.
func (c *BlockClient) handleBlockNotification(notif *wsBlockNotification) {
	if notif.Params == nil {
		return
	}
	value := notif.Params.Result.Value
	if value.Block == nil {
		// Slot skipped or block unavailable at this commitment
		return
	}

	block := BlockNotification{
		Slot:         value.Slot,
		BlockTime:    value.Block.BlockTime,
		Transactions: value.Block.Transactions,
	}

	// Block until we can send - never drop blocks
	select {
	case c.blocks <- block:
	case <-c.done:
	}
}

// pingLoop sends periodic ping frames to keep connection alive.
func (c *BlockClient) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			if c.conn != nil {
				c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
				if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					// Connection might be dead, reader will handle reconnect
					_ = err
				}
			}
			c.connMu.Unlock()
		}
	}
}

// WebSocket message types

type wsRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

type wsSubscribeResponse struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Result  int64  `json:"result"` // subscription ID
}

type wsBlockNotification struct {
	JSONRPC string              `json:"jsonrpc"`
	Method  string              `json:"method"`
	Params  *wsBlockNotifParams `json:"params"`
}

type wsBlockNotifParams struct {
	Subscription int64              `json:"subscription"`
	Result       wsBlockNotifResult `json:"result"`
}

type wsBlockNotifResult struct {
	Context *wsContext   `json:"context"`
	Value   wsBlockValue `json:"value"`
}

type wsContext struct {
	Slot uint64 `json:"slot"`
}

type wsBlockValue struct {
	Slot  uint64      `json:"slot"`
	Block *wsBlock    `json:"block"`
	Err   interface{} `json:"err"`
}

type wsBlock struct {
	BlockTime    *int64                `json:"blockTime"`
	ParentSlot   uint64                `json:"parentSlot"`
	Transactions []TransactionWithMeta `json:"transactions"`
}
