package subscription

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"poolquote/pkg/logging"
)

// WebSocketClient manages a WebSocket connection to a Solana RPC node
type WebSocketClient struct {
	url            string
	conn           *websocket.Conn
	mu             sync.RWMutex
	writeMu        sync.Mutex
	subscriptions  map[uint64]*Subscription
	nextID         uint64
	handlers       map[uint64]AccountUpdateHandler
	reconnectDelay time.Duration
	ctx            context.Context
	cancel         context.CancelFunc
	connected      bool
	logger         *logrus.Logger
}

// Subscription represents an account subscription
type Subscription struct {
	ID      uint64
	Account solana.PublicKey
	SubID   uint64 // Solana subscription ID
}

// AccountUpdateHandler is called with the decoded account data on every update
type AccountUpdateHandler func(account solana.PublicKey, data []byte, slot uint64)

// RPCRequest represents a JSON-RPC request
type RPCRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

// RPCResponse represents a JSON-RPC response
type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError represents a JSON-RPC error
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NotificationMessage represents a subscription notification
type NotificationMessage struct {
	JSONRPC string             `json:"jsonrpc"`
	Method  string             `json:"method"`
	Params  NotificationParams `json:"params"`
}

// NotificationParams contains subscription notification data
type NotificationParams struct {
	Result       AccountNotification `json:"result"`
	Subscription uint64              `json:"subscription"`
}

// AccountNotification contains account update data
type AccountNotification struct {
	Context Context      `json:"context"`
	Value   AccountValue `json:"value"`
}

// Context contains slot information
type Context struct {
	Slot uint64 `json:"slot"`
}

// AccountValue contains account data
type AccountValue struct {
	Data       []interface{} `json:"data"` // [base64_data, encoding]
	Executable bool          `json:"executable"`
	Lamports   uint64        `json:"lamports"`
	Owner      string        `json:"owner"`
	RentEpoch  uint64        `json:"rentEpoch"`
}

// NewWebSocketClient dials wsURL and starts the reader and reconnect loops
func NewWebSocketClient(ctx context.Context, wsURL string, logger *logrus.Logger) (*WebSocketClient, error) {
	clientCtx, cancel := context.WithCancel(ctx)

	client := &WebSocketClient{
		url:            wsURL,
		subscriptions:  make(map[uint64]*Subscription),
		handlers:       make(map[uint64]AccountUpdateHandler),
		reconnectDelay: 5 * time.Second,
		ctx:            clientCtx,
		cancel:         cancel,
		nextID:         1,
		logger:         logging.OrDiscard(logger),
	}

	if err := client.connect(); err != nil {
		cancel()
		return nil, err
	}

	go client.readMessages()
	go client.handleReconnection()

	return client, nil
}

// connect establishes WebSocket connection
func (c *WebSocketClient) connect() error {
	conn, _, err := websocket.DefaultDialer.DialContext(c.ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to WebSocket: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()
	c.logger.WithField("url", c.url).Info("websocket connected")

	return nil
}

func accountSubscribeRequest(id uint64, account solana.PublicKey) RPCRequest {
	return RPCRequest{
		JSONRPC: "2.0",
		ID:      id,
		Method:  "accountSubscribe",
		Params: []interface{}{
			account.String(),
			map[string]interface{}{
				"encoding":   "base64",
				"commitment": "confirmed",
			},
		},
	}
}

// SubscribeAccount subscribes to account updates
func (c *WebSocketClient) SubscribeAccount(account solana.PublicKey, handler AccountUpdateHandler) (uint64, error) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	// Registered before sending so a fast confirmation finds it.
	c.handlers[id] = handler
	c.subscriptions[id] = &Subscription{ID: id, Account: account}
	c.mu.Unlock()

	if err := c.sendRequest(accountSubscribeRequest(id, account)); err != nil {
		c.mu.Lock()
		delete(c.handlers, id)
		delete(c.subscriptions, id)
		c.mu.Unlock()
		return 0, err
	}
	return id, nil
}

// Unsubscribe removes an account subscription
func (c *WebSocketClient) Unsubscribe(subID uint64) error {
	c.mu.Lock()
	sub, exists := c.subscriptions[subID]
	if !exists {
		c.mu.Unlock()
		return fmt.Errorf("subscription not found: %d", subID)
	}
	delete(c.subscriptions, subID)
	delete(c.handlers, subID)
	solanaSubID := sub.SubID
	c.mu.Unlock()

	if solanaSubID == 0 {
		// Subscription not yet confirmed
		return nil
	}

	return c.sendRequest(RPCRequest{
		JSONRPC: "2.0",
		ID:      subID,
		Method:  "accountUnsubscribe",
		Params:  []interface{}{solanaSubID},
	})
}

// sendRequest sends a JSON-RPC request
func (c *WebSocketClient) sendRequest(req RPCRequest) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return fmt.Errorf("not connected")
	}

	data, err := json.Marshal(req)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, data)
}

// readMessages reads incoming messages until the client is closed
func (c *WebSocketClient) readMessages() {
	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		c.mu.RLock()
		conn := c.conn
		connected := c.connected
		c.mu.RUnlock()

		if conn == nil || !connected {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			c.logger.WithError(err).Warn("websocket read failed")
			c.mu.Lock()
			c.connected = false
			c.mu.Unlock()
			continue
		}

		c.handleMessage(message)
	}
}

// handleMessage processes incoming messages
func (c *WebSocketClient) handleMessage(data []byte) {
	var notification NotificationMessage
	if err := json.Unmarshal(data, &notification); err == nil && notification.Method == "accountNotification" {
		c.handleAccountNotification(notification)
		return
	}

	var response RPCResponse
	if err := json.Unmarshal(data, &response); err != nil {
		c.logger.WithError(err).Warn("failed to parse websocket message")
		return
	}

	c.handleResponse(response)
}

// handleResponse records the Solana subscription ID of a confirmed subscription
func (c *WebSocketClient) handleResponse(response RPCResponse) {
	if response.Error != nil {
		c.logger.WithFields(logrus.Fields{
			"id":   response.ID,
			"code": response.Error.Code,
		}).Warn(response.Error.Message)
		return
	}

	var subID uint64
	if err := json.Unmarshal(response.Result, &subID); err != nil {
		return
	}

	c.mu.Lock()
	if sub, exists := c.subscriptions[response.ID]; exists {
		sub.SubID = subID
	}
	c.mu.Unlock()
}

// handleAccountNotification decodes the account data and calls its handler
func (c *WebSocketClient) handleAccountNotification(notification NotificationMessage) {
	c.mu.RLock()
	var handler AccountUpdateHandler
	var account solana.PublicKey

	for _, sub := range c.subscriptions {
		if sub.SubID == notification.Params.Subscription {
			handler = c.handlers[sub.ID]
			account = sub.Account
			break
		}
	}
	c.mu.RUnlock()

	if handler == nil {
		return
	}

	if len(notification.Params.Result.Value.Data) < 1 {
		return
	}
	encoded, ok := notification.Params.Result.Value.Data[0].(string)
	if !ok {
		return
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		c.logger.WithError(err).WithField("account", account.String()).Warn("bad account notification data")
		return
	}

	handler(account, data, notification.Params.Result.Context.Slot)
}

// handleReconnection manages reconnection logic
func (c *WebSocketClient) handleReconnection() {
	ticker := time.NewTicker(c.reconnectDelay)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			if c.IsConnected() {
				continue
			}
			c.logger.Info("attempting to reconnect websocket")
			if err := c.reconnect(); err != nil {
				c.logger.WithError(err).Warn("websocket reconnection failed")
			}
		}
	}
}

// reconnect redials and resubscribes every account
func (c *WebSocketClient) reconnect() error {
	c.mu.Lock()
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	if err := c.connect(); err != nil {
		return err
	}

	c.mu.Lock()
	subs := make([]*Subscription, 0, len(c.subscriptions))
	for _, sub := range c.subscriptions {
		sub.SubID = 0
		subs = append(subs, sub)
	}
	c.mu.Unlock()

	for _, sub := range subs {
		if err := c.sendRequest(accountSubscribeRequest(sub.ID, sub.Account)); err != nil {
			c.logger.WithError(err).WithField("account", sub.Account.String()).Warn("failed to resubscribe")
		}
	}

	return nil
}

// Close closes the WebSocket connection
func (c *WebSocketClient) Close() error {
	c.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}

	return nil
}

// IsConnected returns whether the client is connected
func (c *WebSocketClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}
