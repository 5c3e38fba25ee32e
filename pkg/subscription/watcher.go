// Package subscription watches pool accounts over the RPC websocket so
// callers can requote whenever a pool changes.
package subscription

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"poolquote/pkg/logging"
)

// Update is one change notification for a watched pool. The data is not
// meant to be quoted from; callers fetch a fresh snapshot instead.
type Update struct {
	Pool solana.PublicKey
	Slot uint64
	Size int
}

// Watcher turns account notifications for pools into Update callbacks.
type Watcher struct {
	client *WebSocketClient
	logger *logrus.Logger
}

func NewWatcher(ctx context.Context, wsURL string, logger *logrus.Logger) (*Watcher, error) {
	logger = logging.OrDiscard(logger)
	client, err := NewWebSocketClient(ctx, wsURL, logger)
	if err != nil {
		return nil, err
	}
	return &Watcher{client: client, logger: logger}, nil
}

// Watch calls onUpdate for every notification on pool until ctx is done.
// Updates are delivered one at a time in arrival order.
func (w *Watcher) Watch(ctx context.Context, pool solana.PublicKey, onUpdate func(Update)) error {
	updates := make(chan Update, 16)
	id, err := w.client.SubscribeAccount(pool, func(account solana.PublicKey, data []byte, slot uint64) {
		u := Update{Pool: account, Slot: slot, Size: len(data)}
		select {
		case updates <- u:
		default:
			w.logger.WithField("slot", slot).Warn("dropping pool update, consumer is behind")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", pool, err)
	}
	defer func() {
		if err := w.client.Unsubscribe(id); err != nil {
			w.logger.WithError(err).Debug("unsubscribe failed")
		}
	}()
	w.logger.WithField("pool", pool.String()).Info("watching pool")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u := <-updates:
			onUpdate(u)
		}
	}
}

func (w *Watcher) Close() error {
	return w.client.Close()
}
