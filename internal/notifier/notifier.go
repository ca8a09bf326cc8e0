// Package notifier pushes state-change events to registered UI observers
// without blocking the message-processing path.
package notifier

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Martius108/mc-connect-hub/internal/models"
	"github.com/Martius108/mc-connect-hub/internal/utils"
)

// Observer receives change events. Observers must not block for long; the
// fan-out is serialized so one slow observer delays the others.
type Observer func(change models.Change)

// Notifier is an explicit subscribe/unsubscribe observer registry. Each
// publish is handed to a single-worker pool, keeping delivery order equal
// to publish order while decoupling observers from the publisher.
type Notifier struct {
	logger zerolog.Logger
	pool   *utils.WorkerPool

	mu        sync.RWMutex
	observers map[string]Observer
	closed    bool
}

// New creates a notifier with its own delivery worker.
func New(logger zerolog.Logger) *Notifier {
	return &Notifier{
		logger:    logger,
		pool:      utils.NewWorkerPool(1),
		observers: make(map[string]Observer),
	}
}

// Subscribe registers an observer and returns a token for Unsubscribe.
func (n *Notifier) Subscribe(observer Observer) string {
	token := uuid.NewString()

	n.mu.Lock()
	n.observers[token] = observer
	n.mu.Unlock()

	n.logger.Debug().Str("token", token).Msg("Observer subscribed")
	return token
}

// Unsubscribe removes the observer registered under token.
func (n *Notifier) Unsubscribe(token string) {
	n.mu.Lock()
	delete(n.observers, token)
	n.mu.Unlock()

	n.logger.Debug().Str("token", token).Msg("Observer unsubscribed")
}

// Publish delivers the change to every observer asynchronously. After Close
// it is a no-op, so late messages during shutdown are dropped, not fatal.
func (n *Notifier) Publish(change models.Change) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed || len(n.observers) == 0 {
		return
	}

	observers := make([]Observer, 0, len(n.observers))
	for _, obs := range n.observers {
		observers = append(observers, obs)
	}

	// Submitted under the read lock: Close cannot stop the worker while a
	// publish is still handing off.
	n.pool.Submit(func() {
		for _, obs := range observers {
			obs(change)
		}
	})
}

// Close drains pending deliveries and stops the worker. Idempotent.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	n.mu.Unlock()

	n.pool.Shutdown()
}
