package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Handler receives each expired timer key. Implementations must be safe for
// concurrent use; the listener never retries a key.
type Handler func(ctx context.Context, key Key) error

// Listener subscribes to redis keyspace expiration events and hands every
// decoded schedule key to its handler. It is an explicit service: nothing
// happens until Start, and Stop tears the subscription down cleanly.
type Listener struct {
	rdb     *redis.Client
	db      int
	handle  Handler
	pubsub  *redis.PubSub
	cancel  context.CancelFunc
	mu      sync.Mutex
	running bool
	done    chan struct{}
}

func NewListener(rdb *redis.Client, db int, handle Handler) *Listener {
	return &Listener{rdb: rdb, db: db, handle: handle}
}

func (l *Listener) eventChannel() string {
	return fmt.Sprintf("__keyevent@%d__:expired", l.db)
}

// Start enables expired-key notifications on the server and begins consuming
// them. A malformed or failing message is logged and skipped; the loop only
// exits when Stop is called or ctx is cancelled.
func (l *Listener) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return nil
	}

	if err := l.rdb.ConfigSet(ctx, "notify-keyspace-events", "Ex").Err(); err != nil {
		return fmt.Errorf("enable keyspace notifications: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.pubsub = l.rdb.PSubscribe(runCtx, l.eventChannel())
	l.done = make(chan struct{})
	l.running = true

	go l.consume(runCtx, l.pubsub.Channel(), l.done)

	slog.Info("expiry listener started", "channel", l.eventChannel())
	return nil
}

func (l *Listener) consume(ctx context.Context, messages <-chan *redis.Message, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			key, err := ParseKey(msg.Payload)
			if err != nil {
				slog.Info("ignoring unparseable expiry event", "payload", msg.Payload, "error", err.Error())
				continue
			}
			// Each expiry is handled independently; one failing dispatch
			// must never stall the subscription.
			go func(key Key) {
				if err := l.handle(ctx, key); err != nil {
					slog.Info("expiry handling failed", "key", key.Encode(), "error", err.Error())
				}
			}(key)
		}
	}
}

func (l *Listener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.running {
		return
	}
	l.cancel()
	if err := l.pubsub.Close(); err != nil {
		slog.Info(err.Error())
	}
	<-l.done
	l.running = false
	slog.Info("expiry listener stopped")
}
