package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestConsumeHandsParsedKeysToHandler(t *testing.T) {
	got := make(chan Key, 1)
	l := NewListener(nil, 0, func(ctx context.Context, key Key) error {
		got <- key
		return nil
	})

	messages := make(chan *redis.Message, 2)
	messages <- &redis.Message{Payload: "not a schedule key"}
	messages <- &redis.Message{Payload: "twitterText:page-1:post-1:tok@secret"}
	close(messages)

	done := make(chan struct{})
	l.consume(context.Background(), messages, done)

	select {
	case key := <-got:
		assert.Equal(t, Key{
			Kind:      "twitterText",
			PageID:    "page-1",
			PostID:    "post-1",
			PageToken: "tok@secret",
		}, key)
	case <-time.After(time.Second):
		t.Fatal("handler was not invoked")
	}

	// Only the well-formed payload reaches the handler.
	select {
	case key := <-got:
		t.Fatalf("unexpected extra key %q", key.Encode())
	case <-time.After(50 * time.Millisecond):
	}
}

func TestConsumeStopsOnContextCancel(t *testing.T) {
	l := NewListener(nil, 0, func(ctx context.Context, key Key) error { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	l.consume(ctx, make(chan *redis.Message), done)

	select {
	case <-done:
	default:
		t.Fatal("consume did not close done")
	}
}

func TestEventChannelUsesConfiguredDB(t *testing.T) {
	l := NewListener(nil, 3, nil)
	assert.Equal(t, "__keyevent@3__:expired", l.eventChannel())
}
