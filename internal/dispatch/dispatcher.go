package dispatch

import (
	"context"
	"log/slog"
)

// Target identifies where a publish lands and with which credential.
type Target struct {
	PageID    string
	PageToken string
}

// Content is the channel-neutral payload handed to an adapter. Which fields
// are populated follows from Shape.
type Content struct {
	Shape     Shape
	Message   string
	ImageURLs []string
	VideoURLs []string
}

// Result is the normalized outcome of a successful publish.
type Result struct {
	Channel string
	// RemoteID is the provider identifier of the created post when the
	// provider returned one (tweet id, container id, share URN, ...).
	RemoteID string
}

// Publisher is implemented once per channel. Adapters must return either a
// Result or an error normalized to *ChannelError; raw transport errors do
// not escape.
type Publisher interface {
	Publish(ctx context.Context, target Target, content Content) (*Result, error)
}

// Dispatcher routes a post kind to its channel adapter.
type Dispatcher struct {
	publishers map[string]Publisher
}

func NewDispatcher(publishers map[string]Publisher) *Dispatcher {
	return &Dispatcher{publishers: publishers}
}

// Dispatch invokes the adapter registered for kind's channel. An unknown
// kind or unregistered channel is a ConfigurationError: dropping a post
// silently would leave it queued forever with no visible failure.
func (d *Dispatcher) Dispatch(ctx context.Context, kind, pageToken, pageID string, content Content) (*Result, error) {
	r, ok := routes[kind]
	if !ok {
		return nil, configErrorf("unknown post kind %q", kind)
	}

	publisher, ok := d.publishers[r.Channel]
	if !ok {
		return nil, configErrorf("no publisher registered for channel %q", r.Channel)
	}

	slog.Info("dispatching post", "kind", kind, "channel", r.Channel, "page_id", pageID)

	result, err := publisher.Publish(ctx, Target{PageID: pageID, PageToken: pageToken}, content)
	if err != nil {
		return nil, err
	}
	return result, nil
}
