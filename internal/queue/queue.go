package queue

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

// Client wraps the asynq client behind the service layer's Enqueuer
// interface.
type Client struct {
	asynqClient *asynq.Client
}

func NewClient(asynqClient *asynq.Client) *Client {
	return &Client{asynqClient: asynqClient}
}

// EnqueueDispatch hands a post to the dispatch workers. Publishing is never
// retried by the queue: a failed dispatch records "not sent" exactly once,
// and re-posting after a fix is an explicit author action.
func (c *Client) EnqueueDispatch(ctx context.Context, kind, pageID, postID, pageToken string) error {
	payload := DispatchPostPayload{
		Kind:      kind,
		PageID:    pageID,
		PostID:    postID,
		PageToken: pageToken,
	}
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeDispatchPost, taskPayload, asynq.MaxRetry(0))

	if _, err := c.asynqClient.EnqueueContext(ctx, task); err != nil {
		slog.Info(err.Error())
		return err
	}

	slog.Info("dispatch task enqueued", "post_id", postID, "kind", kind)
	return nil
}
