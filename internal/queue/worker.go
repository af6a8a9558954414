package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/postrelay/postrelay/internal/dispatch"
	"github.com/postrelay/postrelay/internal/models"
)

func (j *Queue) HandleDispatchPostTask(ctx context.Context, task *asynq.Task) error {
	var payload DispatchPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	j.DispatchPost(ctx, payload)

	return nil
}

// DispatchPost publishes one post to its channel and records the outcome.
// The post row is re-read first: a schedule can fire after the post was
// deleted, un-approved or already sent, and in all of those cases the timer
// is stale and the dispatch is skipped without touching the channel.
func (j *Queue) DispatchPost(ctx context.Context, payload DispatchPostPayload) {
	post, err := j.pr.GetByID(ctx, payload.PostID)
	if err != nil {
		slog.Info("dispatch skipped, post lookup failed", "post_id", payload.PostID, "error", err.Error())
		return
	}
	if post == nil {
		slog.Info("dispatch skipped, post no longer exists", "post_id", payload.PostID)
		return
	}
	if !post.IsApproved || post.Status != models.PostStatusQueued {
		slog.Info("dispatch skipped, post not publishable",
			"post_id", post.ID, "approved", post.IsApproved, "status", post.Status)
		return
	}

	content, err := dispatch.ContentFromPost(payload.Kind, post)
	if err != nil {
		j.recordFailure(ctx, post.ID, err)
		return
	}

	result, err := j.dispatcher.Dispatch(ctx, payload.Kind, payload.PageToken, payload.PageID, content)
	if err != nil {
		j.recordFailure(ctx, post.ID, err)
		return
	}

	slog.Info("post published", "post_id", post.ID, "channel", result.Channel, "remote_id", result.RemoteID)
	if err := j.status.MarkSent(ctx, post.ID); err != nil {
		slog.Info("failed to mark post sent", "post_id", post.ID, "error", err.Error())
	}
}

func (j *Queue) recordFailure(ctx context.Context, postID string, cause error) {
	var channelErr *dispatch.ChannelError
	if errors.As(cause, &channelErr) {
		slog.Info("channel rejected post", "post_id", postID,
			"channel", channelErr.Channel, "provider_error", channelErr.Provider)
	} else {
		slog.Info("dispatch failed", "post_id", postID, "error", cause.Error())
	}

	if err := j.status.MarkNotSent(ctx, postID, cause.Error()); err != nil {
		slog.Info("failed to mark post not sent", "post_id", postID, "error", err.Error())
	}
}
