package service

import (
	"context"
	"log/slog"

	"github.com/postrelay/postrelay/internal/models"
	"github.com/postrelay/postrelay/internal/repository"
)

// StatusService applies dispatch outcomes and approval decisions to the post
// record. Transitions are idempotent per outcome: repeating the same call is
// harmless. Sent and not-sent are mutually exclusive for one attempt because
// MarkSent always clears the failure reason.
type StatusService interface {
	MarkSent(ctx context.Context, postID string) error
	MarkNotSent(ctx context.Context, postID, reason string) error
	MarkRejected(ctx context.Context, postID string) error
	MarkApproved(ctx context.Context, postID string) error
}

type statusService struct {
	pr repository.PostRepository
}

func NewStatusService(pr repository.PostRepository) StatusService {
	return &statusService{pr: pr}
}

func (s *statusService) MarkSent(ctx context.Context, postID string) error {
	return s.pr.UpdateStatus(ctx, postID, models.PostStatusSent, "")
}

func (s *statusService) MarkNotSent(ctx context.Context, postID, reason string) error {
	if reason == "" {
		reason = "dispatch failed"
	}
	slog.Info("post not sent", "post_id", postID, "reason", reason)
	return s.pr.UpdateStatus(ctx, postID, models.PostStatusNotSent, reason)
}

func (s *statusService) MarkRejected(ctx context.Context, postID string) error {
	return s.pr.UpdateStatus(ctx, postID, models.PostStatusRejected, "")
}

func (s *statusService) MarkApproved(ctx context.Context, postID string) error {
	return s.pr.SetApproval(ctx, postID, true)
}
