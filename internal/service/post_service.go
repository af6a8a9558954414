package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/postrelay/postrelay/internal/dispatch"
	"github.com/postrelay/postrelay/internal/models"
	"github.com/postrelay/postrelay/internal/repository"
	"github.com/postrelay/postrelay/internal/schedule"
	"github.com/postrelay/postrelay/internal/transfer"
)

// ValidationError marks client input that can never publish: an unknown
// kind, missing media, or more carousel items than the channel accepts.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Enqueuer hands an approved post to the dispatch workers for immediate
// publishing. The queue package implements it.
type Enqueuer interface {
	EnqueueDispatch(ctx context.Context, kind, pageID, postID, pageToken string) error
}

const scheduleDateLayout = "2006-01-02T15:04"

// Per-channel carousel item caps, enforced at creation time rather than at
// dispatch so the author hears about it while editing.
const (
	instagramCarouselMax = 10
	twitterCarouselMax   = 4
)

type PostService interface {
	Create(ctx context.Context, userID string, pc *transfer.PostCreation) (*models.Post, error)
	Update(ctx context.Context, userID string, pc *transfer.PostCreation) (*models.Post, error)
	Approve(ctx context.Context, userID string, pa *transfer.PostApproval) error
	Reject(ctx context.Context, userID, postID string) error
	Remove(ctx context.Context, userID, postID string) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	ListByPage(ctx context.Context, pageID, status string, limit, offset int) ([]*models.Post, error)
	Calendar(ctx context.Context, pageID, view string, anchor time.Time) ([]*models.Post, error)
}

type postService struct {
	pr       repository.PostRepository
	pages    PageService
	timers   schedule.TimerStore
	enqueuer Enqueuer
}

func NewPostService(pr repository.PostRepository, pages PageService, timers schedule.TimerStore, enqueuer Enqueuer) PostService {
	return &postService{pr: pr, pages: pages, timers: timers, enqueuer: enqueuer}
}

func validatePost(post *models.Post) error {
	if !dispatch.KnownKind(post.Kind) {
		return validationErrorf("unknown post kind %q", post.Kind)
	}
	if _, err := dispatch.ContentFromPost(post.Kind, post); err != nil {
		return &ValidationError{Message: err.Error()}
	}

	switch post.Channel {
	case models.ChannelInstagram:
		if len(post.ImageURLs) > instagramCarouselMax {
			return validationErrorf("instagram carousel accepts at most %d items", instagramCarouselMax)
		}
	case models.ChannelTwitter:
		if len(post.ImageURLs) > twitterCarouselMax {
			return validationErrorf("twitter accepts at most %d images", twitterCarouselMax)
		}
	}
	return nil
}

func postedDate(pc *transfer.PostCreation) time.Time {
	if pc.ScheduleDate != "" {
		if t, err := time.Parse(scheduleDateLayout, pc.ScheduleDate); err == nil {
			return t
		}
		slog.Info("unparseable schedule date", "value", pc.ScheduleDate)
	}
	if pc.ShouldSchedule && pc.ScheduleSeconds > 0 {
		return time.Now().Add(time.Duration(pc.ScheduleSeconds) * time.Second)
	}
	return time.Now()
}

func postFromCreation(pc *transfer.PostCreation) (*models.Post, error) {
	channel, ok := dispatch.ChannelForKind(pc.Kind)
	if !ok {
		return nil, validationErrorf("unknown post kind %q", pc.Kind)
	}

	status := models.PostStatusQueued
	if pc.Draft {
		status = models.PostStatusDraft
	}

	post := &models.Post{
		PageID:     pc.PageID,
		Channel:    channel,
		Kind:       pc.Kind,
		Text:       pc.Text,
		ImageURLs:  pc.ImageURLs,
		VideoURLs:  pc.VideoURLs,
		IsApproved: pc.IsApproved,
		Status:     status,
		PostedDate: postedDate(pc),
	}
	if err := validatePost(post); err != nil {
		return nil, err
	}
	return post, nil
}

// armTimer installs the expiring key for a post, replacing any timer the
// same key already holds. Delete-then-set keeps an edited schedule from
// firing twice.
func (s *postService) armTimer(ctx context.Context, kind, pageID, postID, pageToken string, ttl time.Duration) error {
	key := schedule.Key{Kind: kind, PageID: pageID, PostID: postID, PageToken: pageToken}
	if err := key.Validate(); err != nil {
		slog.Info(err.Error())
		return err
	}

	raw := key.Encode()
	if err := s.timers.Delete(ctx, raw); err != nil {
		return err
	}
	return s.timers.SetWithExpiry(ctx, raw, "", ttl)
}

// dispatchOrSchedule routes an approved, non-draft post either onto a timer
// or straight to the dispatch workers.
func (s *postService) dispatchOrSchedule(ctx context.Context, post *models.Post, shouldSchedule bool, scheduleSeconds int) error {
	page, err := s.pages.GetByPageID(ctx, post.PageID)
	if err != nil {
		return err
	}
	if page == nil {
		return validationErrorf("no page registered for page id %q", post.PageID)
	}

	if shouldSchedule && scheduleSeconds > 0 {
		return s.armTimer(ctx, post.Kind, post.PageID, post.ID, page.PageToken,
			time.Duration(scheduleSeconds)*time.Second)
	}
	return s.enqueuer.EnqueueDispatch(ctx, post.Kind, post.PageID, post.ID, page.PageToken)
}

func (s *postService) Create(ctx context.Context, userID string, pc *transfer.PostCreation) (*models.Post, error) {
	post, err := postFromCreation(pc)
	if err != nil {
		return nil, err
	}

	id, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	post.ID = id
	post.CreatedBy = userID

	if err := s.pr.Create(ctx, post); err != nil {
		return nil, err
	}

	if !pc.Draft && pc.IsApproved {
		if err := s.dispatchOrSchedule(ctx, post, pc.ShouldSchedule, pc.ScheduleSeconds); err != nil {
			return nil, err
		}
	}
	return post, nil
}

func (s *postService) Update(ctx context.Context, userID string, pc *transfer.PostCreation) (*models.Post, error) {
	if pc.PostID == "" {
		return nil, validationErrorf("post id is required")
	}
	owned, err := s.pr.CheckByUserID(ctx, pc.PostID, userID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, errors.New("post not found")
	}

	existing, err := s.pr.GetByID(ctx, pc.PostID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errors.New("post not found")
	}

	post, err := postFromCreation(pc)
	if err != nil {
		return nil, err
	}
	post.ID = existing.ID
	post.CreatedBy = existing.CreatedBy

	// Any timer armed for the previous revision is stale, whatever its kind
	// or token: clear by page and post before persisting the edit.
	if _, err := s.timers.DeleteMatching(ctx, schedule.PostPattern(existing.PageID, existing.ID)); err != nil {
		return nil, err
	}

	if err := s.pr.Update(ctx, post); err != nil {
		return nil, err
	}

	if !pc.Draft && pc.IsApproved {
		if err := s.dispatchOrSchedule(ctx, post, pc.ShouldSchedule, pc.ScheduleSeconds); err != nil {
			return nil, err
		}
	}
	return post, nil
}

// Approve makes a post publishable again whatever its current state: drafts
// and previously failed ("not sent") posts both return to queued, so approval
// is also the retry path after a dispatch failure. The publish instant moves
// to the new schedule so the missed-post sweep does not fire on a timer that
// is still armed.
func (s *postService) Approve(ctx context.Context, userID string, pa *transfer.PostApproval) error {
	post, err := s.pr.GetByID(ctx, pa.PostID)
	if err != nil {
		return err
	}
	if post == nil {
		return errors.New("post not found")
	}

	post.IsApproved = true
	post.Status = models.PostStatusQueued
	post.StatusReason = ""
	if pa.ShouldSchedule && pa.ScheduleSeconds > 0 {
		post.PostedDate = time.Now().Add(time.Duration(pa.ScheduleSeconds) * time.Second)
	} else {
		post.PostedDate = time.Now()
	}
	if err := s.pr.Update(ctx, post); err != nil {
		return err
	}

	slog.Info("post approved", "post_id", post.ID, "user_id", userID,
		"scheduled", pa.ShouldSchedule)
	return s.dispatchOrSchedule(ctx, post, pa.ShouldSchedule, pa.ScheduleSeconds)
}

func (s *postService) Reject(ctx context.Context, userID, postID string) error {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return errors.New("post not found")
	}

	if _, err := s.timers.DeleteMatching(ctx, schedule.PostPattern(post.PageID, post.ID)); err != nil {
		return err
	}

	slog.Info("post rejected", "post_id", postID, "user_id", userID)
	return s.pr.UpdateStatus(ctx, postID, models.PostStatusRejected, "")
}

func (s *postService) Remove(ctx context.Context, userID, postID string) error {
	owned, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if !owned {
		return errors.New("post not found")
	}

	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return errors.New("post not found")
	}

	if _, err := s.timers.DeleteMatching(ctx, schedule.PostPattern(post.PageID, post.ID)); err != nil {
		return err
	}
	return s.pr.Remove(ctx, postID)
}

func (s *postService) GetByID(ctx context.Context, id string) (*models.Post, error) {
	return s.pr.GetByID(ctx, id)
}

func (s *postService) ListByPage(ctx context.Context, pageID, status string, limit, offset int) ([]*models.Post, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.pr.GetByPageID(ctx, pageID, status, limit, offset)
}

// Calendar returns the posts whose publish instant falls inside the day,
// week or month containing anchor.
func (s *postService) Calendar(ctx context.Context, pageID, view string, anchor time.Time) ([]*models.Post, error) {
	var from, to time.Time
	switch view {
	case "day":
		from = time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, anchor.Location())
		to = from.AddDate(0, 0, 1)
	case "week":
		offset := (int(anchor.Weekday()) + 6) % 7 // week starts Monday
		from = time.Date(anchor.Year(), anchor.Month(), anchor.Day()-offset, 0, 0, 0, 0, anchor.Location())
		to = from.AddDate(0, 0, 7)
	case "month":
		from = time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
		to = from.AddDate(0, 1, 0)
	default:
		return nil, validationErrorf("unknown calendar view %q", view)
	}
	return s.pr.GetByPageIDBetween(ctx, pageID, from, to)
}
