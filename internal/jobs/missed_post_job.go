package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/postrelay/postrelay/internal/models"
	"github.com/postrelay/postrelay/internal/repository"
	"github.com/postrelay/postrelay/internal/service"
)

// MissedPostJob sweeps for approved posts still queued past their publish
// instant. A post ends up here when its timer was lost, usually because
// redis restarted and the expiring keys went with it, and marking it "not
// sent" surfaces the miss instead of leaving it queued forever.
type MissedPostJob struct {
	pr     repository.PostRepository
	status service.StatusService
	grace  time.Duration
}

func NewMissedPostJob(pr repository.PostRepository, status service.StatusService, grace time.Duration) *MissedPostJob {
	return &MissedPostJob{pr: pr, status: status, grace: grace}
}

func (c *MissedPostJob) SweepMissedPosts() {
	ctx := context.Background()

	cutoff := time.Now().Add(-c.grace)

	posts, err := c.pr.GetQueuedBefore(ctx, cutoff)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, post := range posts {

		wg.Add(1)
		semaphore <- struct{}{}

		go func(post *models.Post) {
			defer wg.Done()
			defer func() { <-semaphore }()

			slog.Info("post missed its schedule window",
				"post_id", post.ID, "posted_date", post.PostedDate)
			if err := c.status.MarkNotSent(ctx, post.ID, "missed schedule window"); err != nil {
				slog.Info("unable to mark missed post", "post_id", post.ID)
			}
		}(post)
	}

	wg.Wait()
}
