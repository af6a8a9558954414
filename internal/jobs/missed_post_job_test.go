package job

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/postrelay/postrelay/internal/models"
	"github.com/stretchr/testify/assert"
)

type mockPostRepository struct {
	queued []*models.Post
	cutoff time.Time
}

func (m *mockPostRepository) Create(ctx context.Context, post *models.Post) error { return nil }

func (m *mockPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	return nil, nil
}

func (m *mockPostRepository) GetByPageID(ctx context.Context, pageID, status string, limit, offset int) ([]*models.Post, error) {
	return nil, nil
}

func (m *mockPostRepository) GetByPageIDBetween(ctx context.Context, pageID string, from, to time.Time) ([]*models.Post, error) {
	return nil, nil
}

func (m *mockPostRepository) GetQueuedBefore(ctx context.Context, cutoff time.Time) ([]*models.Post, error) {
	m.cutoff = cutoff
	return m.queued, nil
}

func (m *mockPostRepository) Update(ctx context.Context, post *models.Post) error { return nil }

func (m *mockPostRepository) UpdateStatus(ctx context.Context, id, status, reason string) error {
	return nil
}

func (m *mockPostRepository) SetApproval(ctx context.Context, id string, approved bool) error {
	return nil
}

func (m *mockPostRepository) CheckByUserID(ctx context.Context, id, userID string) (bool, error) {
	return false, nil
}

func (m *mockPostRepository) Remove(ctx context.Context, id string) error { return nil }

type mockStatusService struct {
	mu      sync.Mutex
	notSent map[string]string
}

func (m *mockStatusService) MarkSent(ctx context.Context, postID string) error { return nil }

func (m *mockStatusService) MarkNotSent(ctx context.Context, postID, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notSent[postID] = reason
	return nil
}

func (m *mockStatusService) MarkRejected(ctx context.Context, postID string) error { return nil }

func (m *mockStatusService) MarkApproved(ctx context.Context, postID string) error { return nil }

func TestSweepMarksMissedPostsNotSent(t *testing.T) {
	pr := &mockPostRepository{queued: []*models.Post{
		{ID: "post-1", Status: models.PostStatusQueued, IsApproved: true},
		{ID: "post-2", Status: models.PostStatusQueued, IsApproved: true},
	}}
	status := &mockStatusService{notSent: map[string]string{}}

	job := NewMissedPostJob(pr, status, 10*time.Minute)
	job.SweepMissedPosts()

	assert.Len(t, status.notSent, 2)
	assert.Equal(t, "missed schedule window", status.notSent["post-1"])
	assert.Equal(t, "missed schedule window", status.notSent["post-2"])

	// The cutoff trails now by the grace period.
	assert.WithinDuration(t, time.Now().Add(-10*time.Minute), pr.cutoff, 5*time.Second)
}

func TestSweepWithNothingQueued(t *testing.T) {
	pr := &mockPostRepository{}
	status := &mockStatusService{notSent: map[string]string{}}

	job := NewMissedPostJob(pr, status, time.Minute)
	job.SweepMissedPosts()

	assert.Empty(t, status.notSent)
}
