package queue

import (
	"context"
	"testing"
	"time"

	"github.com/postrelay/postrelay/internal/dispatch"
	"github.com/postrelay/postrelay/internal/models"
	"github.com/stretchr/testify/assert"
)

type mockPostRepository struct {
	posts map[string]*models.Post
}

func (m *mockPostRepository) Create(ctx context.Context, post *models.Post) error { return nil }

func (m *mockPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	return m.posts[id], nil
}

func (m *mockPostRepository) GetByPageID(ctx context.Context, pageID, status string, limit, offset int) ([]*models.Post, error) {
	return nil, nil
}

func (m *mockPostRepository) GetByPageIDBetween(ctx context.Context, pageID string, from, to time.Time) ([]*models.Post, error) {
	return nil, nil
}

func (m *mockPostRepository) GetQueuedBefore(ctx context.Context, cutoff time.Time) ([]*models.Post, error) {
	return nil, nil
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
	sent    []string
	notSent []string
	reasons map[string]string
}

func newMockStatusService() *mockStatusService {
	return &mockStatusService{reasons: map[string]string{}}
}

func (m *mockStatusService) MarkSent(ctx context.Context, postID string) error {
	m.sent = append(m.sent, postID)
	return nil
}

func (m *mockStatusService) MarkNotSent(ctx context.Context, postID, reason string) error {
	m.notSent = append(m.notSent, postID)
	m.reasons[postID] = reason
	return nil
}

func (m *mockStatusService) MarkRejected(ctx context.Context, postID string) error { return nil }

func (m *mockStatusService) MarkApproved(ctx context.Context, postID string) error { return nil }

type mockPublisher struct {
	calls   int
	target  dispatch.Target
	content dispatch.Content
	err     error
}

func (m *mockPublisher) Publish(ctx context.Context, target dispatch.Target, content dispatch.Content) (*dispatch.Result, error) {
	m.calls++
	m.target = target
	m.content = content
	if m.err != nil {
		return nil, m.err
	}
	return &dispatch.Result{Channel: models.ChannelFacebook, RemoteID: "remote-1"}, nil
}

func queuedPost(id string) *models.Post {
	return &models.Post{
		ID:         id,
		PageID:     "page-1",
		Channel:    models.ChannelFacebook,
		Kind:       dispatch.KindTextWithImage,
		Text:       "hello",
		ImageURLs:  []string{"https://cdn/a.jpg"},
		IsApproved: true,
		Status:     models.PostStatusQueued,
	}
}

func newTestQueue(posts ...*models.Post) (*Queue, *mockPublisher, *mockStatusService) {
	pr := &mockPostRepository{posts: map[string]*models.Post{}}
	for _, p := range posts {
		pr.posts[p.ID] = p
	}
	pub := &mockPublisher{}
	status := newMockStatusService()
	q := NewQueue(pr, dispatch.NewDispatcher(map[string]dispatch.Publisher{
		models.ChannelFacebook: pub,
	}), status)
	return q, pub, status
}

func TestDispatchPostPublishesAndMarksSent(t *testing.T) {
	q, pub, status := newTestQueue(queuedPost("post-1"))

	q.DispatchPost(context.Background(), DispatchPostPayload{
		Kind:      dispatch.KindTextWithImage,
		PageID:    "page-1",
		PostID:    "post-1",
		PageToken: "token",
	})

	assert.Equal(t, 1, pub.calls)
	assert.Equal(t, dispatch.Target{PageID: "page-1", PageToken: "token"}, pub.target)
	assert.Equal(t, "hello", pub.content.Message)
	assert.Equal(t, []string{"post-1"}, status.sent)
	assert.Empty(t, status.notSent)
}

func TestDispatchPostSkipsDeletedPost(t *testing.T) {
	q, pub, status := newTestQueue()

	q.DispatchPost(context.Background(), DispatchPostPayload{
		Kind:   dispatch.KindTextWithImage,
		PageID: "page-1",
		PostID: "gone",
	})

	assert.Equal(t, 0, pub.calls)
	assert.Empty(t, status.sent)
	assert.Empty(t, status.notSent)
}

func TestDispatchPostSkipsUnapprovedPost(t *testing.T) {
	post := queuedPost("post-1")
	post.IsApproved = false
	q, pub, status := newTestQueue(post)

	q.DispatchPost(context.Background(), DispatchPostPayload{
		Kind:   dispatch.KindTextWithImage,
		PageID: "page-1",
		PostID: "post-1",
	})

	assert.Equal(t, 0, pub.calls)
	assert.Empty(t, status.sent)
	assert.Empty(t, status.notSent)
}

func TestDispatchPostSkipsAlreadySentPost(t *testing.T) {
	post := queuedPost("post-1")
	post.Status = models.PostStatusSent
	q, pub, status := newTestQueue(post)

	q.DispatchPost(context.Background(), DispatchPostPayload{
		Kind:   dispatch.KindTextWithImage,
		PageID: "page-1",
		PostID: "post-1",
	})

	assert.Equal(t, 0, pub.calls)
	assert.Empty(t, status.sent)
}

func TestDispatchPostRecordsChannelFailure(t *testing.T) {
	q, pub, status := newTestQueue(queuedPost("post-1"))
	pub.err = dispatch.NewChannelError(models.ChannelFacebook, "invalid page token", `{"error":{"code":190}}`)

	q.DispatchPost(context.Background(), DispatchPostPayload{
		Kind:      dispatch.KindTextWithImage,
		PageID:    "page-1",
		PostID:    "post-1",
		PageToken: "token",
	})

	assert.Equal(t, 1, pub.calls)
	assert.Empty(t, status.sent)
	assert.Equal(t, []string{"post-1"}, status.notSent)
	assert.Equal(t, "invalid page token", status.reasons["post-1"])
}

func TestDispatchPostUnknownKindRecordsFailure(t *testing.T) {
	post := queuedPost("post-1")
	post.Kind = "mysteryKind"
	q, pub, status := newTestQueue(post)

	q.DispatchPost(context.Background(), DispatchPostPayload{
		Kind:   "mysteryKind",
		PageID: "page-1",
		PostID: "post-1",
	})

	assert.Equal(t, 0, pub.calls)
	assert.Equal(t, []string{"post-1"}, status.notSent)
}
