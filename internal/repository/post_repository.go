package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/postrelay/postrelay/internal/models"
)

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	GetByPageID(ctx context.Context, pageID, status string, limit, offset int) ([]*models.Post, error)
	GetByPageIDBetween(ctx context.Context, pageID string, from, to time.Time) ([]*models.Post, error)
	GetQueuedBefore(ctx context.Context, cutoff time.Time) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	UpdateStatus(ctx context.Context, id, status, reason string) error
	SetApproval(ctx context.Context, id string, approved bool) error
	CheckByUserID(ctx context.Context, id, userID string) (bool, error)
	Remove(ctx context.Context, id string) error
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, page_id, channel, kind, text, image_urls, video_urls, is_approved, status, status_reason, posted_date, created_by, created_at, updated_at`

// Image and video URL lists are stored as JSON-serialized text columns,
// empty string when absent.
func marshalURLs(urls []string) string {
	if len(urls) == 0 {
		return ""
	}
	b, err := json.Marshal(urls)
	if err != nil {
		slog.Info(err.Error())
		return ""
	}
	return string(b)
}

func unmarshalURLs(raw string) []string {
	if raw == "" {
		return nil
	}
	var urls []string
	if err := json.Unmarshal([]byte(raw), &urls); err != nil {
		slog.Info(err.Error())
		return nil
	}
	return urls
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (id, page_id, channel, kind, text, image_urls, video_urls, is_approved, status, status_reason, posted_date, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		post.ID, post.PageID, post.Channel, post.Kind, post.Text,
		marshalURLs(post.ImageURLs), marshalURLs(post.VideoURLs),
		post.IsApproved, post.Status, post.StatusReason, post.PostedDate, post.CreatedBy)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func scanPost(row interface{ Scan(dest ...any) error }) (*models.Post, error) {
	var post models.Post
	var imageURLs, videoURLs string
	err := row.Scan(&post.ID, &post.PageID, &post.Channel, &post.Kind, &post.Text,
		&imageURLs, &videoURLs, &post.IsApproved, &post.Status, &post.StatusReason,
		&post.PostedDate, &post.CreatedBy, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}
	post.ImageURLs = unmarshalURLs(imageURLs)
	post.VideoURLs = unmarshalURLs(videoURLs)
	return &post, nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

func (r *postRepository) queryPosts(ctx context.Context, query string, args ...any) ([]*models.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (r *postRepository) GetByPageID(ctx context.Context, pageID, status string, limit, offset int) ([]*models.Post, error) {
	switch status {
	case "draft":
		return r.queryPosts(ctx,
			`SELECT `+postColumns+` FROM posts WHERE page_id = $1 AND status = 'draft' ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
			pageID, limit, offset)
	case "sent":
		return r.queryPosts(ctx,
			`SELECT `+postColumns+` FROM posts WHERE page_id = $1 AND status = 'sent' AND is_approved ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
			pageID, limit, offset)
	case "approval":
		return r.queryPosts(ctx,
			`SELECT `+postColumns+` FROM posts WHERE page_id = $1 AND NOT is_approved AND status = 'queued' ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
			pageID, limit, offset)
	default:
		return r.queryPosts(ctx,
			`SELECT `+postColumns+` FROM posts WHERE page_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
			pageID, limit, offset)
	}
}

func (r *postRepository) GetByPageIDBetween(ctx context.Context, pageID string, from, to time.Time) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE page_id = $1 AND posted_date BETWEEN $2 AND $3 ORDER BY posted_date ASC`
	return r.queryPosts(ctx, query, pageID, from, to)
}

func (r *postRepository) GetQueuedBefore(ctx context.Context, cutoff time.Time) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE status = 'queued' AND is_approved AND posted_date < $1`
	return r.queryPosts(ctx, query, cutoff)
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	query := `
		UPDATE posts
		SET page_id = $1, channel = $2, kind = $3, text = $4, image_urls = $5,
			video_urls = $6, is_approved = $7, status = $8, status_reason = $9,
			posted_date = $10, updated_at = $11
		WHERE id = $12
	`
	_, err := r.db.ExecContext(ctx, query,
		post.PageID, post.Channel, post.Kind, post.Text,
		marshalURLs(post.ImageURLs), marshalURLs(post.VideoURLs),
		post.IsApproved, post.Status, post.StatusReason, post.PostedDate, time.Now(), post.ID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) UpdateStatus(ctx context.Context, id, status, reason string) error {
	query := `
		UPDATE posts
		SET status = $1, status_reason = $2, updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, status, reason, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) SetApproval(ctx context.Context, id string, approved bool) error {
	query := `UPDATE posts SET is_approved = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, approved, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) CheckByUserID(ctx context.Context, id, userID string) (bool, error) {
	query := `SELECT 1 FROM posts WHERE id = $1 AND created_by = $2`

	var result int
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}
	return result == 1, nil
}

func (r *postRepository) Remove(ctx context.Context, id string) error {
	query := `DELETE FROM posts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
