package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/postrelay/postrelay/internal/models"
)

type PageRepository interface {
	Create(ctx context.Context, page *models.Page) (int64, error)
	GetByPageID(ctx context.Context, pageID string) (*models.Page, error)
	GetByUserID(ctx context.Context, userID string) ([]*models.Page, error)
	Remove(ctx context.Context, pageID, userID string) error
}

type pageRepository struct {
	db *sql.DB
}

func NewPageRepository(db *sql.DB) PageRepository {
	return &pageRepository{db: db}
}

func (r *pageRepository) Create(ctx context.Context, page *models.Page) (int64, error) {
	query := `
		INSERT INTO pages (page_id, name, page_token, user_token, user_id, channel)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		page.PageID, page.Name, page.PageToken, page.UserToken, page.UserID, page.Channel).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *pageRepository) GetByPageID(ctx context.Context, pageID string) (*models.Page, error) {
	query := `SELECT id, page_id, name, page_token, user_token, user_id, channel, created_at, updated_at FROM pages WHERE page_id = $1`
	row := r.db.QueryRowContext(ctx, query, pageID)

	var page models.Page
	err := row.Scan(&page.ID, &page.PageID, &page.Name, &page.PageToken, &page.UserToken,
		&page.UserID, &page.Channel, &page.CreatedAt, &page.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &page, nil
}

func (r *pageRepository) GetByUserID(ctx context.Context, userID string) ([]*models.Page, error) {
	query := `SELECT id, page_id, name, page_token, user_token, user_id, channel, created_at, updated_at FROM pages WHERE user_id = $1`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var pages []*models.Page
	for rows.Next() {
		var page models.Page
		err := rows.Scan(&page.ID, &page.PageID, &page.Name, &page.PageToken, &page.UserToken,
			&page.UserID, &page.Channel, &page.CreatedAt, &page.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		pages = append(pages, &page)
	}
	return pages, rows.Err()
}

func (r *pageRepository) Remove(ctx context.Context, pageID, userID string) error {
	query := `DELETE FROM pages WHERE page_id = $1 AND user_id = $2`
	_, err := r.db.ExecContext(ctx, query, pageID, userID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
