package service

import (
	"context"
	"errors"
	"log/slog"

	config "github.com/postrelay/postrelay/configs"
	"github.com/postrelay/postrelay/internal/models"
	"github.com/postrelay/postrelay/internal/repository"
	"github.com/postrelay/postrelay/internal/transfer"
	"github.com/postrelay/postrelay/pkg/utils"
)

// PageService is the credential boundary: page tokens are AES-GCM encrypted
// at rest and only decrypted on lookup for dispatch or scheduling.
type PageService interface {
	Add(ctx context.Context, userID string, pc *transfer.PageCreation) (int64, error)
	GetByPageID(ctx context.Context, pageID string) (*models.Page, error)
	List(ctx context.Context, userID string) ([]*models.Page, error)
	Remove(ctx context.Context, userID, pageID string) error
}

type pageService struct {
	cfg config.Config
	pg  repository.PageRepository
}

func NewPageService(cfg config.Config, pg repository.PageRepository) PageService {
	return &pageService{cfg: cfg, pg: pg}
}

func (s *pageService) Add(ctx context.Context, userID string, pc *transfer.PageCreation) (int64, error) {
	if pc.PageID == "" || pc.PageToken == "" || pc.Channel == "" {
		err := errors.New("page id, token and channel are required")
		slog.Info(err.Error())
		return 0, err
	}

	encryptedToken, err := utils.Encrypt([]byte(pc.PageToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return 0, err
	}

	page := &models.Page{
		PageID:    pc.PageID,
		Name:      pc.Name,
		PageToken: encryptedToken,
		UserToken: pc.UserToken,
		UserID:    userID,
		Channel:   pc.Channel,
	}
	return s.pg.Create(ctx, page)
}

// GetByPageID returns the page with its token decrypted, or (nil, nil) when
// the page does not exist.
func (s *pageService) GetByPageID(ctx context.Context, pageID string) (*models.Page, error) {
	page, err := s.pg.GetByPageID(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, nil
	}

	token, err := utils.Decrypt(page.PageToken, []byte(s.cfg.SecretKey))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	page.PageToken = token
	return page, nil
}

func (s *pageService) List(ctx context.Context, userID string) ([]*models.Page, error) {
	return s.pg.GetByUserID(ctx, userID)
}

func (s *pageService) Remove(ctx context.Context, userID, pageID string) error {
	return s.pg.Remove(ctx, pageID, userID)
}
