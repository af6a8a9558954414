package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	config "github.com/postrelay/postrelay/configs"
	"github.com/postrelay/postrelay/internal/dispatch"
	"github.com/postrelay/postrelay/internal/media"
	"github.com/postrelay/postrelay/internal/models"
	"github.com/postrelay/postrelay/internal/transfer"
)

const (
	linkedinPostsURL  = "https://api.linkedin.com/rest/posts"
	linkedinImagesURL = "https://api.linkedin.com/rest/images?action=initializeUpload"
	linkedinVideosURL = "https://api.linkedin.com/rest/videos"
)

// LinkedIn image/video publishing registers an upload session, PUTs the
// binary part(s), finalizes (video only), then creates a post referencing
// the resulting asset URN.
type LinkedinService interface {
	dispatch.Publisher
}

type linkedinService struct {
	cfg        config.Config
	client     *http.Client
	downloader *media.Downloader
}

func NewLinkedinService(cfg config.Config, client *http.Client, downloader *media.Downloader) LinkedinService {
	return &linkedinService{cfg: cfg, client: client, downloader: downloader}
}

func (s *linkedinService) headers(token string) map[string]string {
	return map[string]string{
		"Authorization":             "Bearer " + token,
		"Linkedin-Version":          s.cfg.LinkedinVersion,
		"X-Restli-Protocol-Version": "2.0.0",
	}
}

func (s *linkedinService) Publish(ctx context.Context, target dispatch.Target, content dispatch.Content) (*dispatch.Result, error) {
	switch content.Shape {
	case dispatch.ShapeText:
		return s.createPost(ctx, target, content.Message, nil)
	case dispatch.ShapeImage:
		return s.imagePost(ctx, target, content.ImageURLs[:1], content.Message)
	case dispatch.ShapeCarousel:
		return s.imagePost(ctx, target, content.ImageURLs, content.Message)
	case dispatch.ShapeVideo:
		return s.videoPost(ctx, target, content.VideoURLs[0], content.Message)
	default:
		return nil, dispatch.NewChannelError(models.ChannelLinkedin,
			fmt.Sprintf("unsupported content shape %q for linkedin", content.Shape), "")
	}
}

func linkedinError(status int, body []byte) error {
	var envelope transfer.LinkedinErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Message != "" {
		return dispatch.NewChannelError(models.ChannelLinkedin, envelope.Message, string(body))
	}
	return dispatch.NewChannelError(models.ChannelLinkedin,
		fmt.Sprintf("unexpected status code %d from linkedin", status), string(body))
}

// content is nil for text posts; otherwise the media or multiImage block of
// the post body.
func (s *linkedinService) createPost(ctx context.Context, target dispatch.Target, commentary string, content map[string]any) (*dispatch.Result, error) {
	payload := map[string]any{
		"author":     "urn:li:organization:" + target.PageID,
		"commentary": commentary,
		"visibility": "PUBLIC",
		"distribution": map[string]any{
			"feedDistribution":               "MAIN_FEED",
			"targetEntities":                 []any{},
			"thirdPartyDistributionChannels": []any{},
		},
		"lifecycleState":            "PUBLISHED",
		"isReshareDisabledByAuthor": false,
	}
	if content != nil {
		payload["content"] = content
	}

	body, status, err := postJSON(ctx, s.client, linkedinPostsURL, s.headers(target.PageToken), payload)
	if err != nil {
		return nil, dispatch.NewChannelError(models.ChannelLinkedin, err.Error(), "")
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return nil, linkedinError(status, body)
	}

	var result struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &result)
	return &dispatch.Result{Channel: models.ChannelLinkedin, RemoteID: result.ID}, nil
}

func (s *linkedinService) uploadImage(ctx context.Context, target dispatch.Target, imageURL string) (string, error) {
	body, status, err := postJSON(ctx, s.client, linkedinImagesURL, s.headers(target.PageToken), map[string]any{
		"initializeUploadRequest": map[string]any{
			"owner": "urn:li:organization:" + target.PageID,
		},
	})
	if err != nil {
		return "", dispatch.NewChannelError(models.ChannelLinkedin, err.Error(), "")
	}
	if status != http.StatusOK {
		return "", linkedinError(status, body)
	}

	var upload transfer.LinkedinImageUpload
	if err := json.Unmarshal(body, &upload); err != nil || upload.Value.UploadURL == "" {
		return "", dispatch.NewChannelError(models.ChannelLinkedin, "no upload url returned from linkedin", string(body))
	}

	data, contentType, err := s.downloader.Bytes(ctx, imageURL)
	if err != nil {
		return "", dispatch.NewChannelError(models.ChannelLinkedin, err.Error(), "")
	}
	if err := s.putBinary(ctx, upload.Value.UploadURL, data, contentType); err != nil {
		return "", err
	}
	return upload.Value.Image, nil
}

func (s *linkedinService) putBinary(ctx context.Context, url string, data []byte, contentType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return dispatch.NewChannelError(models.ChannelLinkedin, err.Error(), "")
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := s.client.Do(req)
	if err != nil {
		return dispatch.NewChannelError(models.ChannelLinkedin, err.Error(), "")
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return linkedinError(resp.StatusCode, body)
	}
	return nil
}

func (s *linkedinService) imagePost(ctx context.Context, target dispatch.Target, imageURLs []string, commentary string) (*dispatch.Result, error) {
	assets := make([]string, 0, len(imageURLs))
	for _, imageURL := range imageURLs {
		asset, err := s.uploadImage(ctx, target, imageURL)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}

	var content map[string]any
	if len(assets) == 1 {
		content = map[string]any{
			"media": map[string]any{"id": assets[0]},
		}
	} else {
		images := make([]map[string]any, 0, len(assets))
		for _, asset := range assets {
			images = append(images, map[string]any{"id": asset})
		}
		content = map[string]any{
			"multiImage": map[string]any{"images": images},
		}
	}
	return s.createPost(ctx, target, commentary, content)
}

// Videos are staged to a temp file and each upload part streamed from it, so
// resident memory stays bounded regardless of video size.
func (s *linkedinService) videoPost(ctx context.Context, target dispatch.Target, videoURL, commentary string) (*dispatch.Result, error) {
	path, _, cleanup, err := s.downloader.TempFile(ctx, videoURL)
	if err != nil {
		return nil, dispatch.NewChannelError(models.ChannelLinkedin, err.Error(), "")
	}
	defer cleanup()

	file, err := os.Open(path)
	if err != nil {
		return nil, dispatch.NewChannelError(models.ChannelLinkedin, err.Error(), "")
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, dispatch.NewChannelError(models.ChannelLinkedin, err.Error(), "")
	}
	size := info.Size()

	body, status, err := postJSON(ctx, s.client, linkedinVideosURL+"?action=initializeUpload", s.headers(target.PageToken), map[string]any{
		"initializeUploadRequest": map[string]any{
			"owner":           "urn:li:organization:" + target.PageID,
			"fileSizeBytes":   size,
			"uploadCaptions":  false,
			"uploadThumbnail": false,
		},
	})
	if err != nil {
		return nil, dispatch.NewChannelError(models.ChannelLinkedin, err.Error(), "")
	}
	if status != http.StatusOK {
		return nil, linkedinError(status, body)
	}

	var upload transfer.LinkedinVideoUpload
	if err := json.Unmarshal(body, &upload); err != nil || upload.Value.Video == "" {
		return nil, dispatch.NewChannelError(models.ChannelLinkedin, "no video upload session returned from linkedin", string(body))
	}

	partIDs := make([]string, 0, len(upload.Value.UploadInstructions))
	for _, instruction := range upload.Value.UploadInstructions {
		last := instruction.LastByte
		if last >= size {
			last = size - 1
		}
		length := last - instruction.FirstByte + 1
		part := io.NewSectionReader(file, instruction.FirstByte, length)

		etag, err := s.putVideoPart(ctx, instruction.UploadURL, part, length)
		if err != nil {
			return nil, err
		}
		partIDs = append(partIDs, etag)
	}

	if err := s.finalizeVideo(ctx, target, upload.Value.Video, upload.Value.UploadToken, partIDs); err != nil {
		return nil, err
	}

	return s.createPost(ctx, target, commentary, map[string]any{
		"media": map[string]any{"id": upload.Value.Video},
	})
}

func (s *linkedinService) putVideoPart(ctx context.Context, url string, part io.Reader, length int64) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, part)
	if err != nil {
		return "", dispatch.NewChannelError(models.ChannelLinkedin, err.Error(), "")
	}
	req.ContentLength = length
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", dispatch.NewChannelError(models.ChannelLinkedin, err.Error(), "")
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return "", linkedinError(resp.StatusCode, body)
	}
	return resp.Header.Get("Etag"), nil
}

func (s *linkedinService) finalizeVideo(ctx context.Context, target dispatch.Target, videoURN, uploadToken string, partIDs []string) error {
	body, status, err := postJSON(ctx, s.client, linkedinVideosURL+"?action=finalizeUpload", s.headers(target.PageToken), map[string]any{
		"finalizeUploadRequest": map[string]any{
			"video":           videoURN,
			"uploadToken":     uploadToken,
			"uploadedPartIds": partIDs,
		},
	})
	if err != nil {
		return dispatch.NewChannelError(models.ChannelLinkedin, err.Error(), "")
	}
	if status != http.StatusOK {
		return linkedinError(status, body)
	}
	return nil
}
