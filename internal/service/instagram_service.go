package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/postrelay/postrelay/internal/dispatch"
	"github.com/postrelay/postrelay/internal/models"
	"github.com/postrelay/postrelay/internal/transfer"
)

const igGraphBase = "https://graph.facebook.com/v20.0"

// Every Instagram media type publishes in two phases: create a media
// container, then publish the container. Video containers additionally need
// their processing status polled before publish is safe.
type InstagramService interface {
	dispatch.Publisher
}

type instagramService struct {
	client  *http.Client
	baseURL string
	// pollInterval/pollAttempts bound the container status wait.
	pollInterval time.Duration
	pollAttempts int
}

func NewInstagramService(client *http.Client) InstagramService {
	return &instagramService{
		client:       client,
		baseURL:      igGraphBase,
		pollInterval: 3 * time.Second,
		pollAttempts: 10,
	}
}

func (s *instagramService) Publish(ctx context.Context, target dispatch.Target, content dispatch.Content) (*dispatch.Result, error) {
	switch content.Shape {
	case dispatch.ShapeImage:
		return s.imagePost(ctx, target, content.ImageURLs[0], content.Message)
	case dispatch.ShapeCarousel:
		return s.carouselPost(ctx, target, content.ImageURLs, content.Message)
	case dispatch.ShapeVideo:
		return s.videoPost(ctx, target, content.VideoURLs[0], content.Message, "REELS")
	case dispatch.ShapeStoryImage:
		return s.storyImagePost(ctx, target, content.ImageURLs[0])
	case dispatch.ShapeStoryVideo:
		return s.videoPost(ctx, target, content.VideoURLs[0], "", "STORIES")
	default:
		return nil, dispatch.NewChannelError(models.ChannelInstagram,
			fmt.Sprintf("unsupported content shape %q for instagram", content.Shape), "")
	}
}

func (s *instagramService) createContainer(ctx context.Context, target dispatch.Target, payload map[string]any) (string, error) {
	payload["access_token"] = target.PageToken

	body, status, err := postJSON(ctx, s.client, s.baseURL+"/"+target.PageID+"/media", nil, payload)
	if err != nil {
		return "", dispatch.NewChannelError(models.ChannelInstagram, err.Error(), "")
	}
	if status != http.StatusOK {
		return "", graphError(models.ChannelInstagram, status, body)
	}

	var result transfer.GraphIDResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", dispatch.NewChannelError(models.ChannelInstagram, "error parsing container response", string(body))
	}
	if result.ID == "" {
		return "", dispatch.NewChannelError(models.ChannelInstagram, "no container id returned from instagram", string(body))
	}
	return result.ID, nil
}

func (s *instagramService) publishContainer(ctx context.Context, target dispatch.Target, creationID string) (*dispatch.Result, error) {
	body, status, err := postJSON(ctx, s.client, s.baseURL+"/"+target.PageID+"/media_publish", nil, map[string]any{
		"creation_id":  creationID,
		"access_token": target.PageToken,
	})
	if err != nil {
		return nil, dispatch.NewChannelError(models.ChannelInstagram, err.Error(), "")
	}
	if status != http.StatusOK {
		return nil, graphError(models.ChannelInstagram, status, body)
	}

	var result transfer.GraphIDResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, dispatch.NewChannelError(models.ChannelInstagram, "error parsing publish response", string(body))
	}
	return &dispatch.Result{Channel: models.ChannelInstagram, RemoteID: result.ID}, nil
}

// waitForContainer polls the container until processing finishes. A container
// stuck in ERROR or still unfinished after the last attempt fails the
// dispatch.
func (s *instagramService) waitForContainer(ctx context.Context, target dispatch.Target, containerID string) error {
	url := fmt.Sprintf("%s/%s?fields=status_code,status&access_token=%s", s.baseURL, containerID, target.PageToken)

	for attempt := 0; attempt < s.pollAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return dispatch.NewChannelError(models.ChannelInstagram, err.Error(), "")
		}
		resp, err := s.client.Do(req)
		if err != nil {
			return dispatch.NewChannelError(models.ChannelInstagram, err.Error(), "")
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return dispatch.NewChannelError(models.ChannelInstagram, "error reading media status", "")
		}
		// A hard rejection of the status poll itself (expired token, bad
		// container id) will never become FINISHED; fail now with the
		// provider's message instead of polling it away.
		if resp.StatusCode != http.StatusOK {
			return graphError(models.ChannelInstagram, resp.StatusCode, body)
		}

		var status transfer.GraphMediaStatus
		if err := json.Unmarshal(body, &status); err != nil {
			return dispatch.NewChannelError(models.ChannelInstagram, "error parsing media status", string(body))
		}

		switch status.StatusCode {
		case "FINISHED":
			return nil
		case "ERROR":
			return dispatch.NewChannelError(models.ChannelInstagram, "media container processing failed", status.Status)
		}

		select {
		case <-ctx.Done():
			return dispatch.NewChannelError(models.ChannelInstagram, ctx.Err().Error(), "")
		case <-time.After(s.pollInterval):
		}
	}
	return dispatch.NewChannelError(models.ChannelInstagram, "media container not ready after polling", "")
}

func (s *instagramService) imagePost(ctx context.Context, target dispatch.Target, imageURL, caption string) (*dispatch.Result, error) {
	containerID, err := s.createContainer(ctx, target, map[string]any{
		"image_url": imageURL,
		"caption":   caption,
	})
	if err != nil {
		return nil, err
	}
	return s.publishContainer(ctx, target, containerID)
}

func (s *instagramService) storyImagePost(ctx context.Context, target dispatch.Target, imageURL string) (*dispatch.Result, error) {
	containerID, err := s.createContainer(ctx, target, map[string]any{
		"image_url":  imageURL,
		"media_type": "STORIES",
	})
	if err != nil {
		return nil, err
	}
	return s.publishContainer(ctx, target, containerID)
}

func (s *instagramService) videoPost(ctx context.Context, target dispatch.Target, videoURL, caption, mediaType string) (*dispatch.Result, error) {
	containerID, err := s.createContainer(ctx, target, map[string]any{
		"video_url":  videoURL,
		"media_type": mediaType,
		"caption":    caption,
	})
	if err != nil {
		return nil, err
	}
	if err := s.waitForContainer(ctx, target, containerID); err != nil {
		return nil, err
	}
	return s.publishContainer(ctx, target, containerID)
}

// carouselPost creates one child container per item, a parent CAROUSEL
// container referencing them, then publishes the parent.
func (s *instagramService) carouselPost(ctx context.Context, target dispatch.Target, imageURLs []string, caption string) (*dispatch.Result, error) {
	childIDs := make([]string, 0, len(imageURLs))
	for _, imageURL := range imageURLs {
		childID, err := s.createContainer(ctx, target, map[string]any{
			"image_url":        imageURL,
			"is_carousel_item": true,
		})
		if err != nil {
			return nil, err
		}
		childIDs = append(childIDs, childID)
	}

	parentID, err := s.createContainer(ctx, target, map[string]any{
		"media_type": "CAROUSEL",
		"caption":    caption,
		"children":   childIDs,
	})
	if err != nil {
		return nil, err
	}
	return s.publishContainer(ctx, target, parentID)
}
