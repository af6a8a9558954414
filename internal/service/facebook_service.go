package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/postrelay/postrelay/internal/dispatch"
	"github.com/postrelay/postrelay/internal/models"
	"github.com/postrelay/postrelay/internal/transfer"
)

const fbGraphBase = "https://graph.facebook.com"

type FacebookService interface {
	dispatch.Publisher
}

type facebookService struct {
	client *http.Client
}

func NewFacebookService(client *http.Client) FacebookService {
	return &facebookService{client: client}
}

func (s *facebookService) Publish(ctx context.Context, target dispatch.Target, content dispatch.Content) (*dispatch.Result, error) {
	switch content.Shape {
	case dispatch.ShapeText:
		return s.textPost(ctx, target, content.Message)
	case dispatch.ShapeImage:
		return s.singleImagePost(ctx, target, content.ImageURLs[0], content.Message)
	case dispatch.ShapeCarousel:
		return s.multiImagePost(ctx, target, content.ImageURLs, content.Message)
	case dispatch.ShapeVideo:
		return s.videoPost(ctx, target, content.VideoURLs[0], content.Message)
	case dispatch.ShapeReel:
		return s.reelPost(ctx, target, content.VideoURLs[0], content.Message)
	case dispatch.ShapeStoryVideo:
		return s.storyVideoPost(ctx, target, content.VideoURLs[0])
	case dispatch.ShapeStoryImage:
		return s.storyImagePost(ctx, target, content.ImageURLs[0])
	default:
		return nil, dispatch.NewChannelError(models.ChannelFacebook,
			fmt.Sprintf("unsupported content shape %q for facebook", content.Shape), "")
	}
}

func (s *facebookService) bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// graphError converts a non-200 Graph API response into a normalized channel
// error, preserving the provider payload verbatim.
func graphError(channel string, status int, body []byte) error {
	var envelope transfer.GraphErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return dispatch.NewChannelError(channel, envelope.Error.Message, string(body))
	}
	return dispatch.NewChannelError(channel,
		fmt.Sprintf("unexpected status code %d from graph api", status), string(body))
}

func (s *facebookService) graphPost(ctx context.Context, token, path string, payload any) (*transfer.GraphIDResponse, error) {
	body, status, err := postJSON(ctx, s.client, fbGraphBase+path, s.bearer(token), payload)
	if err != nil {
		return nil, dispatch.NewChannelError(models.ChannelFacebook, err.Error(), "")
	}
	if status != http.StatusOK {
		return nil, graphError(models.ChannelFacebook, status, body)
	}

	var result transfer.GraphIDResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, dispatch.NewChannelError(models.ChannelFacebook, "error parsing graph response", string(body))
	}
	return &result, nil
}

func (s *facebookService) textPost(ctx context.Context, target dispatch.Target, message string) (*dispatch.Result, error) {
	result, err := s.graphPost(ctx, target.PageToken, "/"+target.PageID+"/feed", map[string]any{
		"message": message,
	})
	if err != nil {
		return nil, err
	}
	return &dispatch.Result{Channel: models.ChannelFacebook, RemoteID: result.ID}, nil
}

func (s *facebookService) singleImagePost(ctx context.Context, target dispatch.Target, imageURL, caption string) (*dispatch.Result, error) {
	result, err := s.graphPost(ctx, target.PageToken, "/"+target.PageID+"/photos", map[string]any{
		"url":     imageURL,
		"caption": caption,
	})
	if err != nil {
		return nil, err
	}
	return &dispatch.Result{Channel: models.ChannelFacebook, RemoteID: result.ID}, nil
}

// multiImagePost creates one unpublished photo object per URL, then a single
// feed post referencing all of them.
func (s *facebookService) multiImagePost(ctx context.Context, target dispatch.Target, imageURLs []string, message string) (*dispatch.Result, error) {
	attached := make([]map[string]string, 0, len(imageURLs))
	for _, imageURL := range imageURLs {
		photo, err := s.graphPost(ctx, target.PageToken, "/"+target.PageID+"/photos", map[string]any{
			"url":       imageURL,
			"published": false,
		})
		if err != nil {
			return nil, err
		}
		attached = append(attached, map[string]string{"media_fbid": photo.ID})
	}

	result, err := s.graphPost(ctx, target.PageToken, "/"+target.PageID+"/feed", map[string]any{
		"message":        message,
		"attached_media": attached,
	})
	if err != nil {
		return nil, err
	}
	return &dispatch.Result{Channel: models.ChannelFacebook, RemoteID: result.ID}, nil
}

func (s *facebookService) videoPost(ctx context.Context, target dispatch.Target, videoURL, description string) (*dispatch.Result, error) {
	form := url.Values{}
	form.Set("access_token", target.PageToken)
	form.Set("file_url", videoURL)
	form.Set("description", description)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fbGraphBase+"/"+target.PageID+"/videos", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, dispatch.NewChannelError(models.ChannelFacebook, err.Error(), "")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, dispatch.NewChannelError(models.ChannelFacebook, err.Error(), "")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, dispatch.NewChannelError(models.ChannelFacebook, "error reading graph response", "")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, graphError(models.ChannelFacebook, resp.StatusCode, body)
	}

	var result transfer.GraphIDResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, dispatch.NewChannelError(models.ChannelFacebook, "error parsing graph response", string(body))
	}
	return &dispatch.Result{Channel: models.ChannelFacebook, RemoteID: result.ID}, nil
}

// startUploadSession begins the 3-phase reel/story-video protocol: start a
// session, upload the binary by URL, then finish/publish.
func (s *facebookService) startUploadSession(ctx context.Context, token, path string) (*transfer.GraphUploadSession, error) {
	body, status, err := postJSON(ctx, s.client, fbGraphBase+path, s.bearer(token), map[string]any{
		"upload_phase": "start",
	})
	if err != nil {
		return nil, dispatch.NewChannelError(models.ChannelFacebook, err.Error(), "")
	}
	if status != http.StatusOK {
		return nil, graphError(models.ChannelFacebook, status, body)
	}

	var session transfer.GraphUploadSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, dispatch.NewChannelError(models.ChannelFacebook, "error parsing upload session", string(body))
	}
	return &session, nil
}

// uploadByURL hands the hosted video URL to the rupload endpoint; Facebook
// pulls the binary itself.
func (s *facebookService) uploadByURL(ctx context.Context, token, uploadURL, videoURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, nil)
	if err != nil {
		return dispatch.NewChannelError(models.ChannelFacebook, err.Error(), "")
	}
	req.Header.Set("Authorization", "OAuth "+token)
	req.Header.Set("file_url", videoURL)

	resp, err := s.client.Do(req)
	if err != nil {
		return dispatch.NewChannelError(models.ChannelFacebook, err.Error(), "")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return dispatch.NewChannelError(models.ChannelFacebook,
			fmt.Sprintf("unexpected status code %d uploading video", resp.StatusCode), "")
	}
	return nil
}

func (s *facebookService) finishUpload(ctx context.Context, token, path, videoID string, extra map[string]any) error {
	payload := map[string]any{
		"upload_phase": "finish",
		"video_id":     videoID,
	}
	for k, v := range extra {
		payload[k] = v
	}

	body, status, err := postJSON(ctx, s.client, fbGraphBase+path, s.bearer(token), payload)
	if err != nil {
		return dispatch.NewChannelError(models.ChannelFacebook, err.Error(), "")
	}
	if status != http.StatusOK {
		return graphError(models.ChannelFacebook, status, body)
	}
	return nil
}

func (s *facebookService) reelPost(ctx context.Context, target dispatch.Target, videoURL, description string) (*dispatch.Result, error) {
	path := "/" + target.PageID + "/video_reels"

	session, err := s.startUploadSession(ctx, target.PageToken, path)
	if err != nil {
		return nil, err
	}
	if err := s.uploadByURL(ctx, target.PageToken, session.UploadURL, videoURL); err != nil {
		return nil, err
	}
	if err := s.finishUpload(ctx, target.PageToken, path, session.VideoID, map[string]any{
		"video_state": "PUBLISHED",
		"description": description,
	}); err != nil {
		return nil, err
	}
	return &dispatch.Result{Channel: models.ChannelFacebook, RemoteID: session.VideoID}, nil
}

func (s *facebookService) storyVideoPost(ctx context.Context, target dispatch.Target, videoURL string) (*dispatch.Result, error) {
	path := "/" + target.PageID + "/video_stories"

	session, err := s.startUploadSession(ctx, target.PageToken, path)
	if err != nil {
		return nil, err
	}
	if err := s.uploadByURL(ctx, target.PageToken, session.UploadURL, videoURL); err != nil {
		return nil, err
	}
	// Video stories carry no caption.
	if err := s.finishUpload(ctx, target.PageToken, path, session.VideoID, nil); err != nil {
		return nil, err
	}
	return &dispatch.Result{Channel: models.ChannelFacebook, RemoteID: session.VideoID}, nil
}

func (s *facebookService) storyImagePost(ctx context.Context, target dispatch.Target, imageURL string) (*dispatch.Result, error) {
	photo, err := s.graphPost(ctx, target.PageToken, "/"+target.PageID+"/photos", map[string]any{
		"url":       imageURL,
		"published": false,
	})
	if err != nil {
		return nil, err
	}

	result, err := s.graphPost(ctx, target.PageToken, "/"+target.PageID+"/photo_stories", map[string]any{
		"photo_id": photo.ID,
	})
	if err != nil {
		return nil, err
	}
	return &dispatch.Result{Channel: models.ChannelFacebook, RemoteID: result.ID}, nil
}
