package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
	config "github.com/postrelay/postrelay/configs"
	"github.com/postrelay/postrelay/internal/dispatch"
	"github.com/postrelay/postrelay/internal/media"
	"github.com/postrelay/postrelay/internal/models"
	"github.com/postrelay/postrelay/internal/transfer"
)

const (
	twitterUploadURL = "https://upload.twitter.com/1.1/media_upload.json"
	twitterTweetURL  = "https://api.twitter.com/2/tweets"
)

// Twitter cannot publish remote media by URL: every image or video is
// downloaded to a temp file, uploaded to the v1.1 media endpoint for a media
// id, then referenced from the v2 tweet-create call. Requests are OAuth1
// signed with the app's consumer pair plus the page's access pair.
type TwitterService interface {
	dispatch.Publisher
}

type twitterService struct {
	cfg        config.Config
	downloader *media.Downloader
	timeout    time.Duration
}

func NewTwitterService(cfg config.Config, downloader *media.Downloader) TwitterService {
	return &twitterService{
		cfg:        cfg,
		downloader: downloader,
		timeout:    time.Duration(cfg.HTTPTimeoutSeconds) * time.Second,
	}
}

// signedClient builds an OAuth1-signing HTTP client from the composite
// "accessToken@accessTokenSecret" page token.
func (s *twitterService) signedClient(ctx context.Context, pageToken string) (*http.Client, error) {
	accessToken, accessSecret, ok := strings.Cut(pageToken, "@")
	if !ok || accessToken == "" || accessSecret == "" {
		return nil, dispatch.NewChannelError(models.ChannelTwitter,
			"page token is not a composite token@secret pair", "")
	}

	oauthConfig := oauth1.NewConfig(s.cfg.TwitterConsumerKey, s.cfg.TwitterConsumerSecret)
	token := oauth1.NewToken(accessToken, accessSecret)

	client := oauthConfig.Client(ctx, token)
	client.Timeout = s.timeout
	return client, nil
}

func (s *twitterService) Publish(ctx context.Context, target dispatch.Target, content dispatch.Content) (*dispatch.Result, error) {
	client, err := s.signedClient(ctx, target.PageToken)
	if err != nil {
		return nil, err
	}

	switch content.Shape {
	case dispatch.ShapeText:
		return s.tweet(ctx, client, content.Message, nil)
	case dispatch.ShapeImage:
		return s.mediaTweet(ctx, client, content.Message, content.ImageURLs[:1])
	case dispatch.ShapeCarousel:
		return s.mediaTweet(ctx, client, content.Message, content.ImageURLs)
	case dispatch.ShapeVideo:
		return s.mediaTweet(ctx, client, content.Message, content.VideoURLs[:1])
	default:
		return nil, dispatch.NewChannelError(models.ChannelTwitter,
			fmt.Sprintf("unsupported content shape %q for twitter", content.Shape), "")
	}
}

func (s *twitterService) mediaTweet(ctx context.Context, client *http.Client, text string, mediaURLs []string) (*dispatch.Result, error) {
	mediaIDs := make([]string, 0, len(mediaURLs))
	for _, mediaURL := range mediaURLs {
		mediaID, err := s.uploadMedia(ctx, client, mediaURL)
		if err != nil {
			return nil, err
		}
		mediaIDs = append(mediaIDs, mediaID)
	}
	return s.tweet(ctx, client, text, mediaIDs)
}

func (s *twitterService) uploadMedia(ctx context.Context, client *http.Client, mediaURL string) (string, error) {
	filePath, contentType, cleanup, err := s.downloader.TempFile(ctx, mediaURL)
	if err != nil {
		return "", dispatch.NewChannelError(models.ChannelTwitter, err.Error(), "")
	}
	defer cleanup()

	file, err := os.Open(filePath)
	if err != nil {
		return "", dispatch.NewChannelError(models.ChannelTwitter, err.Error(), "")
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("media", "media")
	if err != nil {
		return "", dispatch.NewChannelError(models.ChannelTwitter, err.Error(), "")
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", dispatch.NewChannelError(models.ChannelTwitter, err.Error(), "")
	}
	if err := writer.WriteField("media_category", mediaCategory(contentType)); err != nil {
		return "", dispatch.NewChannelError(models.ChannelTwitter, err.Error(), "")
	}
	if err := writer.Close(); err != nil {
		return "", dispatch.NewChannelError(models.ChannelTwitter, err.Error(), "")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, twitterUploadURL, &buf)
	if err != nil {
		return "", dispatch.NewChannelError(models.ChannelTwitter, err.Error(), "")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		return "", dispatch.NewChannelError(models.ChannelTwitter, err.Error(), "")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", dispatch.NewChannelError(models.ChannelTwitter, "error reading upload response", "")
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", twitterError(resp.StatusCode, body)
	}

	var upload transfer.TwitterMediaUpload
	if err := json.Unmarshal(body, &upload); err != nil || upload.MediaIDString == "" {
		return "", dispatch.NewChannelError(models.ChannelTwitter, "no media id returned from twitter", string(body))
	}
	return upload.MediaIDString, nil
}

func mediaCategory(contentType string) string {
	if strings.HasPrefix(contentType, "video/") {
		return "tweet_video"
	}
	return "tweet_image"
}

func (s *twitterService) tweet(ctx context.Context, client *http.Client, text string, mediaIDs []string) (*dispatch.Result, error) {
	payload := map[string]any{"text": text}
	if len(mediaIDs) > 0 {
		payload["media"] = map[string]any{"media_ids": mediaIDs}
	}

	body, status, err := postJSON(ctx, client, twitterTweetURL, nil, payload)
	if err != nil {
		return nil, dispatch.NewChannelError(models.ChannelTwitter, err.Error(), "")
	}
	if status != http.StatusCreated && status != http.StatusOK {
		return nil, twitterError(status, body)
	}

	var result transfer.TwitterTweetResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, dispatch.NewChannelError(models.ChannelTwitter, "error parsing tweet response", string(body))
	}
	return &dispatch.Result{Channel: models.ChannelTwitter, RemoteID: result.Data.ID}, nil
}

func twitterError(status int, body []byte) error {
	var envelope transfer.TwitterErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil {
		switch {
		case envelope.Detail != "":
			return dispatch.NewChannelError(models.ChannelTwitter, envelope.Detail, string(body))
		case len(envelope.Errors) > 0 && envelope.Errors[0].Message != "":
			return dispatch.NewChannelError(models.ChannelTwitter, envelope.Errors[0].Message, string(body))
		}
	}
	return dispatch.NewChannelError(models.ChannelTwitter,
		fmt.Sprintf("unexpected status code %d from twitter", status), string(body))
}
