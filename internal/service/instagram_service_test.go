package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/postrelay/postrelay/internal/dispatch"
	"github.com/stretchr/testify/assert"
)

func testInstagramService(srv *httptest.Server) *instagramService {
	return &instagramService{
		client:       srv.Client(),
		baseURL:      srv.URL,
		pollInterval: time.Millisecond,
		pollAttempts: 3,
	}
}

func TestWaitForContainerFinished(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status_code":"FINISHED"}`))
	}))
	defer srv.Close()

	s := testInstagramService(srv)
	err := s.waitForContainer(context.Background(), dispatch.Target{PageID: "ig-1", PageToken: "tok"}, "container-1")

	assert.NoError(t, err)
}

func TestWaitForContainerPollsUntilFinished(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits < 3 {
			w.Write([]byte(`{"status_code":"IN_PROGRESS"}`))
			return
		}
		w.Write([]byte(`{"status_code":"FINISHED"}`))
	}))
	defer srv.Close()

	s := testInstagramService(srv)
	err := s.waitForContainer(context.Background(), dispatch.Target{PageID: "ig-1", PageToken: "tok"}, "container-1")

	assert.NoError(t, err)
	assert.Equal(t, 3, hits)
}

// A rejected status poll can never become FINISHED; the provider's message
// must come back on the first attempt instead of being polled away into a
// generic timeout.
func TestWaitForContainerSurfacesProviderRejection(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Error validating access token: Session has expired","type":"OAuthException","code":190}}`))
	}))
	defer srv.Close()

	s := testInstagramService(srv)
	err := s.waitForContainer(context.Background(), dispatch.Target{PageID: "ig-1", PageToken: "expired"}, "container-1")

	var channelErr *dispatch.ChannelError
	assert.ErrorAs(t, err, &channelErr)
	assert.Equal(t, "Error validating access token: Session has expired", channelErr.Message)
	assert.Contains(t, channelErr.Provider, "OAuthException")
	assert.Equal(t, 1, hits)
}

func TestWaitForContainerProcessingError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status_code":"ERROR","status":"Video is too short"}`))
	}))
	defer srv.Close()

	s := testInstagramService(srv)
	err := s.waitForContainer(context.Background(), dispatch.Target{PageID: "ig-1", PageToken: "tok"}, "container-1")

	var channelErr *dispatch.ChannelError
	assert.ErrorAs(t, err, &channelErr)
	assert.Equal(t, "Video is too short", channelErr.Provider)
}
