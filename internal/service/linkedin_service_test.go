package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/postrelay/postrelay/internal/dispatch"
	"github.com/stretchr/testify/assert"
)

func TestPutVideoPartStreamsSection(t *testing.T) {
	payload := []byte("0123456789abcdef")
	path := filepath.Join(t.TempDir(), "video")
	assert.NoError(t, os.WriteFile(path, payload, 0o600))

	file, err := os.Open(path)
	assert.NoError(t, err)
	defer file.Close()

	var received []byte
	var contentLength int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received, _ = io.ReadAll(r.Body)
		contentLength = r.ContentLength
		w.Header().Set("Etag", "part-etag-1")
	}))
	defer srv.Close()

	s := &linkedinService{client: srv.Client()}
	part := io.NewSectionReader(file, 4, 8)

	etag, err := s.putVideoPart(context.Background(), srv.URL, part, 8)

	assert.NoError(t, err)
	assert.Equal(t, "part-etag-1", etag)
	assert.Equal(t, []byte("456789ab"), received)
	assert.Equal(t, int64(8), contentLength)
}

func TestPutVideoPartSurfacesRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Invalid upload token","status":401}`))
	}))
	defer srv.Close()

	s := &linkedinService{client: srv.Client()}

	_, err := s.putVideoPart(context.Background(), srv.URL, strings.NewReader(""), 0)

	var channelErr *dispatch.ChannelError
	assert.ErrorAs(t, err, &channelErr)
	assert.Equal(t, "Invalid upload token", channelErr.Message)
}
