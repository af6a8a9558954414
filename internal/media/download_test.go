package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

var jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46, 0x49, 0x46}

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", DetectContentType(jpegHeader))
	assert.Equal(t, "image/png", DetectContentType([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}))
	assert.Equal(t, "application/octet-stream", DetectContentType([]byte("plain text")))
	assert.Equal(t, "application/octet-stream", DetectContentType(nil))
}

func TestBytesDownloadsAndSniffs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(jpegHeader)
	}))
	defer srv.Close()

	d := NewDownloader(srv.Client())
	data, contentType, err := d.Bytes(context.Background(), srv.URL)

	assert.NoError(t, err)
	assert.Equal(t, jpegHeader, data)
	assert.Equal(t, "image/jpeg", contentType)
}

func TestBytesRejectsNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	d := NewDownloader(srv.Client())
	_, _, err := d.Bytes(context.Background(), srv.URL)

	assert.Error(t, err)
}

func TestTempFileWritesAndCleansUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(jpegHeader)
	}))
	defer srv.Close()

	d := NewDownloader(srv.Client())
	path, contentType, cleanup, err := d.TempFile(context.Background(), srv.URL)

	assert.NoError(t, err)
	assert.Equal(t, "image/jpeg", contentType)

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, jpegHeader, data)

	cleanup()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
