package assets

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngDataURL(t *testing.T) string {
	t.Helper()
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("not-really-a-png"))
}

func TestDecodeDataURL(t *testing.T) {
	t.Run("valid png data URL", func(t *testing.T) {
		data, contentType, err := decodeDataURL(pngDataURL(t))
		require.NoError(t, err)
		assert.Equal(t, "image/png", contentType)
		assert.Equal(t, []byte("not-really-a-png"), data)
	})

	t.Run("rejects non data URL", func(t *testing.T) {
		_, _, err := decodeDataURL("https://example.com/cat.png")
		require.ErrorIs(t, err, ErrInvalidImage)
	})

	t.Run("rejects non image content type", func(t *testing.T) {
		payload := "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte("<html>"))
		_, _, err := decodeDataURL(payload)
		require.ErrorIs(t, err, ErrInvalidImage)
	})

	t.Run("rejects bad base64", func(t *testing.T) {
		_, _, err := decodeDataURL("data:image/png;base64,!!!not-base64!!!")
		require.ErrorIs(t, err, ErrInvalidImage)
	})
}

func TestInMemoryStore_Upload(t *testing.T) {
	store := NewInMemoryStore()

	url, err := store.Upload(context.Background(), pngDataURL(t))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "memory://assets/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	key := strings.TrimPrefix(url, "memory://assets/")
	data, ok := store.Get(key)
	require.True(t, ok)
	assert.Equal(t, []byte("not-really-a-png"), data)
}

func TestInMemoryStore_UploadRejectsGarbage(t *testing.T) {
	store := NewInMemoryStore()

	_, err := store.Upload(context.Background(), "garbage")
	require.ErrorIs(t, err, ErrInvalidImage)
}
