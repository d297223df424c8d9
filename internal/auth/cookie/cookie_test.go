package cookie

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttach(t *testing.T) {
	adapter := New("chirp_session", 7*24*time.Hour, true)

	w := httptest.NewRecorder()
	adapter.Attach(w, "signed-token")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)

	c := cookies[0]
	assert.Equal(t, "chirp_session", c.Name)
	assert.Equal(t, "signed-token", c.Value)
	assert.Equal(t, int((7 * 24 * time.Hour).Seconds()), c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
}

func TestAttach_InsecureInDevelopment(t *testing.T) {
	adapter := New("chirp_session", time.Hour, false)

	w := httptest.NewRecorder()
	adapter.Attach(w, "signed-token")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.False(t, cookies[0].Secure)
}

func TestClear(t *testing.T) {
	adapter := New("chirp_session", time.Hour, true)

	w := httptest.NewRecorder()
	adapter.Clear(w)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestExtract(t *testing.T) {
	adapter := New("chirp_session", time.Hour, true)

	t.Run("returns token when cookie present", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/auth/check", nil)
		r.AddCookie(&http.Cookie{Name: "chirp_session", Value: "signed-token"})

		token, ok := adapter.Extract(r)
		assert.True(t, ok)
		assert.Equal(t, "signed-token", token)
	})

	t.Run("absent cookie is not an error", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/auth/check", nil)

		token, ok := adapter.Extract(r)
		assert.False(t, ok)
		assert.Empty(t, token)
	})

	t.Run("empty value treated as absent", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/auth/check", nil)
		r.AddCookie(&http.Cookie{Name: "chirp_session", Value: ""})

		_, ok := adapter.Extract(r)
		assert.False(t, ok)
	})

	t.Run("other cookies ignored", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/auth/check", nil)
		r.AddCookie(&http.Cookie{Name: "other", Value: "value"})

		_, ok := adapter.Extract(r)
		assert.False(t, ok)
	})
}
