// Package cookie binds session tokens to an HTTP cookie and extracts them
// from inbound requests. The cookie name comes from configuration; transport
// attributes follow the session contract: not readable by page scripts, not
// sent cross-site, and HTTPS-only outside local development.
package cookie

import (
	"net/http"
	"time"
)

// Adapter attaches, clears, and extracts the session cookie.
type Adapter struct {
	name   string
	maxAge time.Duration
	secure bool
}

// New builds an adapter. secure should be false only in local development.
func New(name string, maxAge time.Duration, secure bool) *Adapter {
	return &Adapter{name: name, maxAge: maxAge, secure: secure}
}

// Attach sets the session cookie carrying token on the response.
func (a *Adapter) Attach(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(a.maxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   a.secure,
	})
}

// Clear expires the session cookie immediately. Subsequent requests present
// no credential.
func (a *Adapter) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   a.secure,
	})
}

// Extract reads the session token from the request. An absent cookie is not
// an error; ok is false.
func (a *Adapter) Extract(r *http.Request) (token string, ok bool) {
	c, err := r.Cookie(a.name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
