package handler_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"chirp/internal/assets"
	"chirp/internal/audit"
	"chirp/internal/auth/cookie"
	authservice "chirp/internal/auth/service"
	"chirp/internal/auth/store/user"
	"chirp/internal/auth/token"
	"chirp/internal/chat"
	"chirp/internal/chat/handler"
	"chirp/internal/chat/presence"
	chatservice "chirp/internal/chat/service"
	message "chirp/internal/chat/store/message"
	"chirp/internal/platform/metrics"
	"chirp/internal/platform/middleware"
	"chirp/pkg/testutil"
)

const cookieName = "chirp_session"

var testMetrics = metrics.New()

type nopNotifier struct{}

func (nopNotifier) Send(string, any) {}

type env struct {
	router  http.Handler
	tracker *presence.InMemoryTracker
}

// newEnv wires real components end to end: memory stores, real codec,
// and the auth guard on every messaging route.
func newEnv(t *testing.T) *env {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	users := user.NewInMemoryStore()
	codec := token.NewCodec("test-signing-key")
	cookies := cookie.New(cookieName, time.Hour, false)
	tracker := presence.NewInMemoryTracker()
	publisher := audit.NewPublisher(audit.NewInMemoryStore())

	accounts := authservice.New(
		users,
		codec,
		assets.NewInMemoryStore(),
		publisher,
		testMetrics,
		logger,
		bcrypt.MinCost,
		time.Hour,
	)
	chatSvc := chatservice.New(
		users,
		message.NewInMemoryStore(),
		tracker,
		nopNotifier{},
		assets.NewInMemoryStore(),
		publisher,
		testMetrics,
		logger,
	)

	guard := middleware.RequireAuth(cookies, codec, accounts, logger)

	r := chi.NewRouter()
	handler.New(chatSvc, logger).Register(r, guard)

	// Minimal signup endpoint so tests can mint sessions.
	r.Post("/auth/signup", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			FullName string `json:"fullName"`
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		ident, tok, err := accounts.Signup(req.Context(), body.FullName, body.Email, body.Password)
		require.NoError(t, err)
		cookies.Attach(w, tok)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		require.NoError(t, json.NewEncoder(w).Encode(map[string]string{"id": ident.ID}))
	})

	return &env{router: r, tracker: tracker}
}

// signup creates a user and returns their ID and session cookie.
func (e *env) signup(t *testing.T, name string) (string, *http.Cookie) {
	t.Helper()
	rr := testutil.DoRequest(e.router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/signup", map[string]string{
		"fullName": name, "email": name + "@example.com", "password": "password1",
	}))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	resp := testutil.UnmarshalResponse[map[string]string](t, rr)
	c := testutil.SessionCookie(rr, cookieName)
	require.NotNil(t, c)
	return (*resp)["id"], c
}

func TestContactsEndpoint(t *testing.T) {
	t.Run("lists other users with online flags", func(t *testing.T) {
		e := newEnv(t)
		_, aliceCookie := e.signup(t, "alice")
		bobID, _ := e.signup(t, "bob")
		require.NoError(t, e.tracker.MarkOnline(context.Background(), bobID))

		req := testutil.NewRequest(t, http.MethodGet, "/message/users")
		req.AddCookie(aliceCookie)
		rr := testutil.DoRequest(e.router, req)

		testutil.AssertStatus(t, rr, http.StatusOK)
		contacts := testutil.UnmarshalResponse[[]*chat.Contact](t, rr)
		require.Len(t, *contacts, 1)
		assert.Equal(t, bobID, (*contacts)[0].ID)
		assert.True(t, (*contacts)[0].Online)
	})

	t.Run("requires a session", func(t *testing.T) {
		e := newEnv(t)
		rr := testutil.DoRequest(e.router, testutil.NewRequest(t, http.MethodGet, "/message/users"))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})

	t.Run("never exposes password hashes", func(t *testing.T) {
		e := newEnv(t)
		_, aliceCookie := e.signup(t, "alice")
		e.signup(t, "bob")

		req := testutil.NewRequest(t, http.MethodGet, "/message/users")
		req.AddCookie(aliceCookie)
		rr := testutil.DoRequest(e.router, req)

		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.NotContains(t, rr.Body.String(), "passwordHash")
		assert.NotContains(t, rr.Body.String(), "password_hash")
	})
}

func TestSendEndpoint(t *testing.T) {
	t.Run("stores and returns the message", func(t *testing.T) {
		e := newEnv(t)
		aliceID, aliceCookie := e.signup(t, "alice")
		bobID, _ := e.signup(t, "bob")

		req := testutil.NewJSONRequest(t, http.MethodPost, "/message/send/"+bobID, map[string]string{
			"text": "hello bob",
		})
		req.AddCookie(aliceCookie)
		rr := testutil.DoRequest(e.router, req)

		testutil.AssertStatus(t, rr, http.StatusCreated)
		msg := testutil.UnmarshalResponse[chat.Message](t, rr)
		assert.Equal(t, aliceID, msg.SenderID)
		assert.Equal(t, bobID, msg.ReceiverID)
		assert.Equal(t, "hello bob", msg.Text)
	})

	t.Run("unknown receiver returns 404", func(t *testing.T) {
		e := newEnv(t)
		_, aliceCookie := e.signup(t, "alice")

		req := testutil.NewJSONRequest(t, http.MethodPost, "/message/send/no-such-user", map[string]string{
			"text": "anyone there?",
		})
		req.AddCookie(aliceCookie)
		rr := testutil.DoRequest(e.router, req)

		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})

	t.Run("empty message returns 400", func(t *testing.T) {
		e := newEnv(t)
		_, aliceCookie := e.signup(t, "alice")
		bobID, _ := e.signup(t, "bob")

		req := testutil.NewJSONRequest(t, http.MethodPost, "/message/send/"+bobID, map[string]string{})
		req.AddCookie(aliceCookie)
		rr := testutil.DoRequest(e.router, req)

		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})

	t.Run("requires a session", func(t *testing.T) {
		e := newEnv(t)
		bobID, _ := e.signup(t, "bob")

		rr := testutil.DoRequest(e.router, testutil.NewJSONRequest(t, http.MethodPost, "/message/send/"+bobID, map[string]string{
			"text": "hi",
		}))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})
}

func TestHistoryEndpoint(t *testing.T) {
	t.Run("returns the conversation oldest first", func(t *testing.T) {
		e := newEnv(t)
		_, aliceCookie := e.signup(t, "alice")
		bobID, bobCookie := e.signup(t, "bob")

		send := func(c *http.Cookie, to, text string) {
			req := testutil.NewJSONRequest(t, http.MethodPost, "/message/send/"+to, map[string]string{"text": text})
			req.AddCookie(c)
			testutil.AssertStatus(t, testutil.DoRequest(e.router, req), http.StatusCreated)
		}

		send(aliceCookie, bobID, "first")

		// Bob replies to Alice.
		req := testutil.NewRequest(t, http.MethodGet, "/message/users")
		req.AddCookie(bobCookie)
		rr := testutil.DoRequest(e.router, req)
		contacts := testutil.UnmarshalResponse[[]*chat.Contact](t, rr)
		require.Len(t, *contacts, 1)
		aliceID := (*contacts)[0].ID
		send(bobCookie, aliceID, "second")

		histReq := testutil.NewRequest(t, http.MethodGet, "/message/"+bobID)
		histReq.AddCookie(aliceCookie)
		histRR := testutil.DoRequest(e.router, histReq)

		testutil.AssertStatus(t, histRR, http.StatusOK)
		msgs := testutil.UnmarshalResponse[[]*chat.Message](t, histRR)
		require.Len(t, *msgs, 2)
		assert.Equal(t, "first", (*msgs)[0].Text)
		assert.Equal(t, "second", (*msgs)[1].Text)
	})

	t.Run("empty conversation returns an empty array", func(t *testing.T) {
		e := newEnv(t)
		_, aliceCookie := e.signup(t, "alice")
		bobID, _ := e.signup(t, "bob")

		req := testutil.NewRequest(t, http.MethodGet, "/message/"+bobID)
		req.AddCookie(aliceCookie)
		rr := testutil.DoRequest(e.router, req)

		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.JSONEq(t, "[]", rr.Body.String())
	})

	t.Run("unknown user returns 404", func(t *testing.T) {
		e := newEnv(t)
		_, aliceCookie := e.signup(t, "alice")

		req := testutil.NewRequest(t, http.MethodGet, "/message/no-such-user")
		req.AddCookie(aliceCookie)
		rr := testutil.DoRequest(e.router, req)

		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})
}
