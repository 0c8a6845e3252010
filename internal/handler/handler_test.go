package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chesslounge/backend/internal/apperr"
	"chesslounge/backend/internal/auth"
	"chesslounge/backend/internal/background"
	"chesslounge/backend/internal/chat"
	"chesslounge/backend/internal/hub"
	"chesslounge/backend/internal/metrics"
	"chesslounge/backend/internal/middleware"
	"chesslounge/backend/internal/models"
	"chesslounge/backend/internal/store/storetest"
	"chesslounge/backend/internal/streak"
	"chesslounge/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const chatChannel = "chat"

type fakeGoogle struct {
	loginErr    error
	profile     *auth.GoogleProfile
	exchangeErr error
}

func (f *fakeGoogle) LoginURL() (string, error) {
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return "https://accounts.example/consent", nil
}

func (f *fakeGoogle) Exchange(context.Context, string) (*auth.GoogleProfile, error) {
	return f.profile, f.exchangeErr
}

type fakeLichess struct {
	profile     *auth.LichessProfile
	exchangeErr error
}

func (f *fakeLichess) LoginURL() (string, error) { return "https://lichess.example/oauth", nil }

func (f *fakeLichess) Exchange(context.Context, string) (*auth.LichessProfile, error) {
	return f.profile, f.exchangeErr
}

type fakeTokens struct {
	subject string
	err     error
}

func (f *fakeTokens) ConnectionToken(subject string) (string, error) {
	f.subject = subject
	return "channel-token", f.err
}

type testEnv struct {
	router   *gin.Engine
	accounts *storetest.Accounts
	messages *storetest.Messages
	signer   *jwt.Signer
	google   *fakeGoogle
	lichess  *fakeLichess
	tokens   *fakeTokens
	hub      *hub.Hub
	alice    models.Account
	chat     *ChatHandler
}

type envOption func(*RouterConfig)

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	alice := models.Account{ID: "11111111-1111-1111-1111-111111111111", Username: "alice01", Points: 3, Streak: 2}
	env := &testEnv{
		accounts: storetest.NewAccounts(alice),
		messages: storetest.NewMessages(),
		signer:   jwt.NewSigner("test-secret", time.Hour),
		google:   &fakeGoogle{},
		lichess:  &fakeLichess{},
		tokens:   &fakeTokens{},
		hub:      hub.NewHub(),
		alice:    alice,
	}

	runner := background.NewRunner(logger, 5*time.Second)
	t.Cleanup(func() { runner.Shutdown(context.Background()) })

	accountService := auth.NewService(env.accounts, env.signer, logger)
	streaks := streak.NewService(env.accounts, metrics.Nop{}, logger)
	feed := chat.NewFeed(env.messages, env.accounts, logger)
	pipeline := chat.NewPipeline(chat.Deps{
		Messages:  env.messages,
		Accounts:  env.accounts,
		Publisher: hub.Publisher{Hub: env.hub, Channel: chatChannel},
		Runner:    runner,
		Logger:    logger,
	})
	env.chat = NewChatHandler(feed, pipeline, env.tokens, env.hub, chatChannel, logger)

	cfg := RouterConfig{
		Signer:         env.signer,
		AllowedOrigins: []string{"https://chess.example"},
		AppVersion:     "1.2.3",
		Logger:         logger,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	env.router = NewRouter(Handlers{
		Auth: NewAuthHandler(env.google, env.lichess, accountService, logger),
		Chat: env.chat,
		User: NewUserHandler(streaks, accountService, logger),
	}, cfg)
	return env
}

func (e *testEnv) token(t *testing.T, id string) string {
	t.Helper()
	token, err := e.signer.GenerateToken(jwt.UserClaims{ID: id, Username: "x"})
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","version":"1.2.3"}`, w.Body.String())
}

func TestGetMessages_Pagination(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, env.messages.Create(context.Background(), &models.Message{AuthorID: env.alice.ID, Body: "hi", Type: models.MessageTypeText}))
	}

	w := env.do(http.MethodGet, "/api/chat/getMessages?limit=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `"5"`, w.Header().Get("ETag"))
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
	first := decode[MessagesResponse](t, w)
	require.Len(t, first.Messages, 2)
	assert.Equal(t, uint(5), first.Messages[0].ID)
	assert.Equal(t, "alice01", first.Messages[0].User.Username)
	assert.True(t, first.Meta.HasMore)
	require.NotNil(t, first.Meta.NextCursor)
	assert.Equal(t, uint(4), *first.Meta.NextCursor)
	assert.Equal(t, 2, first.Meta.Limit)
	require.NotNil(t, first.Meta.LatestMessageID)
	assert.Equal(t, uint(5), *first.Meta.LatestMessageID)

	w = env.do(http.MethodGet, "/api/chat/getMessages?before=2&limit=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var raw struct {
		Meta map[string]any `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.Contains(t, raw.Meta, "nextCursor")
	assert.Nil(t, raw.Meta["nextCursor"])
	assert.NotContains(t, raw.Meta, "latestMessageId")
	assert.Empty(t, w.Header().Get("ETag"))
}

func TestGetMessages_NotModified(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.messages.Create(context.Background(), &models.Message{AuthorID: env.alice.ID, Body: "hi", Type: models.MessageTypeText}))

	w := env.do(http.MethodGet, "/api/chat/getMessages", "", nil, "If-None-Match", `"1"`)
	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Equal(t, `"1"`, w.Header().Get("ETag"))
	assert.Empty(t, w.Body.String())

	w = env.do(http.MethodGet, "/api/chat/getMessages", "", nil, "If-None-Match", `"0"`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetMessages_InvalidCursor(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodGet, "/api/chat/getMessages?before=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Invalid cursor."}`, w.Body.String())
	assert.Zero(t, env.messages.Calls)
}

func TestGetMessages_StoreTimeout(t *testing.T) {
	env := newTestEnv(t)
	env.messages.Err = apperr.Store("failed to list messages", context.DeadlineExceeded)
	w := env.do(http.MethodGet, "/api/chat/getMessages", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Failed to fetch messages"}`, w.Body.String())
}

func TestSendMessage(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, env.alice.ID)

	w := env.do(http.MethodPost, "/api/chat/sendMessage", "", gin.H{"message": "hi"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPost, "/api/chat/sendMessage", token, gin.H{"message": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Message cannot be empty."}`, w.Body.String())

	w = env.do(http.MethodPost, "/api/chat/sendMessage", token, gin.H{"message": strings.Repeat("x", 601)})
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.JSONEq(t, `{"message":"Messages are limited to 600 characters."}`, w.Body.String())

	w = env.do(http.MethodPost, "/api/chat/sendMessage", token, gin.H{
		"message":     " check this ",
		"messageType": "game",
		"gameDetail":  gin.H{"pgn": "1. e4 e5"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	view := decode[chat.MessageView](t, w)
	assert.Equal(t, "check this", view.Message)
	assert.Equal(t, models.MessageTypeGame, view.MessageType)
	assert.Equal(t, chat.Author{ID: env.alice.ID, Username: "alice01"}, view.User)
	assert.JSONEq(t, `{"pgn":"1. e4 e5"}`, string(view.GameDetail))

	w = env.do(http.MethodPost, "/api/chat/sendMessage", token, gin.H{"message": "hello", "messageType": "sticker"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, models.MessageTypeText, decode[chat.MessageView](t, w).MessageType)
}

func TestSendMessage_RateLimited(t *testing.T) {
	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{Rate: 1.0 / 60, Burst: 1, CleanupInterval: time.Hour, IdleTimeout: time.Hour}, zap.NewNop())
	t.Cleanup(limiter.Stop)
	env := newTestEnv(t, func(cfg *RouterConfig) { cfg.MessageLimiter = limiter })
	token := env.token(t, env.alice.ID)

	w := env.do(http.MethodPost, "/api/chat/sendMessage", token, gin.H{"message": "one"})
	assert.Equal(t, http.StatusCreated, w.Code)
	w = env.do(http.MethodPost, "/api/chat/sendMessage", token, gin.H{"message": "two"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestGetConnectionToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/chat/get_connection_token", env.token(t, env.alice.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"token":"channel-token"}`, w.Body.String())
	assert.Equal(t, env.alice.ID, env.tokens.subject)

	env.tokens.err = apperr.Misconfigured("real-time token secret is missing.")
	w = env.do(http.MethodGet, "/api/chat/get_connection_token", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Server misconfiguration: real-time token secret is missing."}`, w.Body.String())
	assert.Empty(t, env.tokens.subject)
}

func TestCheckout(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, env.alice.ID)

	w := env.do(http.MethodGet, "/api/checkout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"checkoutDayStreak":2,"didCheckoutToday":false}`, w.Body.String())

	w = env.do(http.MethodPost, "/api/checkout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"Successfully checked out today","totalCoins":4}`, w.Body.String())

	w = env.do(http.MethodPost, "/api/checkout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"You checked out today already","totalCoins":4}`, w.Body.String())

	w = env.do(http.MethodGet, "/api/checkout", token, nil)
	assert.JSONEq(t, `{"success":true,"checkoutDayStreak":3,"didCheckoutToday":true}`, w.Body.String())

	w = env.do(http.MethodGet, "/api/checkout", env.token(t, "99999999-9999-9999-9999-999999999999"), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"User not found"}`, w.Body.String())

	w = env.do(http.MethodGet, "/api/checkout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateUsername(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.accounts.Create(context.Background(), &models.Account{Username: "takenname"}))
	token := env.token(t, env.alice.ID)

	w := env.do(http.MethodPost, "/api/updateusername", token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Username is required"}`, w.Body.String())

	w = env.do(http.MethodPost, "/api/updateusername", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Username is required"}`, w.Body.String())

	w = env.do(http.MethodPost, "/api/updateusername", token, "knightrider")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Username is required"}`, w.Body.String())

	w = env.do(http.MethodPost, "/api/updateusername", token, gin.H{"username": "ab1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Username must be at least 5 characters long and contain only letters and numbers"}`, w.Body.String())

	w = env.do(http.MethodPost, "/api/updateusername", token, gin.H{"username": "takenname"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Username is already taken"}`, w.Body.String())

	w = env.do(http.MethodPost, "/api/updateusername", token, gin.H{"username": "abcde"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[UpdateUsernameResponse](t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "Username updated successfully", resp.Message)
	require.NotNil(t, resp.User)
	assert.Equal(t, "abcde", resp.User.Username)
}

func TestRefresh(t *testing.T) {
	env := newTestEnv(t, func(cfg *RouterConfig) { cfg.RefreshSecret = "ops" })

	w := env.do(http.MethodGet, "/api/refresh", "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(http.MethodGet, "/api/refresh", "", nil, "X-Refresh-Token", "ops")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"User checkout streaks updated successfully","usersProcessed":1}`, w.Body.String())

	// Alice had not checked in, so her streak is gone.
	alice, ok := env.accounts.Get(env.alice.ID)
	require.True(t, ok)
	assert.Zero(t, alice.Streak)
}

func TestRefresh_NotServedWhenScheduled(t *testing.T) {
	env := newTestEnv(t, func(cfg *RouterConfig) { cfg.ScheduledReset = true })

	w := env.do(http.MethodGet, "/api/refresh", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	alice, ok := env.accounts.Get(env.alice.ID)
	require.True(t, ok)
	assert.Equal(t, env.alice.Streak, alice.Streak)
}

func TestGoogleLogin(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/login_google", "", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://accounts.example/consent", w.Header().Get("Location"))

	w = env.do(http.MethodPost, "/api/login_google/verify", "", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Authorization code is required"}`, w.Body.String())

	env.google.profile = &auth.GoogleProfile{Email: "judit@example.com"}
	w = env.do(http.MethodPost, "/api/login_google/verify", "", gin.H{"code": "c"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[LoginResponse](t, w)
	assert.True(t, resp.Success)
	assert.True(t, resp.IsNew)
	assert.Equal(t, "judit", resp.User.Username)

	claims, err := env.signer.ParseToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.ID)
	assert.Equal(t, "judit@example.com", claims.Email)

	env.google.exchangeErr = apperr.Upstream("Failed to exchange Google code", assert.AnError)
	w = env.do(http.MethodPost, "/api/login_google/verify", "", gin.H{"code": "c"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Internal server error"}`, w.Body.String())
}

func TestGoogleLogin_Misconfigured(t *testing.T) {
	env := newTestEnv(t)
	env.google.loginErr = apperr.Misconfigured("Frontend URL is missing.")

	w := env.do(http.MethodGet, "/api/login_google", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Server misconfiguration: Frontend URL is missing."}`, w.Body.String())
}

func TestLichessLogin(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/login_lichess", "", nil)
	assert.Equal(t, http.StatusFound, w.Code)

	env.lichess.exchangeErr = apperr.Unauthorized("Failed to exchange code for token", assert.AnError)
	w = env.do(http.MethodPost, "/api/login_lichess/verify_auth", "", gin.H{"code": "bad"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Failed to exchange code for token"}`, w.Body.String())

	env.lichess.exchangeErr = nil
	env.lichess.profile = &auth.LichessProfile{ID: "gmhikaru", Username: "GMHikaru"}
	w = env.do(http.MethodPost, "/api/login_lichess/verify_auth", "", gin.H{"code": "good"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[LoginResponse](t, w)
	assert.True(t, resp.IsNew)
	assert.Equal(t, "GMHikaru", resp.User.Username)
	assert.Equal(t, models.ProviderLichess, resp.User.OAuthProvider)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodOptions, "/api/chat/sendMessage", "", nil, "Origin", "https://chess.example")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://chess.example", w.Header().Get("Access-Control-Allow-Origin"))
}
