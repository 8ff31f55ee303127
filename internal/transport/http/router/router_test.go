package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deeptrust-api/internal/analyzer"
	"deeptrust-api/internal/core/auth"
	"deeptrust-api/internal/core/database"
	"deeptrust-api/internal/core/throttle"
	"deeptrust-api/internal/domain"
	"deeptrust-api/internal/repo"
	"deeptrust-api/internal/service"
)

func init() { gin.SetMode(gin.TestMode) }

type app struct {
	t *testing.T
	h http.Handler
}

func newApp(t *testing.T, mutate ...func(*Deps)) app {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "api.db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	st := repo.NewStore(db)
	require.NoError(t, st.Migrate(context.Background()))

	users := service.NewUserService(st, st, nil)
	created, err := users.EnsureSeedAdmin(context.Background(), "admin123")
	require.NoError(t, err)
	require.True(t, created)

	d := Deps{
		Users:    users,
		Ledger:   service.NewLedger(st, nil),
		Stats:    service.NewStatsService(st, st),
		Tokens:   auth.NewJWTer("test-secret", "deeptrust", 0),
		Analyzer: analyzer.NewMock(1),
	}
	for _, m := range mutate {
		m(&d)
	}
	return app{t: t, h: NewAPIEngine(d)}
}

func (a app) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.h.ServeHTTP(w, req)
	return w
}

func (a app) login(username, password string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": username, "password": password})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &out))
	return out.Token
}

func (a app) register(username, password string) {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/auth/register", "", gin.H{"username": username, "password": password})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestRegisterLoginRecordStats(t *testing.T) {
	a := newApp(t)
	a.register("alice", "pw")

	w := a.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code)
	login := decode[map[string]any](t, w)
	user := login["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "user", user["role"])
	assert.NotEmpty(t, user["id"])
	tok := login["token"].(string)

	w = a.do(http.MethodPost, "/api/history", tok, gin.H{
		"type":     "image",
		"fileName": "a.jpg",
		"userId":   "someone-else",
		"result":   gin.H{"score": 85, "riskLevel": "high", "signals": []any{}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	rec := decode[map[string]any](t, w)
	assert.Equal(t, user["id"], rec["userId"])
	assert.Equal(t, "image", rec["type"])
	assert.Equal(t, "a.jpg", rec["fileName"])
	assert.NotEmpty(t, rec["id"])
	assert.NotEmpty(t, rec["timestamp"])

	w = a.do(http.MethodGet, "/api/stats", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	st := decode[map[string]any](t, w)
	assert.EqualValues(t, 1, st["totalAnalyses"])
	assert.EqualValues(t, 1, st["deepfakeCount"])
	assert.EqualValues(t, 0, st["financeCount"])
	assert.EqualValues(t, 1, st["highRiskCount"])
	assert.Len(t, st["recentActivity"], 1)
	for _, k := range []string{"totalUsers", "activeUsers", "totalTokens"} {
		assert.NotContains(t, st, k)
	}

	w = a.do(http.MethodPost, "/api/history", tok, gin.H{"type": strings.Repeat("x", domain.MaxTypeLen+1)})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodGet, "/api/history", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.Analysis](t, w), 1)
}

func TestRegister_Errors(t *testing.T) {
	a := newApp(t)
	a.register("bob", "pw")

	w := a.do(http.MethodPost, "/api/auth/register", "", gin.H{"username": "bob", "password": "other"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Username already exists", decode[map[string]string](t, w)["message"])

	w = a.do(http.MethodPost, "/api/auth/register", "", gin.H{"username": "carol"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required fields", decode[map[string]string](t, w)["message"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	a := newApp(t)
	a.register("dave", "pw")

	for _, body := range []gin.H{
		{"username": "dave", "password": "wrong"},
		{"username": "nobody", "password": "pw"},
		{"username": "dave"},
	} {
		w := a.do(http.MethodPost, "/api/auth/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, w.Code, body)
		assert.Equal(t, "Invalid credentials", decode[map[string]string](t, w)["message"])
	}
}

func TestAuthGuards(t *testing.T) {
	a := newApp(t)
	a.register("erin", "pw")
	userTok := a.login("erin", "pw")

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/api/users", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/api/history", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/api/history", "garbage", nil).Code)

	w := a.do(http.MethodGet, "/api/users", userTok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Admin access required", decode[map[string]string](t, w)["message"])
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodDelete, "/api/users/1", userTok, nil).Code)

	other := auth.NewJWTer("other-secret", "deeptrust", time.Hour)
	forged, err := other.Issue(auth.Identity{ID: "1", Username: "admin", Role: auth.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/api/users", forged, nil).Code)
}

func TestAdminUsers(t *testing.T) {
	a := newApp(t)
	adminTok := a.login("admin", "admin123")

	w := a.do(http.MethodDelete, "/api/users/1", adminTok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Cannot delete default admin", decode[map[string]string](t, w)["message"])

	w = a.do(http.MethodDelete, "/api/users/does-not-exist", adminTok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", decode[map[string]string](t, w)["message"])

	w = a.do(http.MethodPost, "/api/users", adminTok, gin.H{
		"username": "frank", "password": "pw", "email": "frank@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]any](t, w)
	assert.Equal(t, "user", created["role"])
	assert.Equal(t, "active", created["status"])
	assert.Equal(t, "frank@example.com", created["email"])
	assert.NotContains(t, created, "password")
	assert.NotContains(t, created, "passwordHash")

	w = a.do(http.MethodPost, "/api/users", adminTok, gin.H{"username": "gina", "password": "pw", "role": "root"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	frankTok := a.login("frank", "pw")
	for _, typ := range []string{"video", "finance", "note"} {
		w = a.do(http.MethodPost, "/api/history", frankTok, gin.H{"type": typ, "result": gin.H{"score": 10}})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w = a.do(http.MethodGet, "/api/users", adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	views := decode[[]domain.UserView](t, w)
	require.Len(t, views, 2)
	byName := map[string]domain.UserView{}
	for _, v := range views {
		byName[v.Username] = v
	}
	assert.Equal(t, 3, byName["frank"].Requests)
	assert.Equal(t, 90, byName["frank"].Tokens)
	assert.Equal(t, 0, byName["admin"].Requests)

	w = a.do(http.MethodGet, "/api/stats", adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	st := decode[map[string]any](t, w)
	assert.EqualValues(t, 3, st["totalAnalyses"])
	assert.EqualValues(t, 2, st["totalUsers"])
	assert.EqualValues(t, 2, st["activeUsers"])
	assert.EqualValues(t, 90, st["totalTokens"])

	w = a.do(http.MethodDelete, "/api/users/"+created["id"].(string), adminTok, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User deleted", decode[map[string]string](t, w)["message"])
}

func TestAnalyzerEndpoints(t *testing.T) {
	a := newApp(t)

	w := a.do(http.MethodPost, "/api/deepfake/video", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	df := decode[domain.DeepfakeResult](t, w)
	assert.Equal(t, analyzer.RiskLevel(df.Score), df.RiskLevel)
	assert.NotNil(t, df.Metadata)

	w = a.do(http.MethodPost, "/api/deepfake/pdf", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "voice_spoofing", decode[domain.DeepfakeResult](t, w).Signals[0].Type)

	for _, p := range []string{"/api/finance", "/api/ocr"} {
		w = a.do(http.MethodPost, p, "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "invoice", decode[domain.FinanceResult](t, w).DocumentType)
	}
	for _, p := range []string{"/api/deepfake/health", "/api/finance/health", "/api/ocr/health", "/health"} {
		assert.Equal(t, http.StatusOK, a.do(http.MethodGet, p, "", nil).Code, p)
	}
}

func TestAuthThrottle(t *testing.T) {
	mr := miniredis.RunT(t)
	th := throttle.New(mr.Addr(), "", 0, 2, time.Minute)
	t.Cleanup(func() { _ = th.Close() })

	a := newApp(t, func(d *Deps) { d.Throttle = th })
	body := gin.H{"username": "nobody", "password": "x"}
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/api/auth/login", "", body).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/api/auth/login", "", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, a.do(http.MethodPost, "/api/auth/login", "", body).Code)

	// analysis routes are not throttled
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/ocr/health", "", nil).Code)

	mr.Close()
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/api/auth/login", "", body).Code)
}

func TestAuthRateLimit_WithoutRedis(t *testing.T) {
	a := newApp(t, func(d *Deps) {
		d.AuthLimit = 2
		d.AuthWindow = time.Hour
	})
	body := gin.H{"username": "nobody", "password": "x"}
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/api/auth/login", "", body).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/api/auth/login", "", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, a.do(http.MethodPost, "/api/auth/login", "", body).Code)
	assert.Equal(t, http.StatusTooManyRequests,
		a.do(http.MethodPost, "/api/auth/register", "", gin.H{"username": "late", "password": "pw"}).Code)

	// the limiter only sits on the auth routes
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/ocr/health", "", nil).Code)
}
