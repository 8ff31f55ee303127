package ez

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"deeptrust-api/internal/core/auth"
	"deeptrust-api/internal/domain"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: missing type", domain.ErrValidation), 400},
		{domain.ErrConflict, 400},
		{domain.ErrInvalidCredentials, 401},
		{domain.ErrUnauthorized, 401},
		{domain.ErrForbidden, 403},
		{fmt.Errorf("%w: expired", auth.ErrInvalidToken), 403},
		{domain.ErrNotFound, 404},
		{domain.ErrTooManyRequests, 429},
		{NotFound("User not found"), 404},
		{errors.New("disk full"), 500},
	}
	for _, tc := range cases {
		code, _ := Status(tc.err)
		assert.Equal(t, tc.code, code, tc.err.Error())
	}

	code, msg := Status(Internal("db exploded: secret dsn", errors.New("x")))
	assert.Equal(t, 500, code)
	assert.Equal(t, "Internal Server Error", msg)
}

type echoIn struct {
	Name string `json:"name" binding:"required"`
}

type echoOut struct {
	Name   string `json:"name"`
	Caller string `json:"caller"`
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if uid := c.GetHeader("X-Test-User"); uid != "" {
			c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), auth.Identity{ID: uid}))
		}
		c.Next()
	})
	e := New(r.Group(""), nil)
	RegisterAction(e, Action[echoIn, echoOut]{
		Method: http.MethodPost,
		Path:   "/echo",
		Binder: BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, id auth.Identity, in *echoIn) (echoOut, error) {
			if in.Name == "boom" {
				return echoOut{}, errors.New("boom")
			}
			return echoOut{Name: in.Name, Caller: id.ID}, nil
		},
	})
	return r
}

func TestRegisterAction(t *testing.T) {
	r := newEngine()

	cases := []struct {
		name   string
		body   string
		user   string
		status int
		want   string
	}{
		{"ok with identity", `{"name":"x"}`, "u1", 201, `{"name":"x","caller":"u1"}`},
		{"ok anonymous", `{"name":"x"}`, "", 201, `{"name":"x","caller":""}`},
		{"missing field", `{}`, "", 400, `{"message":"Missing required fields"}`},
		{"bad json", `{`, "", 400, `{"message":"Invalid request body"}`},
		{"handler error", `{"name":"boom"}`, "", 500, `{"message":"Internal Server Error"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString(tc.body))
			req.Header.Set("Content-Type", "application/json")
			if tc.user != "" {
				req.Header.Set("X-Test-User", tc.user)
			}
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			assert.JSONEq(t, tc.want, w.Body.String())
		})
	}
}
