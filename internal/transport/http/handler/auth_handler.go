package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"deeptrust-api/internal/core/auth"
	"deeptrust-api/internal/service"
	"deeptrust-api/internal/transport/http/ez"
	resp "deeptrust-api/internal/transport/http/response"
)

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(id auth.Identity) (string, error)
}

type credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginIn struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginOut struct {
	Token string        `json:"token"`
	User  auth.Identity `json:"user"`
}

// MountAuth registers POST /auth/register and POST /auth/login.
func MountAuth(e ez.EZ, users *service.UserService, tokens TokenIssuer) {
	ez.RegisterAction(e, ez.Action[credentials, resp.Msg]{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, _ auth.Identity, in *credentials) (resp.Msg, error) {
			if _, err := users.Register(c.Request.Context(), in.Username, in.Password); err != nil {
				return resp.Msg{}, err
			}
			return resp.Message("User registered successfully"), nil
		},
	})

	// Missing fields fall through to Authenticate and come back as 401.
	ez.RegisterAction(e, ez.Action[loginIn, loginOut]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, _ auth.Identity, in *loginIn) (loginOut, error) {
			u, err := users.Authenticate(c.Request.Context(), in.Username, in.Password)
			if err != nil {
				return loginOut{}, err
			}
			id := auth.Identity{ID: u.ID, Username: u.Username, Role: u.Role}
			tok, err := tokens.Issue(id)
			if err != nil {
				return loginOut{}, ez.Internal("issue token failed", err)
			}
			return loginOut{Token: tok, User: id}, nil
		},
	})
}
