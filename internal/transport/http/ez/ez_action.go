package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"deeptrust-api/internal/core/auth"
	"deeptrust-api/internal/domain"
	resp "deeptrust-api/internal/transport/http/response"
)

// EZ registers actions on one router group.
type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, l *zap.Logger) EZ {
	if l == nil {
		l = zap.NewNop()
	}
	return EZ{g: g, log: l}
}

type Binder string

const (
	BindJSON Binder = "json"
	BindNone Binder = "none" // handler reads c.Param itself
)

// AErr carries an explicit HTTP status.
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: resp.CodeUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &AErr{Code: resp.CodeForbidden, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: resp.CodeNotFound, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

// Action describes one endpoint: I is the request body, O the response body.
// Handlers receive the caller identity explicitly; it is the zero value on
// public routes.
type Action[I any, O any] struct {
	Method  string
	Path    string
	Binder  Binder
	Status  int // success status, default 200
	Handler func(c *gin.Context, id auth.Identity, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}
	h := func(c *gin.Context) {
		var in I
		if a.Binder == BindJSON {
			if err := c.ShouldBindJSON(&in); err != nil {
				c.AbortWithStatusJSON(resp.CodeBadRequest, resp.Error(resp.CodeBadRequest, bindMessage(err)))
				return
			}
		}

		id, _ := auth.FromContext(c.Request.Context())
		out, err := a.Handler(c, id, &in)
		if err != nil {
			code, msg := Status(err)
			if code >= http.StatusInternalServerError {
				_ = c.Error(err)
				e.log.Error("action failed",
					zap.String("method", c.Request.Method),
					zap.String("path", c.FullPath()),
					zap.Error(err))
			}
			c.AbortWithStatusJSON(code, resp.Error(code, msg))
			return
		}
		c.JSON(status, out)
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default:
		e.g.POST(a.Path, h)
	}
}

// Status maps an error to an HTTP status and a client-safe message.
func Status(err error) (int, string) {
	var ae *AErr
	if errors.As(err, &ae) {
		msg := ae.Msg
		if ae.Code >= http.StatusInternalServerError || msg == "" {
			msg = resp.CodeMsgMap[ae.Code]
		}
		return ae.Code, msg
	}
	switch {
	case errors.Is(err, domain.ErrValidation):
		return resp.CodeBadRequest, err.Error()
	case errors.Is(err, domain.ErrConflict):
		return resp.CodeBadRequest, "Username already exists"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return resp.CodeUnauthorized, "Invalid credentials"
	case errors.Is(err, domain.ErrUnauthorized):
		return resp.CodeUnauthorized, "Unauthorized"
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, auth.ErrInvalidToken):
		return resp.CodeForbidden, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return resp.CodeNotFound, err.Error()
	case errors.Is(err, domain.ErrTooManyRequests):
		return resp.CodeTooManyRequests, "Too many requests"
	}
	return resp.CodeServerError, resp.CodeMsgMap[resp.CodeServerError]
}

func bindMessage(err error) string {
	if strings.Contains(err.Error(), "required") {
		return "Missing required fields"
	}
	return "Invalid request body"
}
