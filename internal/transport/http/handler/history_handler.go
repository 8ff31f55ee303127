package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"deeptrust-api/internal/core/auth"
	"deeptrust-api/internal/domain"
	"deeptrust-api/internal/service"
	"deeptrust-api/internal/transport/http/ez"
)

type recordIn struct {
	Type     string        `json:"type" binding:"required"`
	Result   domain.Result `json:"result"`
	FileName string        `json:"fileName"`
}

// MountHistory registers the caller's analysis history. The owner always comes
// from the token, never from the body.
func MountHistory(e ez.EZ, ledger *service.Ledger) {
	ez.RegisterAction(e, ez.Action[recordIn, domain.Analysis]{
		Method: http.MethodPost,
		Path:   "/history",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, id auth.Identity, in *recordIn) (domain.Analysis, error) {
			return ledger.Append(c.Request.Context(), id.ID, in.Type, in.FileName, in.Result)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, []domain.Analysis]{
		Method: http.MethodGet,
		Path:   "/history",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, id auth.Identity, _ *struct{}) ([]domain.Analysis, error) {
			return ledger.ListForUser(c.Request.Context(), id.ID)
		},
	})
}
