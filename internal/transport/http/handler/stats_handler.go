package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"deeptrust-api/internal/core/auth"
	"deeptrust-api/internal/domain"
	"deeptrust-api/internal/service"
	"deeptrust-api/internal/transport/http/ez"
)

func MountStats(e ez.EZ, stats *service.StatsService) {
	ez.RegisterAction(e, ez.Action[struct{}, domain.Stats]{
		Method: http.MethodGet,
		Path:   "/stats",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, id auth.Identity, _ *struct{}) (domain.Stats, error) {
			return stats.ComputeStats(c.Request.Context(), id)
		},
	})
}
