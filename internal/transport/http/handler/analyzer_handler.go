package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"deeptrust-api/internal/analyzer"
	"deeptrust-api/internal/core/auth"
	"deeptrust-api/internal/domain"
	"deeptrust-api/internal/transport/http/ez"
)

type healthOut struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// MountAnalyzer exposes the stand-in classifier. Uploads are not read and
// nothing is written to the ledger; clients record results via /history.
func MountAnalyzer(e ez.EZ, a analyzer.Analyzer) {
	ez.RegisterAction(e, ez.Action[struct{}, domain.DeepfakeResult]{
		Method: http.MethodPost,
		Path:   "/deepfake/:type",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ auth.Identity, _ *struct{}) (domain.DeepfakeResult, error) {
			return a.Deepfake(c.Request.Context(), c.Param("type"))
		},
	})

	finance := func(c *gin.Context, _ auth.Identity, _ *struct{}) (domain.FinanceResult, error) {
		return a.Finance(c.Request.Context())
	}
	for _, p := range []string{"/finance", "/ocr"} {
		ez.RegisterAction(e, ez.Action[struct{}, domain.FinanceResult]{
			Method:  http.MethodPost,
			Path:    p,
			Binder:  ez.BindNone,
			Handler: finance,
		})
	}

	for _, svc := range []string{"deepfake", "finance", "ocr"} {
		ez.RegisterAction(e, ez.Action[struct{}, healthOut]{
			Method: http.MethodGet,
			Path:   "/" + svc + "/health",
			Binder: ez.BindNone,
			Handler: func(*gin.Context, auth.Identity, *struct{}) (healthOut, error) {
				return healthOut{Status: "ok", Service: svc}, nil
			},
		})
	}
}
