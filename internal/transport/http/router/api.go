package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"deeptrust-api/internal/analyzer"
	"deeptrust-api/internal/core/server"
	"deeptrust-api/internal/service"
	"deeptrust-api/internal/transport/http/ez"
	"deeptrust-api/internal/transport/http/handler"
	mdw "deeptrust-api/internal/transport/http/middleware"
)

// Deps is everything the HTTP surface needs; main builds it once.
type Deps struct {
	Log      *zap.Logger
	Users    *service.UserService
	Ledger   *service.Ledger
	Stats    *service.StatsService
	Tokens   TokenService
	Analyzer analyzer.Analyzer
	Throttle mdw.Allower // nil falls back to an in-process per-IP limiter

	// AuthLimit attempts per AuthWindow for login/register, per client IP.
	AuthLimit  int
	AuthWindow time.Duration

	MaxBodyBytes int64
	Timeout      time.Duration
}

type TokenService interface {
	handler.TokenIssuer
	mdw.Verifier
}

func NewAPIEngine(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.MaxBodyBytes <= 0 {
		d.MaxBodyBytes = 16 << 20
	}
	if d.Timeout <= 0 {
		d.Timeout = 10 * time.Second
	}
	if d.AuthLimit <= 0 {
		d.AuthLimit = 20
	}
	if d.AuthWindow <= 0 {
		d.AuthWindow = time.Minute
	}

	r := server.NewRouter(d.Log)
	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(d.MaxBodyBytes),
		mdw.Timeout(d.Timeout),
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", mdw.MetricsHandler())

	api := r.Group("/api")

	// public
	authGroup := api.Group("")
	if d.Throttle != nil {
		authGroup.Use(mdw.Throttle(d.Throttle, "auth", d.Log))
	} else {
		authGroup.Use(mdw.RateLimitPerIP(rate.Every(d.AuthWindow/time.Duration(d.AuthLimit)), d.AuthLimit))
	}
	handler.MountAuth(ez.New(authGroup, d.Log), d.Users, d.Tokens)

	if d.Analyzer != nil {
		handler.MountAnalyzer(ez.New(api.Group(""), d.Log), d.Analyzer)
	}

	// bearer token required
	authed := api.Group("")
	authed.Use(mdw.AuthJWT(d.Tokens))
	e := ez.New(authed, d.Log)
	handler.MountHistory(e, d.Ledger)
	handler.MountStats(e, d.Stats)

	mountAdmin(authed, d)

	return r
}
