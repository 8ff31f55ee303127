package router

import (
	"github.com/gin-gonic/gin"

	"deeptrust-api/internal/transport/http/ez"
	"deeptrust-api/internal/transport/http/handler"
	mdw "deeptrust-api/internal/transport/http/middleware"
)

// mountAdmin hangs user administration off an already authenticated group.
func mountAdmin(authed *gin.RouterGroup, d Deps) {
	admin := authed.Group("")
	admin.Use(mdw.RequireAdmin())
	handler.MountUsers(ez.New(admin, d.Log), d.Users)
}
