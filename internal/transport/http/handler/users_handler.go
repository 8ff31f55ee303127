package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"deeptrust-api/internal/core/auth"
	"deeptrust-api/internal/domain"
	"deeptrust-api/internal/service"
	"deeptrust-api/internal/transport/http/ez"
	resp "deeptrust-api/internal/transport/http/response"
)

type createUserIn struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
	Email    string `json:"email"`
}

// MountUsers registers user administration. The group must already be behind
// AuthJWT and RequireAdmin.
func MountUsers(e ez.EZ, users *service.UserService) {
	ez.RegisterAction(e, ez.Action[struct{}, []domain.UserView]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ auth.Identity, _ *struct{}) ([]domain.UserView, error) {
			return users.ListWithUsage(c.Request.Context())
		},
	})

	ez.RegisterAction(e, ez.Action[createUserIn, domain.UserView]{
		Method: http.MethodPost,
		Path:   "/users",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, _ auth.Identity, in *createUserIn) (domain.UserView, error) {
			u, err := users.CreateByAdmin(c.Request.Context(), in.Username, in.Password, in.Role, in.Email)
			if err != nil {
				return domain.UserView{}, err
			}
			return service.View(u), nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, resp.Msg]{
		Method: http.MethodDelete,
		Path:   "/users/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ auth.Identity, _ *struct{}) (resp.Msg, error) {
			err := users.Delete(c.Request.Context(), c.Param("id"))
			switch {
			case err == nil:
				return resp.Message("User deleted"), nil
			case errors.Is(err, domain.ErrForbidden):
				return resp.Msg{}, ez.Forbidden("Cannot delete default admin")
			case errors.Is(err, domain.ErrNotFound):
				return resp.Msg{}, ez.NotFound("User not found")
			}
			return resp.Msg{}, err
		},
	})
}
