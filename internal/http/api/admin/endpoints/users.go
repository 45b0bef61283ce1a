package endpoints

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/memo/internal/apperr"
	"github.com/Nixie-Tech-LLC/memo/internal/auth"
	"github.com/Nixie-Tech-LLC/memo/internal/db"
	"github.com/Nixie-Tech-LLC/memo/internal/http/api"
	userpackets "github.com/Nixie-Tech-LLC/memo/internal/http/api/users/packets"
)

type UserAdminController struct {
	store db.Store
}

func NewUserAdminController(store db.Store) *UserAdminController {
	return &UserAdminController{store: store}
}

// UserAdminModule mounts user management. The group must require the ADMIN role.
func UserAdminModule(store db.Store) api.Module {
	ctl := NewUserAdminController(store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/users", ctl.listUsers)
		c.DELETE("/users/:id", ctl.deleteUser)
	})
}

// GET /admin/users
func (u *UserAdminController) listUsers(ctx *gin.Context, _ auth.Identity) (any, error) {
	users, err := u.store.ListUsers(ctx.Request.Context())
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return userpackets.Profiles(users), nil
}

// DELETE /admin/users/:id
func (u *UserAdminController) deleteUser(ctx *gin.Context, id auth.Identity) (any, error) {
	userID, err := api.ParamID(ctx, "id")
	if err != nil {
		return nil, err
	}

	err = u.store.DeleteUser(ctx.Request.Context(), userID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("delete user %d: %w", userID, err)
	}

	log.Info().Int("user_id", userID).Int("admin_id", id.UserID).Msg("user deleted by admin")
	return nil, nil
}
