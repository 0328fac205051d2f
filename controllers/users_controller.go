package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/princinho/coursemarket/middleware"
	"github.com/princinho/coursemarket/services"
	"github.com/princinho/coursemarket/utils"
	"go.uber.org/zap"
)

type UsersController struct {
	users *services.UserService
	log   *zap.Logger
}

func NewUsersController(users *services.UserService, log *zap.Logger) *UsersController {
	return &UsersController{users: users, log: log}
}

// GET /api/users
func (h *UsersController) List() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, ok := pageParams(c, h.log)
		if !ok {
			return
		}
		result, err := h.users.List(c.Request.Context(), middleware.CurrentUser(c), page)
		if err != nil {
			utils.RespondError(c, h.log, err)
			return
		}
		utils.OK(c, "", result)
	}
}

// GET /api/users/:id
func (h *UsersController) Get() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := h.users.Get(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
		if err != nil {
			utils.RespondError(c, h.log, err)
			return
		}
		utils.OK(c, "", gin.H{"user": user})
	}
}

// DELETE /api/users/:id
func (h *UsersController) Delete() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.users.Delete(c.Request.Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
			utils.RespondError(c, h.log, err)
			return
		}
		utils.OK(c, "User deleted successfully", nil)
	}
}

func pageParams(c *gin.Context, log *zap.Logger) (utils.PageParams, bool) {
	page, err := utils.ParsePageParams(c.Query("page"), c.Query("limit"))
	if err != nil {
		utils.RespondError(c, log, err)
		return utils.PageParams{}, false
	}
	return page, true
}
