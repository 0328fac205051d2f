package controllers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/princinho/coursemarket/dto"
	"github.com/princinho/coursemarket/middleware"
	"github.com/princinho/coursemarket/services"
	"github.com/princinho/coursemarket/utils"
	"go.uber.org/zap"
)

type AuthController struct {
	auth *services.AuthService
	log  *zap.Logger
}

func NewAuthController(auth *services.AuthService, log *zap.Logger) *AuthController {
	return &AuthController{auth: auth, log: log}
}

// POST /api/auth/register
func (h *AuthController) Register() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.RegisterDTO
		if !bindJSON(c, h.log, &body) {
			return
		}

		result, err := h.auth.Register(c.Request.Context(), body)
		if err != nil {
			utils.RespondError(c, h.log, err)
			return
		}
		utils.Created(c, "User registered successfully", result)
	}
}

// POST /api/auth/login
func (h *AuthController) Login() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.LoginDTO
		if !bindJSON(c, h.log, &body) {
			return
		}

		result, err := h.auth.Login(c.Request.Context(), body)
		if err != nil {
			utils.RespondError(c, h.log, err)
			return
		}
		utils.OK(c, "Login successful", result)
	}
}

// POST /api/auth/refresh
func (h *AuthController) Refresh() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.RefreshTokenDTO
		if !bindJSON(c, h.log, &body) {
			return
		}

		result, err := h.auth.Refresh(c.Request.Context(), body.RefreshToken)
		if err != nil {
			utils.RespondError(c, h.log, err)
			return
		}
		utils.OK(c, "Token refreshed successfully", gin.H{
			"accessToken":  result.AccessToken,
			"refreshToken": result.RefreshToken,
		})
	}
}

// POST /api/auth/logout
func (h *AuthController) Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.LogoutDTO
		// the body is optional; without a token every session ends
		if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
			utils.RespondError(c, h.log, utils.ValidationError("Validation error", validationDetails(err)))
			return
		}

		if err := h.auth.Logout(c.Request.Context(), middleware.CurrentUser(c), body.RefreshToken); err != nil {
			utils.RespondError(c, h.log, err)
			return
		}
		utils.OK(c, "Logout successful", nil)
	}
}

// GET /api/auth/profile
func (h *AuthController) Profile() gin.HandlerFunc {
	return func(c *gin.Context) {
		utils.OK(c, "", gin.H{"user": middleware.CurrentUser(c)})
	}
}

// POST /api/auth/password
func (h *AuthController) ChangePassword() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.ChangeMyPasswordDTO
		if !bindJSON(c, h.log, &body) {
			return
		}

		if err := h.auth.ChangePassword(c.Request.Context(), middleware.CurrentUser(c), body); err != nil {
			utils.RespondError(c, h.log, err)
			return
		}
		utils.OK(c, "Password changed successfully", nil)
	}
}
