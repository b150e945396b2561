package controller

import (
	"quizhub_backend/internal/service"
	"quizhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Router /api/auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req service.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	user, err := c.AuthService.Register(req)
	if err == util.ErrEmailRegistered {
		util.Conflict(ctx, err.Error())
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, user)
}

// @Summary Log in and receive a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Router /api/auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req service.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	token, user, err := c.AuthService.Login(req)
	if err != nil {
		util.Unauthorized(ctx)
		return
	}
	util.Success(ctx, gin.H{"token": token, "user": user})
}
