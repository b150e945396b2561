package controller

import (
	"strconv"

	"quizhub_backend/internal/service"
	"quizhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type OverrideController struct {
	Overrides *service.OverrideService
}

func NewOverrideController(overrides *service.OverrideService) *OverrideController {
	return &OverrideController{Overrides: overrides}
}

// @Summary Create or update an override for one user or group
// @Tags overrides
// @Accept json
// @Produce json
// @Security BearerAuth
// @Router /api/teacher/overrides [post]
func (c *OverrideController) Save(ctx *gin.Context) {
	var req service.OverrideRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	override, err := c.Overrides.Save(req)
	if err == util.ErrOverrideScope {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, override)
}

// @Summary List a quiz's overrides
// @Tags overrides
// @Produce json
// @Security BearerAuth
// @Router /api/teacher/quizzes/{id}/overrides [get]
func (c *OverrideController) ListForQuiz(ctx *gin.Context) {
	quizID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}
	overrides, err := c.Overrides.ListForQuiz(uint(quizID))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, overrides)
}

// @Summary Delete an override
// @Tags overrides
// @Produce json
// @Security BearerAuth
// @Router /api/teacher/overrides/{id} [delete]
func (c *OverrideController) Delete(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid override id")
		return
	}
	if err := c.Overrides.Delete(uint(id)); err != nil {
		if err == util.ErrOverrideNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
