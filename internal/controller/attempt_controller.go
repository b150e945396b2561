package controller

import (
	"net/http"
	"strconv"
	"time"

	"quizhub_backend/internal/service"
	"quizhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	Attempts *service.AttemptService
}

func NewAttemptController(attempts *service.AttemptService) *AttemptController {
	return &AttemptController{Attempts: attempts}
}

// @Summary Start or resume an attempt
// @Tags attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Router /api/quizzes/{id}/attempts [post]
func (c *AttemptController) Start(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	quizID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}
	var body struct {
		Password string `json:"password"`
		Preview  bool   `json:"preview"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil && err.Error() != "EOF" {
		util.BadRequest(ctx, err.Error())
		return
	}
	attempt, reasons, err := c.Attempts.StartAttempt(uint(quizID), user.UserID, body.Password, body.Preview)
	if err == util.ErrQuizNotPublished {
		util.Error(ctx, http.StatusForbidden, err.Error())
		return
	}
	if err == util.ErrNoPreviousAttempt {
		util.LogInternalError(ctx, err)
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if len(reasons) > 0 {
		// Blocked, not broken: hand the student the reasons.
		ctx.JSON(http.StatusForbidden, util.Response{
			Code:    http.StatusForbidden,
			Message: "attempt not allowed",
			Data:    gin.H{"reasons": reasons},
		})
		return
	}
	util.Created(ctx, attempt)
}

// @Summary Save an answer for one slot
// @Tags attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Router /api/attempts/{id}/responses [post]
func (c *AttemptController) SaveResponse(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	attemptID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}
	var body struct {
		Slot     int    `json:"slot" binding:"required"`
		Response string `json:"response"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	err = c.Attempts.SaveResponse(uint(attemptID), user.UserID, body.Slot, body.Response)
	if err == util.ErrAttemptNotFound {
		util.NotFound(ctx)
		return
	}
	if err == util.ErrPermissionDenied {
		util.Forbidden(ctx)
		return
	}
	if err == util.ErrAttemptFinished {
		util.Conflict(ctx, err.Error())
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary Submit the attempt
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Router /api/attempts/{id}/submit [post]
func (c *AttemptController) Submit(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	attemptID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}
	attempt, err := c.Attempts.SubmitAttempt(uint(attemptID), user.UserID)
	if err == util.ErrAttemptNotFound {
		util.NotFound(ctx)
		return
	}
	if err == util.ErrPermissionDenied {
		util.Forbidden(ctx)
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

// @Summary View one attempt, running its deadline check first
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Router /api/attempts/{id} [get]
func (c *AttemptController) Get(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	attemptID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}
	// A page load is as good a trigger as a scheduler pass.
	if _, err := c.Attempts.TimeExpiryCheck(uint(attemptID), time.Now().Unix()); err != nil {
		if err == util.ErrAttemptNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	attempt, err := c.Attempts.AttemptRepo.FindByID(uint(attemptID))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	if attempt.UserID != user.UserID && user.Role == "student" {
		util.Forbidden(ctx)
		return
	}
	steps, err := c.Attempts.AttemptRepo.GetSteps(attempt.ID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"attempt": attempt, "steps": steps})
}

// @Summary List the calling user's attempts at a quiz
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Router /api/quizzes/{id}/attempts [get]
func (c *AttemptController) ListMine(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	quizID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}
	attempts, err := c.Attempts.AttemptRepo.ListByQuizUser(uint(quizID), user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

// @Summary Delete an attempt (teacher action, recomputes the grade)
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Router /api/teacher/attempts/{id} [delete]
func (c *AttemptController) Delete(ctx *gin.Context) {
	attemptID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}
	if err := c.Attempts.DeleteAttempt(uint(attemptID)); err != nil {
		if err == util.ErrAttemptNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
