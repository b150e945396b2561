package controller

import (
	"strconv"

	"quizhub_backend/internal/model"
	"quizhub_backend/internal/service"
	"quizhub_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type QuizController struct {
	QuizService *service.QuizService
	Access      *service.AccessService
}

func NewQuizController(quizService *service.QuizService, access *service.AccessService) *QuizController {
	return &QuizController{QuizService: quizService, Access: access}
}

// @Summary Create a quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Router /api/teacher/quizzes [post]
func (c *QuizController) Create(ctx *gin.Context) {
	var req service.QuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	quiz, err := c.QuizService.Create(req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, quiz)
}

// @Summary List quizzes, optionally per course
// @Tags quizzes
// @Produce json
// @Security BearerAuth
// @Router /api/quizzes [get]
func (c *QuizController) List(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	courseID, _ := strconv.Atoi(ctx.DefaultQuery("courseId", "0"))
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	quizzes, total, err := c.QuizService.List(uint(courseID), page, limit, user.Role == model.Student)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: quizzes, Total: total, Page: page, Limit: limit})
}

// @Summary Get one quiz
// @Tags quizzes
// @Produce json
// @Security BearerAuth
// @Router /api/quizzes/{id} [get]
func (c *QuizController) Get(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}
	quiz, err := c.QuizService.Get(uint(id))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, quiz)
}

// @Summary Effective access for the calling user (overrides folded in)
// @Tags quizzes
// @Produce json
// @Security BearerAuth
// @Router /api/quizzes/{id}/access [get]
func (c *QuizController) EffectiveAccess(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}
	quiz, err := c.QuizService.Get(uint(id))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	access, err := c.Access.Resolve(quiz, user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, access)
}

// @Summary Update a quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Router /api/teacher/quizzes/{id} [put]
func (c *QuizController) Update(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}
	var req service.QuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	quiz, err := c.QuizService.Update(uint(id), req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// @Summary Delete a quiz and everything under it
// @Tags quizzes
// @Produce json
// @Security BearerAuth
// @Router /api/teacher/quizzes/{id} [delete]
func (c *QuizController) Delete(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}
	if err := c.QuizService.Delete(uint(id)); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary List the quiz's question slots
// @Tags quizzes
// @Produce json
// @Security BearerAuth
// @Router /api/teacher/quizzes/{id}/slots [get]
func (c *QuizController) Slots(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}
	slots, err := c.QuizService.Slots(uint(id))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, slots)
}

// @Summary Add a question to the quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Router /api/teacher/quizzes/{id}/slots [post]
func (c *QuizController) AddQuestion(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}
	var body struct {
		QuestionID uint    `json:"questionId" binding:"required"`
		MaxMark    float64 `json:"maxMark"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	slot, err := c.QuizService.AddQuestion(uint(id), body.QuestionID, body.MaxMark)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, slot)
}

// @Summary Remove a question slot from the quiz
// @Tags quizzes
// @Produce json
// @Security BearerAuth
// @Router /api/teacher/quizzes/{id}/slots/{slot} [delete]
func (c *QuizController) RemoveQuestion(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}
	slot, err := strconv.Atoi(ctx.Param("slot"))
	if err != nil {
		util.BadRequest(ctx, "invalid slot")
		return
	}
	if err := c.QuizService.RemoveQuestion(uint(id), slot); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary Change a slot's maximum mark
// @Tags quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Router /api/teacher/quizzes/{id}/slots/{slot} [put]
func (c *QuizController) UpdateSlotMark(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}
	slot, err := strconv.Atoi(ctx.Param("slot"))
	if err != nil {
		util.BadRequest(ctx, "invalid slot")
		return
	}
	var body struct {
		MaxMark float64 `json:"maxMark" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	updated, err := c.QuizService.UpdateSlotMark(uint(id), slot, body.MaxMark)
	if err == gorm.ErrRecordNotFound {
		util.NotFound(ctx)
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, updated)
}

// @Summary Create a question
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Router /api/teacher/questions [post]
func (c *QuizController) CreateQuestion(ctx *gin.Context) {
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	question, err := c.QuizService.CreateQuestion(req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, question)
}

// @Summary Get a question
// @Tags questions
// @Produce json
// @Security BearerAuth
// @Router /api/teacher/questions/{id} [get]
func (c *QuizController) GetQuestion(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid question id")
		return
	}
	question, err := c.QuizService.GetQuestion(uint(id))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, question)
}

// @Summary Update a question (responses are regraded separately)
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Router /api/teacher/questions/{id} [put]
func (c *QuizController) UpdateQuestion(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid question id")
		return
	}
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	question, err := c.QuizService.UpdateQuestion(uint(id), req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, question)
}

// @Summary Delete a question
// @Tags questions
// @Produce json
// @Security BearerAuth
// @Router /api/teacher/questions/{id} [delete]
func (c *QuizController) DeleteQuestion(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid question id")
		return
	}
	if err := c.QuizService.DeleteQuestion(uint(id)); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
