package controller

import (
	"strconv"

	"quizhub_backend/internal/model"
	"quizhub_backend/internal/repository"
	"quizhub_backend/internal/service"
	"quizhub_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type GradeController struct {
	Grades   *service.GradeService
	Regrades *service.RegradeService
	QuizRepo *repository.QuizRepository
}

func NewGradeController(grades *service.GradeService, regrades *service.RegradeService,
	quizRepo *repository.QuizRepository) *GradeController {
	return &GradeController{Grades: grades, Regrades: regrades, QuizRepo: quizRepo}
}

// @Summary Get the caller's final grade for a quiz
// @Tags grades
// @Produce json
// @Security BearerAuth
// @Router /api/quizzes/{id}/grade [get]
func (c *GradeController) MyGrade(ctx *gin.Context) {
	quizID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	grade, err := c.Grades.GradeRepo.Find(uint(quizID), user.UserID)
	if err == gorm.ErrRecordNotFound {
		util.Success(ctx, nil)
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, grade)
}

// @Summary List final grades for a quiz
// @Tags grades
// @Produce json
// @Security BearerAuth
// @Router /api/teacher/quizzes/{id}/grades [get]
func (c *GradeController) ListForQuiz(ctx *gin.Context) {
	quizID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}
	grades, err := c.Grades.GradeRepo.ListByQuiz(uint(quizID))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, grades)
}

// @Summary Recompute every final grade for a quiz
// @Tags grades
// @Produce json
// @Security BearerAuth
// @Router /api/teacher/quizzes/{id}/grades/recompute [post]
func (c *GradeController) RecomputeAll(ctx *gin.Context) {
	quiz, ok := c.loadQuiz(ctx)
	if !ok {
		return
	}
	if err := c.Grades.UpdateAllFinalGrades(quiz); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary Regrade one attempt
// @Description With dryRun the new marks are recorded for review but nothing
// @Description is committed; without it the attempt totals and the final grade
// @Description are updated in the same pass.
// @Tags grades
// @Accept json
// @Produce json
// @Security BearerAuth
// @Router /api/teacher/attempts/{id}/regrade [post]
func (c *GradeController) RegradeAttempt(ctx *gin.Context) {
	attemptID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}
	var body struct {
		DryRun bool  `json:"dryRun"`
		Slots  []int `json:"slots"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	changed, err := c.Regrades.RegradeAttempt(uint(attemptID), body.DryRun, body.Slots)
	if err == gorm.ErrRecordNotFound {
		util.NotFound(ctx)
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"dryRun": body.DryRun, "changed": changed})
}

// @Summary Regrade every attempt of a quiz
// @Tags grades
// @Accept json
// @Produce json
// @Security BearerAuth
// @Router /api/teacher/quizzes/{id}/regrade [post]
func (c *GradeController) RegradeQuiz(ctx *gin.Context) {
	quizID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}
	var body struct {
		DryRun bool `json:"dryRun"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	summary, err := c.Regrades.RegradeAll(uint(quizID), body.DryRun)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, summary)
}

// @Summary List marks from dry-run regrades awaiting commit
// @Tags grades
// @Produce json
// @Security BearerAuth
// @Router /api/teacher/quizzes/{id}/regrade/pending [get]
func (c *GradeController) PendingRegrades(ctx *gin.Context) {
	quizID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}
	count, marks, err := c.Regrades.PendingMarks(uint(quizID))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"count": count, "marks": marks})
}

// @Summary List regrade marks recorded for an attempt
// @Tags grades
// @Produce json
// @Security BearerAuth
// @Router /api/teacher/attempts/{id}/regrade [get]
func (c *GradeController) AttemptMarks(ctx *gin.Context) {
	attemptID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}
	marks, err := c.Regrades.RegradeRepo.ListByAttempt(uint(attemptID))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, marks)
}

func (c *GradeController) loadQuiz(ctx *gin.Context) (*model.Quiz, bool) {
	quizID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return nil, false
	}
	q, err := c.QuizRepo.FindByID(uint(quizID))
	if err == gorm.ErrRecordNotFound {
		util.NotFound(ctx)
		return nil, false
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return nil, false
	}
	return q, true
}
