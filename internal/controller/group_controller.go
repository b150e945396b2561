package controller

import (
	"strconv"

	"quizhub_backend/internal/service"
	"quizhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GroupController struct {
	Groups *service.GroupService
}

func NewGroupController(groups *service.GroupService) *GroupController {
	return &GroupController{Groups: groups}
}

// @Summary Create a group in a course
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Router /api/teacher/groups [post]
func (c *GroupController) Create(ctx *gin.Context) {
	var body struct {
		CourseID    uint   `json:"courseId" binding:"required"`
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	group, err := c.Groups.Create(body.CourseID, body.Name, body.Description)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, group)
}

// @Summary List the course's groups
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Router /api/teacher/groups [get]
func (c *GroupController) List(ctx *gin.Context) {
	courseID, _ := strconv.Atoi(ctx.DefaultQuery("courseId", "0"))
	groups, err := c.Groups.List(uint(courseID))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, groups)
}

// @Summary Add a user to a group
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Router /api/teacher/groups/{id}/members/{userId} [post]
func (c *GroupController) AddMember(ctx *gin.Context) {
	groupID, userID, ok := c.memberParams(ctx)
	if !ok {
		return
	}
	if err := c.Groups.AddMember(groupID, userID); err != nil {
		if err == util.ErrGroupNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary Remove a user from a group
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Router /api/teacher/groups/{id}/members/{userId} [delete]
func (c *GroupController) RemoveMember(ctx *gin.Context) {
	groupID, userID, ok := c.memberParams(ctx)
	if !ok {
		return
	}
	if err := c.Groups.RemoveMember(groupID, userID); err != nil {
		if err == util.ErrGroupNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary Delete a group (cascades its overrides)
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Router /api/teacher/groups/{id} [delete]
func (c *GroupController) Delete(ctx *gin.Context) {
	groupID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid group id")
		return
	}
	if err := c.Groups.Delete(uint(groupID)); err != nil {
		if err == util.ErrGroupNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

func (c *GroupController) memberParams(ctx *gin.Context) (uint, uint, bool) {
	groupID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid group id")
		return 0, 0, false
	}
	userID, err := strconv.Atoi(ctx.Param("userId"))
	if err != nil {
		util.BadRequest(ctx, "invalid user id")
		return 0, 0, false
	}
	return uint(groupID), uint(userID), true
}
