package controller

import (
	"time"

	"quizhub_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthController struct {
	DB      *gorm.DB
	started time.Time
}

func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{DB: db, started: time.Now()}
}

// @Summary Liveness and database check
// @Tags health
// @Produce json
// @Router /health [get]
func (c *HealthController) Check(ctx *gin.Context) {
	status := "ok"
	sqlDB, err := c.DB.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		status = "degraded"
	}
	util.Success(ctx, gin.H{
		"status": status,
		"uptime": time.Since(c.started).Round(time.Second).String(),
	})
}
