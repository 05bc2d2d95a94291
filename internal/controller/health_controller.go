package controller

import (
	"net/http"

	"thinkjava_backend/internal/service"
	"thinkjava_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthController struct {
	DB        *gorm.DB
	Scheduler *service.Scheduler
}

func NewHealthController(db *gorm.DB, scheduler *service.Scheduler) *HealthController {
	return &HealthController{DB: db, Scheduler: scheduler}
}

// @Summary 健康检查
// @Description 检查数据库与调度器状态
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Router /health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	sqlDB, err := c.DB.DB()
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	if err := sqlDB.Ping(); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	schedulerState := "stopped"
	if c.Scheduler != nil && c.Scheduler.Running() {
		schedulerState = "running"
	}

	util.Success(ctx, gin.H{
		"status": "ok",
		"components": gin.H{
			"database":  "up",
			"scheduler": schedulerState,
		},
	})
}
