package controller

import (
	"errors"
	"net/http"
	"strconv"

	"thinkjava_backend/internal/model"
	"thinkjava_backend/internal/service"
	"thinkjava_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ProgressController 游戏端存档接口（Unity 客户端直连）
type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// studentIDParam 学生只能访问自己的存档，教师/管理员不限
func studentIDParam(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("student_id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid student id")
		return 0, false
	}
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return 0, false
	}
	if user.Role == model.RoleStudent && user.UserID != uint(id) {
		util.Forbidden(ctx)
		return 0, false
	}
	return uint(id), true
}

// @Summary 导出游戏存档
// @Tags 游戏进度
// @Security BearerAuth
// @Produce json
// @Param student_id path int true "学生ID"
// @Success 200 {object} service.GameProgress
// @Router /api/game/progress/{student_id} [get]
func (c *ProgressController) GetGameProgress(ctx *gin.Context) {
	studentID, ok := studentIDParam(ctx)
	if !ok {
		return
	}

	progress, err := c.ProgressService.ExportGameProgress(studentID)
	if err != nil {
		if errors.Is(err, util.ErrStudentNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	// 游戏端按裸 JSON 解析，不走统一响应包装
	ctx.JSON(http.StatusOK, progress)
}

// @Summary 提交游戏存档
// @Tags 游戏进度
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param student_id path int true "学生ID"
// @Param progress body service.GameProgress true "存档"
// @Success 200 {object} util.Response
// @Router /api/game/progress/{student_id} [post]
func (c *ProgressController) UpdateGameProgress(ctx *gin.Context) {
	studentID, ok := studentIDParam(ctx)
	if !ok {
		return
	}

	var payload service.GameProgress
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.ProgressService.UpdateGameProgress(studentID, &payload); err != nil {
		if errors.Is(err, util.ErrStudentNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"status": "updated"})
}
