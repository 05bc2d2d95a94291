package controller

import (
	"errors"
	"strconv"
	"time"

	"thinkjava_backend/internal/service"
	"thinkjava_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// TeacherProgressController 教师进度控制面板
type TeacherProgressController struct {
	TeacherProgressService *service.TeacherProgressService
	RosterService          *service.RosterService
}

func NewTeacherProgressController(teacherProgressService *service.TeacherProgressService, rosterService *service.RosterService) *TeacherProgressController {
	return &TeacherProgressController{
		TeacherProgressService: teacherProgressService,
		RosterService:          rosterService,
	}
}

func overrideError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrSectionNotHandled):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrLevelNotFound), errors.Is(err, util.ErrAchievementNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrScheduleDueBeforeStart), errors.Is(err, util.ErrScheduleSameDayOrder):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// resolveScope 公共参数：可选 section_id 收窄到单个段位
func (c *TeacherProgressController) resolveScope(ctx *gin.Context) (*service.ActionScope, bool) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return nil, false
	}

	var sectionID *uint
	if raw := ctx.Query("section_id"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			util.BadRequest(ctx, "invalid section id")
			return nil, false
		}
		id := uint(v)
		sectionID = &id
	}

	scope, err := c.TeacherProgressService.ResolveScope(user.UserID, sectionID)
	if err != nil {
		overrideError(ctx, err)
		return nil, false
	}
	return scope, true
}

type levelActionRequest struct {
	Level string `json:"level"` // 空串 = 全部关卡
}

// @Summary 解锁关卡（手动覆盖，清掉冲突排期）
// @Tags 进度控制
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param section_id query int false "限定段位"
// @Param body body levelActionRequest true "关卡名，空为全部"
// @Success 200 {object} util.Response
// @Router /api/teacher/progress/unlock [post]
func (c *TeacherProgressController) UnlockLevels(ctx *gin.Context) {
	scope, ok := c.resolveScope(ctx)
	if !ok {
		return
	}
	var req levelActionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.TeacherProgressService.UnlockLevels(scope, req.Level); err != nil {
		overrideError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"status": "unlocked"})
}

// @Summary 锁定关卡（手动覆盖，清掉冲突排期）
// @Tags 进度控制
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param section_id query int false "限定段位"
// @Param body body levelActionRequest true "关卡名，空为全部"
// @Success 200 {object} util.Response
// @Router /api/teacher/progress/lock [post]
func (c *TeacherProgressController) LockLevels(ctx *gin.Context) {
	scope, ok := c.resolveScope(ctx)
	if !ok {
		return
	}
	var req levelActionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.TeacherProgressService.LockLevels(scope, req.Level); err != nil {
		overrideError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"status": "locked"})
}

type scheduleUnlockRequest struct {
	Level     string     `json:"level" binding:"required"`
	SectionID uint       `json:"sectionId" binding:"required"`
	StartDate *time.Time `json:"startDate"`
	DueDate   *time.Time `json:"dueDate"`
}

// @Summary 解锁并设置排期窗口
// @Tags 进度控制
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body scheduleUnlockRequest true "排期"
// @Success 200 {object} util.Response
// @Router /api/teacher/progress/unlock-with-schedule [post]
func (c *TeacherProgressController) UnlockWithSchedule(ctx *gin.Context) {
	scope, ok := c.resolveScope(ctx)
	if !ok {
		return
	}
	var req scheduleUnlockRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	err := c.TeacherProgressService.UnlockLevelWithSchedule(scope, req.Level, req.SectionID, req.StartDate, req.DueDate)
	if err != nil {
		overrideError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"status": "scheduled"})
}

type achievementActionRequest struct {
	Code   string `json:"code"` // 空串 = 全部成就
	Active *bool  `json:"active" binding:"required"`
}

// @Summary 段位级成就开关
// @Tags 进度控制
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param section_id query int false "限定段位"
// @Param body body achievementActionRequest true "成就码，空为全部"
// @Success 200 {object} util.Response
// @Router /api/teacher/progress/achievements [post]
func (c *TeacherProgressController) SetAchievements(ctx *gin.Context) {
	scope, ok := c.resolveScope(ctx)
	if !ok {
		return
	}
	var req achievementActionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	var err error
	if req.Code == "" {
		if *req.Active {
			err = c.TeacherProgressService.EnableAchievements(scope)
		} else {
			err = c.TeacherProgressService.DisableAchievements(scope)
		}
	} else {
		err = c.TeacherProgressService.SetAchievementActive(scope, req.Code, *req.Active)
	}
	if err != nil {
		overrideError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"status": "updated"})
}

// @Summary 段位进度总览（含排期）
// @Tags 进度控制
// @Security BearerAuth
// @Produce json
// @Param section_id path int true "段位ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/progress/sections/{section_id} [get]
func (c *TeacherProgressController) SectionOverview(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	sectionID, err := strconv.ParseUint(ctx.Param("section_id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid section id")
		return
	}

	overview, err := c.TeacherProgressService.SectionOverview(user.UserID, uint(sectionID))
	if err != nil {
		overrideError(ctx, err)
		return
	}
	util.Success(ctx, overview)
}

// @Summary 重置范围内学生的全部进度
// @Tags 进度控制
// @Security BearerAuth
// @Produce json
// @Param section_id query int false "限定段位"
// @Success 200 {object} util.Response
// @Router /api/teacher/progress/reset [post]
func (c *TeacherProgressController) ResetProgress(ctx *gin.Context) {
	scope, ok := c.resolveScope(ctx)
	if !ok {
		return
	}
	if err := c.TeacherProgressService.ResetProgress(scope); err != nil {
		overrideError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"status": "reset"})
}

// @Summary 为段位生成/轮换加入码
// @Tags 进度控制
// @Security BearerAuth
// @Produce json
// @Param section_id path int true "段位ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/sections/{section_id}/join-code [post]
func (c *TeacherProgressController) GenerateJoinCode(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	sectionID, err := strconv.ParseUint(ctx.Param("section_id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid section id")
		return
	}

	code, err := c.RosterService.GenerateJoinCode(user.UserID, uint(sectionID))
	if err != nil {
		overrideError(ctx, err)
		return
	}
	util.Success(ctx, code)
}
