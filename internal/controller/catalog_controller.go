package controller

import (
	"errors"

	"thinkjava_backend/internal/service"
	"thinkjava_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// CatalogController 关卡/成就目录管理（管理员）
type CatalogController struct {
	CatalogService *service.CatalogService
}

func NewCatalogController(catalogService *service.CatalogService) *CatalogController {
	return &CatalogController{CatalogService: catalogService}
}

func catalogError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrLevelNotFound), errors.Is(err, util.ErrAchievementNotFound):
		util.NotFound(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}

// @Summary 关卡定义列表
// @Tags 目录管理
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/admin/levels [get]
func (c *CatalogController) ListLevels(ctx *gin.Context) {
	levels, err := c.CatalogService.ListLevels()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, levels)
}

type createLevelRequest struct {
	Name     string `json:"name" binding:"required"`
	Unlocked bool   `json:"unlocked"`
}

// @Summary 创建关卡定义（触发异步补行同步）
// @Tags 目录管理
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param level body createLevelRequest true "关卡"
// @Success 201 {object} util.Response
// @Router /api/admin/levels [post]
func (c *CatalogController) CreateLevel(ctx *gin.Context) {
	var req createLevelRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	level, created, err := c.CatalogService.CreateLevel(req.Name, req.Unlocked)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if !created {
		util.Success(ctx, level)
		return
	}
	util.Created(ctx, level)
}

// @Summary 删除关卡定义（连带进度行）
// @Tags 目录管理
// @Security BearerAuth
// @Produce json
// @Param name path string true "关卡名"
// @Success 200 {object} util.Response
// @Router /api/admin/levels/{name} [delete]
func (c *CatalogController) DeleteLevel(ctx *gin.Context) {
	if err := c.CatalogService.DeleteLevel(ctx.Param("name")); err != nil {
		catalogError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"status": "deleted"})
}

type setUnlockedRequest struct {
	Unlocked *bool `json:"unlocked" binding:"required"`
}

// @Summary 全局开/关单个关卡
// @Tags 目录管理
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param name path string true "关卡名"
// @Param body body setUnlockedRequest true "unlocked"
// @Success 200 {object} util.Response
// @Router /api/admin/levels/{name}/unlocked [put]
func (c *CatalogController) SetLevelUnlocked(ctx *gin.Context) {
	var req setUnlockedRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.CatalogService.SetLevelUnlockedGlobal(ctx.Param("name"), *req.Unlocked); err != nil {
		catalogError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"status": "updated"})
}

// @Summary 全部关卡一键开/关
// @Tags 目录管理
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body setUnlockedRequest true "unlocked"
// @Success 200 {object} util.Response
// @Router /api/admin/levels/unlocked [put]
func (c *CatalogController) SetAllLevelsUnlocked(ctx *gin.Context) {
	var req setUnlockedRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.CatalogService.SetAllLevelsUnlocked(*req.Unlocked); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"status": "updated"})
}

// @Summary 成就定义列表
// @Tags 目录管理
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/admin/achievements [get]
func (c *CatalogController) ListAchievements(ctx *gin.Context) {
	achievements, err := c.CatalogService.ListAchievements()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, achievements)
}

type createAchievementRequest struct {
	Code        string `json:"code" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

// @Summary 创建成就定义（触发异步补行同步）
// @Tags 目录管理
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param achievement body createAchievementRequest true "成就"
// @Success 201 {object} util.Response
// @Router /api/admin/achievements [post]
func (c *CatalogController) CreateAchievement(ctx *gin.Context) {
	var req createAchievementRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	achievement, created, err := c.CatalogService.CreateAchievement(req.Code, req.Title, req.Description)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if !created {
		util.Success(ctx, achievement)
		return
	}
	util.Created(ctx, achievement)
}

// @Summary 删除成就定义（连带进度行）
// @Tags 目录管理
// @Security BearerAuth
// @Produce json
// @Param code path string true "成就码"
// @Success 200 {object} util.Response
// @Router /api/admin/achievements/{code} [delete]
func (c *CatalogController) DeleteAchievement(ctx *gin.Context) {
	if err := c.CatalogService.DeleteAchievement(ctx.Param("code")); err != nil {
		catalogError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"status": "deleted"})
}

type setActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// @Summary 全局成就 kill-switch
// @Tags 目录管理
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param code path string true "成就码"
// @Param body body setActiveRequest true "active"
// @Success 200 {object} util.Response
// @Router /api/admin/achievements/{code}/active [put]
func (c *CatalogController) SetAchievementActive(ctx *gin.Context) {
	var req setActiveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.CatalogService.SetAchievementActiveGlobal(ctx.Param("code"), *req.Active); err != nil {
		catalogError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"status": "updated"})
}

// @Summary 全部成就一键开/关
// @Tags 目录管理
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body setActiveRequest true "active"
// @Success 200 {object} util.Response
// @Router /api/admin/achievements/active [put]
func (c *CatalogController) SetAllAchievementsActive(ctx *gin.Context) {
	var req setActiveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.CatalogService.SetAllAchievementsActive(*req.Active); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"status": "updated"})
}

// @Summary 全量重置学生进度
// @Tags 目录管理
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/admin/progress/reset [post]
func (c *CatalogController) ResetAllProgress(ctx *gin.Context) {
	if err := c.CatalogService.ResetAllProgress(); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"status": "reset"})
}

// @Summary 手动触发进度补行同步
// @Tags 目录管理
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/admin/progress/sync [post]
func (c *CatalogController) ForceSync(ctx *gin.Context) {
	if err := c.CatalogService.ForceSync(); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"status": "synced"})
}
