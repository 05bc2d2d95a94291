package controller

import (
	"thinkjava_backend/internal/service"
	"thinkjava_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// RosterController 名册下拉数据（段位、系别）
type RosterController struct {
	RosterService *service.RosterService
}

func NewRosterController(rosterService *service.RosterService) *RosterController {
	return &RosterController{RosterService: rosterService}
}

// @Summary 段位列表
// @Tags 名册
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/admin/sections [get]
func (c *RosterController) ListSections(ctx *gin.Context) {
	sections, err := c.RosterService.ListSections()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, sections)
}

// @Summary 系别列表
// @Tags 名册
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/admin/departments [get]
func (c *RosterController) ListDepartments(ctx *gin.Context) {
	departments, err := c.RosterService.ListDepartments()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, departments)
}
