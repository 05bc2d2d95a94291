package controller

import (
	"errors"
	"strconv"

	"thinkjava_backend/internal/model"
	"thinkjava_backend/internal/service"
	"thinkjava_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type NotificationController struct {
	NotificationService *service.NotificationService
}

func NewNotificationController(notificationService *service.NotificationService) *NotificationController {
	return &NotificationController{NotificationService: notificationService}
}

// @Summary 通知收件箱
// @Tags 通知
// @Security BearerAuth
// @Produce json
// @Param limit query int false "条数上限" default(50)
// @Success 200 {object} util.Response
// @Router /api/notifications [get]
func (c *NotificationController) List(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	limit := 50
	if v, err := strconv.Atoi(ctx.Query("limit")); err == nil && v > 0 {
		limit = v
	}

	var notifications []model.Notification
	var err error
	switch user.Role {
	case model.RoleStudent:
		notifications, err = c.NotificationService.ListForStudent(user.UserID, limit)
	case model.RoleTeacher:
		notifications, err = c.NotificationService.ListForTeacher(user.UserID, limit)
	default:
		util.Forbidden(ctx)
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, notifications)
}

// @Summary 未读通知数
// @Tags 通知
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/notifications/unread-count [get]
func (c *NotificationController) UnreadCount(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	if user.Role != model.RoleStudent {
		util.Forbidden(ctx)
		return
	}

	count, err := c.NotificationService.UnreadCount(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"unread": count})
}

// @Summary 标记通知已读
// @Tags 通知
// @Security BearerAuth
// @Produce json
// @Param id path int true "通知ID"
// @Success 200 {object} util.Response
// @Router /api/notifications/{id}/read [post]
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid notification id")
		return
	}

	if err := c.NotificationService.MarkRead(uint(id), user.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"status": "read"})
}
