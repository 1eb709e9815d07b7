package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/pulsechat/internal/api/middleware"
	"github.com/d60-Lab/pulsechat/pkg/response"
)

// ListNotifications 当前账户通知（新到旧，最多保留 100 条）
// @Summary 通知列表
// @Tags 通知
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/notifications [get]
func (h *Handler) ListNotifications(c *gin.Context) {
	account := middleware.Account(c)
	response.Success(c, gin.H{
		"unread": h.engagementSvc.UnreadCount(account),
		"list":   h.engagementSvc.Notifications(account),
	})
}

// UnreadCount 未读数（供角标轮询）
// @Summary 未读通知数
// @Tags 通知
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/notifications/unread [get]
func (h *Handler) UnreadCount(c *gin.Context) {
	response.Success(c, gin.H{"unread": h.engagementSvc.UnreadCount(middleware.Account(c))})
}

// MarkNotificationRead 单条已读
// @Summary 标记通知已读
// @Tags 通知
// @Param id path string true "通知ID"
// @Success 200 {object} response.Response
// @Router /api/v1/notifications/{id}/read [post]
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	if err := h.engagementSvc.MarkRead(middleware.Account(c), c.Param("id")); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}

// MarkAllNotificationsRead 全部已读
// @Summary 全部标记已读
// @Tags 通知
// @Success 200 {object} response.Response
// @Router /api/v1/notifications/read-all [post]
func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	if err := h.engagementSvc.MarkAllRead(middleware.Account(c)); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}

// ClearNotifications 清空通知
// @Summary 清空通知
// @Tags 通知
// @Success 200 {object} response.Response
// @Router /api/v1/notifications [delete]
func (h *Handler) ClearNotifications(c *gin.Context) {
	if err := h.engagementSvc.ClearNotifications(middleware.Account(c)); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}
