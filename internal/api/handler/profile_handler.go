package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/pulsechat/internal/api/middleware"
	"github.com/d60-Lab/pulsechat/internal/format"
	"github.com/d60-Lab/pulsechat/pkg/response"
)

// GetProfile 链上资料 + 本地关注计数
// @Summary 用户资料
// @Tags 资料
// @Param address path string true "地址"
// @Success 200 {object} response.Response{data=service.ProfileView}
// @Failure 400 {object} response.Response
// @Router /api/v1/users/{address} [get]
func (h *Handler) GetProfile(c *gin.Context) {
	addr := c.Param("address")
	if !format.IsHexAddress(addr) {
		response.BadRequest(c, "invalid address")
		return
	}
	view, err := h.profileSvc.Get(c.Request.Context(), addr)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, view)
}

// GetStats 用户链上统计
// @Summary 用户统计
// @Tags 资料
// @Param address path string true "地址"
// @Success 200 {object} response.Response{data=service.StatsView}
// @Failure 400 {object} response.Response
// @Router /api/v1/users/{address}/stats [get]
func (h *Handler) GetStats(c *gin.Context) {
	addr := c.Param("address")
	if !format.IsHexAddress(addr) {
		response.BadRequest(c, "invalid address")
		return
	}
	stats, err := h.profileSvc.Stats(c.Request.Context(), addr)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, stats)
}

// GetTotals 全站累计数
// @Summary 全站统计
// @Tags 资料
// @Success 200 {object} response.Response{data=chain.Totals}
// @Router /api/v1/stats/totals [get]
func (h *Handler) GetTotals(c *gin.Context) {
	totals, err := h.profileSvc.Totals(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, totals)
}

// Leaderboard 手续费贡献榜
// @Summary 排行榜
// @Tags 资料
// @Param limit query int false "条数" default(10)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/leaderboard [get]
func (h *Handler) Leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	board, err := h.profileSvc.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"list": board})
}

// MyMessages 当前账户的私信（只允许看自己的）
// @Summary 我的私信
// @Tags 资料
// @Param limit query int false "条数" default(50)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/messages [get]
func (h *Handler) MyMessages(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	list, err := h.profileSvc.Messages(c.Request.Context(), middleware.Account(c), limit)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"list": list})
}
