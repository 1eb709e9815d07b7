package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/pulsechat/internal/api/middleware"
	"github.com/d60-Lab/pulsechat/internal/service"
	"github.com/d60-Lab/pulsechat/pkg/response"
)

// ToggleLike 本地点赞开关
// @Summary 点赞/取消点赞（本地台账）
// @Tags 互动
// @Produce json
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 401 {object} response.Response
// @Router /api/v1/engagement/likes/{id} [post]
func (h *Handler) ToggleLike(c *gin.Context) {
	account := middleware.Account(c)
	active, err := h.engagementSvc.ToggleLike(c.Request.Context(), account, c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{
		"active": active,
		"count":  h.engagementSvc.LocalLikeCount(c.Param("id")),
	})
}

// ToggleRepost 本地转发开关
// @Summary 转发/取消转发（本地台账）
// @Tags 互动
// @Produce json
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 401 {object} response.Response
// @Router /api/v1/engagement/reposts/{id} [post]
func (h *Handler) ToggleRepost(c *gin.Context) {
	account := middleware.Account(c)
	active, err := h.engagementSvc.ToggleRepost(c.Request.Context(), account, c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{
		"active": active,
		"count":  h.engagementSvc.LocalRepostCount(c.Param("id")),
	})
}

// EngagementStatus 当前账户对某帖的互动状态
// @Summary 查询互动状态
// @Tags 互动
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/engagement/status/{id} [get]
func (h *Handler) EngagementStatus(c *gin.Context) {
	account := middleware.Account(c)
	postID := c.Param("id")
	response.Success(c, gin.H{
		"liked":       h.engagementSvc.IsLiked(account, postID),
		"reposted":    h.engagementSvc.IsReposted(account, postID),
		"likeCount":   h.engagementSvc.LocalLikeCount(postID),
		"repostCount": h.engagementSvc.LocalRepostCount(postID),
	})
}

// ListReposts 当前账户的转发记录（新到旧）
// @Summary 我的转发列表
// @Tags 互动
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/engagement/reposts [get]
func (h *Handler) ListReposts(c *gin.Context) {
	account := middleware.Account(c)
	response.Success(c, gin.H{"list": h.engagementSvc.Reposts(account)})
}

type followRequest struct {
	Target string `json:"target" binding:"required"`
}

// Follow 关注
// @Summary 关注地址
// @Tags 关系
// @Accept json
// @Produce json
// @Param request body followRequest true "目标地址"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/follow [post]
func (h *Handler) Follow(c *gin.Context) {
	var req followRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err))
		return
	}
	if err := h.engagementSvc.Follow(middleware.Account(c), req.Target); err != nil {
		if errors.Is(err, service.ErrInvalidAddress) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}

// Unfollow 取关
// @Summary 取消关注
// @Tags 关系
// @Param address path string true "目标地址"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/follow/{address} [delete]
func (h *Handler) Unfollow(c *gin.Context) {
	if err := h.engagementSvc.Unfollow(middleware.Account(c), c.Param("address")); err != nil {
		if errors.Is(err, service.ErrInvalidAddress) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}

// ListFollowing 某地址关注的人
// @Summary 关注列表
// @Tags 关系
// @Param address path string true "地址"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/users/{address}/following [get]
func (h *Handler) ListFollowing(c *gin.Context) {
	addr := c.Param("address")
	list := h.engagementSvc.Following(addr)
	response.Success(c, gin.H{"count": len(list), "list": list})
}

// ListFollowers 关注某地址的人（扫描关注边反算）
// @Summary 粉丝列表
// @Tags 关系
// @Param address path string true "地址"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/users/{address}/followers [get]
func (h *Handler) ListFollowers(c *gin.Context) {
	addr := c.Param("address")
	list := h.engagementSvc.Followers(addr)
	response.Success(c, gin.H{"count": len(list), "list": list})
}

// FollowStatus 当前账户是否关注某地址
// @Summary 关注状态
// @Tags 关系
// @Param address path string true "地址"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/follow/{address} [get]
func (h *Handler) FollowStatus(c *gin.Context) {
	response.Success(c, gin.H{
		"following": h.engagementSvc.IsFollowing(middleware.Account(c), c.Param("address")),
	})
}
