package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/pulsechat/internal/api/middleware"
	"github.com/d60-Lab/pulsechat/internal/repository"
	"github.com/d60-Lab/pulsechat/internal/service"
	"github.com/d60-Lab/pulsechat/pkg/response"
)

func pageParams(c *gin.Context) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return page, size
}

// Timeline 关注流（扇出后的 inbox 分页）
// @Summary 个人时间线
// @Tags 时间线
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/feed/timeline [get]
func (h *Handler) Timeline(c *gin.Context) {
	page, size := pageParams(c)
	list, err := h.timelineSvc.Timeline(c.Request.Context(), middleware.Account(c), page, size)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": size, "list": list})
}

// LatestFeed 全站最新帖
// @Summary 最新帖子
// @Tags 时间线
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/feed/latest [get]
func (h *Handler) LatestFeed(c *gin.Context) {
	page, size := pageParams(c)
	list, err := h.timelineSvc.Latest(c.Request.Context(), middleware.Account(c), page, size)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": size, "list": list})
}

// UserPosts 某地址的发帖
// @Summary 用户发帖列表
// @Tags 时间线
// @Param address path string true "地址"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 400 {object} response.Response
// @Router /api/v1/users/{address}/posts [get]
func (h *Handler) UserPosts(c *gin.Context) {
	page, size := pageParams(c)
	list, err := h.timelineSvc.ByAuthor(c.Request.Context(), middleware.Account(c), c.Param("address"), page, size)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAddress) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": size, "list": list})
}

// PostDetail 帖子详情与评论
// @Summary 帖子详情
// @Tags 时间线
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id} [get]
func (h *Handler) PostDetail(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid post id")
		return
	}
	view, comments, err := h.timelineSvc.PostDetail(c.Request.Context(), middleware.Account(c), postID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			response.NotFound(c, "post not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"post": view, "comments": comments})
}
