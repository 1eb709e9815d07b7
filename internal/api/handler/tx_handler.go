package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/pulsechat/internal/api/middleware"
	"github.com/d60-Lab/pulsechat/internal/chain"
	"github.com/d60-Lab/pulsechat/internal/service"
	"github.com/d60-Lab/pulsechat/pkg/response"
)

// 写路径统一形态：服务端只产出待签名 calldata，由钱包签名广播

type createPostRequest struct {
	Content  string `json:"content"`
	MediaURL string `json:"mediaUrl"`
}

type commentRequest struct {
	PostID  uint64 `json:"postId" binding:"required"`
	Content string `json:"content" binding:"required"`
}

type quoteRequest struct {
	PostID  uint64 `json:"postId" binding:"required"`
	Content string `json:"content"`
}

type tipRequest struct {
	To     string `json:"to" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

type messageRequest struct {
	To      string `json:"to" binding:"required"`
	Content string `json:"content" binding:"required"`
}

type profileRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio"`
	Avatar      string `json:"avatar"`
}

type approveRequest struct {
	Amount string `json:"amount" binding:"required"`
}

type confirmRequest struct {
	TxHash string `json:"txHash" binding:"required"`
}

func (h *Handler) writeTxResponse(c *gin.Context, tx chain.TxRequest, err error) {
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyContent),
			errors.Is(err, service.ErrInvalidAddress),
			errors.Is(err, service.ErrInsufficientBalance),
			errors.Is(err, service.ErrInsufficientAllowance):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Success(c, gin.H{"tx": tx})
}

// PrepareCreatePost 组装发帖交易
// @Summary 发帖（返回待签名交易）
// @Tags 链上写
// @Accept json
// @Produce json
// @Param request body createPostRequest true "内容与可选媒体链接"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 400 {object} response.Response
// @Router /api/v1/tx/post [post]
func (h *Handler) PrepareCreatePost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err))
		return
	}
	tx, err := h.postSvc.CreatePost(c.Request.Context(), middleware.Account(c), req.Content, req.MediaURL)
	h.writeTxResponse(c, tx, err)
}

// PrepareComment 组装评论交易
// @Summary 评论（返回待签名交易）
// @Tags 链上写
// @Accept json
// @Produce json
// @Param request body commentRequest true "帖子与内容"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 400 {object} response.Response
// @Router /api/v1/tx/comment [post]
func (h *Handler) PrepareComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err))
		return
	}
	tx, err := h.postSvc.Comment(c.Request.Context(), middleware.Account(c), req.PostID, req.Content)
	h.writeTxResponse(c, tx, err)
}

// PrepareQuote 组装链上引用转发交易
// @Summary 引用转发（返回待签名交易）
// @Tags 链上写
// @Accept json
// @Produce json
// @Param request body quoteRequest true "被引用帖子与附言"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 400 {object} response.Response
// @Router /api/v1/tx/quote [post]
func (h *Handler) PrepareQuote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err))
		return
	}
	tx, err := h.postSvc.Quote(c.Request.Context(), middleware.Account(c), req.PostID, req.Content)
	h.writeTxResponse(c, tx, err)
}

// PrepareLike 组装链上点赞交易
// @Summary 链上点赞（返回待签名交易）
// @Tags 链上写
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 400 {object} response.Response
// @Router /api/v1/tx/like/{id} [post]
func (h *Handler) PrepareLike(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid post id")
		return
	}
	tx, err := h.postSvc.LikeOnChain(c.Request.Context(), middleware.Account(c), postID)
	h.writeTxResponse(c, tx, err)
}

// PrepareTip 组装打赏交易
// @Summary 打赏（返回待签名交易）
// @Tags 链上写
// @Accept json
// @Produce json
// @Param request body tipRequest true "收款地址与金额（十进制）"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 400 {object} response.Response
// @Router /api/v1/tx/tip [post]
func (h *Handler) PrepareTip(c *gin.Context) {
	var req tipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err))
		return
	}
	tx, err := h.postSvc.Tip(c.Request.Context(), middleware.Account(c), req.To, req.Amount)
	h.writeTxResponse(c, tx, err)
}

// PrepareMessage 组装私信交易
// @Summary 私信（返回待签名交易）
// @Tags 链上写
// @Accept json
// @Produce json
// @Param request body messageRequest true "收件人与内容"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 400 {object} response.Response
// @Router /api/v1/tx/message [post]
func (h *Handler) PrepareMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err))
		return
	}
	tx, err := h.postSvc.SendMessage(c.Request.Context(), middleware.Account(c), req.To, req.Content)
	h.writeTxResponse(c, tx, err)
}

// PrepareSetProfile 组装资料更新交易
// @Summary 更新资料（返回待签名交易）
// @Tags 链上写
// @Accept json
// @Produce json
// @Param request body profileRequest true "资料字段"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 400 {object} response.Response
// @Router /api/v1/tx/profile [post]
func (h *Handler) PrepareSetProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err))
		return
	}
	account := middleware.Account(c)
	tx, err := h.postSvc.SetProfile(c.Request.Context(), account, req.Username, req.DisplayName, req.Bio, req.Avatar)
	if err == nil {
		// 乐观失效：确认后首次读直接回源拿新资料
		h.profileSvc.Invalidate(c.Request.Context(), account)
	}
	h.writeTxResponse(c, tx, err)
}

// PrepareApprove 组装代币授权交易
// @Summary 授权手续费代币（返回待签名交易）
// @Tags 链上写
// @Accept json
// @Produce json
// @Param request body approveRequest true "授权金额（十进制）"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 400 {object} response.Response
// @Router /api/v1/tx/approve [post]
func (h *Handler) PrepareApprove(c *gin.Context) {
	var req approveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err))
		return
	}
	tx, err := h.postSvc.Approve(c.Request.Context(), req.Amount)
	h.writeTxResponse(c, tx, err)
}

// ConfirmTx 登记已广播交易，触发确认后的延迟刷新
// @Summary 登记交易哈希
// @Tags 链上写
// @Accept json
// @Produce json
// @Param request body confirmRequest true "交易哈希"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/tx/confirm [post]
func (h *Handler) ConfirmTx(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err))
		return
	}
	h.postSvc.Confirm(req.TxHash)
	response.Success(c, nil)
}
