package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/pulsechat/internal/service"
	"github.com/d60-Lab/pulsechat/pkg/response"
)

type nonceRequest struct {
	Address string `json:"address" binding:"required"`
}

type loginRequest struct {
	Address   string `json:"address" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// Nonce 下发登录挑战
// @Summary 获取登录 nonce
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body nonceRequest true "钱包地址"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 400 {object} response.Response
// @Router /api/v1/auth/nonce [post]
func (h *Handler) Nonce(c *gin.Context) {
	var req nonceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err))
		return
	}
	nonce, message, err := h.authSvc.Nonce(c.Request.Context(), req.Address)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAddress) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"nonce": nonce, "message": message})
}

// Login 验签换 JWT
// @Summary 钱包签名登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body loginRequest true "地址与签名"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err))
		return
	}
	token, err := h.authSvc.Login(c.Request.Context(), req.Address, req.Signature)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAddress):
			response.BadRequest(c, err.Error())
		case errors.Is(err, service.ErrNonceExpired), errors.Is(err, service.ErrBadSignature):
			response.Unauthorized(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Success(c, gin.H{"token": token})
}
