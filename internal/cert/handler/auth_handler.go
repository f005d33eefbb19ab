package handler

import (
	"github.com/Rostreet/printsystem/internal/cert/entity"
	"github.com/Rostreet/printsystem/internal/cert/service"
	"github.com/gin-gonic/gin"
)

// AuthHandler 认证接口
type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type loginRequest struct {
	OperatorID string `json:"operatorId" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// Login 操作员登录
// POST /api/v1/user/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "工号与密码不能为空")
		return
	}
	pair, err := h.svc.Login(c.Request.Context(), req.OperatorID, req.Password)
	if err != nil {
		// 登录失败统一返回401，不区分账号与密码错误
		Unauthorized(c, err.Error())
		return
	}
	Success(c, pair)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// Refresh 刷新访问令牌
// POST /api/v1/user/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "缺少刷新令牌")
		return
	}
	pair, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		Unauthorized(c, err.Error())
		return
	}
	Success(c, pair)
}

// Logout 登出
// POST /api/v1/user/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	_ = c.ShouldBindJSON(&req)
	if err := h.svc.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, nil)
}

// Profile 当前登录操作员信息
// GET /api/v1/user/profile
func (h *AuthHandler) Profile(c *gin.Context) {
	op, err := h.svc.GetOperator(c.Request.Context(), GetOperatorID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, op)
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// ChangePassword 修改当前操作员密码
// PUT /api/v1/user/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "新旧密码不能为空")
		return
	}
	if err := h.svc.ChangePassword(c.Request.Context(), GetOperatorID(c),
		req.OldPassword, req.NewPassword); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, nil)
}

type createOperatorRequest struct {
	OperatorID string `json:"operatorId" binding:"required"`
	Username   string `json:"username" binding:"required"`
	Password   string `json:"password" binding:"required"`
	Department string `json:"department"`
	Role       string `json:"role" binding:"required"`
}

// CreateOperator 创建操作员账号（仅管理员）
// POST /api/v1/user
func (h *AuthHandler) CreateOperator(c *gin.Context) {
	var req createOperatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数不完整: "+err.Error())
		return
	}
	op := &entity.Operator{
		OperatorID: req.OperatorID,
		Username:   req.Username,
		Department: req.Department,
		Role:       req.Role,
	}
	if err := h.svc.CreateOperator(c.Request.Context(), op, req.Password); err != nil {
		RespondError(c, err)
		return
	}
	Created(c, op)
}
