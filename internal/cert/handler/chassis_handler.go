package handler

import (
	"github.com/Rostreet/printsystem/internal/cert/entity"
	"github.com/Rostreet/printsystem/internal/cert/service"
	"github.com/gin-gonic/gin"
)

// ChassisHandler 二类底盘配置接口
type ChassisHandler struct {
	svc *service.ChassisService
}

func NewChassisHandler(svc *service.ChassisService) *ChassisHandler {
	return &ChassisHandler{svc: svc}
}

// Get 按ID查询底盘配置
// GET /api/v1/chassis/:id
func (h *ChassisHandler) Get(c *gin.Context) {
	cfg, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, cfg)
}

// List 分页查询底盘配置
// GET /api/v1/chassis
func (h *ChassisHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	items, total, err := h.svc.List(c.Request.Context(),
		c.Query("vin_prefix"), c.Query("vsn_prefix"), page, pageSize)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, ListResponse{Items: items, Pagination: NewPagination(page, pageSize, total)})
}

// Create 新增底盘配置
// POST /api/v1/chassis
func (h *ChassisHandler) Create(c *gin.Context) {
	var cfg entity.ChassisConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		BadRequest(c, "参数格式错误: "+err.Error())
		return
	}
	if err := h.svc.Create(c.Request.Context(), &cfg); err != nil {
		RespondError(c, err)
		return
	}
	Created(c, cfg)
}

// Update 更新底盘配置
// PUT /api/v1/chassis/:id
func (h *ChassisHandler) Update(c *gin.Context) {
	var cfg entity.ChassisConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		BadRequest(c, "参数格式错误: "+err.Error())
		return
	}
	cfg.ID = c.Param("id")
	if err := h.svc.Update(c.Request.Context(), &cfg); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, cfg)
}

// Delete 删除底盘配置
// DELETE /api/v1/chassis/:id
func (h *ChassisHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, nil)
}
