package handler

import (
	"github.com/Rostreet/printsystem/internal/cert/entity"
	"github.com/Rostreet/printsystem/internal/cert/service"
	"github.com/gin-gonic/gin"
)

// OrderHandler 订单车接口
type OrderHandler struct {
	svc *service.OrderService
}

func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// GetByVIN 按VIN查询订单
// GET /api/v1/order/:vin
func (h *OrderHandler) GetByVIN(c *gin.Context) {
	order, err := h.svc.GetByVIN(c.Request.Context(), c.Param("vin"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, order)
}

// List 分页查询订单车
// GET /api/v1/order
func (h *OrderHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	items, total, err := h.svc.List(c.Request.Context(),
		c.Query("vin"), c.Query("model_code"), page, pageSize)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, ListResponse{Items: items, Pagination: NewPagination(page, pageSize, total)})
}

// Create 登记订单车
// POST /api/v1/order
func (h *OrderHandler) Create(c *gin.Context) {
	var order entity.OrderVehicle
	if err := c.ShouldBindJSON(&order); err != nil {
		BadRequest(c, "参数格式错误: "+err.Error())
		return
	}
	if err := h.svc.Create(c.Request.Context(), &order); err != nil {
		RespondError(c, err)
		return
	}
	Created(c, order)
}

// Update 更新订单车
// PUT /api/v1/order/:vin
func (h *OrderHandler) Update(c *gin.Context) {
	var order entity.OrderVehicle
	if err := c.ShouldBindJSON(&order); err != nil {
		BadRequest(c, "参数格式错误: "+err.Error())
		return
	}
	order.VIN = c.Param("vin")
	if err := h.svc.Update(c.Request.Context(), &order); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, order)
}

// Delete 删除订单车
// DELETE /api/v1/order/:vin
func (h *OrderHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("vin")); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, nil)
}
