package handler

import (
	"fmt"
	"time"

	"github.com/Rostreet/printsystem/internal/cert/entity"
	"github.com/Rostreet/printsystem/internal/cert/service"
	"github.com/gin-gonic/gin"
)

// VehicleHandler 车辆参数表接口
type VehicleHandler struct {
	svc *service.VehicleService
}

func NewVehicleHandler(svc *service.VehicleService) *VehicleHandler {
	return &VehicleHandler{svc: svc}
}

// GetByVIN 按VIN查询参数
// GET /api/v1/warehousingcar/getbyvin/:vin
func (h *VehicleHandler) GetByVIN(c *gin.Context) {
	rec, err := h.svc.GetByVIN(c.Request.Context(), c.Param("vin"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, rec)
}

// List 分页查询参数表
// GET /api/v1/warehousingcar
func (h *VehicleHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	items, total, err := h.svc.List(c.Request.Context(),
		c.Query("model_code"), c.Query("vehicle_type"), page, pageSize)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, ListResponse{Items: items, Pagination: NewPagination(page, pageSize, total)})
}

// Create 新增参数记录
// POST /api/v1/warehousingcar
func (h *VehicleHandler) Create(c *gin.Context) {
	var rec entity.VehicleRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		BadRequest(c, "参数格式错误: "+err.Error())
		return
	}
	if err := h.svc.Create(c.Request.Context(), &rec); err != nil {
		RespondError(c, err)
		return
	}
	Created(c, rec)
}

// Update 更新参数记录
// PUT /api/v1/warehousingcar/:vin
func (h *VehicleHandler) Update(c *gin.Context) {
	var rec entity.VehicleRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		BadRequest(c, "参数格式错误: "+err.Error())
		return
	}
	rec.VIN = c.Param("vin")
	if err := h.svc.Update(c.Request.Context(), &rec); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, rec)
}

type updateTypeRequest struct {
	Type string `json:"type" binding:"required"`
}

// UpdateType 变更装套类型
// PUT /api/v1/warehousingcar/:vin/type
func (h *VehicleHandler) UpdateType(c *gin.Context) {
	var req updateTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "装套类型不能为空")
		return
	}
	if err := h.svc.UpdateType(c.Request.Context(), c.Param("vin"), req.Type); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, nil)
}

// Delete 删除参数记录
// DELETE /api/v1/warehousingcar/:vin
func (h *VehicleHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("vin")); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, nil)
}

type copyRequest struct {
	SourceModelCode string `json:"sourceModelCode" binding:"required"`
	NewVIN          string `json:"newVin" binding:"required"`
	NewVSN          string `json:"newVsn"`
}

// Copy 以车型模板复制登记新车
// POST /api/v1/warehousingcar/copy
func (h *VehicleHandler) Copy(c *gin.Context) {
	var req copyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数不完整: "+err.Error())
		return
	}
	rec, err := h.svc.Copy(c.Request.Context(), req.SourceModelCode, req.NewVIN, req.NewVSN)
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, rec)
}

// Export 导出参数表Excel
// GET /api/v1/warehousingcar/export
func (h *VehicleHandler) Export(c *gin.Context) {
	data, err := h.svc.ExportExcel(c.Request.Context(),
		c.Query("model_code"), c.Query("vehicle_type"))
	if err != nil {
		RespondError(c, err)
		return
	}
	filename := fmt.Sprintf("vehicle_params_%s.xlsx", time.Now().Format("20060102150405"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(200, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// ExportCSV 导出参数表CSV（GBK编码）
// GET /api/v1/warehousingcar/export/csv
func (h *VehicleHandler) ExportCSV(c *gin.Context) {
	data, err := h.svc.ExportCSV(c.Request.Context(),
		c.Query("model_code"), c.Query("vehicle_type"))
	if err != nil {
		RespondError(c, err)
		return
	}
	filename := fmt.Sprintf("vehicle_params_%s.csv", time.Now().Format("20060102150405"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(200, "text/csv; charset=GBK", data)
}
