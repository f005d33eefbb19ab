package handler

import (
	"errors"
	"strconv"

	"github.com/Rostreet/printsystem/internal/cert/service"
	"github.com/gin-gonic/gin"
)

// Handlers 处理器集合
type Handlers struct {
	Auth    *AuthHandler
	Vehicle *VehicleHandler
	Order   *OrderHandler
	Chassis *ChassisHandler
	Print   *PrintHandler
	Report  *ReportHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Auth:    NewAuthHandler(svc.Auth),
		Vehicle: NewVehicleHandler(svc.Vehicle),
		Order:   NewOrderHandler(svc.Order),
		Chassis: NewChassisHandler(svc.Chassis),
		Print:   NewPrintHandler(svc.Workflow, svc.Auth),
		Report:  NewReportHandler(svc.Report),
	}
}

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse 列表响应结构
type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

// Pagination 分页信息
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPagination 计算分页信息
func NewPagination(page, pageSize int, total int64) *Pagination {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return &Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      int(total),
		TotalPages: totalPages,
	}
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest 参数错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// Unauthorized 未授权响应
func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

// Forbidden 禁止访问响应
func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

// NotFound 资源不存在响应
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// InternalError 服务器错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// RespondError 将服务层错误映射为响应码
func RespondError(c *gin.Context, err error) {
	msg := err.Error()
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		Error(c, 40000, msg)
	case errors.Is(err, service.ErrUnauthorized):
		Error(c, 40300, msg)
	case errors.Is(err, service.ErrNotFound):
		Error(c, 40400, msg)
	case errors.Is(err, service.ErrBlocked):
		Error(c, 40901, msg)
	case errors.Is(err, service.ErrConflict):
		Error(c, 40902, msg)
	case errors.Is(err, service.ErrInvalidStage):
		Error(c, 40903, msg)
	case errors.Is(err, service.ErrMismatch):
		Error(c, 42200, msg)
	case errors.Is(err, service.ErrUpstream):
		Error(c, 50200, msg)
	default:
		InternalError(c, msg)
	}
}

// GetOperatorID 从上下文获取操作员ID
func GetOperatorID(c *gin.Context) string {
	operatorID, _ := c.Get("operator_id")
	if id, ok := operatorID.(string); ok {
		return id
	}
	return ""
}

// GetPagination 从请求获取分页参数
func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}
