package handler

import (
	"github.com/Rostreet/printsystem/internal/cert/service"
	"github.com/gin-gonic/gin"
)

// PrintHandler 合格证打印工作流接口
type PrintHandler struct {
	workflow *service.WorkflowService
	auth     *service.AuthService
}

func NewPrintHandler(workflow *service.WorkflowService, auth *service.AuthService) *PrintHandler {
	return &PrintHandler{workflow: workflow, auth: auth}
}

type validateRequest struct {
	VIN string `json:"vin" binding:"required"`
	VSN string `json:"vsn"`
}

// Validate 录入VIN定位车辆，进入校验阶段
// POST /api/v1/print/validate
func (h *PrintHandler) Validate(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "VIN不能为空")
		return
	}
	// 门禁以数据库中的操作员记录为准，不信任令牌里的快照
	op, err := h.auth.GetOperator(c.Request.Context(), GetOperatorID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	sess, err := h.workflow.Locate(c.Request.Context(), op, req.VIN, req.VSN)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, sess)
}

type confirmRequest struct {
	Edits map[string]string `json:"edits"`
}

// Confirm 确认校验数据，取号并进入预览
// POST /api/v1/print/confirm
func (h *PrintHandler) Confirm(c *gin.Context) {
	var req confirmRequest
	_ = c.ShouldBindJSON(&req)
	sess, err := h.workflow.Confirm(c.Request.Context(), GetOperatorID(c), req.Edits)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, sess)
}

// Back 从预览退回校验阶段
// POST /api/v1/print/back
func (h *PrintHandler) Back(c *gin.Context) {
	sess, err := h.workflow.Back(GetOperatorID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, sess)
}

type commitRequest struct {
	Printed *bool `json:"printed" binding:"required"`
}

// Commit 操作员确认打印结果
// POST /api/v1/print/commit
func (h *PrintHandler) Commit(c *gin.Context) {
	var req commitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "缺少打印结果确认")
		return
	}
	sess, err := h.workflow.Commit(c.Request.Context(), GetOperatorID(c), *req.Printed)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, sess)
}

// Reset 放弃当前会话
// POST /api/v1/print/reset
func (h *PrintHandler) Reset(c *gin.Context) {
	h.workflow.Reset(GetOperatorID(c))
	Success(c, nil)
}

// Session 查询当前会话
// GET /api/v1/print/session
func (h *PrintHandler) Session(c *gin.Context) {
	sess, err := h.workflow.Session(GetOperatorID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, sess)
}

// PreviewPDF 下载当前预览的合格证PDF
// GET /api/v1/print/preview/pdf
func (h *PrintHandler) PreviewPDF(c *gin.Context) {
	data, err := h.workflow.RenderPreviewPDF(GetOperatorID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.Header("Content-Disposition", "inline; filename=certificate.pdf")
	c.Data(200, "application/pdf", data)
}
