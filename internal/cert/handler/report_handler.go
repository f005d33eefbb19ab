package handler

import (
	"fmt"
	"time"

	"github.com/Rostreet/printsystem/internal/cert/service"
	"github.com/gin-gonic/gin"
)

// ReportHandler 报表接口
type ReportHandler struct {
	svc *service.ReportService
}

func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// parseTimeRange 解析start/end查询参数，格式2006-01-02
func parseTimeRange(c *gin.Context) (time.Time, time.Time, bool) {
	var start, end time.Time
	if s := c.Query("start"); s != "" {
		t, err := time.ParseInLocation("2006-01-02", s, time.Local)
		if err != nil {
			BadRequest(c, "start日期格式错误，应为YYYY-MM-DD")
			return start, end, false
		}
		start = t
	}
	if e := c.Query("end"); e != "" {
		t, err := time.ParseInLocation("2006-01-02", e, time.Local)
		if err != nil {
			BadRequest(c, "end日期格式错误，应为YYYY-MM-DD")
			return start, end, false
		}
		end = t.Add(24*time.Hour - time.Nanosecond)
	}
	return start, end, true
}

// Search 多条件查询打印记录
// GET /api/v1/report/print
func (h *ReportHandler) Search(c *gin.Context) {
	start, end, ok := parseTimeRange(c)
	if !ok {
		return
	}
	page, pageSize := GetPagination(c)
	records, total, err := h.svc.Search(c.Request.Context(),
		c.Query("vin"), c.Query("engine_no"), c.Query("operate_type"),
		start, end, page, pageSize)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, ListResponse{Items: records, Pagination: NewPagination(page, pageSize, total)})
}

// History 某车打印履历
// GET /api/v1/report/history/:vin
func (h *ReportHandler) History(c *gin.Context) {
	records, err := h.svc.History(c.Request.Context(), c.Param("vin"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"items": records})
}

// Daily 日发证量
// GET /api/v1/report/daily
func (h *ReportHandler) Daily(c *gin.Context) {
	day := time.Now()
	if d := c.Query("date"); d != "" {
		t, err := time.ParseInLocation("2006-01-02", d, time.Local)
		if err != nil {
			BadRequest(c, "date日期格式错误，应为YYYY-MM-DD")
			return
		}
		day = t
	}
	summary, err := h.svc.Daily(c.Request.Context(), day)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, summary)
}

// ByOperator 操作员工作量统计
// GET /api/v1/report/operator/:id
func (h *ReportHandler) ByOperator(c *gin.Context) {
	start, end, ok := parseTimeRange(c)
	if !ok {
		return
	}
	if end.IsZero() {
		end = time.Now()
	}
	summary, err := h.svc.ByOperator(c.Request.Context(), c.Param("id"), start, end)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, summary)
}

// CertificateInfo 按合格证编号查询打印记录
// GET /api/v1/report/certificate/:no
func (h *ReportHandler) CertificateInfo(c *gin.Context) {
	rec, err := h.svc.CertificateInfo(c.Request.Context(), c.Param("no"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, rec)
}

// Export 导出打印记录Excel
// GET /api/v1/report/export
func (h *ReportHandler) Export(c *gin.Context) {
	start, end, ok := parseTimeRange(c)
	if !ok {
		return
	}
	data, err := h.svc.ExportExcel(c.Request.Context(),
		c.Query("vin"), c.Query("engine_no"), c.Query("operate_type"), start, end)
	if err != nil {
		RespondError(c, err)
		return
	}
	filename := fmt.Sprintf("print_records_%s.xlsx", time.Now().Format("20060102150405"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(200, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// OrderChanges 时间段内订单车变动
// GET /api/v1/report/orders
func (h *ReportHandler) OrderChanges(c *gin.Context) {
	start, end, ok := parseTimeRange(c)
	if !ok {
		return
	}
	if end.IsZero() {
		end = time.Now()
	}
	items, err := h.svc.OrderChanges(c.Request.Context(), start, end)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"items": items})
}
