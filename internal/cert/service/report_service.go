package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rostreet/printsystem/internal/cert/entity"
	"github.com/Rostreet/printsystem/internal/cert/repository"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ReportService 打印审计与报表投影。
// 历史数据只有OperateDesc自由文本，新数据同时带结构化字段。
// 投影沿用旧系统口径，先解析描述文本，解析不到再回落到结构化字段。
type ReportService struct {
	eventRepo *repository.PrintEventRepository
	orderRepo *repository.OrderRepository
	logger    *zap.Logger
}

func NewReportService(repos *repository.Repositories, logger *zap.Logger) *ReportService {
	return &ReportService{eventRepo: repos.PrintEvent, orderRepo: repos.Order, logger: logger}
}

// PrintRecord 报表行
type PrintRecord struct {
	ID            string    `json:"id"`
	VIN           string    `json:"vin"`
	EngineNo      string    `json:"engineNo"`
	CertificateNo string    `json:"certificateNo"`
	TypeName      string    `json:"typeName"`
	OperateUser   string    `json:"operateUser"`
	OperateTime   time.Time `json:"operateTime"`
	OperateDesc   string    `json:"operateDesc"`
}

// project 将审计记录投影为报表行
func project(ev *entity.CertificatePrintEvent) PrintRecord {
	rec := PrintRecord{
		ID:            ev.ID,
		VIN:           ev.VIN,
		EngineNo:      ev.EngineNo,
		CertificateNo: ev.CertificateNo,
		OperateUser:   ev.OperateUser,
		OperateTime:   ev.OperateTime,
		OperateDesc:   ev.OperateDesc,
	}
	rec.TypeName = entity.ParseDescType(ev.OperateDesc)
	if rec.TypeName == "" {
		rec.TypeName = entity.OperateTypeNames[ev.OperateType]
	}
	if rec.CertificateNo == "" {
		rec.CertificateNo = entity.ParseDescCertNo(ev.OperateDesc)
	}
	return rec
}

// Search 多条件查询打印记录
func (s *ReportService) Search(ctx context.Context, vin, engineNo, operateType string, start, end time.Time, page, pageSize int) ([]PrintRecord, int64, error) {
	events, total, err := s.eventRepo.Search(ctx, vin, engineNo, operateType, start, end, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	records := make([]PrintRecord, 0, len(events))
	for i := range events {
		records = append(records, project(&events[i]))
	}
	return records, total, nil
}

// History 某车的打印履历，按时间正序
func (s *ReportService) History(ctx context.Context, vin string) ([]PrintRecord, error) {
	events, err := s.eventRepo.FindByVIN(ctx, vin)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	records := make([]PrintRecord, 0, len(events))
	for i := range events {
		records = append(records, project(&events[i]))
	}
	return records, nil
}

// DailySummary 日报
type DailySummary struct {
	Date             string `json:"date"`
	CertificateCount int64  `json:"certificateCount"`
}

// Daily 某日发证数量（按编号去重）
func (s *ReportService) Daily(ctx context.Context, day time.Time) (*DailySummary, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24*time.Hour - time.Nanosecond)
	count, err := s.eventRepo.CountDistinctCertificates(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return &DailySummary{Date: start.Format("2006-01-02"), CertificateCount: count}, nil
}

// OperatorSummary 操作员工作量
type OperatorSummary struct {
	Operator     string `json:"operator"`
	NormalCount  int64  `json:"normalCount"`
	ReprintCount int64  `json:"reprintCount"` // 重打与补打合并统计
	TotalCount   int64  `json:"totalCount"`
}

// ByOperator 统计某操作员时间段内的打印工作量
func (s *ReportService) ByOperator(ctx context.Context, operator string, start, end time.Time) (*OperatorSummary, error) {
	normal, err := s.eventRepo.CountByOperator(ctx, operator,
		[]string{entity.OperateTypeNormal}, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	reprint, err := s.eventRepo.CountByOperator(ctx, operator,
		[]string{entity.OperateTypeReprint, entity.OperateTypeSupplement}, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return &OperatorSummary{
		Operator:     operator,
		NormalCount:  normal,
		ReprintCount: reprint,
		TotalCount:   normal + reprint,
	}, nil
}

// CertificateInfo 按合格证编号查询打印记录
func (s *ReportService) CertificateInfo(ctx context.Context, certificateNo string) (*PrintRecord, error) {
	ev, err := s.eventRepo.FindByCertificateNo(ctx, certificateNo)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: 合格证 %s 无打印记录", ErrNotFound, certificateNo)
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	rec := project(ev)
	return &rec, nil
}

var reportHeaders = []string{
	"VIN", "发动机号", "合格证编号", "打印类型", "操作员", "操作时间", "操作描述",
}

// ExportExcel 导出打印记录报表
func (s *ReportService) ExportExcel(ctx context.Context, vin, engineNo, operateType string, start, end time.Time) ([]byte, error) {
	records, _, err := s.Search(ctx, vin, engineNo, operateType, start, end, 1, 10000)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "打印记录"
	f.SetSheetName("Sheet1", sheet)

	for i, h := range reportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	for row, rec := range records {
		values := []interface{}{
			rec.VIN, rec.EngineNo, rec.CertificateNo, rec.TypeName,
			rec.OperateUser, rec.OperateTime.Format("2006-01-02 15:04:05"),
			rec.OperateDesc,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("%w: 导出Excel失败: %v", ErrUpstream, err)
	}
	return buf.Bytes(), nil
}

// OrderChanges 时间段内有变动的订单车（订单跟踪报表）
func (s *ReportService) OrderChanges(ctx context.Context, start, end time.Time) ([]entity.OrderVehicle, error) {
	items, err := s.orderRepo.FindModifiedInRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return items, nil
}
