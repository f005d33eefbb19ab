package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Rostreet/printsystem/internal/cert/entity"
	"github.com/Rostreet/printsystem/internal/cert/repository"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// VehicleService 车辆参数表维护
type VehicleService struct {
	vehicleRepo *repository.VehicleRepository
	logger      *zap.Logger
}

func NewVehicleService(repos *repository.Repositories, logger *zap.Logger) *VehicleService {
	return &VehicleService{vehicleRepo: repos.Vehicle, logger: logger}
}

// GetByVIN 按VIN查询
func (s *VehicleService) GetByVIN(ctx context.Context, vin string) (*entity.VehicleRecord, error) {
	rec, err := s.vehicleRepo.FindByVIN(ctx, vin)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: 车辆 %s 不存在", ErrNotFound, vin)
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return rec, nil
}

// List 分页查询参数表
func (s *VehicleService) List(ctx context.Context, modelCode, vehicleType string, page, pageSize int) ([]entity.VehicleRecord, int64, error) {
	items, total, err := s.vehicleRepo.List(ctx, modelCode, vehicleType, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return items, total, nil
}

// Create 新增参数记录
func (s *VehicleService) Create(ctx context.Context, rec *entity.VehicleRecord) error {
	if rec.VIN == "" {
		return fmt.Errorf("%w: VIN不能为空", ErrInvalidInput)
	}
	if rec.Type == "" {
		rec.Type = entity.TypeUnset
	}
	if err := s.vehicleRepo.Create(ctx, rec); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	s.logger.Info("新增车辆参数", zap.String("vin", rec.VIN))
	return nil
}

// Update 整行更新参数记录
func (s *VehicleService) Update(ctx context.Context, rec *entity.VehicleRecord) error {
	if _, err := s.GetByVIN(ctx, rec.VIN); err != nil {
		return err
	}
	if err := s.vehicleRepo.Update(ctx, rec); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return nil
}

// UpdateType 变更装套类型
func (s *VehicleService) UpdateType(ctx context.Context, vin, newType string) error {
	if _, ok := entity.TypeNames[newType]; !ok {
		return fmt.Errorf("%w: 未知的装套类型 %s", ErrInvalidInput, newType)
	}
	err := s.vehicleRepo.UpdateType(ctx, vin, newType)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: 车辆 %s 不存在", ErrNotFound, vin)
		}
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	s.logger.Info("变更装套类型", zap.String("vin", vin), zap.String("type", newType))
	return nil
}

// Delete 按VIN删除
func (s *VehicleService) Delete(ctx context.Context, vin string) error {
	err := s.vehicleRepo.DeleteByVIN(ctx, vin)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: 车辆 %s 不存在", ErrNotFound, vin)
		}
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return nil
}

// Copy 以已有车型的参数为模板新登记一辆车。
// 复制全部参数项，装套类型重置为未设置。
func (s *VehicleService) Copy(ctx context.Context, sourceModelCode, newVIN, newVSN string) (*entity.VehicleRecord, error) {
	if newVIN == "" {
		return nil, fmt.Errorf("%w: 新VIN不能为空", ErrInvalidInput)
	}
	if _, err := s.vehicleRepo.FindByVIN(ctx, newVIN); err == nil {
		return nil, fmt.Errorf("%w: 车辆 %s 已存在", ErrConflict, newVIN)
	}

	tpl, err := s.vehicleRepo.FindByModelCode(ctx, sourceModelCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: 车型 %s 无参数模板", ErrNotFound, sourceModelCode)
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	rec := *tpl
	rec.VIN = newVIN
	rec.VSNCode = newVSN
	rec.Type = entity.TypeUnset
	rec.CreatedAt = time.Time{}
	rec.UpdatedAt = time.Time{}
	if err := s.vehicleRepo.Create(ctx, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	s.logger.Info("复制车辆参数",
		zap.String("sourceModel", sourceModelCode), zap.String("vin", newVIN))
	return &rec, nil
}

var exportHeaders = []string{
	"VIN", "VSN码", "车型代码", "车辆品牌", "车辆型号", "车辆类型",
	"发动机型号", "车身颜色", "燃料种类", "排放标准", "总质量", "整备质量",
	"额定载客", "最高车速", "制造日期", "装套类型",
}

// ExportExcel 导出参数表为Excel
func (s *VehicleService) ExportExcel(ctx context.Context, modelCode, vehicleType string) ([]byte, error) {
	items, _, err := s.vehicleRepo.List(ctx, modelCode, vehicleType, 1, 10000)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "车辆参数"
	f.SetSheetName("Sheet1", sheet)

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	for row, rec := range items {
		values := []interface{}{
			rec.VIN, rec.VSNCode, rec.ModelCode, rec.VehicleBrand,
			rec.VehicleModel, rec.VehicleType, rec.EngineInfo, rec.VehicleColor,
			rec.FuelType, rec.EmissionStandard, rec.TotalMass, rec.CurbWeight,
			strconv.Itoa(rec.RatedPassengerCapacity), rec.MaxSpeed,
			rec.ManufactureDate, entity.TypeNames[rec.Type],
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

func exportRow(rec *entity.VehicleRecord) []string {
	return []string{
		rec.VIN, rec.VSNCode, rec.ModelCode, rec.VehicleBrand,
		rec.VehicleModel, rec.VehicleType, rec.EngineInfo, rec.VehicleColor,
		rec.FuelType, rec.EmissionStandard,
		strconv.FormatFloat(rec.TotalMass, 'f', -1, 64),
		strconv.FormatFloat(rec.CurbWeight, 'f', -1, 64),
		strconv.Itoa(rec.RatedPassengerCapacity), strconv.Itoa(rec.MaxSpeed),
		rec.ManufactureDate, entity.TypeNames[rec.Type],
	}
}

// ExportCSV 导出参数表为GBK编码的CSV，供中文环境的Excel直接打开
func (s *VehicleService) ExportCSV(ctx context.Context, modelCode, vehicleType string) ([]byte, error) {
	items, _, err := s.vehicleRepo.List(ctx, modelCode, vehicleType, 1, 10000)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	var buf bytes.Buffer
	gbk := transform.NewWriter(&buf, simplifiedchinese.GBK.NewEncoder())
	w := csv.NewWriter(gbk)
	if err := w.Write(exportHeaders); err != nil {
		return nil, fmt.Errorf("%w: 导出CSV失败: %v", ErrUpstream, err)
	}
	for i := range items {
		if err := w.Write(exportRow(&items[i])); err != nil {
			return nil, fmt.Errorf("%w: 导出CSV失败: %v", ErrUpstream, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("%w: 导出CSV失败: %v", ErrUpstream, err)
	}
	if err := gbk.Close(); err != nil {
		return nil, fmt.Errorf("%w: GBK转码失败: %v", ErrUpstream, err)
	}
	return buf.Bytes(), nil
}
