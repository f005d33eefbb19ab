package repository

import (
	"context"
	"errors"

	"github.com/Rostreet/printsystem/internal/cert/entity"
	"gorm.io/gorm"
)

// VehicleRepository 车辆参数表仓库
type VehicleRepository struct {
	db *gorm.DB
}

func NewVehicleRepository(db *gorm.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

// FindByVIN 根据VIN查询车辆参数
func (r *VehicleRepository) FindByVIN(ctx context.Context, vin string) (*entity.VehicleRecord, error) {
	var rec entity.VehicleRecord
	err := r.db.WithContext(ctx).Where("vin = ?", vin).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// FindByModelCode 根据车型代码查询一条参数模板
func (r *VehicleRepository) FindByModelCode(ctx context.Context, modelCode string) (*entity.VehicleRecord, error) {
	var rec entity.VehicleRecord
	err := r.db.WithContext(ctx).Where("model_code = ?", modelCode).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// List 分页查询参数表，支持按车型代码与车辆类型过滤
func (r *VehicleRepository) List(ctx context.Context, modelCode, vehicleType string, page, pageSize int) ([]entity.VehicleRecord, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.VehicleRecord{})
	if modelCode != "" {
		q = q.Where("model_code LIKE ?", modelCode+"%")
	}
	if vehicleType != "" {
		q = q.Where("vehicle_type = ?", vehicleType)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []entity.VehicleRecord
	err := q.Order("updated_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	return items, total, err
}

// Create 新增车辆参数
func (r *VehicleRepository) Create(ctx context.Context, rec *entity.VehicleRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

// Update 按VIN整行更新
func (r *VehicleRepository) Update(ctx context.Context, rec *entity.VehicleRecord) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

// UpdateType 仅更新装套类型（状态变更流程）
func (r *VehicleRepository) UpdateType(ctx context.Context, vin, newType string) error {
	res := r.db.WithContext(ctx).
		Model(&entity.VehicleRecord{}).
		Where("vin = ?", vin).
		Update("type", newType)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByVIN 按VIN删除
func (r *VehicleRepository) DeleteByVIN(ctx context.Context, vin string) error {
	res := r.db.WithContext(ctx).Where("vin = ?", vin).Delete(&entity.VehicleRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
