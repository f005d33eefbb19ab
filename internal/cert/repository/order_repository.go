package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Rostreet/printsystem/internal/cert/entity"
	"gorm.io/gorm"
)

// OrderRepository 订单车仓库
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// FindByVIN 根据VIN查询订单车
func (r *OrderRepository) FindByVIN(ctx context.Context, vin string) (*entity.OrderVehicle, error) {
	var order entity.OrderVehicle
	err := r.db.WithContext(ctx).Where("vin = ?", vin).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// List 分页查询订单车
func (r *OrderRepository) List(ctx context.Context, vin, modelCode string, page, pageSize int) ([]entity.OrderVehicle, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.OrderVehicle{})
	if vin != "" {
		q = q.Where("vin = ?", vin)
	}
	if modelCode != "" {
		q = q.Where("model_code = ?", modelCode)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []entity.OrderVehicle
	err := q.Order("updated_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	return items, total, err
}

// Create 新增订单车
func (r *OrderRepository) Create(ctx context.Context, order *entity.OrderVehicle) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// Update 更新订单车
func (r *OrderRepository) Update(ctx context.Context, order *entity.OrderVehicle) error {
	return r.db.WithContext(ctx).Save(order).Error
}

// DeleteByVIN 按VIN删除订单车
func (r *OrderRepository) DeleteByVIN(ctx context.Context, vin string) error {
	res := r.db.WithContext(ctx).Where("vin = ?", vin).Delete(&entity.OrderVehicle{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindModifiedInRange 查询时间段内有修改的订单车（报表用）
func (r *OrderRepository) FindModifiedInRange(ctx context.Context, start, end time.Time) ([]entity.OrderVehicle, error) {
	var items []entity.OrderVehicle
	err := r.db.WithContext(ctx).
		Where("updated_at BETWEEN ? AND ?", start, end).
		Order("updated_at DESC").
		Find(&items).Error
	return items, err
}
