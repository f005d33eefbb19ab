package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rostreet/printsystem/internal/cert/entity"
	"github.com/Rostreet/printsystem/internal/cert/repository"
	"go.uber.org/zap"
)

// OrderService 订单车维护
type OrderService struct {
	orderRepo   *repository.OrderRepository
	vehicleRepo *repository.VehicleRepository
	logger      *zap.Logger
}

func NewOrderService(repos *repository.Repositories, logger *zap.Logger) *OrderService {
	return &OrderService{orderRepo: repos.Order, vehicleRepo: repos.Vehicle, logger: logger}
}

// GetByVIN 按VIN查询订单
func (s *OrderService) GetByVIN(ctx context.Context, vin string) (*entity.OrderVehicle, error) {
	order, err := s.orderRepo.FindByVIN(ctx, vin)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: 订单车 %s 不存在", ErrNotFound, vin)
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return order, nil
}

// List 分页查询订单车
func (s *OrderService) List(ctx context.Context, vin, modelCode string, page, pageSize int) ([]entity.OrderVehicle, int64, error) {
	items, total, err := s.orderRepo.List(ctx, vin, modelCode, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return items, total, nil
}

// Create 登记订单车。车辆必须已有参数记录，登记后装套类型置为订单车。
func (s *OrderService) Create(ctx context.Context, order *entity.OrderVehicle) error {
	if order.VIN == "" || order.OrderNo == "" {
		return fmt.Errorf("%w: VIN与订单号不能为空", ErrInvalidInput)
	}
	if _, err := s.vehicleRepo.FindByVIN(ctx, order.VIN); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: 车辆 %s 尚未登记参数", ErrNotFound, order.VIN)
		}
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if order.Status == "" {
		order.Status = entity.OrderStatusPending
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if err := s.vehicleRepo.UpdateType(ctx, order.VIN, entity.TypeOrder); err != nil {
		return fmt.Errorf("%w: 订单已登记但装套类型更新失败: %v", ErrUpstream, err)
	}
	s.logger.Info("登记订单车",
		zap.String("vin", order.VIN), zap.String("orderNo", order.OrderNo))
	return nil
}

// Update 更新订单车
func (s *OrderService) Update(ctx context.Context, order *entity.OrderVehicle) error {
	if _, err := s.GetByVIN(ctx, order.VIN); err != nil {
		return err
	}
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return nil
}

// Delete 删除订单车，车辆装套类型退回未设置
func (s *OrderService) Delete(ctx context.Context, vin string) error {
	err := s.orderRepo.DeleteByVIN(ctx, vin)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: 订单车 %s 不存在", ErrNotFound, vin)
		}
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	// 车辆参数可能已先行删除，忽略未命中
	if err := s.vehicleRepo.UpdateType(ctx, vin, entity.TypeUnset); err != nil &&
		!errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return nil
}
