package repository

import (
	"errors"

	"gorm.io/gorm"
)

// 错误定义
var (
	ErrNotFound = errors.New("record not found")
)

// Repositories 仓库集合
type Repositories struct {
	Vehicle    *VehicleRepository
	Order      *OrderRepository
	Chassis    *ChassisRepository
	PrintEvent *PrintEventRepository
	Operator   *OperatorRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Vehicle:    NewVehicleRepository(db),
		Order:      NewOrderRepository(db),
		Chassis:    NewChassisRepository(db),
		PrintEvent: NewPrintEventRepository(db),
		Operator:   NewOperatorRepository(db),
	}
}
