package repository

import (
	"context"
	"errors"

	"github.com/Rostreet/printsystem/internal/cert/entity"
	"gorm.io/gorm"
)

// OperatorRepository 操作员仓库
type OperatorRepository struct {
	db *gorm.DB
}

func NewOperatorRepository(db *gorm.DB) *OperatorRepository {
	return &OperatorRepository{db: db}
}

// FindByID 根据操作员ID查询
func (r *OperatorRepository) FindByID(ctx context.Context, operatorID string) (*entity.Operator, error) {
	var op entity.Operator
	err := r.db.WithContext(ctx).Where("operator_id = ?", operatorID).First(&op).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &op, nil
}

// Create 新增操作员
func (r *OperatorRepository) Create(ctx context.Context, op *entity.Operator) error {
	return r.db.WithContext(ctx).Create(op).Error
}

// Update 更新操作员
func (r *OperatorRepository) Update(ctx context.Context, op *entity.Operator) error {
	return r.db.WithContext(ctx).Save(op).Error
}

// List 操作员列表
func (r *OperatorRepository) List(ctx context.Context) ([]entity.Operator, error) {
	var items []entity.Operator
	err := r.db.WithContext(ctx).Order("operator_id ASC").Find(&items).Error
	return items, err
}
