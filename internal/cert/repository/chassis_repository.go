package repository

import (
	"context"
	"errors"

	"github.com/Rostreet/printsystem/internal/cert/entity"
	"gorm.io/gorm"
)

// ChassisRepository 二类底盘配置仓库
type ChassisRepository struct {
	db *gorm.DB
}

func NewChassisRepository(db *gorm.DB) *ChassisRepository {
	return &ChassisRepository{db: db}
}

// FindByID 根据ID查询底盘配置
func (r *ChassisRepository) FindByID(ctx context.Context, id string) (*entity.ChassisConfig, error) {
	var cfg entity.ChassisConfig
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cfg, nil
}

// List 分页查询底盘配置，可按前缀过滤
func (r *ChassisRepository) List(ctx context.Context, vinPrefix, vsnPrefix string, page, pageSize int) ([]entity.ChassisConfig, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.ChassisConfig{})
	if vinPrefix != "" {
		q = q.Where("vin_prefix = ?", vinPrefix)
	}
	if vsnPrefix != "" {
		q = q.Where("vsn_prefix = ?", vsnPrefix)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []entity.ChassisConfig
	err := q.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	return items, total, err
}

// MatchPrefix 判断VIN/VSN前缀是否命中底盘配置
func (r *ChassisRepository) MatchPrefix(ctx context.Context, vinPrefix, vsnPrefix string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.ChassisConfig{}).
		Where("vin_prefix = ? OR vsn_prefix = ?", vinPrefix, vsnPrefix).
		Count(&count).Error
	return count > 0, err
}

// Create 新增底盘配置
func (r *ChassisRepository) Create(ctx context.Context, cfg *entity.ChassisConfig) error {
	return r.db.WithContext(ctx).Create(cfg).Error
}

// Update 更新底盘配置
func (r *ChassisRepository) Update(ctx context.Context, cfg *entity.ChassisConfig) error {
	return r.db.WithContext(ctx).Save(cfg).Error
}

// Delete 删除底盘配置
func (r *ChassisRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.ChassisConfig{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
