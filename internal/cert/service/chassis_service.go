package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rostreet/printsystem/internal/cert/entity"
	"github.com/Rostreet/printsystem/internal/cert/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChassisService 二类底盘配置维护
type ChassisService struct {
	chassisRepo *repository.ChassisRepository
	logger      *zap.Logger
}

func NewChassisService(repos *repository.Repositories, logger *zap.Logger) *ChassisService {
	return &ChassisService{chassisRepo: repos.Chassis, logger: logger}
}

// Get 按ID查询底盘配置
func (s *ChassisService) Get(ctx context.Context, id string) (*entity.ChassisConfig, error) {
	cfg, err := s.chassisRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: 底盘配置 %s 不存在", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return cfg, nil
}

// List 分页查询底盘配置
func (s *ChassisService) List(ctx context.Context, vinPrefix, vsnPrefix string, page, pageSize int) ([]entity.ChassisConfig, int64, error) {
	items, total, err := s.chassisRepo.List(ctx, vinPrefix, vsnPrefix, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return items, total, nil
}

// Create 新增底盘配置，前缀长度固定
func (s *ChassisService) Create(ctx context.Context, cfg *entity.ChassisConfig) error {
	if len(cfg.VINPrefix) != 8 {
		return fmt.Errorf("%w: VIN前缀必须为8位", ErrInvalidInput)
	}
	if len(cfg.VSNPrefix) != 2 {
		return fmt.Errorf("%w: VSN前缀必须为2位", ErrInvalidInput)
	}
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()[:32]
	}
	if err := s.chassisRepo.Create(ctx, cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	s.logger.Info("新增底盘配置",
		zap.String("vinPrefix", cfg.VINPrefix), zap.String("vsnPrefix", cfg.VSNPrefix))
	return nil
}

// Update 更新底盘配置
func (s *ChassisService) Update(ctx context.Context, cfg *entity.ChassisConfig) error {
	if _, err := s.Get(ctx, cfg.ID); err != nil {
		return err
	}
	if len(cfg.VINPrefix) != 8 || len(cfg.VSNPrefix) != 2 {
		return fmt.Errorf("%w: 前缀长度非法", ErrInvalidInput)
	}
	if err := s.chassisRepo.Update(ctx, cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return nil
}

// Delete 删除底盘配置
func (s *ChassisService) Delete(ctx context.Context, id string) error {
	err := s.chassisRepo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: 底盘配置 %s 不存在", ErrNotFound, id)
		}
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return nil
}
