package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Rostreet/printsystem/internal/cert/entity"
	"gorm.io/gorm"
)

// PrintEventRepository 打印审计记录仓库（只追加）
type PrintEventRepository struct {
	db *gorm.DB
}

func NewPrintEventRepository(db *gorm.DB) *PrintEventRepository {
	return &PrintEventRepository{db: db}
}

// Create 追加一条打印记录
func (r *PrintEventRepository) Create(ctx context.Context, ev *entity.CertificatePrintEvent) error {
	return r.db.WithContext(ctx).Create(ev).Error
}

// FindByVIN 查询某车的打印历史，按时间正序
func (r *PrintEventRepository) FindByVIN(ctx context.Context, vin string) ([]entity.CertificatePrintEvent, error) {
	var items []entity.CertificatePrintEvent
	err := r.db.WithContext(ctx).
		Where("vin = ?", vin).
		Order("operate_time ASC").
		Find(&items).Error
	return items, err
}

// FindByCertificateNo 根据合格证编号查询单条记录
func (r *PrintEventRepository) FindByCertificateNo(ctx context.Context, certificateNo string) (*entity.CertificatePrintEvent, error) {
	var ev entity.CertificatePrintEvent
	err := r.db.WithContext(ctx).Where("certificate_no = ?", certificateNo).First(&ev).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ev, nil
}

// Search 多条件分页查询打印记录（报表用）
func (r *PrintEventRepository) Search(ctx context.Context, vin, engineNo, operateType string, start, end time.Time, page, pageSize int) ([]entity.CertificatePrintEvent, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.CertificatePrintEvent{})
	if vin != "" {
		q = q.Where("vin = ?", vin)
	}
	if engineNo != "" {
		q = q.Where("engine_no = ?", engineNo)
	}
	if operateType != "" {
		q = q.Where("operate_type = ?", operateType)
	}
	if !start.IsZero() {
		q = q.Where("operate_time >= ?", start)
	}
	if !end.IsZero() {
		q = q.Where("operate_time <= ?", end)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []entity.CertificatePrintEvent
	err := q.Order("operate_time DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	return items, total, err
}

// CountDistinctCertificates 统计时间段内发出的合格证数量（去重）
func (r *PrintEventRepository) CountDistinctCertificates(ctx context.Context, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.CertificatePrintEvent{}).
		Where("operate_time BETWEEN ? AND ?", start, end).
		Distinct("certificate_no").
		Count(&count).Error
	return count, err
}

// CountByOperator 统计某操作员在时间段内指定操作类型的打印数量
func (r *PrintEventRepository) CountByOperator(ctx context.Context, operator string, operateTypes []string, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.CertificatePrintEvent{}).
		Where("operate_user = ?", operator).
		Where("operate_type IN ?", operateTypes).
		Where("operate_time BETWEEN ? AND ?", start, end).
		Count(&count).Error
	return count, err
}
