package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Rostreet/printsystem/internal/cert/entity"
	"github.com/redis/go-redis/v9"
)

// CertificateIssuer 合格证取号器。
// 取号有副作用（号段消耗），工作流保证每次进入预览只调用一次。
type CertificateIssuer interface {
	Issue(ctx context.Context, vin, engineNo string, printType entity.Track) (string, error)
}

// IssuerService 基于Redis日流水的取号实现。
// 编号 = 前缀(2) + 日期yymmdd(6) + 当日流水(6)，共14位。
type IssuerService struct {
	rdb    *redis.Client
	prefix string
}

func NewIssuerService(rdb *redis.Client, prefix string) *IssuerService {
	if prefix == "" {
		prefix = "WD"
	}
	return &IssuerService{rdb: rdb, prefix: prefix}
}

// Issue 发出一个新的合格证编号
func (s *IssuerService) Issue(ctx context.Context, vin, engineNo string, printType entity.Track) (string, error) {
	now := time.Now()
	day := now.Format("060102")

	key := fmt.Sprintf("cert:seq:%s", day)
	seq, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		return "", fmt.Errorf("取号失败: %w", err)
	}
	// 流水键跨日后无用，保留48小时即可
	s.rdb.Expire(ctx, key, 48*time.Hour)

	no := fmt.Sprintf("%s%s%06d", s.prefix, day, seq)
	if !entity.ValidCertificateNo(no) {
		return "", fmt.Errorf("生成的合格证编号格式非法: %s", no)
	}
	return no, nil
}
