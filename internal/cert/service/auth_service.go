package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rostreet/printsystem/internal/cert/entity"
	"github.com/Rostreet/printsystem/internal/cert/repository"
	"github.com/Rostreet/printsystem/internal/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService 操作员认证
type AuthService struct {
	operatorRepo  *repository.OperatorRepository
	rdb           *redis.Client
	logger        *zap.Logger
	secret        string
	issuer        string
	accessExpire  time.Duration
	refreshExpire time.Duration
}

func NewAuthService(repos *repository.Repositories, rdb *redis.Client, logger *zap.Logger,
	secret, issuer string, accessExpire, refreshExpire time.Duration) *AuthService {
	return &AuthService{
		operatorRepo:  repos.Operator,
		rdb:           rdb,
		logger:        logger,
		secret:        secret,
		issuer:        issuer,
		accessExpire:  accessExpire,
		refreshExpire: refreshExpire,
	}
}

// TokenPair 登录返回的令牌对
type TokenPair struct {
	AccessToken  string           `json:"accessToken"`
	RefreshToken string           `json:"refreshToken"`
	ExpiresIn    int64            `json:"expiresIn"`
	Operator     *entity.Operator `json:"operator"`
}

// Login 操作员登录
func (s *AuthService) Login(ctx context.Context, operatorID, password string) (*TokenPair, error) {
	op, err := s.operatorRepo.FindByID(ctx, operatorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: 账号或密码错误", ErrUnauthorized)
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if op.Status != entity.OperatorStatusEnabled {
		return nil, fmt.Errorf("%w: 账号已停用", ErrUnauthorized)
	}
	if bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)) != nil {
		return nil, fmt.Errorf("%w: 账号或密码错误", ErrUnauthorized)
	}

	access, err := s.signToken(op, s.accessExpire)
	if err != nil {
		return nil, fmt.Errorf("%w: 签发令牌失败: %v", ErrUpstream, err)
	}

	refresh := uuid.NewString()
	if s.rdb != nil {
		key := fmt.Sprintf("auth:refresh:%s", refresh)
		if err := s.rdb.Set(ctx, key, op.OperatorID, s.refreshExpire).Err(); err != nil {
			return nil, fmt.Errorf("%w: 刷新令牌保存失败: %v", ErrUpstream, err)
		}
	}

	s.logger.Info("操作员登录", zap.String("operator", op.OperatorID), zap.String("role", op.Role))
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.accessExpire.Seconds()),
		Operator:     op,
	}, nil
}

// Refresh 用刷新令牌换取新的访问令牌
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if s.rdb == nil {
		return nil, fmt.Errorf("%w: 刷新令牌不可用", ErrUnauthorized)
	}
	key := fmt.Sprintf("auth:refresh:%s", refreshToken)
	operatorID, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: 刷新令牌无效或已过期", ErrUnauthorized)
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	op, err := s.operatorRepo.FindByID(ctx, operatorID)
	if err != nil {
		return nil, fmt.Errorf("%w: 账号不存在", ErrUnauthorized)
	}
	if op.Status != entity.OperatorStatusEnabled {
		return nil, fmt.Errorf("%w: 账号已停用", ErrUnauthorized)
	}

	access, err := s.signToken(op, s.accessExpire)
	if err != nil {
		return nil, fmt.Errorf("%w: 签发令牌失败: %v", ErrUpstream, err)
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.accessExpire.Seconds()),
		Operator:     op,
	}, nil
}

// Logout 作废刷新令牌
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if s.rdb == nil || refreshToken == "" {
		return nil
	}
	return s.rdb.Del(ctx, fmt.Sprintf("auth:refresh:%s", refreshToken)).Err()
}

// GetOperator 按ID查询操作员
func (s *AuthService) GetOperator(ctx context.Context, operatorID string) (*entity.Operator, error) {
	op, err := s.operatorRepo.FindByID(ctx, operatorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: 操作员 %s 不存在", ErrNotFound, operatorID)
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return op, nil
}

// CreateOperator 创建操作员账号（管理员用）
func (s *AuthService) CreateOperator(ctx context.Context, op *entity.Operator, password string) error {
	if op.OperatorID == "" || password == "" {
		return fmt.Errorf("%w: 工号与密码不能为空", ErrInvalidInput)
	}
	if _, ok := entity.RoleNames[op.Role]; !ok {
		return fmt.Errorf("%w: 未知角色 %s", ErrInvalidInput, op.Role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	op.PasswordHash = string(hash)
	if op.Status == "" {
		op.Status = entity.OperatorStatusEnabled
	}
	if err := s.operatorRepo.Create(ctx, op); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	s.logger.Info("创建操作员", zap.String("operator", op.OperatorID), zap.String("role", op.Role))
	return nil
}

// ChangePassword 修改当前操作员密码，需验证旧密码
func (s *AuthService) ChangePassword(ctx context.Context, operatorID, oldPassword, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: 新密码不能为空", ErrInvalidInput)
	}
	op, err := s.operatorRepo.FindByID(ctx, operatorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: 操作员 %s 不存在", ErrNotFound, operatorID)
		}
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(oldPassword)) != nil {
		return fmt.Errorf("%w: 原密码错误", ErrUnauthorized)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	op.PasswordHash = string(hash)
	if err := s.operatorRepo.Update(ctx, op); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	s.logger.Info("操作员修改密码", zap.String("operator", operatorID))
	return nil
}

func (s *AuthService) signToken(op *entity.Operator, expire time.Duration) (string, error) {
	now := time.Now()
	claims := middleware.JWTClaims{
		OperatorID: op.OperatorID,
		Username:   op.Username,
		Department: op.Department,
		Role:       op.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   op.OperatorID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expire)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}
