package service

import (
	"context"
	"strings"
	"time"

	"github.com/reseller-hub/internal/cache"
	"github.com/reseller-hub/internal/config"
	"github.com/reseller-hub/internal/logger"
	"github.com/reseller-hub/internal/models"
	"github.com/reseller-hub/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService 后台账号认证服务
type AuthService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
	cache    *cache.Store
	now      func() time.Time
}

// NewAuthService 创建认证服务实例
func NewAuthService(cfg *config.Config, userRepo repository.UserRepository, store *cache.Store) *AuthService {
	return &AuthService{
		cfg:      cfg,
		userRepo: userRepo,
		cache:    store,
		now:      time.Now,
	}
}

// HashPassword 使用 bcrypt 加密密码
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword 验证密码
func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// JWTClaims JWT 声明
type JWTClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateJWT 生成 JWT Token
func (s *AuthService) GenerateJWT(user *models.User) (string, time.Time, error) {
	now := s.now()
	hours := s.cfg.JWT.ExpireHours
	if hours <= 0 {
		hours = 24
	}
	expiresAt := now.Add(time.Duration(hours) * time.Hour)

	claims := JWTClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseJWT 解析 JWT Token
func (s *AuthService) ParseJWT(tokenString string) (*JWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid && claims.UserID != 0 {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// Login 邮箱密码登录
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, time.Time, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, "", time.Time{}, storeError("load account", err)
	}
	if user == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if user.Status != models.UserStatusActive {
		return nil, "", time.Time{}, ErrAccountDisabled
	}

	token, expiresAt, err := s.GenerateJWT(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := s.now()
	if err := s.userRepo.TouchLastLogin(user.ID, now); err != nil {
		logger.FromContext(ctx).Warnw("auth_touch_last_login_failed", "user_id", user.ID, "error", err)
	} else {
		user.LastLoginAt = &now
	}
	if err := s.cache.SetAccountState(ctx, cache.BuildAccountState(user)); err != nil {
		logger.FromContext(ctx).Warnw("auth_cache_account_state_failed", "user_id", user.ID, "error", err)
	}

	logger.FromContext(ctx).Infow("auth_login_success", "user_id", user.ID, "role", user.Role)
	return user, token, expiresAt, nil
}

// ResolveAccountState 获取账号鉴权快照，缓存未命中时回源数据库
func (s *AuthService) ResolveAccountState(ctx context.Context, userID uint) (*cache.AccountState, error) {
	if state, hit, err := s.cache.GetAccountState(ctx, userID); err == nil && hit {
		return state, nil
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, storeError("load account", err)
	}
	if user == nil {
		return nil, ErrInvalidToken
	}
	state := cache.BuildAccountState(user)
	if err := s.cache.SetAccountState(ctx, state); err != nil {
		logger.FromContext(ctx).Warnw("auth_cache_account_state_failed", "user_id", user.ID, "error", err)
	}
	return state, nil
}

// GetCurrentUser 当前登录账号
func (s *AuthService) GetCurrentUser(userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, storeError("load account", err)
	}
	if user == nil {
		return nil, ErrInvalidToken
	}
	return user, nil
}
