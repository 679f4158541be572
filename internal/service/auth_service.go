package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/SecureSpaceProject/secure-space-backend/internal/config"
	"github.com/SecureSpaceProject/secure-space-backend/internal/domain"
	"github.com/SecureSpaceProject/secure-space-backend/internal/errs"
	"github.com/SecureSpaceProject/secure-space-backend/internal/repository"
)

// 用户口令哈希成本；传感器设备密钥用较低的成本（见 sensor_service）
const passwordBcryptCost = 12

// AuthService 注册 / 登录 / 访问令牌的签发与校验
type AuthService interface {
	Register(ctx context.Context, email, password string) (*UserDTO, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	// Identify 解析访问令牌并加载当前用户；BLOCKED 用户在这里统一拒绝
	Identify(ctx context.Context, token string) (*domain.User, error)
}

// LoginResult 登录结果：访问令牌与用户信息
type LoginResult struct {
	AccessToken string   `json:"accessToken"`
	User        *UserDTO `json:"user"`
}

type authService struct {
	users  repository.UsersRepository
	jwtCfg config.JWTConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewAuthService 创建认证服务
func NewAuthService(users repository.UsersRepository, jwtCfg config.JWTConfig, logger *zap.Logger) AuthService {
	return &authService{
		users:  users,
		jwtCfg: jwtCfg,
		logger: logger,
		now:    time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1
}

func (s *authService) Register(ctx context.Context, email, password string) (*UserDTO, error) {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return nil, errs.New(errs.CodeValidationFailed)
	}
	if len(password) < 8 {
		return nil, errs.New(errs.CodeValidationFailed)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordBcryptCost)
	if err != nil {
		return nil, errs.Wrap(errs.CodeInternal, err)
	}

	user := &domain.User{
		UserID:       uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.PlatformRoleUser,
		Status:       domain.UserStatusActive,
		CreatedAt:    s.now(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, errs.New(errs.CodeConflict)
		}
		return nil, errs.Wrap(errs.CodeInternal, err)
	}

	s.logger.Info("User registered", zap.String("user_id", user.UserID))
	return toUserDTO(user), nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.CodeInvalidCredentials)
		}
		return nil, errs.Wrap(errs.CodeInternal, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errs.New(errs.CodeInvalidCredentials)
	}
	if user.Status == domain.UserStatusBlocked {
		return nil, errs.New(errs.CodeUserBlocked)
	}

	token, err := s.signAccessToken(user)
	if err != nil {
		s.logger.Error("Failed to sign access token", zap.String("user_id", user.UserID), zap.Error(err))
		return nil, errs.Wrap(errs.CodeInternal, err)
	}

	return &LoginResult{AccessToken: token, User: toUserDTO(user)}, nil
}

func (s *authService) signAccessToken(user *domain.User) (string, error) {
	if s.jwtCfg.AccessSecret == "" {
		return "", fmt.Errorf("access token secret is not configured")
	}
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  user.UserID,
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(s.jwtCfg.AccessTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtCfg.AccessSecret))
}

func (s *authService) Identify(ctx context.Context, tokenString string) (*domain.User, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.jwtCfg.AccessSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, errs.New(errs.CodeAuthRequired)
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, errs.New(errs.CodeAuthRequired)
	}

	user, err := s.users.GetUser(ctx, sub)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.CodeAuthRequired)
		}
		return nil, errs.Wrap(errs.CodeInternal, err)
	}
	if user.Status == domain.UserStatusBlocked {
		return nil, errs.New(errs.CodeUserBlocked)
	}
	return user, nil
}
