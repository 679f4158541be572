package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/SecureSpaceProject/secure-space-backend/internal/domain"
	"github.com/SecureSpaceProject/secure-space-backend/internal/errs"
	"github.com/SecureSpaceProject/secure-space-backend/internal/repository"
)

// UserService 用户自助操作
type UserService interface {
	GetMe(ctx context.Context, userID string) (*UserDTO, error)
	UpdateMe(ctx context.Context, userID, email string) (*UserDTO, error)
}

type userService struct {
	users  repository.UsersRepository
	logger *zap.Logger
}

// NewUserService 创建用户服务
func NewUserService(users repository.UsersRepository, logger *zap.Logger) UserService {
	return &userService{users: users, logger: logger}
}

func (s *userService) GetMe(ctx context.Context, userID string) (*UserDTO, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.CodeUserNotFound)
		}
		return nil, errs.Wrap(errs.CodeInternal, err)
	}
	return toUserDTO(user), nil
}

func (s *userService) UpdateMe(ctx context.Context, userID, email string) (*UserDTO, error) {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return nil, errs.New(errs.CodeValidationFailed)
	}

	user, err := s.users.UpdateEmail(ctx, userID, email)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, errs.New(errs.CodeUserNotFound)
		case errors.Is(err, repository.ErrConflict):
			return nil, errs.New(errs.CodeConflict)
		}
		return nil, errs.Wrap(errs.CodeInternal, err)
	}

	s.logger.Info("User email updated", zap.String("user_id", userID))
	return toUserDTO(user), nil
}

// AdminService 平台管理员操作，调用方必须持有平台 ADMIN 角色
type AdminService interface {
	ListUsers(ctx context.Context, actor *domain.User) ([]*UserDTO, error)
	SetUserStatus(ctx context.Context, actor *domain.User, userID string, status domain.UserStatus) (*UserDTO, error)
}

type adminService struct {
	users  repository.UsersRepository
	logger *zap.Logger
}

// NewAdminService 创建平台管理服务
func NewAdminService(users repository.UsersRepository, logger *zap.Logger) AdminService {
	return &adminService{users: users, logger: logger}
}

func requirePlatformAdmin(actor *domain.User) error {
	if actor == nil || actor.Role != domain.PlatformRoleAdmin {
		return errs.New(errs.CodeForbidden)
	}
	return nil
}

func (s *adminService) ListUsers(ctx context.Context, actor *domain.User) ([]*UserDTO, error) {
	if err := requirePlatformAdmin(actor); err != nil {
		return nil, err
	}
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.CodeInternal, err)
	}
	out := make([]*UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, toUserDTO(u))
	}
	return out, nil
}

func (s *adminService) SetUserStatus(ctx context.Context, actor *domain.User, userID string, status domain.UserStatus) (*UserDTO, error) {
	if err := requirePlatformAdmin(actor); err != nil {
		return nil, err
	}
	if status != domain.UserStatusActive && status != domain.UserStatusBlocked {
		return nil, errs.New(errs.CodeValidationFailed)
	}

	user, err := s.users.SetStatus(ctx, userID, status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.CodeUserNotFound)
		}
		return nil, errs.Wrap(errs.CodeInternal, err)
	}

	s.logger.Info("User status changed",
		zap.String("actor_user_id", actor.UserID),
		zap.String("user_id", userID),
		zap.String("status", string(status)))
	return toUserDTO(user), nil
}
