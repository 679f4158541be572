package service

import (
	"context"
	"errors"

	"github.com/SecureSpaceProject/secure-space-backend/internal/domain"
	"github.com/SecureSpaceProject/secure-space-backend/internal/errs"
	"github.com/SecureSpaceProject/secure-space-backend/internal/repository"
)

// memberOrNil 查询操作者在房间内的成员身份，非成员返回 nil 交给授权策略判定
func memberOrNil(ctx context.Context, members repository.RoomMembersRepository, roomID, userID string) (*domain.RoomMember, error) {
	m, err := members.GetMember(ctx, roomID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, errs.Wrap(errs.CodeInternal, err)
	}
	return m, nil
}
