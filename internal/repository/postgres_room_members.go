package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/SecureSpaceProject/secure-space-backend/internal/domain"
)

// PostgresRoomMembersRepository 房间成员仓库 Postgres 实现
type PostgresRoomMembersRepository struct {
	db *sql.DB
}

// NewPostgresRoomMembersRepository 创建房间成员仓库
func NewPostgresRoomMembersRepository(db *sql.DB) *PostgresRoomMembersRepository {
	return &PostgresRoomMembersRepository{db: db}
}

var _ RoomMembersRepository = (*PostgresRoomMembersRepository)(nil)

const memberColumns = `member_id::text, room_id::text, user_id::text, member_role, added_at`

// GetMember 获取 (room_id, user_id) 对应的成员记录
func (r *PostgresRoomMembersRepository) GetMember(ctx context.Context, roomID, userID string) (*domain.RoomMember, error) {
	if roomID == "" || userID == "" {
		return nil, fmt.Errorf("room_id and user_id are required: %w", ErrNotFound)
	}

	query := `SELECT ` + memberColumns + ` FROM room_members WHERE room_id = $1 AND user_id = $2`

	var m domain.RoomMember
	err := r.db.QueryRowContext(ctx, query, roomID, userID).Scan(
		&m.MemberID,
		&m.RoomID,
		&m.UserID,
		&m.Role,
		&m.AddedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("member (room=%s, user=%s): %w", roomID, userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get room member: %w", err)
	}
	return &m, nil
}

// ListMembers 列出房间全部成员（按加入时间升序）
func (r *PostgresRoomMembersRepository) ListMembers(ctx context.Context, roomID string) ([]*domain.RoomMember, error) {
	query := `SELECT ` + memberColumns + ` FROM room_members WHERE room_id = $1 ORDER BY added_at ASC`

	rows, err := r.db.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list room members: %w", err)
	}
	defer rows.Close()

	var members []*domain.RoomMember
	for rows.Next() {
		var m domain.RoomMember
		if err := rows.Scan(&m.MemberID, &m.RoomID, &m.UserID, &m.Role, &m.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan room member: %w", err)
		}
		members = append(members, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate room members: %w", err)
	}
	return members, nil
}

// AddMember 新增成员；(room_id, user_id) 重复时返回 ErrConflict
func (r *PostgresRoomMembersRepository) AddMember(ctx context.Context, member *domain.RoomMember) error {
	query := `
		INSERT INTO room_members (member_id, room_id, user_id, member_role, added_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		member.MemberID,
		member.RoomID,
		member.UserID,
		member.Role,
		member.AddedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("user %s already in room %s: %w", member.UserID, member.RoomID, ErrConflict)
		}
		return fmt.Errorf("failed to add room member: %w", err)
	}
	return nil
}

// UpdateMemberRole 更新成员角色
func (r *PostgresRoomMembersRepository) UpdateMemberRole(ctx context.Context, roomID, userID string, role domain.RoomRole) (*domain.RoomMember, error) {
	query := `
		UPDATE room_members SET member_role = $3
		WHERE room_id = $1 AND user_id = $2
		RETURNING ` + memberColumns

	var m domain.RoomMember
	err := r.db.QueryRowContext(ctx, query, roomID, userID, role).Scan(
		&m.MemberID,
		&m.RoomID,
		&m.UserID,
		&m.Role,
		&m.AddedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("member (room=%s, user=%s): %w", roomID, userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update member role: %w", err)
	}
	return &m, nil
}

// RemoveMember 移除成员
func (r *PostgresRoomMembersRepository) RemoveMember(ctx context.Context, roomID, userID string) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM room_members WHERE room_id = $1 AND user_id = $2
	`, roomID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove room member: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("member (room=%s, user=%s): %w", roomID, userID, ErrNotFound)
	}
	return nil
}
