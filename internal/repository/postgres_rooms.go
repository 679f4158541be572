package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/SecureSpaceProject/secure-space-backend/internal/domain"
)

// PostgresRoomsRepository 房间仓库 Postgres 实现
type PostgresRoomsRepository struct {
	db *sql.DB
}

// NewPostgresRoomsRepository 创建房间仓库
func NewPostgresRoomsRepository(db *sql.DB) *PostgresRoomsRepository {
	return &PostgresRoomsRepository{db: db}
}

var _ RoomsRepository = (*PostgresRoomsRepository)(nil)

// CreateRoomWithOwner 创建房间并在同一事务中写入 OWNER 成员
// 两条写入要么都提交要么都回滚，避免出现无 OWNER 的房间
func (r *PostgresRoomsRepository) CreateRoomWithOwner(ctx context.Context, room *domain.Room, owner *domain.RoomMember) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO rooms (room_id, name, is_armed, created_at)
		VALUES ($1, $2, $3, $4)
	`, room.RoomID, room.Name, room.IsArmed, room.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO room_members (member_id, room_id, user_id, member_role, added_at)
		VALUES ($1, $2, $3, $4, $5)
	`, owner.MemberID, owner.RoomID, owner.UserID, owner.Role, owner.AddedAt)
	if err != nil {
		return fmt.Errorf("failed to create room owner membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit room creation: %w", err)
	}
	return nil
}

// GetRoom 根据 room_id 获取房间
func (r *PostgresRoomsRepository) GetRoom(ctx context.Context, roomID string) (*domain.Room, error) {
	if roomID == "" {
		return nil, fmt.Errorf("room_id is required: %w", ErrNotFound)
	}

	query := `
		SELECT room_id::text, name, is_armed, created_at
		FROM rooms
		WHERE room_id = $1
	`

	var room domain.Room
	err := r.db.QueryRowContext(ctx, query, roomID).Scan(
		&room.RoomID,
		&room.Name,
		&room.IsArmed,
		&room.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("room %s: %w", roomID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return &room, nil
}

// ListRoomsByUser 列出用户作为成员的全部房间（按创建时间倒序）
func (r *PostgresRoomsRepository) ListRoomsByUser(ctx context.Context, userID string) ([]*domain.Room, error) {
	query := `
		SELECT r.room_id::text, r.name, r.is_armed, r.created_at
		FROM rooms r
		INNER JOIN room_members rm ON rm.room_id = r.room_id
		WHERE rm.user_id = $1
		ORDER BY r.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*domain.Room
	for rows.Next() {
		var room domain.Room
		if err := rows.Scan(&room.RoomID, &room.Name, &room.IsArmed, &room.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, &room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rooms: %w", err)
	}
	return rooms, nil
}

// UpdateRoom 更新房间名称与布防状态
func (r *PostgresRoomsRepository) UpdateRoom(ctx context.Context, room *domain.Room) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE rooms SET name = $2, is_armed = $3 WHERE room_id = $1
	`, room.RoomID, room.Name, room.IsArmed)
	if err != nil {
		return fmt.Errorf("failed to update room: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("room %s: %w", room.RoomID, ErrNotFound)
	}
	return nil
}

// DeleteRoom 删除房间；依赖实体由外键级联删除
func (r *PostgresRoomsRepository) DeleteRoom(ctx context.Context, roomID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE room_id = $1`, roomID)
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("room %s: %w", roomID, ErrNotFound)
	}
	return nil
}
