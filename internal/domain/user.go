package domain

import (
	"time"
)

// User 用户领域模型（对应 users 表）
type User struct {
	UserID       string       `db:"user_id"`
	Email        string       `db:"email"`         // 唯一，入库前已归一化为小写
	PasswordHash string       `db:"password_hash"` // bcrypt
	Role         PlatformRole `db:"role"`
	Status       UserStatus   `db:"status"`
	CreatedAt    time.Time    `db:"created_at"`
}
