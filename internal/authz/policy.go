package authz

import (
	"github.com/SecureSpaceProject/secure-space-backend/internal/domain"
	"github.com/SecureSpaceProject/secure-space-backend/internal/errs"
)

// Package authz 房间级授权策略
// 纯判定函数：只消费调用方提供的事实（actor 的房间角色、目标角色、动作），
// 不访问存储，不产生副作用。审计日志由调用方在变更成功后记录。
// 平台级 BLOCKED 用户在身份解析阶段即被拒绝，不会进入这里。

// Decision 授权判定结果
type Decision struct {
	Allowed bool
	Code    errs.Code // 拒绝原因（Allowed 为 false 时有效）
}

// Err 将拒绝判定转为业务错误；允许时返回 nil
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return errs.New(d.Code)
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(code errs.Code) Decision {
	return Decision{Allowed: false, Code: code}
}

// roleRank 房间角色权限序，OWNER > ADMIN > DEFAULT
// 显式排序表，不做字符串字面量比较
var roleRank = map[domain.RoomRole]int{
	domain.RoomRoleOwner:   3,
	domain.RoomRoleAdmin:   2,
	domain.RoomRoleDefault: 1,
}

// Rank 返回角色的权限序（未知角色为 0）
func Rank(role domain.RoomRole) int {
	return roleRank[role]
}

func ownerOrAdmin(role domain.RoomRole) bool {
	return Rank(role) >= roleRank[domain.RoomRoleAdmin]
}

// CanViewRoom 只读房间操作（查看房间、传感器列表、成员列表、审计日志）
// 任意成员均可
func CanViewRoom(actor *domain.RoomMember) Decision {
	if actor == nil {
		return deny(errs.CodeForbidden)
	}
	return allow()
}

// CanUpdateRoom 布防/撤防/改名，要求 OWNER 或 ADMIN
func CanUpdateRoom(actor *domain.RoomMember) Decision {
	if actor == nil {
		return deny(errs.CodeForbidden)
	}
	if !ownerOrAdmin(actor.Role) {
		return deny(errs.CodeForbidden)
	}
	return allow()
}

// CanDeleteRoom 删除房间，仅 OWNER
func CanDeleteRoom(actor *domain.RoomMember) Decision {
	if actor == nil {
		return deny(errs.CodeForbidden)
	}
	if actor.Role != domain.RoomRoleOwner {
		return deny(errs.CodeForbidden)
	}
	return allow()
}

// CanManageSensors 创建/修改/停用传感器，要求 OWNER 或 ADMIN
func CanManageSensors(actor *domain.RoomMember) Decision {
	return CanUpdateRoom(actor)
}

// CanCloseAlert 关闭警报，要求 OWNER 或 ADMIN
func CanCloseAlert(actor *domain.RoomMember) Decision {
	return CanUpdateRoom(actor)
}

// CanAddMember 添加成员
// ADMIN 只能授予 DEFAULT（授予上限规则），OWNER 可授予任意角色
func CanAddMember(actor *domain.RoomMember, grantRole domain.RoomRole) Decision {
	if actor == nil {
		return deny(errs.CodeForbidden)
	}
	if !ownerOrAdmin(actor.Role) {
		return deny(errs.CodeForbidden)
	}
	if actor.Role == domain.RoomRoleAdmin && grantRole != domain.RoomRoleDefault {
		return deny(errs.CodeForbidden)
	}
	return allow()
}

// CanUpdateMemberRole 修改成员角色
// 授予上限同 CanAddMember；此外 ADMIN 不能改动当前持有 OWNER 的成员
func CanUpdateMemberRole(actor *domain.RoomMember, targetRole, newRole domain.RoomRole) Decision {
	if actor == nil {
		return deny(errs.CodeForbidden)
	}
	if !ownerOrAdmin(actor.Role) {
		return deny(errs.CodeForbidden)
	}
	if actor.Role == domain.RoomRoleAdmin {
		if newRole != domain.RoomRoleDefault {
			return deny(errs.CodeForbidden)
		}
		if targetRole == domain.RoomRoleOwner {
			return deny(errs.CodeForbidden)
		}
	}
	return allow()
}

// CanRemoveMember 移除成员
// ADMIN 只能移除 DEFAULT 成员；移除 OWNER 要求 actor 自身为 OWNER
func CanRemoveMember(actor *domain.RoomMember, targetRole domain.RoomRole) Decision {
	if actor == nil {
		return deny(errs.CodeForbidden)
	}
	if !ownerOrAdmin(actor.Role) {
		return deny(errs.CodeForbidden)
	}
	if actor.Role == domain.RoomRoleAdmin && targetRole != domain.RoomRoleDefault {
		return deny(errs.CodeForbidden)
	}
	if targetRole == domain.RoomRoleOwner && actor.Role != domain.RoomRoleOwner {
		return deny(errs.CodeForbidden)
	}
	return allow()
}
