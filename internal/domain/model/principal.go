package model

type Role string

const (
	RoleBuyer     Role = "BUYER"
	RoleStaff     Role = "STAFF"
	RoleOrganizer Role = "ORGANIZER"
	RoleAdmin     Role = "ADMIN"
)

// 認証済みの操作者。JWTから取り出してusecaseまで明示的に渡す
type Principal struct {
	UserID int64
	Role   Role
}

// 入場チェックができるロールか
func (p Principal) CanScan() bool {
	switch p.Role {
	case RoleStaff, RoleOrganizer, RoleAdmin:
		return true
	}
	return false
}
