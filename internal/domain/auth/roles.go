package auth

const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

type UserContext struct {
	UserID string
	Role   string
}

func (u UserContext) IsAdmin() bool {
	return u.Role == RoleAdmin
}
