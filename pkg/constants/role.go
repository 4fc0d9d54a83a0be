package constants

type Role string

const (
	RoleUser    Role = "USER"
	RoleManager Role = "MANAGER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleManager:
		return true
	default:
		return false
	}
}
