package domain

// Role is a named privilege level. Roles are totally ordered:
// admin > teacher > student.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Permission type ids as stored in the permission_types table.
const (
	PermissionIDAdmin   = 1
	PermissionIDTeacher = 2
	PermissionIDStudent = 3
)

// RoleFromPermissionID maps a stored permission id to its Role.
func RoleFromPermissionID(id int) (Role, bool) {
	switch id {
	case PermissionIDAdmin:
		return RoleAdmin, true
	case PermissionIDTeacher:
		return RoleTeacher, true
	case PermissionIDStudent:
		return RoleStudent, true
	default:
		return "", false
	}
}

// PermissionID returns the stored id for the role.
func (r Role) PermissionID() int {
	switch r {
	case RoleAdmin:
		return PermissionIDAdmin
	case RoleTeacher:
		return PermissionIDTeacher
	default:
		return PermissionIDStudent
	}
}
