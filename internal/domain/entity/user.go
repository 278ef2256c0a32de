package entity

// Role es el rol de un usuario, inmutable durante la sesión.
// Lo entrega la respuesta de autenticación del backend.
type Role string

// Roles válidos para User.
const (
	RoleSuperadmin Role = "Superadmin"
	RoleManager    Role = "Manager"
	RoleSales      Role = "Sales"
	RoleEngineer   Role = "Engineer"
)

// Valid reporta si el rol pertenece al conjunto cerrado.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperadmin, RoleManager, RoleSales, RoleEngineer:
		return true
	}
	return false
}

// User es la identidad que viaja en la sesión. El hash de contraseña solo
// existe del lado del backend; el cliente nunca lo ve.
type User struct {
	ID       string
	Username string
	Role     Role
}

// Session empareja el token opaco con la identidad del usuario.
// Invariante: token presente ⟺ usuario presente (nunca uno sin el otro).
type Session struct {
	Token string
	User  *User
}

// Authenticated reporta si la sesión está completa.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.User != nil
}
