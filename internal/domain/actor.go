package domain

// Role роль пользователя
type Role string

const (
	RoleCustomer Role = "customer"
	RoleWorker   Role = "worker"
	RoleAdmin    Role = "admin"
)

// IsValid проверяет, что роль известна
func (r Role) IsValid() bool {
	return r == RoleCustomer || r == RoleWorker || r == RoleAdmin
}

// Actor аутентифицированный пользователь, выполняющий операцию
type Actor struct {
	ID   int64
	Role Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a Actor) IsWorker() bool {
	return a.Role == RoleWorker
}

func (a Actor) IsCustomer() bool {
	return a.Role == RoleCustomer
}
