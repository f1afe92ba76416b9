package role

// Role роль пользователя в системе
type Role string

const (
	Client   Role = "client"   // Клиент агентства
	Manager  Role = "manager"  // Менеджер: ведёт каталог и заказы
	Director Role = "director" // Директор: всё, что менеджер, плюс отчёты
)

// Valid проверяет, что роль известна системе
func (r Role) Valid() bool {
	switch r {
	case Client, Manager, Director:
		return true
	}
	return false
}

// IsStaff возвращает true для сотрудников агентства
func (r Role) IsStaff() bool {
	return r == Manager || r == Director
}
