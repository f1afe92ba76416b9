package ds

import (
	"time"

	"adagency/internal/app/role"
)

// 6. Таблица пользователей
type User struct {
	ID               uint      `gorm:"primaryKey"`
	Email            string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	PasswordHash     string    `gorm:"type:varchar(255);not null"`
	Role             role.Role `gorm:"type:varchar(20);not null"`
	FirstName        string    `gorm:"type:varchar(50)"`
	LastName         string    `gorm:"type:varchar(50)"`
	Phone            string    `gorm:"type:varchar(20)"`
	PersonalDiscount int       `gorm:"type:int;not null;default:0"` // 0, 5, 10 или 20 процентов
	RegistrationDate time.Time `gorm:"autoCreateTime"`
	OrderCount       int       `gorm:"type:int;not null;default:0"` // Счётчик подтверждённых оплат
}
