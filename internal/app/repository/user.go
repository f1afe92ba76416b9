package repository

import (
	"context"
	"time"

	"adagency/internal/app/ds"

	"gorm.io/gorm"
)

// Методы для пользователей (ORM)

func (r *Repository) GetUserByID(ctx context.Context, id uint) (*ds.User, error) {
	var user ds.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, classify(err)
	}
	return &user, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*ds.User, error) {
	var user ds.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, classify(err)
	}
	return &user, nil
}

func (r *Repository) UserExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&ds.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *Repository) CreateUser(ctx context.Context, user *ds.User) error {
	return classify(r.db.WithContext(ctx).Create(user).Error)
}

// UpdateUserProfile обновляет только переданные (не nil) поля профиля
func (r *Repository) UpdateUserProfile(ctx context.Context, id uint, firstName, lastName, phone *string) error {
	fields := map[string]interface{}{}
	if firstName != nil {
		fields["first_name"] = *firstName
	}
	if lastName != nil {
		fields["last_name"] = *lastName
	}
	if phone != nil {
		fields["phone"] = *phone
	}
	if len(fields) == 0 {
		_, err := r.GetUserByID(ctx, id)
		return err
	}
	return affected(r.db.WithContext(ctx).Model(&ds.User{}).Where("id = ?", id).Updates(fields))
}

// IncrementOrderCount увеличивает счётчик оплаченных заказов пользователя
func (r *Repository) IncrementOrderCount(ctx context.Context, userID uint) error {
	return affected(r.db.WithContext(ctx).Model(&ds.User{}).
		Where("id = ?", userID).
		UpdateColumn("order_count", gorm.Expr("order_count + ?", 1)))
}

// DiscountSnapshot одним запросом возвращает текущую скидку пользователя и
// число его оплаченных (paid, completed) заказов, созданных в [from, to)
func (r *Repository) DiscountSnapshot(ctx context.Context, userID uint, from, to time.Time) (int, int64, error) {
	var row struct {
		PersonalDiscount int
		Monthly          int64
	}
	res := r.db.WithContext(ctx).Raw(`
		SELECT u.personal_discount AS personal_discount,
		       (SELECT COUNT(*) FROM orders o
		         WHERE o.user_id = u.id
		           AND o.status IN ?
		           AND o.created_at >= ? AND o.created_at < ?) AS monthly
		  FROM users u
		 WHERE u.id = ?`,
		[]string{ds.OrderStatusPaid, ds.OrderStatusCompleted}, from, to, userID,
	).Scan(&row)
	if res.Error != nil {
		return 0, 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, 0, ErrNotFound
	}
	return row.PersonalDiscount, row.Monthly, nil
}

// SetPersonalDiscount сохраняет новую скидку пользователя
func (r *Repository) SetPersonalDiscount(ctx context.Context, userID uint, percent int) error {
	return affected(r.db.WithContext(ctx).Model(&ds.User{}).
		Where("id = ?", userID).
		UpdateColumn("personal_discount", percent))
}
