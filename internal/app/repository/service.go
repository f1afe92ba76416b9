package repository

import (
	"context"

	"adagency/internal/app/ds"

	"github.com/shopspring/decimal"
)

// Методы для работы с услугами

// ListServices возвращает все услуги или только доступные для заказа
func (r *Repository) ListServices(ctx context.Context, availableOnly bool) ([]ds.Service, error) {
	var services []ds.Service
	q := r.db.WithContext(ctx).Order("id")
	if availableOnly {
		q = q.Where("is_available = ?", true)
	}
	if err := q.Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

// GetServiceByID возвращает услугу вместе с разрешёнными ресурсами
func (r *Repository) GetServiceByID(ctx context.Context, id uint) (*ds.Service, error) {
	var service ds.Service
	err := r.db.WithContext(ctx).Preload("Resources").First(&service, id).Error
	if err != nil {
		return nil, classify(err)
	}
	return &service, nil
}

// GetServicePrice возвращает текущую дневную цену услуги
func (r *Repository) GetServicePrice(ctx context.Context, id uint) (decimal.Decimal, error) {
	var service ds.Service
	err := r.db.WithContext(ctx).Select("id", "base_price").First(&service, id).Error
	if err != nil {
		return decimal.Zero, classify(err)
	}
	return service.BasePrice, nil
}

// CreateService создаёт услугу и привязывает к ней разрешённые ресурсы
func (r *Repository) CreateService(ctx context.Context, service *ds.Service, resourceIDs []uint) error {
	return r.InTx(ctx, func(tx *Repository) error {
		if err := tx.db.Omit("Resources").Create(service).Error; err != nil {
			return classify(err)
		}
		return tx.SetServiceResources(ctx, service.ID, resourceIDs)
	})
}

// UpdateService частично обновляет услугу
func (r *Repository) UpdateService(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return r.serviceExists(ctx, id)
	}
	return affected(r.db.WithContext(ctx).Model(&ds.Service{}).Where("id = ?", id).Updates(fields))
}

// SetServiceImage сохраняет ссылку на изображение услуги (nil - удалить)
func (r *Repository) SetServiceImage(ctx context.Context, id uint, imageURL *string) error {
	return affected(r.db.WithContext(ctx).Model(&ds.Service{}).Where("id = ?", id).Update("image_url", imageURL))
}

// SetServiceResources заменяет набор ресурсов, разрешённых для услуги.
// Если какого-то ресурса нет, возвращает ErrUnknownResource.
func (r *Repository) SetServiceResources(ctx context.Context, serviceID uint, resourceIDs []uint) error {
	db := r.db.WithContext(ctx)

	unique := make([]uint, 0, len(resourceIDs))
	seen := make(map[uint]bool, len(resourceIDs))
	for _, id := range resourceIDs {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	if len(unique) > 0 {
		var count int64
		if err := db.Model(&ds.Resource{}).Where("id IN ?", unique).Count(&count).Error; err != nil {
			return err
		}
		if count != int64(len(unique)) {
			return ErrUnknownResource
		}
	}

	if err := db.Exec("DELETE FROM service_resources WHERE service_id = ?", serviceID).Error; err != nil {
		return classify(err)
	}
	for _, id := range unique {
		err := db.Exec("INSERT INTO service_resources (service_id, resource_id) VALUES (?, ?)", serviceID, id).Error
		if err != nil {
			return classify(err)
		}
	}
	return nil
}

// DeleteService удаляет услугу. Если на неё ссылаются заказы, возвращает ErrInUse.
func (r *Repository) DeleteService(ctx context.Context, id uint) error {
	return r.InTx(ctx, func(tx *Repository) error {
		if err := tx.db.Exec("DELETE FROM service_resources WHERE service_id = ?", id).Error; err != nil {
			return classify(err)
		}
		return affected(tx.db.Delete(&ds.Service{}, id))
	})
}

func (r *Repository) serviceExists(ctx context.Context, id uint) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&ds.Service{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}
