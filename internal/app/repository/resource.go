package repository

import (
	"context"

	"adagency/internal/app/ds"

	"github.com/shopspring/decimal"
)

// Методы для работы с ресурсами

func (r *Repository) ListResources(ctx context.Context, availableOnly bool) ([]ds.Resource, error) {
	var resources []ds.Resource
	q := r.db.WithContext(ctx).Order("id")
	if availableOnly {
		q = q.Where("is_available = ?", true)
	}
	if err := q.Find(&resources).Error; err != nil {
		return nil, err
	}
	return resources, nil
}

func (r *Repository) GetResourceByID(ctx context.Context, id uint) (*ds.Resource, error) {
	var resource ds.Resource
	if err := r.db.WithContext(ctx).First(&resource, id).Error; err != nil {
		return nil, classify(err)
	}
	return &resource, nil
}

func (r *Repository) CreateResource(ctx context.Context, resource *ds.Resource) error {
	return classify(r.db.WithContext(ctx).Create(resource).Error)
}

func (r *Repository) UpdateResource(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		_, err := r.GetResourceByID(ctx, id)
		return err
	}
	return affected(r.db.WithContext(ctx).Model(&ds.Resource{}).Where("id = ?", id).Updates(fields))
}

// DeleteResource удаляет ресурс. Ресурс, попавший в заказы, удалить нельзя (ErrInUse).
func (r *Repository) DeleteResource(ctx context.Context, id uint) error {
	return r.InTx(ctx, func(tx *Repository) error {
		if err := tx.db.Exec("DELETE FROM service_resources WHERE resource_id = ?", id).Error; err != nil {
			return classify(err)
		}
		return affected(tx.db.Delete(&ds.Resource{}, id))
	})
}

// AllowedResourceCosts возвращает дневную стоимость ресурсов из ids, которые
// разрешены для услуги и сейчас доступны. Остальные id просто отсутствуют в ответе.
func (r *Repository) AllowedResourceCosts(ctx context.Context, serviceID uint, ids []uint) (map[uint]decimal.Decimal, error) {
	costs := make(map[uint]decimal.Decimal)
	if len(ids) == 0 {
		return costs, nil
	}

	var rows []struct {
		ID   uint
		Cost decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Table("resources").
		Select("resources.id, resources.cost").
		Joins("JOIN service_resources ON service_resources.resource_id = resources.id").
		Where("service_resources.service_id = ? AND resources.id IN ? AND resources.is_available = ?", serviceID, ids, true).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		costs[row.ID] = row.Cost
	}
	return costs, nil
}
