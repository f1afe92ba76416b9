package main

import (
	"context"
	"fmt"
	"os"

	"adagency/internal/app/ds"
	"adagency/internal/app/repository"
	"adagency/internal/app/role"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// seedData создаёт сотрудников и демонстрационный каталог. Повторный запуск
// ничего не дублирует.
func seedData(ctx context.Context, repo *repository.Repository) error {
	password := os.Getenv("SEED_STAFF_PASSWORD")
	if password == "" {
		password = "changeme"
		logrus.Warn("SEED_STAFF_PASSWORD is not set, using the default staff password")
	}

	staff := []struct {
		email string
		role  role.Role
	}{
		{"director@adagency.local", role.Director},
		{"manager@adagency.local", role.Manager},
	}
	for _, s := range staff {
		exists, err := repo.UserExistsByEmail(ctx, s.email)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		if err := repo.CreateUser(ctx, &ds.User{Email: s.email, PasswordHash: string(hash), Role: s.role}); err != nil {
			return fmt.Errorf("create %s: %w", s.email, err)
		}
	}

	services, err := repo.ListServices(ctx, false)
	if err != nil {
		return err
	}
	if len(services) > 0 {
		return nil
	}

	resources := []*ds.Resource{
		{Name: "Видеокамера 4K", Type: ds.ResourceTypeEquipment, Cost: decimal.NewFromInt(2000), IsAvailable: true},
		{Name: "Съёмочная группа", Type: ds.ResourceTypePersonnel, Cost: decimal.NewFromInt(3000), IsAvailable: true},
		{Name: "Диктор", Type: ds.ResourceTypePersonnel, Cost: decimal.NewFromInt(1500), IsAvailable: true},
		{Name: "Монтажёр", Type: ds.ResourceTypePersonnel, Cost: decimal.NewFromInt(2500), IsAvailable: true},
	}
	for _, r := range resources {
		if err := repo.CreateResource(ctx, r); err != nil {
			return err
		}
	}
	camera, crew, voice, editor := resources[0].ID, resources[1].ID, resources[2].ID, resources[3].ID

	catalog := []struct {
		service   ds.Service
		resources []uint
	}{
		{ds.Service{Name: "Рекламный ролик на ТВ", Type: ds.ServiceTypeTV, BasePrice: decimal.NewFromInt(10000), Description: "Показ ролика в прайм-тайм"}, []uint{camera, crew, editor}},
		{ds.Service{Name: "Радиореклама", Type: ds.ServiceTypeRadio, BasePrice: decimal.NewFromInt(4000), Description: "Аудиоролик на городских станциях"}, []uint{voice}},
		{ds.Service{Name: "Баннер в интернете", Type: ds.ServiceTypeInternet, BasePrice: decimal.NewFromInt(2500), Description: "Медийная реклама на площадках партнёров"}, []uint{editor}},
		{ds.Service{Name: "Билборд", Type: ds.ServiceTypeOutdoor, BasePrice: decimal.NewFromInt(6000), Description: "Щит 3x6 на центральных улицах"}, nil},
	}
	for _, c := range catalog {
		s := c.service
		s.IsAvailable = true
		if err := repo.CreateService(ctx, &s, c.resources); err != nil {
			return fmt.Errorf("create service %s: %w", s.Name, err)
		}
	}
	return nil
}
