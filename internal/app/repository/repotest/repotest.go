// Package repotest поднимает репозиторий поверх SQLite в памяти для тестов
// пакетов, которым нужны настоящие транзакции.
package repotest

import (
	"context"
	"testing"
	"time"

	"adagency/internal/app/ds"
	"adagency/internal/app/repository"
	"adagency/internal/app/role"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open создаёт пустую мигрированную базу. Одно соединение: база в памяти
// живёт, пока оно открыто.
func Open(t testing.TB) (*repository.Repository, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, repository.Migrate(db))
	return repository.NewWithDB(db), db
}

// Fixture быстрый способ наполнить базу
type Fixture struct {
	t    testing.TB
	repo *repository.Repository
	db   *gorm.DB
}

func NewFixture(t testing.TB) *Fixture {
	repo, db := Open(t)
	return &Fixture{t: t, repo: repo, db: db}
}

func (f *Fixture) Repo() *repository.Repository { return f.repo }
func (f *Fixture) DB() *gorm.DB                   { return f.db }

func (f *Fixture) User(email string, discount int) *ds.User {
	f.t.Helper()
	u := &ds.User{Email: email, PasswordHash: "x", Role: role.Client, PersonalDiscount: discount}
	require.NoError(f.t, f.repo.CreateUser(context.Background(), u))
	return u
}

func (f *Fixture) Resource(name string, cost string, available bool) *ds.Resource {
	f.t.Helper()
	r := &ds.Resource{Name: name, Type: ds.ResourceTypeEquipment, Cost: decimal.RequireFromString(cost), IsAvailable: available}
	require.NoError(f.t, f.repo.CreateResource(context.Background(), r))
	return r
}

func (f *Fixture) Service(name string, price string, resources ...*ds.Resource) *ds.Service {
	f.t.Helper()
	ids := make([]uint, len(resources))
	for i, r := range resources {
		ids[i] = r.ID
	}
	s := &ds.Service{Name: name, Type: ds.ServiceTypeTV, BasePrice: decimal.RequireFromString(price), IsAvailable: true}
	require.NoError(f.t, f.repo.CreateService(context.Background(), s, ids))
	return s
}

// Order вставляет заказ напрямую, минуя расчёт цены
func (f *Fixture) Order(user *ds.User, service *ds.Service, status string, start, end time.Time, total string, createdAt time.Time, resources ...*ds.Resource) *ds.Order {
	f.t.Helper()
	o := &ds.Order{
		UserID:    user.ID,
		ServiceID: service.ID,
		EventDate: start,
		EndDate:   end,
		TotalCost: decimal.RequireFromString(total),
		Status:    status,
		CreatedAt: createdAt,
	}
	ids := make([]uint, len(resources))
	for i, r := range resources {
		ids[i] = r.ID
	}
	require.NoError(f.t, f.repo.CreateOrder(context.Background(), o, ids))
	return o
}

// Date разбирает дату вида 2006-01-02 в UTC
func Date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}
