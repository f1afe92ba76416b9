package orders_test

import (
	"context"
	"testing"
	"time"

	"adagency/internal/app/ds"
	"adagency/internal/app/orders"
	"adagency/internal/app/pricing"
	"adagency/internal/app/repository/repotest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	now   = time.Date(2025, 9, 20, 12, 0, 0, 0, time.UTC)
	date  = repotest.Date
	clock = func() time.Time { return now }
)

func ptr(t time.Time) *time.Time { return &t }

type env struct {
	f       *repotest.Fixture
	svc     *orders.Service
	user    *ds.User
	service *ds.Service
	camera  *ds.Resource
	crew    *ds.Resource
}

func setup(t *testing.T) *env {
	f := repotest.NewFixture(t)
	camera := f.Resource("Камера", "2000", true)
	crew := f.Resource("Съёмочная группа", "3000", true)
	return &env{
		f:       f,
		svc:     orders.NewService(f.Repo()).WithClock(clock),
		user:    f.User("client@example.com", 0),
		service: f.Service("ТВ-ролик", "10000", camera, crew),
		camera:  camera,
		crew:    crew,
	}
}

func TestCreate_ComputesTotalAndLinksResources(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	order, err := e.svc.Create(ctx, orders.CreateRequest{
		UserID:      e.user.ID,
		ServiceID:   e.service.ID,
		EventDate:   date("2025-10-01"),
		EndDate:     ptr(date("2025-10-05")),
		ResourceIDs: []uint{e.camera.ID, e.crew.ID},
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(75000).Equal(order.TotalCost), "got %s", order.TotalCost)
	assert.Equal(t, ds.OrderStatusNew, order.Status)

	got, err := e.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, got.Resources, 2)
	assert.Equal(t, date("2025-10-05"), got.EndDate.UTC())
}

func TestCreate_DefaultsEndDate(t *testing.T) {
	e := setup(t)

	order, err := e.svc.Create(context.Background(), orders.CreateRequest{
		UserID:    e.user.ID,
		ServiceID: e.service.ID,
		EventDate: date("2025-10-01"),
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(10000).Equal(order.TotalCost))
	assert.Equal(t, order.EventDate, order.EndDate)
}

func TestCreate_IgnoresForeignAndUnavailableResources(t *testing.T) {
	e := setup(t)
	broken := e.f.Resource("Кран", "9000", false)
	foreign := e.f.Resource("Билборд", "500", true)
	require.NoError(t, e.f.Repo().SetServiceResources(context.Background(), e.service.ID, []uint{e.camera.ID, e.crew.ID, broken.ID}))

	order, err := e.svc.Create(context.Background(), orders.CreateRequest{
		UserID:      e.user.ID,
		ServiceID:   e.service.ID,
		EventDate:   date("2025-10-01"),
		EndDate:     ptr(date("2025-10-01")),
		ResourceIDs: []uint{e.camera.ID, broken.ID, foreign.ID, 12345},
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(12000).Equal(order.TotalCost), "got %s", order.TotalCost)

	got, err := e.svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, got.Resources, 1)
	assert.Equal(t, e.camera.ID, got.Resources[0].ResourceID)
}

func TestCreate_DuplicateResourcesCountedTwice(t *testing.T) {
	e := setup(t)

	order, err := e.svc.Create(context.Background(), orders.CreateRequest{
		UserID:      e.user.ID,
		ServiceID:   e.service.ID,
		EventDate:   date("2025-10-01"),
		ResourceIDs: []uint{e.camera.ID, e.camera.ID},
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(14000).Equal(order.TotalCost))

	got, err := e.svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Len(t, got.Resources, 2)
}

func TestCreate_Errors(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	_, err := e.svc.Create(ctx, orders.CreateRequest{UserID: e.user.ID, ServiceID: 999, EventDate: date("2025-10-01")})
	require.ErrorIs(t, err, orders.ErrServiceNotFound)

	_, err = e.svc.Create(ctx, orders.CreateRequest{UserID: 999, ServiceID: e.service.ID, EventDate: date("2025-10-01")})
	require.ErrorIs(t, err, orders.ErrUserNotFound)

	_, err = e.svc.Create(ctx, orders.CreateRequest{
		UserID:    e.user.ID,
		ServiceID: e.service.ID,
		EventDate: date("2025-10-05"),
		EndDate:   ptr(date("2025-10-01")),
	})
	require.ErrorIs(t, err, pricing.ErrInvalidDateRange)

	list, err := e.svc.List(ctx, nil, "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestQuote_DoesNotPersist(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	q, err := e.svc.Quote(ctx, orders.CreateRequest{
		ServiceID:   e.service.ID,
		EventDate:   date("2025-10-01"),
		EndDate:     ptr(date("2025-10-03")),
		ResourceIDs: []uint{e.crew.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, q.DurationDays)
	assert.True(t, decimal.NewFromInt(13000).Equal(q.DailyRate))
	assert.True(t, decimal.NewFromInt(39000).Equal(q.Total))

	list, err := e.svc.List(ctx, nil, "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestReschedule_NewOrderRepricesWithCurrentPrices(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	order := e.f.Order(e.user, e.service, ds.OrderStatusNew, date("2025-10-01"), date("2025-10-05"), "75000", now, e.camera, e.crew)

	// Цена услуги выросла после создания заказа
	require.NoError(t, e.f.Repo().UpdateService(ctx, e.service.ID, map[string]interface{}{"base_price": decimal.NewFromInt(11000)}))

	got, err := e.svc.Reschedule(ctx, order.ID, date("2025-10-10"), ptr(date("2025-10-12")))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(48000).Equal(got.TotalCost), "got %s", got.TotalCost)
	assert.Equal(t, date("2025-10-10"), got.EventDate.UTC())
	assert.Equal(t, date("2025-10-12"), got.EndDate.UTC())
}

func TestReschedule_PaidOrderShiftKeepsTotal(t *testing.T) {
	e := setup(t)
	order := e.f.Order(e.user, e.service, ds.OrderStatusPaid, date("2025-10-01"), date("2025-10-05"), "75000", now, e.camera, e.crew)

	got, err := e.svc.Reschedule(context.Background(), order.ID, date("2025-11-01"), ptr(date("2025-11-05")))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(75000).Equal(got.TotalCost))
	assert.Equal(t, date("2025-11-01"), got.EventDate.UTC())
	assert.Equal(t, ds.OrderStatusPaid, got.Status)
}

func TestReschedule_PaidOrderDurationChangeRejected(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	order := e.f.Order(e.user, e.service, ds.OrderStatusPaid, date("2025-10-01"), date("2025-10-05"), "75000", now)

	_, err := e.svc.Reschedule(ctx, order.ID, date("2025-11-01"), ptr(date("2025-11-02")))
	require.ErrorIs(t, err, orders.ErrDurationChangeNotAllowed)

	got, err := e.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, date("2025-10-01"), got.EventDate.UTC())
	assert.True(t, decimal.NewFromInt(75000).Equal(got.TotalCost))
}

func TestReschedule_RejectsCancelledAndCompleted(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	cancelled := e.f.Order(e.user, e.service, ds.OrderStatusCancelled, date("2025-10-01"), date("2025-10-02"), "20000", now)
	_, err := e.svc.Reschedule(ctx, cancelled.ID, date("2025-10-03"), ptr(date("2025-10-04")))
	require.ErrorIs(t, err, orders.ErrInvalidOrderState)

	// Оплачен и уже закончился: отображается как completed
	finished := e.f.Order(e.user, e.service, ds.OrderStatusPaid, date("2025-09-01"), date("2025-09-02"), "20000", now)
	_, err = e.svc.Reschedule(ctx, finished.ID, date("2025-10-03"), ptr(date("2025-10-04")))
	require.ErrorIs(t, err, orders.ErrInvalidOrderState)
}

func TestReschedule_Errors(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	_, err := e.svc.Reschedule(ctx, 404, date("2025-10-03"), nil)
	require.ErrorIs(t, err, orders.ErrOrderNotFound)

	order := e.f.Order(e.user, e.service, ds.OrderStatusNew, date("2025-10-01"), date("2025-10-02"), "20000", now)
	_, err = e.svc.Reschedule(ctx, order.ID, date("2025-10-03"), ptr(date("2025-10-01")))
	require.ErrorIs(t, err, pricing.ErrInvalidDateRange)
}

func TestUpdateStatus_Permissive(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	order := e.f.Order(e.user, e.service, ds.OrderStatusPaid, date("2025-10-01"), date("2025-10-02"), "20000", now)

	got, err := e.svc.UpdateStatus(ctx, order.ID, ds.OrderStatusNew)
	require.NoError(t, err)
	assert.Equal(t, ds.OrderStatusNew, got.Status)

	_, err = e.svc.UpdateStatus(ctx, order.ID, "archived")
	require.ErrorIs(t, err, orders.ErrInvalidStatus)

	_, err = e.svc.UpdateStatus(ctx, order.ID, ds.OrderStatusCompleted)
	require.ErrorIs(t, err, orders.ErrInvalidStatus)

	_, err = e.svc.UpdateStatus(ctx, 999, ds.OrderStatusCancelled)
	require.ErrorIs(t, err, orders.ErrOrderNotFound)
}

func TestList_FiltersByUserAndStatus(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	other := e.f.User("other@example.com", 0)
	e.f.Order(e.user, e.service, ds.OrderStatusNew, date("2025-10-01"), date("2025-10-02"), "20000", now)
	e.f.Order(e.user, e.service, ds.OrderStatusPaid, date("2025-10-01"), date("2025-10-02"), "20000", now)
	e.f.Order(other, e.service, ds.OrderStatusPaid, date("2025-10-01"), date("2025-10-02"), "20000", now)

	mine, err := e.svc.List(ctx, &e.user.ID, "")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	paid, err := e.svc.List(ctx, nil, ds.OrderStatusPaid)
	require.NoError(t, err)
	assert.Len(t, paid, 2)
}
