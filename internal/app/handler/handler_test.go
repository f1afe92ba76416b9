package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"adagency/internal/app/catalog"
	"adagency/internal/app/config"
	"adagency/internal/app/ds"
	"adagency/internal/app/dto"
	"adagency/internal/app/handler"
	"adagency/internal/app/middleware"
	"adagency/internal/app/orders"
	"adagency/internal/app/payment"
	"adagency/internal/app/repository/repotest"
	"adagency/internal/app/role"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 9, 20, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

type memCache map[string][]byte

func (c memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := c[key]
	return v, ok, nil
}

func (c memCache) SetEX(_ context.Context, key string, value []byte, _ time.Duration) error {
	c[key] = value
	return nil
}

func (c memCache) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c, k)
	}
	return nil
}

type memBlacklist map[string]bool

func (b memBlacklist) IsJWTBlacklisted(_ context.Context, token string) (bool, error) {
	return b[token], nil
}

func (b memBlacklist) WriteJWTToBlacklist(_ context.Context, token string, _ time.Duration) error {
	b[token] = true
	return nil
}

type fakeImages struct {
	objects map[string][]byte
	deleted []string
}

func (f *fakeImages) UploadServiceImage(_ context.Context, serviceID uint, data []byte, filename string) (string, error) {
	name := "service_" + filename
	f.objects[name] = data
	return name, nil
}

func (f *fakeImages) Delete(_ context.Context, name string) error {
	f.deleted = append(f.deleted, name)
	delete(f.objects, name)
	return nil
}

func (f *fakeImages) URL(_ context.Context, name string) (string, error) {
	return "http://minio.local/service-images/" + name, nil
}

type env struct {
	t      *testing.T
	f      *repotest.Fixture
	cfg    *config.Config
	router *gin.Engine
	bl     memBlacklist
	images *fakeImages
}

func newEnv(t *testing.T) *env {
	gin.SetMode(gin.TestMode)
	dto.RegisterValidators()

	f := repotest.NewFixture(t)
	cfg := &config.Config{JWT: config.JWTConfig{Token: "secret", ExpiresIn: time.Hour, SigningMethod: jwt.SigningMethodHS256}}
	bl := memBlacklist{}
	images := &fakeImages{objects: map[string][]byte{}}

	h := handler.NewAPIHandler(
		f.Repo(),
		catalog.New(f.Repo(), memCache{}, catalog.TTL{}),
		orders.NewService(f.Repo()).WithClock(clock),
		payment.NewService(f.Repo()).WithClock(clock),
		images,
		handler.NewAuthHandler(f.Repo(), bl, cfg),
	)

	router := gin.New()
	h.RegisterAPIRoutes(router, middleware.NewAuthMiddleware(bl, cfg))

	return &env{t: t, f: f, cfg: cfg, router: router, bl: bl, images: images}
}

func (e *env) token(u *ds.User) string {
	e.t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, ds.JWTClaims{
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()},
		UserID:         u.ID,
		Role:           u.Role,
	})
	s, err := token.SignedString([]byte(e.cfg.JWT.Token))
	require.NoError(e.t, err)
	return s
}

func (e *env) staff(email string, r role.Role) *ds.User {
	e.t.Helper()
	u := &ds.User{Email: email, PasswordHash: "x", Role: r}
	require.NoError(e.t, e.f.Repo().CreateUser(context.Background(), u))
	return u
}

func (e *env) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// catalogFixture услуга 10000/день с камерой 2000 и съёмочной группой 3000
func catalogFixture(e *env) (*ds.Service, *ds.Resource, *ds.Resource) {
	camera := e.f.Resource("Камера", "2000", true)
	crew := e.f.Resource("Съёмочная группа", "3000", true)
	svc := e.f.Service("ТВ-ролик", "10000", camera, crew)
	return svc, camera, crew
}

func TestCreateOrder(t *testing.T) {
	e := newEnv(t)
	svc, camera, crew := catalogFixture(e)
	client := e.f.User("client@example.com", 0)

	w := e.do(http.MethodPost, "/api/orders", e.token(client), gin.H{
		"service_id": svc.ID,
		"event_date": "2025-10-01",
		"end_date":   "2025-10-05",
		"resources":  []uint{camera.ID, crew.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "75000", body["total"])
	assert.NotZero(t, body["orderId"])
}

func TestCreateOrder_Errors(t *testing.T) {
	e := newEnv(t)
	svc, _, _ := catalogFixture(e)
	token := e.token(e.f.User("client@example.com", 0))

	cases := []struct {
		name string
		body gin.H
		want int
	}{
		{"inverted range", gin.H{"service_id": svc.ID, "event_date": "2025-10-05", "end_date": "2025-10-01"}, http.StatusBadRequest},
		{"unknown service", gin.H{"service_id": 999, "event_date": "2025-10-01"}, http.StatusNotFound},
		{"bad date format", gin.H{"service_id": svc.ID, "event_date": "01.10.2025"}, http.StatusBadRequest},
		{"missing service", gin.H{"event_date": "2025-10-01"}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := e.do(http.MethodPost, "/api/orders", token, tc.body)
			assert.Equal(t, tc.want, w.Code, w.Body.String())
			assert.Equal(t, "fail", decode(t, w)["status"])
		})
	}

	w := e.do(http.MethodPost, "/api/orders", "", gin.H{"service_id": svc.ID, "event_date": "2025-10-01"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateOrder_ClientCannotOrderForOthers(t *testing.T) {
	e := newEnv(t)
	svc, _, _ := catalogFixture(e)
	alice := e.f.User("alice@example.com", 0)
	bob := e.f.User("bob@example.com", 0)

	w := e.do(http.MethodPost, "/api/orders", e.token(alice), gin.H{
		"user_id": bob.ID, "service_id": svc.ID, "event_date": "2025-10-01",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	id := uint(decode(t, w)["orderId"].(float64))
	order, err := e.f.Repo().GetOrderByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, order.UserID)
}

func TestQuote_ShowsDiscountedTotal(t *testing.T) {
	e := newEnv(t)
	svc, camera, crew := catalogFixture(e)
	client := e.f.User("client@example.com", 10)

	w := e.do(http.MethodPost, "/api/orders/quote", e.token(client), gin.H{
		"service_id": svc.ID,
		"event_date": "2025-10-01",
		"end_date":   "2025-10-05",
		"resources":  []uint{camera.ID, crew.ID},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.EqualValues(t, 5, body["duration_days"])
	assert.Equal(t, "75000", body["total"])
	assert.Equal(t, "67500", body["discounted_total"])
	assert.EqualValues(t, 10, body["personal_discount"])

	list, err := e.f.Repo().ListOrders(context.Background(), nil, "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRescheduleOrder(t *testing.T) {
	e := newEnv(t)
	svc, _, _ := catalogFixture(e)
	client := e.f.User("client@example.com", 0)
	token := e.token(client)
	paid := e.f.Order(client, svc, ds.OrderStatusPaid, repotest.Date("2025-10-01"), repotest.Date("2025-10-05"), "50000", now)

	path := "/api/orders/" + itoa(paid.ID) + "/reschedule"

	w := e.do(http.MethodPost, path, token, gin.H{"event_date": "2025-10-10", "end_date": "2025-10-14"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "2025-10-10", body["event_date"])
	assert.Equal(t, "50000", body["total_cost"])

	w = e.do(http.MethodPost, path, token, gin.H{"event_date": "2025-10-10", "end_date": "2025-10-12"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPost, "/api/orders/999/reschedule", token, gin.H{"event_date": "2025-10-10"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	stranger := e.f.User("other@example.com", 0)
	w = e.do(http.MethodPost, path, e.token(stranger), gin.H{"event_date": "2025-10-10", "end_date": "2025-10-14"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateOrderStatus(t *testing.T) {
	e := newEnv(t)
	svc, _, _ := catalogFixture(e)
	client := e.f.User("client@example.com", 0)
	manager := e.staff("manager@example.com", role.Manager)
	o := e.f.Order(client, svc, ds.OrderStatusNew, repotest.Date("2025-10-01"), repotest.Date("2025-10-01"), "10000", now)
	path := "/api/orders/" + itoa(o.ID) + "/status"

	w := e.do(http.MethodPatch, path, e.token(client), gin.H{"status": "cancelled"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(http.MethodPatch, path, e.token(manager), gin.H{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPatch, path, e.token(manager), gin.H{"status": "completed"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPatch, path, e.token(manager), gin.H{"status": "cancelled"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "cancelled", decode(t, w)["status"])
}

func TestGetOrders_DisplayStatusAndOwnership(t *testing.T) {
	e := newEnv(t)
	svc, _, _ := catalogFixture(e)
	alice := e.f.User("alice@example.com", 0)
	bob := e.f.User("bob@example.com", 0)
	director := e.staff("director@example.com", role.Director)

	e.f.Order(alice, svc, ds.OrderStatusPaid, repotest.Date("2025-09-01"), repotest.Date("2025-09-02"), "20000", now)
	bobs := e.f.Order(bob, svc, ds.OrderStatusNew, repotest.Date("2025-10-01"), repotest.Date("2025-10-01"), "10000", now)

	w := e.do(http.MethodGet, "/api/orders", e.token(alice), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list dto.OrderListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Orders, 1)
	assert.Equal(t, "paid", list.Orders[0].Status)
	assert.Equal(t, "completed", list.Orders[0].DisplayStatus)

	w = e.do(http.MethodGet, "/api/orders", e.token(director), nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Orders, 2)

	w = e.do(http.MethodGet, "/api/orders/"+itoa(bobs.ID), e.token(alice), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(http.MethodGet, "/api/orders/"+itoa(bobs.ID), e.token(bob), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ТВ-ролик", decode(t, w)["service_name"])
}

func TestPaymentFlow(t *testing.T) {
	e := newEnv(t)
	svc, _, _ := catalogFixture(e)
	client := e.f.User("client@example.com", 0)
	manager := e.staff("manager@example.com", role.Manager)
	for i := 0; i < 3; i++ {
		e.f.Order(client, svc, ds.OrderStatusPaid, repotest.Date("2025-10-01"), repotest.Date("2025-10-01"), "10000", now)
	}
	o := e.f.Order(client, svc, ds.OrderStatusNew, repotest.Date("2025-10-01"), repotest.Date("2025-10-01"), "10000", now)

	w := e.do(http.MethodPost, "/api/payments", e.token(client), gin.H{"order_id": o.ID, "amount": "10000"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "pending", decode(t, w)["status"])

	w = e.do(http.MethodPost, "/api/payments", e.token(client), gin.H{"order_id": 999, "amount": "10"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	confirm := "/api/payments/" + itoa(o.ID) + "/confirm"
	w = e.do(http.MethodPatch, confirm, e.token(client), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(http.MethodPatch, confirm, e.token(manager), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res dto.ConfirmPaymentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "paid", res.Order.Status)
	assert.EqualValues(t, 4, res.MonthlyOrders)
	assert.Equal(t, 5, res.PersonalDiscount)
	assert.True(t, res.DiscountChanged)

	w = e.do(http.MethodPatch, confirm, e.token(manager), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Текущий статус заказа не допускает эту операцию", decode(t, w)["message"])

	w = e.do(http.MethodGet, "/api/auth/profile", e.token(client), nil)
	require.Equal(t, http.StatusOK, w.Code)
	profile := decode(t, w)
	assert.EqualValues(t, 5, profile["personal_discount"])
	assert.EqualValues(t, 1, profile["order_count"])
}

func TestCatalogEndpoints(t *testing.T) {
	e := newEnv(t)
	manager := e.staff("manager@example.com", role.Manager)
	client := e.f.User("client@example.com", 0)

	w := e.do(http.MethodPost, "/api/resources", e.token(manager), gin.H{"name": "Камера", "type": "equipment", "cost": "2000"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resourceID := uint(decode(t, w)["id"].(float64))

	w = e.do(http.MethodPost, "/api/services", e.token(client), gin.H{"name": "ТВ", "type": "tv", "base_price": "10000"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(http.MethodPost, "/api/services", e.token(manager), gin.H{
		"name": "ТВ", "type": "tv", "base_price": "10000", "resource_ids": []uint{resourceID},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created dto.ServiceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, created.IsAvailable)
	require.Len(t, created.Resources, 1)

	w = e.do(http.MethodGet, "/api/services?available=true", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["total"])

	w = e.do(http.MethodPut, "/api/services/"+itoa(created.ID), e.token(manager), gin.H{"is_available": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.do(http.MethodGet, "/api/services?available=true", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode(t, w)["total"], "update must invalidate the cached list")

	w = e.do(http.MethodPost, "/api/services", e.token(manager), gin.H{"name": "ТВ", "type": "cinema", "base_price": "1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServiceResources_UnknownResource(t *testing.T) {
	e := newEnv(t)
	svc, _, _ := catalogFixture(e)
	manager := e.staff("manager@example.com", role.Manager)

	w := e.do(http.MethodPost, "/api/services", e.token(manager), gin.H{
		"name": "Баннер", "type": "outdoor", "base_price": "500", "resource_ids": []uint{9999},
	})
	require.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
	assert.Equal(t, "Ресурс не найден", decode(t, w)["message"])

	w = e.do(http.MethodPut, "/api/services/"+itoa(svc.ID)+"/resources", e.token(manager), gin.H{"resource_ids": []uint{9999}})
	require.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
	assert.Equal(t, "Ресурс не найден", decode(t, w)["message"])

	w = e.do(http.MethodGet, "/api/services/"+itoa(svc.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got dto.ServiceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got.Resources, 2)
}

func TestDeleteInUse(t *testing.T) {
	e := newEnv(t)
	svc, camera, _ := catalogFixture(e)
	client := e.f.User("client@example.com", 0)
	manager := e.staff("manager@example.com", role.Manager)
	e.f.Order(client, svc, ds.OrderStatusNew, repotest.Date("2025-10-01"), repotest.Date("2025-10-01"), "12000", now, camera)

	w := e.do(http.MethodDelete, "/api/services/"+itoa(svc.ID), e.token(manager), nil)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Equal(t, "нельзя удалить: запись используется", decode(t, w)["message"])

	w = e.do(http.MethodDelete, "/api/resources/"+itoa(camera.ID), e.token(manager), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodDelete, "/api/resources/999", e.token(manager), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadServiceImage(t *testing.T) {
	e := newEnv(t)
	svc, _, _ := catalogFixture(e)
	manager := e.staff("manager@example.com", role.Manager)

	upload := func(filename string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, _ = part.Write([]byte("fake image bytes"))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/services/"+itoa(svc.ID)+"/image", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+e.token(manager))
		w := httptest.NewRecorder()
		e.router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusBadRequest, upload("virus.exe").Code)

	w := upload("first.png")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = upload("second.png")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"service_first.png"}, e.images.deleted)

	w = e.do(http.MethodGet, "/api/services/"+itoa(svc.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://minio.local/service-images/service_second.png", decode(t, w)["image_url"])
}

func TestAuthFlow(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, "/api/auth/register", "", gin.H{"email": "New@Example.com", "password": "secret1", "first_name": "Ива"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = e.do(http.MethodPost, "/api/auth/register", "", gin.H{"email": "new@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "new@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "new@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	assert.Equal(t, "client", login.Role)
	assert.Equal(t, 3600, login.ExpiresIn)

	w = e.do(http.MethodPut, "/api/auth/profile", login.Token, gin.H{"phone": "+7 900 000-00-00"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	profile := decode(t, w)
	assert.Equal(t, "+7 900 000-00-00", profile["phone"])
	assert.Equal(t, "Ива", profile["first_name"])

	w = e.do(http.MethodPost, "/api/auth/logout", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, e.bl[login.Token])

	w = e.do(http.MethodGet, "/api/auth/profile", login.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPing(t *testing.T) {
	e := newEnv(t)
	w := e.do(http.MethodGet, "/ping", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}

func itoa(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}
