package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartsvc "github.com/lokapasar/lokapasar-backend/internal/cart"
	catalogsvc "github.com/lokapasar/lokapasar-backend/internal/catalog"
	chatsvc "github.com/lokapasar/lokapasar-backend/internal/chat"
	discountsvc "github.com/lokapasar/lokapasar-backend/internal/discounts"
	ordersvc "github.com/lokapasar/lokapasar-backend/internal/orders"
	paymentsvc "github.com/lokapasar/lokapasar-backend/internal/payments"
	usersvc "github.com/lokapasar/lokapasar-backend/internal/users"
	pkgauth "github.com/lokapasar/lokapasar-backend/pkg/auth"
	"github.com/lokapasar/lokapasar-backend/pkg/config"
	"github.com/lokapasar/lokapasar-backend/pkg/enums"
	"github.com/lokapasar/lokapasar-backend/pkg/logger"
	"github.com/lokapasar/lokapasar-backend/pkg/types"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubCatalog struct{}

func (stubCatalog) ListCategories(context.Context) ([]catalogsvc.CategoryDTO, error) {
	return []catalogsvc.CategoryDTO{}, nil
}
func (stubCatalog) CreateCategory(context.Context, string) (*catalogsvc.CategoryDTO, error) {
	return &catalogsvc.CategoryDTO{}, nil
}
func (stubCatalog) CreateProduct(context.Context, catalogsvc.CreateProductInput) (*catalogsvc.ProductDTO, error) {
	return &catalogsvc.ProductDTO{}, nil
}
func (stubCatalog) UpdateProduct(context.Context, int64, catalogsvc.UpdateProductInput) (*catalogsvc.ProductDTO, error) {
	return &catalogsvc.ProductDTO{}, nil
}
func (stubCatalog) DeleteProduct(context.Context, int64) error { return nil }
func (stubCatalog) GetProduct(context.Context, int64) (*catalogsvc.ProductDTO, error) {
	return &catalogsvc.ProductDTO{}, nil
}
func (stubCatalog) ListProducts(context.Context, bool) ([]catalogsvc.ProductDTO, error) {
	return []catalogsvc.ProductDTO{{Name: "Keripik"}}, nil
}
func (stubCatalog) CreateUnit(context.Context, int64, catalogsvc.UnitInput) (*catalogsvc.UnitDTO, error) {
	return &catalogsvc.UnitDTO{}, nil
}
func (stubCatalog) UpdateUnit(context.Context, int64, catalogsvc.UnitInput) (*catalogsvc.UnitDTO, error) {
	return &catalogsvc.UnitDTO{}, nil
}
func (stubCatalog) DeleteUnit(context.Context, int64) error { return nil }

type stubDiscountSvc struct{}

func (stubDiscountSvc) Create(context.Context, discountsvc.DiscountInput) (*discountsvc.DiscountDTO, error) {
	return &discountsvc.DiscountDTO{}, nil
}
func (stubDiscountSvc) Update(context.Context, int64, discountsvc.DiscountInput) (*discountsvc.DiscountDTO, error) {
	return &discountsvc.DiscountDTO{}, nil
}
func (stubDiscountSvc) Delete(context.Context, int64) error { return nil }
func (stubDiscountSvc) Get(context.Context, int64) (*discountsvc.DiscountDTO, error) {
	return &discountsvc.DiscountDTO{}, nil
}
func (stubDiscountSvc) List(context.Context) ([]discountsvc.DiscountDTO, error) {
	return []discountsvc.DiscountDTO{}, nil
}

type stubCartSvc struct{}

func (stubCartSvc) Add(context.Context, int64, int64, int) error { return nil }
func (stubCartSvc) List(context.Context, int64) (*cartsvc.CartDTO, error) {
	return &cartsvc.CartDTO{}, nil
}
func (stubCartSvc) UpdateQuantity(context.Context, int64, int64, int) error { return nil }
func (stubCartSvc) Remove(context.Context, int64, int64) error              { return nil }
func (stubCartSvc) Clear(context.Context, int64) error                      { return nil }

type stubOrderSvc struct{}

func (stubOrderSvc) PlaceOrder(context.Context, ordersvc.PlaceOrderInput) (*ordersvc.OrderDTO, error) {
	return &ordersvc.OrderDTO{}, nil
}
func (stubOrderSvc) GetForUser(context.Context, int64, int64) (*ordersvc.OrderDTO, error) {
	return &ordersvc.OrderDTO{}, nil
}
func (stubOrderSvc) ListForUser(context.Context, int64) ([]ordersvc.OrderDTO, error) {
	return []ordersvc.OrderDTO{}, nil
}
func (stubOrderSvc) List(context.Context) ([]ordersvc.OrderDTO, error) {
	return []ordersvc.OrderDTO{}, nil
}
func (stubOrderSvc) UpdateStatus(context.Context, int64, enums.OrderStatus) (*ordersvc.OrderDTO, error) {
	return &ordersvc.OrderDTO{}, nil
}
func (stubOrderSvc) UpdatePaymentStatus(context.Context, int64, enums.PaymentStatus) (*ordersvc.OrderDTO, error) {
	return &ordersvc.OrderDTO{}, nil
}

type stubPaymentSvc struct{}

func (stubPaymentSvc) Create(context.Context, paymentsvc.MethodInput) (*paymentsvc.PaymentMethodDTO, error) {
	return &paymentsvc.PaymentMethodDTO{}, nil
}
func (stubPaymentSvc) Update(context.Context, int64, paymentsvc.MethodInput) (*paymentsvc.PaymentMethodDTO, error) {
	return &paymentsvc.PaymentMethodDTO{}, nil
}
func (stubPaymentSvc) Delete(context.Context, int64) error { return nil }
func (stubPaymentSvc) Get(context.Context, int64) (*paymentsvc.PaymentMethodDTO, error) {
	return &paymentsvc.PaymentMethodDTO{}, nil
}
func (stubPaymentSvc) List(context.Context, bool) ([]paymentsvc.PaymentMethodDTO, error) {
	return []paymentsvc.PaymentMethodDTO{}, nil
}
func (stubPaymentSvc) UploadProof(context.Context, int64, int64, string) (*string, error) {
	path := "uploads/proof/x.png"
	return &path, nil
}

type stubChatSvc struct{}

func (stubChatSvc) Send(context.Context, chatsvc.SendInput) (*chatsvc.MessageDTO, error) {
	return &chatsvc.MessageDTO{}, nil
}
func (stubChatSvc) Thread(context.Context, int64) (*chatsvc.ThreadDTO, error) {
	return &chatsvc.ThreadDTO{}, nil
}
func (stubChatSvc) MarkRead(context.Context, int64, bool) error { return nil }
func (stubChatSvc) Inbox(context.Context) ([]chatsvc.ThreadSummaryDTO, error) {
	return []chatsvc.ThreadSummaryDTO{}, nil
}

type stubUserSvc struct{}

func (stubUserSvc) Get(context.Context, int64) (*usersvc.UserDTO, error) {
	return &usersvc.UserDTO{}, nil
}
func (stubUserSvc) List(context.Context) ([]usersvc.UserDTO, error) {
	return []usersvc.UserDTO{}, nil
}
func (stubUserSvc) UpdateProfile(context.Context, int64, usersvc.ProfileInput) (*usersvc.UserDTO, error) {
	return &usersvc.UserDTO{}, nil
}

func testRouter(t *testing.T) (http.Handler, config.JWTConfig) {
	t.Helper()
	jwtCfg := config.JWTConfig{Secret: "test-secret", Issuer: "lokapasar-test", ExpirationMinutes: 30}
	cfg := &config.Config{
		App: config.AppConfig{Env: "dev", Port: "8080"},
		JWT: jwtCfg,
	}
	router := NewRouter(Deps{
		Config:    cfg,
		Logger:    logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard}),
		DBPinger:  stubPinger{},
		Catalog:   stubCatalog{},
		Discounts: stubDiscountSvc{},
		Cart:      stubCartSvc{},
		Orders:    stubOrderSvc{},
		Payments:  stubPaymentSvc{},
		Chat:      stubChatSvc{},
		Users:     stubUserSvc{},
	})
	return router, jwtCfg
}

func bearerFor(t *testing.T, cfg config.JWTConfig, userID int64, isAdmin bool) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg, time.Now(), pkgauth.AccessTokenPayload{
		UserID:  userID,
		IsAdmin: isAdmin,
	})
	require.NoError(t, err)
	return "Bearer " + token
}

func TestHealthAndPublicRoutesNeedNoAuth(t *testing.T) {
	router, _ := testRouter(t)

	for _, path := range []string{
		"/health/live",
		"/api/v1/public/products",
		"/api/v1/public/categories",
		"/api/v1/public/payment-methods",
	} {
		r := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestHealthReadyReportsMissingCache(t *testing.T) {
	router, _ := testRouter(t)

	r := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	router, _ := testRouter(t)

	for _, path := range []string{
		"/api/v1/cart",
		"/api/v1/orders",
		"/api/v1/chat/messages",
		"/api/admin/v1/products",
	} {
		r := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestAdminRoutesRejectNonAdmin(t *testing.T) {
	router, jwtCfg := testRouter(t)

	r := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders", nil)
	r.Header.Set("Authorization", bearerFor(t, jwtCfg, 1, false))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	assert.Equal(t, http.StatusForbidden, w.Code)

	r = httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders", nil)
	r.Header.Set("Authorization", bearerFor(t, jwtCfg, 1, true))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthedUserRoutes(t *testing.T) {
	router, jwtCfg := testRouter(t)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	r.Header.Set("Authorization", bearerFor(t, jwtCfg, 7, false))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	var body types.SuccessEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.NotNil(t, body.Data)
}
