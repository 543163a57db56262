package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lokapasar/lokapasar-backend/api/middleware"
	ordersvc "github.com/lokapasar/lokapasar-backend/internal/orders"
	"github.com/lokapasar/lokapasar-backend/pkg/enums"
)

type stubOrderService struct {
	placeFn func(ctx context.Context, input ordersvc.PlaceOrderInput) (*ordersvc.OrderDTO, error)
}

func (s stubOrderService) PlaceOrder(ctx context.Context, input ordersvc.PlaceOrderInput) (*ordersvc.OrderDTO, error) {
	if s.placeFn != nil {
		return s.placeFn(ctx, input)
	}
	return &ordersvc.OrderDTO{}, nil
}

func (s stubOrderService) GetForUser(context.Context, int64, int64) (*ordersvc.OrderDTO, error) {
	return &ordersvc.OrderDTO{}, nil
}

func (s stubOrderService) ListForUser(context.Context, int64) ([]ordersvc.OrderDTO, error) {
	return nil, nil
}

func (s stubOrderService) List(context.Context) ([]ordersvc.OrderDTO, error) {
	return nil, nil
}

func (s stubOrderService) UpdateStatus(context.Context, int64, enums.OrderStatus) (*ordersvc.OrderDTO, error) {
	return &ordersvc.OrderDTO{}, nil
}

func (s stubOrderService) UpdatePaymentStatus(context.Context, int64, enums.PaymentStatus) (*ordersvc.OrderDTO, error) {
	return &ordersvc.OrderDTO{}, nil
}

func placeOrderPost(t *testing.T, handler http.HandlerFunc, userID int64, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	r = r.WithContext(middleware.WithUserID(r.Context(), userID))
	w := httptest.NewRecorder()
	handler(w, r)
	return w
}

func TestPlaceOrderDefaultsShippingAndSource(t *testing.T) {
	var got ordersvc.PlaceOrderInput
	svc := stubOrderService{
		placeFn: func(_ context.Context, input ordersvc.PlaceOrderInput) (*ordersvc.OrderDTO, error) {
			got = input
			return &ordersvc.OrderDTO{}, nil
		},
	}

	w := placeOrderPost(t, PlaceOrder(svc, nil), 7,
		`{"payment_id":1,"items":[{"unit_id":3,"quantity":2}]}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if got.ShippingType != enums.ShippingTypePickup {
		t.Fatalf("expected default shipping type pickup, got %q", got.ShippingType)
	}
	if got.Source != enums.OrderSourceDirect {
		t.Fatalf("expected default source direct, got %q", got.Source)
	}
	if got.UserID != 7 {
		t.Fatalf("expected user id from context, got %d", got.UserID)
	}
}

func TestPlaceOrderExplicitShippingAndSource(t *testing.T) {
	var got ordersvc.PlaceOrderInput
	svc := stubOrderService{
		placeFn: func(_ context.Context, input ordersvc.PlaceOrderInput) (*ordersvc.OrderDTO, error) {
			got = input
			return &ordersvc.OrderDTO{}, nil
		},
	}

	w := placeOrderPost(t, PlaceOrder(svc, nil), 7,
		`{"payment_id":1,"items":[{"unit_id":3,"quantity":2}],"shipping_type":"delivery","source":"cart"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if got.ShippingType != enums.ShippingTypeDelivery {
		t.Fatalf("expected delivery, got %q", got.ShippingType)
	}
	if got.Source != enums.OrderSourceCart {
		t.Fatalf("expected cart source, got %q", got.Source)
	}
}

func TestPlaceOrderRejectsUnknownShippingType(t *testing.T) {
	called := false
	svc := stubOrderService{
		placeFn: func(context.Context, ordersvc.PlaceOrderInput) (*ordersvc.OrderDTO, error) {
			called = true
			return &ordersvc.OrderDTO{}, nil
		},
	}

	w := placeOrderPost(t, PlaceOrder(svc, nil), 7,
		`{"payment_id":1,"items":[{"unit_id":3,"quantity":2}],"shipping_type":"drone"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if called {
		t.Fatal("service must not be called for an invalid shipping type")
	}
}

func TestPlaceOrderRequiresUserContext(t *testing.T) {
	w := placeOrderPost(t, PlaceOrder(stubOrderService{}, nil), 0,
		`{"payment_id":1,"items":[{"unit_id":3,"quantity":2}]}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}
