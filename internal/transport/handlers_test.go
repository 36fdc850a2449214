package transport

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"nexbuy/internal/service"
)

func doJSON(t *testing.T, router *testRouter, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	router.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func registerAndLogin(t *testing.T, router *testRouter, email string) (string, UserProfile) {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/users/register", RegisterRequest{
		Email:    email,
		Password: "password123",
		Name:     "Shopper",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/api/users/login", LoginRequest{
		Email:    email,
		Password: "password123",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}

	var login LoginResponse
	decodeBody(t, rec, &login)
	return "Bearer " + login.AccessToken, login.User
}

func TestCartRequiresDeviceHeader(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/cart", nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without device header, got %d", rec.Code)
	}
}

func TestCartAddMergesOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	headers := map[string]string{"X-Device-ID": "device-1"}

	for i := 0; i < 2; i++ {
		rec := doJSON(t, router, http.MethodPost, "/api/cart/items", CartItemRequest{ProductID: "p1"}, headers)
		if rec.Code != http.StatusOK {
			t.Fatalf("add failed: %d %s", rec.Code, rec.Body.String())
		}
	}

	rec := doJSON(t, router, http.MethodGet, "/api/cart", nil, headers)
	var cart CartResponse
	decodeBody(t, rec, &cart)

	if len(cart.Items) != 1 || cart.Items[0].Quantity != 2 {
		t.Errorf("expected one merged line with quantity 2, got %+v", cart.Items)
	}
}

func TestSignedInCartAddEarnsPoints(t *testing.T) {
	router := newTestRouter(t)
	token, profile := registerAndLogin(t, router, "shopper@example.com")
	headers := map[string]string{"X-Device-ID": "device-1", "Authorization": token}

	rec := doJSON(t, router, http.MethodPost, "/api/cart/items", CartItemRequest{ProductID: "p2"}, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("add failed: %d %s", rec.Code, rec.Body.String())
	}

	var resp AddToCartResponse
	decodeBody(t, rec, &resp)
	if resp.Loyalty == nil {
		t.Fatalf("signed-in add should report a loyalty balance")
	}
	if resp.Loyalty.Points != profile.Points+10 {
		t.Errorf("expected %d points, got %d", profile.Points+10, resp.Loyalty.Points)
	}
}

func TestGuestCheckoutIsRejected(t *testing.T) {
	router := newTestRouter(t)
	headers := map[string]string{"X-Device-ID": "device-1"}

	doJSON(t, router, http.MethodPost, "/api/cart/items", CartItemRequest{ProductID: "p1"}, headers)

	rec := doJSON(t, router, http.MethodPost, "/api/orders/checkout", CheckoutHTTPRequest{}, headers)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for guest checkout, got %d", rec.Code)
	}
	if len(router.orders.orders) != 0 {
		t.Errorf("guest checkout must not create an order")
	}
}

func TestCheckoutFlowOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	token, _ := registerAndLogin(t, router, "shopper@example.com")
	headers := map[string]string{"X-Device-ID": "device-1", "Authorization": token}

	doJSON(t, router, http.MethodPost, "/api/cart/items", CartItemRequest{ProductID: "p1"}, headers)

	rec := doJSON(t, router, http.MethodPost, "/api/orders/checkout", CheckoutHTTPRequest{
		ShippingAddress: &ShippingAddressRequest{
			FullName: "Shopper",
			Street:   "1 Main St",
			City:     "Kampala",
			Country:  "UG",
		},
	}, headers)
	if rec.Code != http.StatusCreated {
		t.Fatalf("checkout failed: %d %s", rec.Code, rec.Body.String())
	}

	var order OrderView
	decodeBody(t, rec, &order)
	if order.Status != "pending" {
		t.Errorf("expected pending order, got %s", order.Status)
	}
	if order.Progress != 0 {
		t.Errorf("pending order progress should be 0, got %f", order.Progress)
	}

	// The cart is cleared after checkout
	rec = doJSON(t, router, http.MethodGet, "/api/cart", nil, headers)
	var cart CartResponse
	decodeBody(t, rec, &cart)
	if len(cart.Items) != 0 {
		t.Errorf("cart should be empty after checkout, got %+v", cart.Items)
	}
}

func TestAdminConsoleBlockedForCustomers(t *testing.T) {
	router := newTestRouter(t)
	token, _ := registerAndLogin(t, router, "shopper@example.com")
	headers := map[string]string{"Authorization": token}

	rec := doJSON(t, router, http.MethodGet, "/api/admin/sellers/pending", nil, headers)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for customer on admin console, got %d", rec.Code)
	}
}

func TestSellerApprovalUnlocksConsole(t *testing.T) {
	router := newTestRouter(t)

	adminToken, adminProfile := registerAndLogin(t, router, "admin@nexbuy.shop")
	if adminProfile.Capability != "admin" {
		t.Fatalf("expected admin capability, got %s", adminProfile.Capability)
	}

	sellerToken, sellerProfile := registerAndLogin(t, router, "seller@example.com")
	sellerHeaders := map[string]string{"Authorization": sellerToken}

	// Console is closed before approval
	rec := doJSON(t, router, http.MethodGet, "/api/seller/products", nil, sellerHeaders)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 before approval, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/users/seller-application", SellerApplicationRequest{
		StoreName:        "Gadget Hut",
		StoreDescription: "Handpicked gadgets and accessories",
	}, sellerHeaders)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("application failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/api/admin/sellers/"+sellerProfile.ID+"/approve", nil, map[string]string{"Authorization": adminToken})
	if rec.Code != http.StatusOK {
		t.Fatalf("approval failed: %d %s", rec.Code, rec.Body.String())
	}

	// Console opens after approval
	rec = doJSON(t, router, http.MethodPost, "/api/seller/products", ProductRequest{
		Name:     "USB Hub",
		Price:    25,
		Category: "Electronics",
		Stock:    5,
	}, sellerHeaders)
	if rec.Code != http.StatusCreated {
		t.Errorf("expected listing creation after approval, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestCatalogFiltersExclusiveForGuests(t *testing.T) {
	router := newTestRouter(t)
	headers := map[string]string{"X-Device-ID": "device-1"}

	rec := doJSON(t, router, http.MethodGet, "/api/catalog/products", nil, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("catalog failed: %d %s", rec.Code, rec.Body.String())
	}

	var catalog CatalogResponse
	decodeBody(t, rec, &catalog)
	if len(catalog.Products) == 0 {
		t.Fatalf("expected base catalog products")
	}
	if catalog.Currency != "UGX" {
		t.Errorf("expected default UGX display currency, got %s", catalog.Currency)
	}
	if catalog.Categories[0] != "All" {
		t.Errorf("expected All category first, got %s", catalog.Categories[0])
	}
	for _, p := range catalog.Products {
		if p.IsExclusive {
			t.Errorf("guest catalog must not contain exclusive products")
		}
	}
}

func TestCurrencyPreferenceRoundTrip(t *testing.T) {
	router := newTestRouter(t)
	headers := map[string]string{"X-Device-ID": "device-1"}

	rec := doJSON(t, router, http.MethodPut, "/api/currency", SetCurrencyRequest{Code: "EUR"}, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("set currency failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/api/catalog/products", nil, headers)
	var catalog CatalogResponse
	decodeBody(t, rec, &catalog)
	if catalog.Currency != "EUR" {
		t.Errorf("expected EUR after preference change, got %s", catalog.Currency)
	}

	rec = doJSON(t, router, http.MethodPut, "/api/currency", SetCurrencyRequest{Code: "GBP"}, headers)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unsupported currency should be rejected, got %d", rec.Code)
	}
}

func TestAdviceFallsBackWithoutBackend(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/advice", AdviceRequest{Query: "what should I buy?"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("advice failed: %d %s", rec.Code, rec.Body.String())
	}

	var advice AdviceResponse
	decodeBody(t, rec, &advice)
	if advice.Text != service.FallbackAdvice {
		t.Errorf("expected canned fallback, got %q", advice.Text)
	}
}

func TestDailyClaimOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	token, _ := registerAndLogin(t, router, "shopper@example.com")
	headers := map[string]string{"Authorization": token}

	rec := doJSON(t, router, http.MethodPost, "/api/loyalty/claim", nil, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("claim failed: %d %s", rec.Code, rec.Body.String())
	}

	var result service.AwardResult
	decodeBody(t, rec, &result)
	if result.Awarded != 100 {
		t.Errorf("expected 100 claim points, got %d", result.Awarded)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/loyalty/claim", nil, headers)
	if rec.Code != http.StatusConflict {
		t.Errorf("second claim should return 409, got %d", rec.Code)
	}
}

func TestShippingRatesAdminCRUD(t *testing.T) {
	router := newTestRouter(t)
	adminToken, _ := registerAndLogin(t, router, "admin@nexbuy.shop")
	headers := map[string]string{"Authorization": adminToken}

	rec := doJSON(t, router, http.MethodPut, "/api/admin/shipping-rates", ShippingRateRequest{City: "Kampala", Cost: 15000}, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("upsert failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/api/admin/shipping-rates", nil, headers)
	var listing struct {
		Rates map[string]float64 `json:"rates"`
	}
	decodeBody(t, rec, &listing)
	if listing.Rates["kampala"] != 15000 {
		t.Errorf("expected stored rate, got %+v", listing.Rates)
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/admin/shipping-rates/Kampala", nil, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/admin/shipping-rates/Kampala", nil, headers)
	if rec.Code != http.StatusNotFound {
		t.Errorf("deleting a missing rate should 404, got %d", rec.Code)
	}
}

func TestOrdersForVanishedAccountRejected(t *testing.T) {
	router := newTestRouter(t)

	token, _ := registerAndLogin(t, router, "gone@example.com")

	// The account disappears while the access token is still valid; profile
	// resolution degrades the request to a guest with no user attached.
	delete(router.users.users, "gone@example.com")

	rec := doJSON(t, router, http.MethodGet, "/api/orders", nil, map[string]string{
		"Authorization": token,
	})

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for an unresolved profile, got %d %s", rec.Code, rec.Body.String())
	}
}
