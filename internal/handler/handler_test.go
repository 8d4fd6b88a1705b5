package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/config"
	"github.com/iliyamo/restaurant-pos/internal/middleware"
	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/order"
	"github.com/iliyamo/restaurant-pos/internal/payment"
	"github.com/iliyamo/restaurant-pos/internal/utils"
)

const testSecret = "handler-secret"

func do(e *echo.Echo, method, path, body, token string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func bearer(t *testing.T, role string, perms ...string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(testSecret, 1, "staff", role, perms, 5)
	if err != nil {
		t.Fatal(err)
	}
	return tok.Token
}

func orderServer(f *fakeOrders) *echo.Echo {
	e := echo.New()
	h := NewOrderHandler(f)
	e.GET("/v1/menu/:tableNumber", h.Menu)
	e.POST("/v1/orders", h.Create)
	e.GET("/v1/orders/:id", h.Get)
	e.GET("/v1/orders/:id/receipt", h.Receipt)
	staff := e.Group("/v1", middleware.JWTAuth(testSecret))
	staff.GET("/orders", h.List, middleware.RequirePermission("orders.view"))
	staff.PUT("/orders/:id", h.Update, middleware.RequirePermission("orders.edit", "orders.update_status"))
	staff.DELETE("/orders/:id", h.Delete, middleware.RequirePermission("orders.delete"))
	return e
}

func TestCreateOrderStatuses(t *testing.T) {
	f := newFakeOrders()
	e := orderServer(f)

	rec := do(e, http.MethodPost, "/v1/orders", `{"tableId":7,"customerName":"Ada","orderItems":[{"productId":1,"quantity":2,"price":"10.00"}]}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create code = %d body = %s", rec.Code, rec.Body)
	}
	if f.created.TableID != 7 || len(f.created.Items) != 1 || f.created.Items[0].Price.String() != "10" {
		t.Fatalf("input = %+v", f.created)
	}

	cases := []struct {
		err  error
		want int
	}{
		{order.ErrEmptyCart, http.StatusBadRequest},
		{fmt.Errorf("%w: bad qty", order.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("table: %w", errNotFound()), http.StatusNotFound},
	}
	for _, tc := range cases {
		f.createErr = tc.err
		if rec := do(e, http.MethodPost, "/v1/orders", `{"tableId":7}`, ""); rec.Code != tc.want {
			t.Errorf("err %v: code = %d, want %d", tc.err, rec.Code, tc.want)
		}
	}
	if rec := do(e, http.MethodPost, "/v1/orders", `{bad`, ""); rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body code = %d", rec.Code)
	}
}

func TestGetOrderAndMenu(t *testing.T) {
	e := orderServer(newFakeOrders())

	rec := do(e, http.MethodGet, "/v1/orders/1", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	var got model.OrderWithItems
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Total.StringFixed(2) != "25.50" {
		t.Fatalf("total = %s", got.Total)
	}
	if rec := do(e, http.MethodGet, "/v1/orders/99", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("missing code = %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/v1/orders/abc", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id code = %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/v1/menu/7", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("menu code = %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/v1/menu/0", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("menu 0 code = %d", rec.Code)
	}
}

func TestReceiptRequiresPayment(t *testing.T) {
	f := newFakeOrders()
	f.recErr = order.ErrNotPaid
	e := orderServer(f)
	if rec := do(e, http.MethodGet, "/v1/orders/1/receipt", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("unpaid code = %d", rec.Code)
	}
	f.recErr = nil
	f.receipt = &order.Receipt{OrderID: 1, CustomerName: "Client"}
	if rec := do(e, http.MethodGet, "/v1/orders/1/receipt", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("paid code = %d", rec.Code)
	}
}

func TestUpdateOrderPermissions(t *testing.T) {
	f := newFakeOrders()
	e := orderServer(f)
	cashier := bearer(t, "cashier", "orders.view", "orders.update_status")

	rec := do(e, http.MethodPut, "/v1/orders/1", `{"status":"preparing"}`, cashier)
	if rec.Code != http.StatusOK {
		t.Fatalf("status update code = %d body = %s", rec.Code, rec.Body)
	}
	if f.patched.Status == nil || *f.patched.Status != model.OrderPreparing {
		t.Fatalf("patch = %+v", f.patched)
	}

	if rec := do(e, http.MethodPut, "/v1/orders/1", `{"notes":"no onions"}`, cashier); rec.Code != http.StatusForbidden {
		t.Fatalf("notes by cashier code = %d", rec.Code)
	}
	manager := bearer(t, "manager", "orders.edit")
	if rec := do(e, http.MethodPut, "/v1/orders/1", `{"notes":"no onions"}`, manager); rec.Code != http.StatusOK {
		t.Fatalf("notes by manager code = %d", rec.Code)
	}

	f.updateErr = fmt.Errorf("%w: completed -> pending", order.ErrInvalidTransition)
	if rec := do(e, http.MethodPut, "/v1/orders/2", `{"status":"pending"}`, cashier); rec.Code != http.StatusConflict {
		t.Fatalf("invalid transition code = %d", rec.Code)
	}
	if rec := do(e, http.MethodPut, "/v1/orders/1", `{"status":"ready"}`, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous code = %d", rec.Code)
	}
}

func TestListAndDeleteOrders(t *testing.T) {
	f := newFakeOrders()
	e := orderServer(f)
	viewer := bearer(t, "employee", "orders.view")

	rec := do(e, http.MethodGet, "/v1/orders?active=true", "", viewer)
	var list []model.OrderWithItems
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil || len(list) != 1 || list[0].ID != 1 {
		t.Fatalf("active list = %s (%v)", rec.Body, err)
	}
	if rec := do(e, http.MethodDelete, "/v1/orders/1", "", viewer); rec.Code != http.StatusForbidden {
		t.Fatalf("delete without permission code = %d", rec.Code)
	}
	admin := bearer(t, "admin")
	if rec := do(e, http.MethodDelete, "/v1/orders/1", "", admin); rec.Code != http.StatusNoContent {
		t.Fatalf("delete code = %d", rec.Code)
	}
	if len(f.deleted) != 1 || f.deleted[0] != 1 {
		t.Fatalf("deleted = %v", f.deleted)
	}
}

func TestAuthFlow(t *testing.T) {
	hash, err := utils.HashPassword("secret", 4)
	if err != nil {
		t.Fatal(err)
	}
	users := &fakeUsers{users: map[string]*model.User{
		"amina": {ID: 5, Username: "amina", PasswordHash: hash, Role: "cashier", Permissions: []string{"orders.view"}, IsActive: true},
	}}
	tokens := &fakeTokens{live: map[string]uint64{}}
	cfg := config.Config{JWTSecret: testSecret, AccessTTLMin: 5, RefreshTTLDays: 1}
	h := NewAuthHandler(cfg, users, tokens)

	e := echo.New()
	e.POST("/v1/auth/login", h.Login)
	e.POST("/v1/auth/refresh", h.Refresh)
	e.POST("/v1/auth/logout", h.Logout)
	e.GET("/v1/me", h.Me, middleware.JWTAuth(testSecret))

	if rec := do(e, http.MethodPost, "/v1/auth/login", `{"username":"amina","password":"wrong"}`, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password code = %d", rec.Code)
	}
	rec := do(e, http.MethodPost, "/v1/auth/login", `{"username":" Amina ","password":"secret"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login code = %d body = %s", rec.Code, rec.Body)
	}
	var resp authResp
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}

	me := do(e, http.MethodGet, "/v1/me", "", resp.Access.Token)
	if me.Code != http.StatusOK || !strings.Contains(me.Body.String(), `"username":"amina"`) {
		t.Fatalf("me = %d %s", me.Code, me.Body)
	}

	rec = do(e, http.MethodPost, "/v1/auth/refresh", `{"refresh_token":"`+resp.Refresh.Token+`"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh code = %d", rec.Code)
	}
	if rec := do(e, http.MethodPost, "/v1/auth/refresh", `{"refresh_token":"`+resp.Refresh.Token+`"}`, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("reused refresh code = %d", rec.Code)
	}

	if rec := do(e, http.MethodPost, "/v1/auth/logout", `{}`, resp.Access.Token); rec.Code != http.StatusNoContent {
		t.Fatalf("logout code = %d", rec.Code)
	}
	if len(tokens.revokedBy) != 1 || tokens.revokedBy[0] != 5 || len(tokens.live) != 0 {
		t.Fatalf("revoked = %v live = %v", tokens.revokedBy, tokens.live)
	}
}

func TestTables(t *testing.T) {
	tables := &fakeTables{}
	h := NewTableHandler(tables, "https://pos.example")
	e := echo.New()
	e.POST("/v1/tables", h.Create)
	e.GET("/v1/tables/:id", h.Get)
	e.PUT("/v1/admin/regenerate-qr-codes", h.RegenerateQRCodes)

	rec := do(e, http.MethodPost, "/v1/tables", `{"number":12}`, "")
	if rec.Code != http.StatusCreated || !strings.Contains(rec.Body.String(), "https://pos.example/table/12") {
		t.Fatalf("create = %d %s", rec.Code, rec.Body)
	}
	if rec := do(e, http.MethodPost, "/v1/tables", `{"number":12}`, ""); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate code = %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/v1/tables/1", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("get code = %d", rec.Code)
	}
	h.BaseURL = "https://new.example"
	if rec := do(e, http.MethodPut, "/v1/admin/regenerate-qr-codes", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("regenerate code = %d", rec.Code)
	}
	if tables.tables[0].QRCode != "https://new.example/table/12" {
		t.Fatalf("qr = %s", tables.tables[0].QRCode)
	}

	e.DELETE("/v1/tables/:id", h.Delete)
	tables.tables[0].Status = model.TableOccupied
	if rec := do(e, http.MethodDelete, "/v1/tables/1", "", ""); rec.Code != http.StatusConflict {
		t.Fatalf("delete occupied code = %d", rec.Code)
	}
	tables.tables[0].Status = model.TableAvailable
	if rec := do(e, http.MethodDelete, "/v1/tables/1", "", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete code = %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/v1/tables/1", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("get deleted code = %d", rec.Code)
	}
}

func TestPaymentEndpoints(t *testing.T) {
	gw := payment.NewGateway(payment.NewRegistryOf(payment.NewCash(true, payment.Options{Currency: "XOF"})),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	h := NewPaymentHandler(gw)
	e := echo.New()
	e.GET("/v1/payments/methods", h.Methods)
	e.POST("/v1/payments/initiate", h.Initiate)
	e.GET("/v1/payments/:method/:transactionId", h.Status)
	e.POST("/v1/payments/:method/webhook", h.Webhook)

	rec := do(e, http.MethodPost, "/v1/payments/initiate", `{"method":"cash","amount":"25.50"}`, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"success":true`) {
		t.Fatalf("initiate = %d %s", rec.Code, rec.Body)
	}
	rec = do(e, http.MethodPost, "/v1/payments/initiate", `{"method":"bitcoin","amount":"1"}`, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"success":false`) {
		t.Fatalf("unsupported = %d %s", rec.Code, rec.Body)
	}
	if rec := do(e, http.MethodPost, "/v1/payments/initiate", `{"method":"cash","amount":"0"}`, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("zero amount code = %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/v1/payments/bitcoin/tx1", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("status unknown method code = %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/v1/payments/cash/CASH_1", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("status code = %d", rec.Code)
	}
	rec = do(e, http.MethodPost, "/v1/payments/bitcoin/webhook", `{"id":"x"}`, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"success":false`) {
		t.Fatalf("webhook = %d %s", rec.Code, rec.Body)
	}
	if rec := do(e, http.MethodGet, "/v1/payments/methods", "", ""); !strings.Contains(rec.Body.String(), `"id":"cash"`) {
		t.Fatalf("methods = %s", rec.Body)
	}
}

func TestHealthWithoutDB(t *testing.T) {
	e := echo.New()
	e.GET("/healthz", Health(nil))
	if rec := do(e, http.MethodGet, "/healthz", "", ""); rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("health = %d %s", rec.Code, rec.Body)
	}
}
