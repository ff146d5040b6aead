package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/reseller-hub/internal/authz"
	"github.com/reseller-hub/internal/config"
	"github.com/reseller-hub/internal/constants"
	"github.com/reseller-hub/internal/models"
	"github.com/reseller-hub/internal/provider"
	"github.com/reseller-hub/internal/repository"
	"github.com/reseller-hub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type routerTestEnv struct {
	cfg           *config.Config
	container     *provider.Container
	auth          *service.AuthService
	authz         *authz.Service
	db            *gorm.DB
	adminToken    string
	auditorToken  string
	resellerToken string
	disabledToken string
}

func setupRouterTest(t *testing.T) *routerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:router_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.Tables()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	cfg := &config.Config{}
	cfg.JWT.SecretKey = "router-test-secret"
	cfg.JWT.ExpireHours = 1
	cfg.Security.LoginRateLimit.WindowSeconds = 60
	cfg.Security.LoginRateLimit.MaxAttempts = 5
	cfg.Shipment.EnforceEligibility = true
	cfg.Shipment.SingleActivePerOrder = true

	authzService, err := authz.NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap roles failed: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	shipmentRepo := repository.NewShipmentRepository(db)
	logRepo := repository.NewShipmentLogRepository(db)
	authService := service.NewAuthService(cfg, userRepo, nil)
	statsService := service.NewStatsService(orderRepo, shipmentRepo, nil, nil, 0, time.UTC)

	c := &provider.Container{
		Config:          cfg,
		UserRepo:        userRepo,
		OrderRepo:       orderRepo,
		ShipmentRepo:    shipmentRepo,
		ShipmentLogRepo: logRepo,
		AuthzService:    authzService,
		AuthService:     authService,
		StatsService:    statsService,
		OrderService:    service.NewOrderService(orderRepo, statsService),
		ShipmentService: service.NewShipmentService(cfg.Shipment, orderRepo, shipmentRepo, logRepo, nil, statsService),
	}

	env := &routerTestEnv{cfg: cfg, container: c, auth: authService, authz: authzService, db: db}
	env.adminToken = createTestUser(t, env, "admin@example.com", constants.RoleAdmin, models.UserStatusActive)
	env.auditorToken = createTestUser(t, env, "auditor@example.com", authz.RoleAuditor, models.UserStatusActive)
	env.resellerToken = createTestUser(t, env, "reseller@example.com", constants.RoleReseller, models.UserStatusActive)
	env.disabledToken = createTestUser(t, env, "disabled@example.com", constants.RoleAdmin, "disabled")
	return env
}

func createTestUser(t *testing.T, env *routerTestEnv, email, role, status string) string {
	t.Helper()
	hash, err := service.HashPassword("secret-pass")
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	user := &models.User{Email: email, PasswordHash: hash, Name: email, Role: role, Status: status}
	if err := env.db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	token, _, err := env.auth.GenerateJWT(user)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}
	return token
}

func seedRouterOrder(t *testing.T, db *gorm.DB, number, status, paymentStatus string) *models.Order {
	t.Helper()
	weight := 0.25
	order := &models.Order{
		OrderNumber:   number,
		ResellerID:    21,
		ResellerName:  "Toko Kenanga",
		ResellerEmail: "kenanga@example.com",
		ResellerPhone: "082100000000",
		TotalAmount:   models.NewMoneyFromInt(120000),
		ShippingAddress: &models.ShippingAddress{
			RecipientName: "Sari",
			Phone:         "082200000000",
			Street:        "Jl. Sudirman 5",
			City:          "Surabaya",
			Province:      "Jawa Timur",
			PostalCode:    "60271",
		},
		Status:        status,
		PaymentStatus: paymentStatus,
	}
	items := []models.OrderItem{{Name: "Kaos", Quantity: 4, UnitPrice: models.NewMoneyFromInt(30000), Weight: &weight}}
	if err := repository.NewOrderRepository(db).Create(order, items); err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("unmarshal %s %s response failed: %v body=%s", method, path, err, w.Body.String())
		}
	}
	return w, env
}

func TestHealth(t *testing.T) {
	env := setupRouterTest(t)
	r := SetupRouter(env.cfg, env.container)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("health want 200 got %d", w.Code)
	}
}

func TestLoginAndMe(t *testing.T) {
	env := setupRouterTest(t)
	r := SetupRouter(env.cfg, env.container)

	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/admin/auth/login", "", gin.H{"email": "admin@example.com", "password": "secret-pass"})
	if w.Code != http.StatusOK || !resp.Success {
		t.Fatalf("login failed: %d %s", w.Code, w.Body.String())
	}
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.Data, &login); err != nil || login.Token == "" {
		t.Fatalf("expected token, got %s", string(resp.Data))
	}

	w, resp = doJSON(t, r, http.MethodGet, "/api/v1/admin/auth/me", login.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me failed: %d %s", w.Code, w.Body.String())
	}
	var me models.User
	if err := json.Unmarshal(resp.Data, &me); err != nil || me.Email != "admin@example.com" {
		t.Fatalf("unexpected me payload: %s", string(resp.Data))
	}

	w, resp = doJSON(t, r, http.MethodPost, "/api/v1/admin/auth/login", "", gin.H{"email": "admin@example.com", "password": "wrong"})
	if w.Code != http.StatusUnauthorized || resp.Success || resp.Error != "Invalid email or password" {
		t.Fatalf("expected 401 envelope, got %d %s", w.Code, w.Body.String())
	}
}

func TestLoginRateLimited(t *testing.T) {
	env := setupRouterTest(t)
	env.cfg.Security.LoginRateLimit.MaxAttempts = 2
	r := SetupRouter(env.cfg, env.container)

	for i := 0; i < 2; i++ {
		w, _ := doJSON(t, r, http.MethodPost, "/api/v1/admin/auth/login", "", gin.H{"email": "admin@example.com", "password": "wrong"})
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d want 401 got %d", i+1, w.Code)
		}
	}
	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/admin/auth/login", "", gin.H{"email": "admin@example.com", "password": "secret-pass"})
	if w.Code != http.StatusTooManyRequests || resp.Success {
		t.Fatalf("expected 429, got %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
}

func TestOrderAndShipmentFlow(t *testing.T) {
	env := setupRouterTest(t)
	r := SetupRouter(env.cfg, env.container)
	order := seedRouterOrder(t, env.db, "ORD-R-1", constants.OrderStatusPending, constants.PaymentStatusWaitingVerification)

	w, resp := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/admin/orders/%d", order.ID), env.adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get order failed: %d %s", w.Code, w.Body.String())
	}
	var detail struct {
		Actions []service.OrderAction `json:"actions"`
	}
	if err := json.Unmarshal(resp.Data, &detail); err != nil {
		t.Fatalf("unmarshal detail failed: %v", err)
	}
	if len(detail.Actions) < 2 || detail.Actions[1].Type != constants.OrderActionVerifyPayment {
		t.Fatalf("expected verify payment action, got %+v", detail.Actions)
	}

	// 未付款订单不可发货
	w, _ = doJSON(t, r, http.MethodPost, "/api/v1/admin/shipments", env.adminToken, gin.H{"order_id": order.ID, "cost": "Rp 18.000"})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for ineligible order, got %d %s", w.Code, w.Body.String())
	}

	w, _ = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/admin/orders/%d/payment/approve", order.ID), env.adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("approve failed: %d %s", w.Code, w.Body.String())
	}

	w, resp = doJSON(t, r, http.MethodPost, "/api/v1/admin/shipments", env.adminToken, gin.H{"order_id": order.ID, "cost": "Rp 18.000"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create shipment failed: %d %s", w.Code, w.Body.String())
	}
	var shipment models.Shipment
	if err := json.Unmarshal(resp.Data, &shipment); err != nil {
		t.Fatalf("unmarshal shipment failed: %v", err)
	}
	if shipment.TotalWeight != 1 || shipment.Cost.IntPart() != 18000 {
		t.Fatalf("unexpected shipment: weight=%v cost=%s", shipment.TotalWeight, shipment.Cost.String())
	}

	w, _ = doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/v1/admin/shipments/%d/status", shipment.ID), env.adminToken, gin.H{"status": "delivered", "notes": "Diterima"})
	if w.Code != http.StatusOK {
		t.Fatalf("update shipment status failed: %d %s", w.Code, w.Body.String())
	}

	w, resp = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/admin/shipments/%d/logs", shipment.ID), env.auditorToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list logs failed: %d %s", w.Code, w.Body.String())
	}
	var logs []models.ShipmentLog
	if err := json.Unmarshal(resp.Data, &logs); err != nil || len(logs) != 2 {
		t.Fatalf("expected 2 logs, got %s", string(resp.Data))
	}

	w, resp = doJSON(t, r, http.MethodGet, "/api/v1/admin/shipments/number/"+shipment.ShipmentNumber, env.adminToken, nil)
	if w.Code != http.StatusOK || !resp.Success {
		t.Fatalf("get by number failed: %d %s", w.Code, w.Body.String())
	}

	w, resp = doJSON(t, r, http.MethodGet, "/api/v1/admin/stats/shipments?refresh=true", env.adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("shipment stats failed: %d %s", w.Code, w.Body.String())
	}
	var stats service.ShipmentStats
	if err := json.Unmarshal(resp.Data, &stats); err != nil {
		t.Fatalf("unmarshal stats failed: %v", err)
	}
	if stats.Total != 1 || stats.Delivered != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	// 已送达的发货单不可删除
	w, _ = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/admin/shipments/%d", shipment.ID), env.adminToken, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 deleting delivered shipment, got %d", w.Code)
	}

	// 审计角色只读
	w, _ = doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/v1/admin/shipments/%d/status", shipment.ID), env.auditorToken, gin.H{"status": "returned"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for auditor write, got %d", w.Code)
	}
}

func TestOrderErrorsMapToStatus(t *testing.T) {
	env := setupRouterTest(t)
	r := SetupRouter(env.cfg, env.container)
	order := seedRouterOrder(t, env.db, "ORD-R-2", constants.OrderStatusCompleted, constants.PaymentStatusPaid)

	cases := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
	}{
		{name: "missing order", method: http.MethodGet, path: "/api/v1/admin/orders/9999", status: http.StatusNotFound},
		{name: "bad id", method: http.MethodGet, path: "/api/v1/admin/orders/abc", status: http.StatusBadRequest},
		{name: "invalid status", method: http.MethodPatch, path: fmt.Sprintf("/api/v1/admin/orders/%d/status", order.ID), body: gin.H{"order_status": "lost"}, status: http.StatusBadRequest},
		{name: "terminal order", method: http.MethodPatch, path: fmt.Sprintf("/api/v1/admin/orders/%d/status", order.ID), body: gin.H{"order_status": "shipped"}, status: http.StatusConflict},
		{name: "delete completed", method: http.MethodDelete, path: fmt.Sprintf("/api/v1/admin/orders/%d", order.ID), status: http.StatusConflict},
		{name: "reject without reason", method: http.MethodPost, path: fmt.Sprintf("/api/v1/admin/orders/%d/payment/reject", order.ID), body: gin.H{}, status: http.StatusBadRequest},
		{name: "bad created_from", method: http.MethodGet, path: "/api/v1/admin/orders?created_from=yesterday", status: http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, resp := doJSON(t, r, tc.method, tc.path, env.adminToken, tc.body)
			if w.Code != tc.status {
				t.Fatalf("status want %d got %d body=%s", tc.status, w.Code, w.Body.String())
			}
			if resp.Success || resp.Error == "" {
				t.Fatalf("expected error envelope, got %s", w.Body.String())
			}
		})
	}
}

func TestCreateShipmentRequestValidation(t *testing.T) {
	env := setupRouterTest(t)
	r := SetupRouter(env.cfg, env.container)

	cases := []struct {
		name    string
		body    interface{}
		status  int
		message string
	}{
		{name: "missing order", body: gin.H{"cost": "Rp 18.000"}, status: http.StatusBadRequest, message: "Select an order first"},
		{name: "zero order", body: gin.H{"order_id": 0}, status: http.StatusBadRequest, message: "Select an order first"},
		{name: "unknown order", body: gin.H{"order_id": 9999}, status: http.StatusNotFound, message: "Order not found"},
		{name: "order id as text", body: gin.H{"order_id": "abc"}, status: http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, resp := doJSON(t, r, http.MethodPost, "/api/v1/admin/shipments", env.adminToken, tc.body)
			if w.Code != tc.status {
				t.Fatalf("status want %d got %d body=%s", tc.status, w.Code, w.Body.String())
			}
			if tc.message != "" && resp.Error != tc.message {
				t.Fatalf("message want %q got %q", tc.message, resp.Error)
			}
		})
	}
}

func TestShipmentOptionsRoute(t *testing.T) {
	env := setupRouterTest(t)
	r := SetupRouter(env.cfg, env.container)

	w, resp := doJSON(t, r, http.MethodGet, "/api/v1/admin/shipments/options", env.auditorToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("options failed: %d %s", w.Code, w.Body.String())
	}
	var opts service.ShipmentOptions
	if err := json.Unmarshal(resp.Data, &opts); err != nil {
		t.Fatalf("unmarshal options failed: %v", err)
	}
	if opts.DefaultCourier != constants.CourierJNE || len(opts.Couriers) != 5 || len(opts.Services) != 4 {
		t.Fatalf("unexpected options: %+v", opts)
	}

	w, _ = doJSON(t, r, http.MethodGet, "/api/v1/admin/shipments/options", env.resellerToken, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("reseller should be denied, got %d", w.Code)
	}
}

func TestListOrdersPagination(t *testing.T) {
	env := setupRouterTest(t)
	r := SetupRouter(env.cfg, env.container)
	for i := 0; i < 3; i++ {
		seedRouterOrder(t, env.db, fmt.Sprintf("ORD-P-%d", i), constants.OrderStatusPending, constants.PaymentStatusWaitingPayment)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders?page=1&page_size=2", nil)
	req.Header.Set("Authorization", "Bearer "+env.adminToken)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list orders failed: %d %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data       []json.RawMessage `json:"data"`
		Pagination struct {
			Total     int64 `json:"total"`
			TotalPage int64 `json:"total_page"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal list failed: %v", err)
	}
	if len(resp.Data) != 2 || resp.Pagination.Total != 3 || resp.Pagination.TotalPage != 2 {
		t.Fatalf("unexpected pagination: %s", w.Body.String())
	}
}

func TestPermissionCatalog(t *testing.T) {
	env := setupRouterTest(t)
	r := SetupRouter(env.cfg, env.container)
	items := buildAdminPermissionCatalog(r)
	found := false
	for _, item := range items {
		if item.Object == "/admin/auth/login" || item.Object == "/admin/auth/me" {
			t.Fatalf("auth routes should not be listed: %+v", item)
		}
		if item.Permission == "PATCH:/admin/shipments/:id/status" {
			found = true
			if item.Module != "shipments" {
				t.Fatalf("unexpected module %s", item.Module)
			}
		}
	}
	if !found {
		t.Fatalf("shipment status permission missing from catalog")
	}
}
