package authz

import (
	"fmt"
	"strings"
	"testing"

	"github.com/reseller-hub/internal/constants"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	return svc
}

func TestBuiltinRoles(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}
	// 重复初始化不报错
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("second bootstrap failed: %v", err)
	}

	cases := []struct {
		role   string
		path   string
		method string
		allow  bool
	}{
		{constants.RoleAdmin, "/api/v1/admin/orders/12/status", "PATCH", true},
		{constants.RoleAdmin, "/api/v1/admin/shipments/3", "DELETE", true},
		{constants.RoleAdmin, "/api/v1/admin/stats/orders", "get", true},
		{RoleAuditor, "/api/v1/admin/shipments", "GET", true},
		{RoleAuditor, "/api/v1/admin/shipments", "POST", false},
		{constants.RoleReseller, "/api/v1/admin/orders", "GET", false},
		{constants.RoleReseller, "/api/v1/admin/shipments/3/status", "PATCH", false},
		{"", "/api/v1/admin/orders", "GET", false},
	}
	for _, tc := range cases {
		allow, err := svc.EnforceRole(tc.role, tc.path, tc.method)
		if err != nil {
			t.Fatalf("enforce %s %s %s failed: %v", tc.role, tc.method, tc.path, err)
		}
		if allow != tc.allow {
			t.Fatalf("enforce %s %s %s: expected %v, got %v", tc.role, tc.method, tc.path, tc.allow, allow)
		}
	}

	roles, err := svc.ListRoles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	if len(roles) != 3 {
		t.Fatalf("expected 3 roles, got %v", roles)
	}
}

func TestGrantAndRevokeRolePolicy(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("support", "/admin/shipments/:id/tracking", "patch"); err != nil {
		t.Fatalf("grant role policy failed: %v", err)
	}

	allow, err := svc.EnforceRole("support", "/api/v1/admin/shipments/42/tracking", "PATCH")
	if err != nil || !allow {
		t.Fatalf("expected allow, got %v %v", allow, err)
	}
	allow, err = svc.EnforceRole("support", "/api/v1/admin/shipments/42", "DELETE")
	if err != nil || allow {
		t.Fatalf("expected deny, got %v %v", allow, err)
	}

	policies, err := svc.GetRolePolicies("support")
	if err != nil {
		t.Fatalf("get role policies failed: %v", err)
	}
	if len(policies) != 1 || policies[0].Action != "PATCH" || policies[0].Subject != "role:support" {
		t.Fatalf("unexpected policies: %+v", policies)
	}

	if err := svc.RevokeRolePolicy("support", "/admin/shipments/:id/tracking", "PATCH"); err != nil {
		t.Fatalf("revoke role policy failed: %v", err)
	}
	allow, err = svc.EnforceRole("support", "/api/v1/admin/shipments/42/tracking", "PATCH")
	if err != nil || allow {
		t.Fatalf("expected deny after revoke, got %v %v", allow, err)
	}
}

func TestNormalizeObject(t *testing.T) {
	cases := map[string]string{
		"":                     "/",
		"/api/v1":              "/",
		"/api/v1/admin/orders": "/admin/orders",
		"admin/orders":         "/admin/orders",
	}
	for input, want := range cases {
		if got := NormalizeObject(input); got != want {
			t.Fatalf("NormalizeObject(%q) = %q, want %q", input, got, want)
		}
	}
	if _, err := NormalizeRole("  "); err == nil {
		t.Fatalf("expected empty role rejected")
	}
}
