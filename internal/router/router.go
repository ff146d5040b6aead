package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/reseller-hub/internal/authz"
	"github.com/reseller-hub/internal/config"
	adminhandlers "github.com/reseller-hub/internal/http/handlers/admin"
	"github.com/reseller-hub/internal/http/response"
	"github.com/reseller-hub/internal/logger"
	"github.com/reseller-hub/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	r := gin.New()

	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "rh"
	}
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(logger.Z()))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	admin := apiV1.Group("/admin")
	{
		// 登录接口（无需鉴权）
		admin.POST("/auth/login", RateLimitMiddleware(newLoginLimiter(c), loginRule, KeyByIP), adminHandler.Login)

		// 仅需登录
		session := admin.Group("")
		session.Use(JWTAuthMiddleware(c.AuthService))
		{
			session.GET("/auth/me", adminHandler.GetCurrentUser)
			session.GET("/authz/me", adminHandler.GetAuthzMe)
		}

		// 需要鉴权的接口
		authorized := admin.Group("")
		authorized.Use(JWTAuthMiddleware(c.AuthService), RBACMiddleware(c.AuthzService))
		{
			// 订单管理
			authorized.GET("/orders", adminHandler.AdminListOrders)
			authorized.GET("/orders/eligible", adminHandler.AdminListEligibleOrders)
			authorized.GET("/orders/:id", adminHandler.AdminGetOrder)
			authorized.PATCH("/orders/:id/status", adminHandler.AdminUpdateOrderStatus)
			authorized.PATCH("/orders/:id/payment", adminHandler.AdminUpdatePaymentStatus)
			authorized.POST("/orders/:id/payment/approve", adminHandler.AdminApprovePayment)
			authorized.POST("/orders/:id/payment/reject", adminHandler.AdminRejectPayment)
			authorized.DELETE("/orders/:id", adminHandler.AdminDeleteOrder)

			// 发货管理
			authorized.GET("/shipments", adminHandler.AdminListShipments)
			authorized.POST("/shipments", adminHandler.AdminCreateShipment)
			authorized.GET("/shipments/options", adminHandler.AdminShipmentOptions)
			authorized.GET("/shipments/number/:number", adminHandler.AdminGetShipmentByNumber)
			authorized.GET("/shipments/tracking/:tracking", adminHandler.AdminGetShipmentByTracking)
			authorized.GET("/shipments/:id", adminHandler.AdminGetShipment)
			authorized.GET("/shipments/:id/logs", adminHandler.AdminListShipmentLogs)
			authorized.PATCH("/shipments/:id/status", adminHandler.AdminUpdateShipmentStatus)
			authorized.PATCH("/shipments/:id/tracking", adminHandler.AdminUpdateShipmentTracking)
			authorized.DELETE("/shipments/:id", adminHandler.AdminDeleteShipment)
			authorized.GET("/resellers/:id/shipments", adminHandler.AdminListResellerShipments)

			// 统计
			authorized.GET("/stats/orders", adminHandler.AdminOrderStats)
			authorized.GET("/stats/shipments", adminHandler.AdminShipmentStats)

			// 权限管理
			authorized.GET("/authz/roles", adminHandler.ListAuthzRoles)
			authorized.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
			authorized.POST("/authz/policies", adminHandler.GrantAuthzPolicy)
			authorized.DELETE("/authz/policies", adminHandler.RevokeAuthzPolicy)
			authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
				response.Success(ctx, buildAdminPermissionCatalog(r))
			})
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

// newLoginLimiter Redis 可用时多实例共享计数，否则退回进程内计数
func newLoginLimiter(c *provider.Container) RateLimiter {
	if c != nil && c.Cache.Enabled() {
		return NewRedisRateLimiter(c.Cache.Client())
	}
	return NewMemoryRateLimiter()
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		if strings.HasPrefix(object, "/admin/auth/") || object == "/admin/authz/me" {
			continue
		}
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	return segments[1]
}
