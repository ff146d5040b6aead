package main

import (
	"context"
	"fmt"

	"github.com/reseller-hub/internal/config"
	"github.com/reseller-hub/internal/constants"
	"github.com/reseller-hub/internal/logger"
	"github.com/reseller-hub/internal/models"
	"github.com/reseller-hub/internal/repository"
	"github.com/reseller-hub/internal/service"

	"github.com/shopspring/decimal"
)

type seedReseller struct {
	Name  string
	Email string
	Phone string
	City  string
}

type seedOrder struct {
	Number        string
	Reseller      int
	Status        string
	PaymentStatus string
	ShipmentState string
	Cost          int64
}

var resellers = []seedReseller{
	{Name: "Toko Melati", Email: "melati@example.com", Phone: "081234567890", City: "Bandung"},
	{Name: "Kios Anggrek", Email: "anggrek@example.com", Phone: "081298765432", City: "Yogyakarta"},
	{Name: "Butik Kenanga", Email: "kenanga@example.com", Phone: "082112223333", City: "Surabaya"},
}

// 覆盖每一种订单状态与支付状态组合
var orders = []seedOrder{
	{Number: "ORD-SEED-001", Reseller: 0, Status: constants.OrderStatusPending, PaymentStatus: constants.PaymentStatusWaitingPayment},
	{Number: "ORD-SEED-002", Reseller: 1, Status: constants.OrderStatusPending, PaymentStatus: constants.PaymentStatusWaitingVerification},
	{Number: "ORD-SEED-003", Reseller: 2, Status: constants.OrderStatusConfirmed, PaymentStatus: constants.PaymentStatusPaid, ShipmentState: constants.ShipmentStatusPreparing, Cost: 18000},
	{Number: "ORD-SEED-004", Reseller: 0, Status: constants.OrderStatusShipped, PaymentStatus: constants.PaymentStatusPaid, ShipmentState: constants.ShipmentStatusInTransit, Cost: 22000},
	{Number: "ORD-SEED-005", Reseller: 1, Status: constants.OrderStatusDelivered, PaymentStatus: constants.PaymentStatusPaid, ShipmentState: constants.ShipmentStatusDelivered, Cost: 15000},
	{Number: "ORD-SEED-006", Reseller: 2, Status: constants.OrderStatusCompleted, PaymentStatus: constants.PaymentStatusPaid, ShipmentState: constants.ShipmentStatusDelivered, Cost: 30000},
	{Number: "ORD-SEED-007", Reseller: 0, Status: constants.OrderStatusCancelled, PaymentStatus: constants.PaymentStatusFailed},
	{Number: "ORD-SEED-008", Reseller: 1, Status: constants.OrderStatusConfirmed, PaymentStatus: constants.PaymentStatusPaid, ShipmentState: constants.ShipmentStatusReturned, Cost: 25000},
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	log := logger.S()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, false); err != nil {
		log.Fatalw("seed_database_init_failed", "error", err)
	}
	if err := models.AutoMigrate(); err != nil {
		log.Fatalw("seed_database_migrate_failed", "error", err)
	}
	if err := models.InitDefaultAdmin(cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword); err != nil {
		log.Warnw("seed_default_admin_failed", "error", err)
	}

	resellerIDs := make([]uint, len(resellers))
	userRepo := repository.NewUserRepository(models.DB)
	for i, r := range resellers {
		user, err := ensureReseller(userRepo, r)
		if err != nil {
			log.Fatalw("seed_reseller_failed", "email", r.Email, "error", err)
		}
		resellerIDs[i] = user.ID
	}

	orderRepo := repository.NewOrderRepository(models.DB)
	shipmentRepo := repository.NewShipmentRepository(models.DB)
	logRepo := repository.NewShipmentLogRepository(models.DB)
	shipmentCfg := cfg.Shipment
	// 历史订单直接落库，不走资格校验
	shipmentCfg.EnforceEligibility = false
	shipmentCfg.NotifyOnStatusChange = false
	shipments := service.NewShipmentService(shipmentCfg, orderRepo, shipmentRepo, logRepo, nil, nil)

	ctx := context.Background()
	for _, o := range orders {
		var count int64
		if err := models.DB.Model(&models.Order{}).Where("order_number = ?", o.Number).Count(&count).Error; err != nil {
			log.Fatalw("seed_order_lookup_failed", "order_number", o.Number, "error", err)
		}
		if count > 0 {
			log.Infow("seed_order_exists", "order_number", o.Number)
			continue
		}
		reseller := resellers[o.Reseller]
		order, items := buildOrder(o, reseller, resellerIDs[o.Reseller])
		if err := orderRepo.Create(order, items); err != nil {
			log.Fatalw("seed_order_create_failed", "order_number", o.Number, "error", err)
		}
		log.Infow("seed_order_created", "order_number", o.Number, "status", o.Status, "payment_status", o.PaymentStatus)

		if o.ShipmentState == "" {
			continue
		}
		shipment, err := shipments.CreateFromOrder(ctx, service.CreateShipmentInput{
			OrderID: order.ID,
			Cost:    models.NewCost(o.Cost),
			Actor:   constants.ActorSystem,
		})
		if err != nil {
			log.Fatalw("seed_shipment_create_failed", "order_number", o.Number, "error", err)
		}
		if o.ShipmentState != constants.ShipmentStatusPreparing {
			if _, err := shipments.UpdateTracking(ctx, service.UpdateTrackingInput{
				ShipmentID:     shipment.ID,
				TrackingNumber: fmt.Sprintf("JNE%010d", shipment.ID),
			}); err != nil {
				log.Fatalw("seed_shipment_tracking_failed", "shipment_id", shipment.ID, "error", err)
			}
		}
		if o.ShipmentState != constants.ShipmentStatusPreparing && o.ShipmentState != constants.ShipmentStatusInTransit {
			if _, err := shipments.UpdateStatus(ctx, service.UpdateShipmentStatusInput{
				ShipmentID: shipment.ID,
				Status:     o.ShipmentState,
				Actor:      constants.ActorSystem,
			}); err != nil {
				log.Fatalw("seed_shipment_status_failed", "shipment_id", shipment.ID, "error", err)
			}
		}
		log.Infow("seed_shipment_created", "shipment_number", shipment.ShipmentNumber, "status", o.ShipmentState)
	}
	log.Infow("seed_done", "orders", len(orders), "resellers", len(resellers))
}

func ensureReseller(repo *repository.GormUserRepository, r seedReseller) (*models.User, error) {
	existing, err := repo.GetByEmail(r.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	hash, err := service.HashPassword("reseller123")
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:        r.Email,
		PasswordHash: hash,
		Name:         r.Name,
		Phone:        r.Phone,
		Role:         constants.RoleReseller,
		Status:       models.UserStatusActive,
	}
	if err := repo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

func buildOrder(o seedOrder, r seedReseller, resellerID uint) (*models.Order, []models.OrderItem) {
	shirtWeight := 0.3
	items := []models.OrderItem{
		{Name: "Kemeja Batik", Quantity: 2, UnitPrice: models.NewMoneyFromInt(85000), Weight: &shirtWeight},
		{Name: "Tas Anyaman", Quantity: 1, UnitPrice: models.NewMoneyFromInt(120000)},
	}
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	commission := models.NewMoneyFromDecimal(total.Mul(decimal.NewFromFloat(0.1)).Round(2))
	order := &models.Order{
		OrderNumber:     o.Number,
		ResellerID:      resellerID,
		ResellerName:    r.Name,
		ResellerEmail:   r.Email,
		ResellerPhone:   r.Phone,
		TotalAmount:     models.NewMoneyFromDecimal(total),
		TotalCommission: &commission,
		ShippingAddress: &models.ShippingAddress{
			RecipientName: r.Name,
			Phone:         r.Phone,
			Street:        "Jl. Pahlawan 17",
			City:          r.City,
			Province:      "Indonesia",
			PostalCode:    "40000",
		},
		PaymentMethod: "bank_transfer",
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
	}
	return order, items
}
