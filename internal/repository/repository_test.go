package repository

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/reseller-hub/internal/constants"
	"github.com/reseller-hub/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupRepositoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.Tables()...); err != nil {
		t.Fatalf("migrate models failed: %v", err)
	}
	return db
}

func createTestOrder(t *testing.T, repo *GormOrderRepository, number, status, paymentStatus string) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNumber:   number,
		ResellerID:    7,
		ResellerName:  "Toko Sari",
		ResellerEmail: "sari@example.com",
		TotalAmount:   models.NewMoneyFromInt(150000),
		Status:        status,
		PaymentStatus: paymentStatus,
	}
	items := []models.OrderItem{
		{Name: "Kaos", Quantity: 2, UnitPrice: models.NewMoneyFromInt(50000)},
		{Name: "Topi", Quantity: 1, UnitPrice: models.NewMoneyFromInt(50000)},
	}
	if err := repo.Create(order, items); err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func TestOrderRepositoryCreateAndGet(t *testing.T) {
	repo := NewOrderRepository(setupRepositoryTestDB(t))
	order := createTestOrder(t, repo, "ORD-001", constants.OrderStatusPending, constants.PaymentStatusWaitingPayment)

	got, err := repo.GetByID(order.ID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if got == nil || len(got.Items) != 2 {
		t.Fatalf("expected order with 2 items, got %+v", got)
	}

	missing, err := repo.GetByID(order.ID + 100)
	if err != nil || missing != nil {
		t.Fatalf("missing order should return nil,nil got %+v err=%v", missing, err)
	}
}

func TestOrderRepositoryUpdatesMissingRecord(t *testing.T) {
	repo := NewOrderRepository(setupRepositoryTestDB(t))
	err := repo.Updates(999, map[string]interface{}{"status": constants.OrderStatusConfirmed})
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
}

func TestOrderRepositoryListAdminKeywordAndStatus(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewOrderRepository(db)
	createTestOrder(t, repo, "ORD-A", constants.OrderStatusPending, constants.PaymentStatusWaitingVerification)
	createTestOrder(t, repo, "ORD-B", constants.OrderStatusConfirmed, constants.PaymentStatusPaid)
	other := createTestOrder(t, repo, "ORD-C", constants.OrderStatusPending, constants.PaymentStatusWaitingPayment)
	if err := db.Model(&models.Order{}).Where("id = ?", other.ID).Update("reseller_email", "budi@example.com").Error; err != nil {
		t.Fatalf("update email failed: %v", err)
	}

	orders, total, err := repo.ListAdmin(OrderListFilter{Status: constants.OrderStatusPending, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || len(orders) != 2 {
		t.Fatalf("expected 2 pending orders, got total=%d len=%d", total, len(orders))
	}
	if orders[0].OrderNumber != "ORD-C" {
		t.Fatalf("expected newest first, got %s", orders[0].OrderNumber)
	}

	orders, total, err = repo.ListAdmin(OrderListFilter{Keyword: "budi@"})
	if err != nil {
		t.Fatalf("keyword list failed: %v", err)
	}
	if total != 1 || orders[0].OrderNumber != "ORD-C" {
		t.Fatalf("keyword should match reseller email, got total=%d", total)
	}
}

func TestOrderRepositoryListEligibleForShipment(t *testing.T) {
	repo := NewOrderRepository(setupRepositoryTestDB(t))
	createTestOrder(t, repo, "ORD-PENDING", constants.OrderStatusPending, constants.PaymentStatusWaitingPayment)
	createTestOrder(t, repo, "ORD-CONFIRMED", constants.OrderStatusConfirmed, constants.PaymentStatusWaitingVerification)
	createTestOrder(t, repo, "ORD-PAID", constants.OrderStatusPending, constants.PaymentStatusPaid)

	orders, err := repo.ListEligibleForShipment(0)
	if err != nil {
		t.Fatalf("list eligible failed: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 eligible orders, got %d", len(orders))
	}
	for _, order := range orders {
		if !order.IsEligibleForShipment() {
			t.Fatalf("ineligible order returned: %s", order.OrderNumber)
		}
	}
}

func TestOrderRepositoryDeleteRemovesItems(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewOrderRepository(db)
	order := createTestOrder(t, repo, "ORD-DEL", constants.OrderStatusCancelled, constants.PaymentStatusFailed)

	if err := repo.Delete(order.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	var itemCount int64
	db.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&itemCount)
	if itemCount != 0 {
		t.Fatalf("expected items deleted, got %d", itemCount)
	}
	if err := repo.Delete(order.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("second delete should report not found, got %v", err)
	}
}

func TestShipmentRepositoryLookupsAndLogs(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewShipmentRepository(db)
	logRepo := NewShipmentLogRepository(db)

	older := &models.Shipment{
		ShipmentNumber:  "SHP-1",
		TrackingNumber:  "JNE123",
		OrderID:         1,
		ResellerID:      7,
		ResellerName:    "Toko Sari",
		ShippingAddress: models.ShippingAddress{RecipientName: "Sari", City: "Bandung"},
		Courier:         constants.CourierJNE,
		Cost:            models.NewCost(15000),
		Status:          constants.ShipmentStatusPreparing,
		CreatedAt:       time.Now().Add(-time.Hour),
	}
	newer := &models.Shipment{
		ShipmentNumber:  "SHP-2",
		TrackingNumber:  "JNE123",
		OrderID:         2,
		ResellerID:      8,
		ShippingAddress: models.ShippingAddress{RecipientName: "Budi", City: "Surabaya"},
		Courier:         constants.CourierTIKI,
		Status:          constants.ShipmentStatusInTransit,
	}
	for _, s := range []*models.Shipment{older, newer} {
		if err := repo.Create(s); err != nil {
			t.Fatalf("create shipment failed: %v", err)
		}
	}

	byTracking, err := repo.GetByTrackingNumber("JNE123")
	if err != nil || byTracking == nil || byTracking.ShipmentNumber != "SHP-2" {
		t.Fatalf("expected newest shipment by tracking, got %+v err=%v", byTracking, err)
	}
	byNumber, err := repo.GetByShipmentNumber("SHP-1")
	if err != nil || byNumber == nil || byNumber.ShippingAddress.City != "Bandung" {
		t.Fatalf("expected snapshot address to round trip, got %+v err=%v", byNumber, err)
	}

	list, total, err := repo.List(ShipmentListFilter{Keyword: "surabaya"})
	if err != nil {
		t.Fatalf("list by keyword failed: %v", err)
	}
	if total != 1 || list[0].ShipmentNumber != "SHP-2" {
		t.Fatalf("keyword should match address city, got total=%d", total)
	}

	list, _, err = repo.List(ShipmentListFilter{ResellerID: 7})
	if err != nil || len(list) != 1 || list[0].ID != older.ID {
		t.Fatalf("reseller filter mismatch: %+v err=%v", list, err)
	}

	for _, status := range []string{constants.ShipmentStatusPreparing, constants.ShipmentStatusCancelled} {
		if err := logRepo.Create(&models.ShipmentLog{ShipmentID: older.ID, Status: status, Actor: constants.ActorSystem}); err != nil {
			t.Fatalf("append log failed: %v", err)
		}
	}
	if err := repo.Delete(older.ID); err != nil {
		t.Fatalf("delete shipment failed: %v", err)
	}
	logs, err := logRepo.ListByShipmentID(older.ID)
	if err != nil {
		t.Fatalf("list logs failed: %v", err)
	}
	if len(logs) != 2 || logs[0].Status != constants.ShipmentStatusCancelled {
		t.Fatalf("logs must survive deletion newest first, got %+v", logs)
	}
}
