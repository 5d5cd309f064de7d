package ordering

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/strandtech/storefront/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:ordering_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, qty int) *domain.Product {
	t.Helper()
	p := &domain.Product{Name: name, Category: domain.CategoryOther, Quantity: qty, Price: 10}
	require.NoError(t, db.Create(p).Error)
	return p
}

func productQty(t *testing.T, db *gorm.DB, id int64) int {
	t.Helper()
	var p domain.Product
	require.NoError(t, db.First(&p, id).Error)
	return p.Quantity
}

func salesUnits(t *testing.T, db *gorm.DB, productID int64) int64 {
	t.Helper()
	var s domain.Sales
	err := db.Where("product_id = ?", productID).First(&s).Error
	if err == gorm.ErrRecordNotFound {
		return 0
	}
	require.NoError(t, err)
	return s.Units
}

func TestCreateOrderStartsPending(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)

	id, err := svc.CreateOrder(context.Background(), "alice", "0700-1", "alice@example.com")
	require.NoError(t, err)
	require.NotZero(t, id)

	var order domain.Order
	require.NoError(t, db.First(&order, id).Error)
	require.Equal(t, domain.OrderPending, order.Status)
	require.Equal(t, "alice@example.com", order.Email)
}

func TestAttachLineItemsRejectsEmpty(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)

	id, err := svc.CreateOrder(context.Background(), "bob", "1", "b@x")
	require.NoError(t, err)

	require.ErrorIs(t, svc.AttachLineItems(context.Background(), id, nil), ErrEmptyItems)

	var count int64
	require.NoError(t, db.Model(&domain.OrderLineItem{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestAttachLineItemsPromotesOrder(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	pa := seedProduct(t, db, "printer", 10)

	id, err := svc.CreateOrder(context.Background(), "bob", "1", "b@x")
	require.NoError(t, err)
	require.NoError(t, svc.AttachLineItems(context.Background(), id, []LineItemInput{{ProductID: pa.ID, Qty: 2}}))

	var order domain.Order
	require.NoError(t, db.First(&order, id).Error)
	require.Equal(t, domain.OrderPlaced, order.Status)
}

func TestProcessOrderAppliesAllAdjustments(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	pa := seedProduct(t, db, "productA", 10)
	pb := seedProduct(t, db, "productB", 9)

	id, err := svc.CreateOrder(context.Background(), "carol", "2", "c@x")
	require.NoError(t, err)
	require.NoError(t, svc.AttachLineItems(context.Background(), id, []LineItemInput{
		{ProductID: pa.ID, Qty: 2},
		{ProductID: pb.ID, Qty: 3},
	}))

	processed, err := svc.ProcessOrder(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, 2, processed)

	require.Equal(t, 8, productQty(t, db, pa.ID))
	require.Equal(t, 6, productQty(t, db, pb.ID))
	require.Equal(t, int64(2), salesUnits(t, db, pa.ID))
	require.Equal(t, int64(3), salesUnits(t, db, pb.ID))

	var order domain.Order
	require.NoError(t, db.First(&order, id).Error)
	require.Equal(t, domain.OrderProcessed, order.Status)
}

func TestProcessOrderNoItems(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)

	id, err := svc.CreateOrder(context.Background(), "dave", "3", "d@x")
	require.NoError(t, err)

	_, err = svc.ProcessOrder(context.Background(), id)
	require.ErrorIs(t, err, ErrNoItems)
}

func TestProcessOrderRollsBackOnFailure(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	pa := seedProduct(t, db, "productA", 10)

	id, err := svc.CreateOrder(context.Background(), "erin", "4", "e@x")
	require.NoError(t, err)
	// Second item points at a product that does not exist, so the second
	// adjustment fails after the first already ran inside the transaction.
	require.NoError(t, svc.AttachLineItems(context.Background(), id, []LineItemInput{
		{ProductID: pa.ID, Qty: 2},
		{ProductID: 999999, Qty: 3},
	}))

	_, err = svc.ProcessOrder(context.Background(), id)
	require.ErrorIs(t, err, ErrProductMissing)

	require.Equal(t, 10, productQty(t, db, pa.ID), "first decrement must be rolled back")
	require.Equal(t, int64(0), salesUnits(t, db, pa.ID))

	var order domain.Order
	require.NoError(t, db.First(&order, id).Error)
	require.Equal(t, domain.OrderPlaced, order.Status)
}

func TestProcessOrderIsOneShot(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	pa := seedProduct(t, db, "productA", 10)

	id, err := svc.CreateOrder(context.Background(), "judy", "11", "j@x")
	require.NoError(t, err)
	require.NoError(t, svc.AttachLineItems(context.Background(), id, []LineItemInput{{ProductID: pa.ID, Qty: 2}}))

	_, err = svc.ProcessOrder(context.Background(), id)
	require.NoError(t, err)

	_, err = svc.ProcessOrder(context.Background(), id)
	require.ErrorIs(t, err, ErrAlreadyProcessed)

	require.Equal(t, 8, productQty(t, db, pa.ID), "second run must not decrement again")
	require.Equal(t, int64(2), salesUnits(t, db, pa.ID))
}

func TestSalesCounterAccumulates(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	pa := seedProduct(t, db, "productA", 100)

	for i := 0; i < 2; i++ {
		id, err := svc.CreateOrder(context.Background(), "frank", "5", "f@x")
		require.NoError(t, err)
		require.NoError(t, svc.AttachLineItems(context.Background(), id, []LineItemInput{{ProductID: pa.ID, Qty: 4}}))
		_, err = svc.ProcessOrder(context.Background(), id)
		require.NoError(t, err)
	}

	require.Equal(t, int64(8), salesUnits(t, db, pa.ID))
	require.Equal(t, 92, productQty(t, db, pa.ID))
}

func TestListWithItems(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	pa := seedProduct(t, db, "HP LaserJet", 10)

	first, err := svc.CreateOrder(context.Background(), "gina", "6", "g@x")
	require.NoError(t, err)

	views, err := svc.ListWithItems(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, first, views[0].ID)
	require.NotNil(t, views[0].Items)
	require.Empty(t, views[0].Items, "order without items yields an empty list, not a missing order")

	require.NoError(t, svc.AttachLineItems(context.Background(), first, []LineItemInput{{ProductID: pa.ID, Qty: 2}}))

	second, err := svc.CreateOrder(context.Background(), "hank", "7", "h@x")
	require.NoError(t, err)

	views, err = svc.ListWithItems(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 2)
	// Most recent order first.
	require.Equal(t, second, views[0].ID)
	require.Equal(t, first, views[1].ID)
	require.Equal(t, []OrderItemView{{ProductID: pa.ID, ProductName: "HP LaserJet", Qty: 2}}, views[1].Items)
}

func TestReconcilePending(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	pa := seedProduct(t, db, "keep", 5)

	stale, err := svc.CreateOrder(context.Background(), "old", "8", "o@x")
	require.NoError(t, err)
	placed, err := svc.CreateOrder(context.Background(), "kept", "9", "k@x")
	require.NoError(t, err)
	require.NoError(t, svc.AttachLineItems(context.Background(), placed, []LineItemInput{{ProductID: pa.ID, Qty: 1}}))

	// Age both orders past the cutoff.
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, db.Model(&domain.Order{}).Where("id IN ?", []int64{stale, placed}).Update("created_at", old).Error)

	removed, err := svc.ReconcilePending(context.Background(), time.Hour)
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	var count int64
	require.NoError(t, db.Model(&domain.Order{}).Count(&count).Error)
	require.Equal(t, int64(1), count)

	var remaining domain.Order
	require.NoError(t, db.First(&remaining).Error)
	require.Equal(t, placed, remaining.ID)
}

func TestProcessOrderPublishesEvent(t *testing.T) {
	db := newTestDB(t)
	bus := EventBus.New()
	svc := NewService(db, bus)
	pa := seedProduct(t, db, "productA", 10)

	got := make(chan int64, 1)
	require.NoError(t, bus.Subscribe(TopicOrderProcessed, func(orderID int64) {
		got <- orderID
	}))

	id, err := svc.CreateOrder(context.Background(), "ivy", "10", "i@x")
	require.NoError(t, err)
	require.NoError(t, svc.AttachLineItems(context.Background(), id, []LineItemInput{{ProductID: pa.ID, Qty: 1}}))
	_, err = svc.ProcessOrder(context.Background(), id)
	require.NoError(t, err)

	select {
	case orderID := <-got:
		require.Equal(t, id, orderID)
	case <-time.After(2 * time.Second):
		t.Fatal("order.processed event not delivered")
	}
}
