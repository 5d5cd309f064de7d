package ordering

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/asaskevich/EventBus"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/strandtech/storefront/internal/domain"
	"github.com/strandtech/storefront/pkg/common"
)

// Event topics published on the application bus.
const (
	TopicOrderCreated   = "order.created"
	TopicOrderProcessed = "order.processed"
)

var (
	// ErrEmptyItems rejects an attachment request carrying no items.
	ErrEmptyItems = errors.New("no items provided")
	// ErrNoItems reports an order with nothing to process.
	ErrNoItems = errors.New("no items found for this order")
	// ErrAlreadyProcessed rejects a second processing run for an order whose
	// inventory and sales adjustments have already been committed.
	ErrAlreadyProcessed = errors.New("order already processed")
	// ErrProductMissing reports a line item pointing at a product row that
	// no longer exists; it aborts the whole processing transaction.
	ErrProductMissing = errors.New("line item references a missing product")
)

// LineItemInput is one (product, quantity) pair submitted by a client.
type LineItemInput struct {
	ProductID int64
	Qty       int
}

// OrderItemView is a line item joined with its product name.
type OrderItemView struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Qty         int    `json:"qty"`
}

// OrderView is an order header with its items nested, as served by the
// orders listing.
type OrderView struct {
	ID          int64           `json:"id"`
	Username    string          `json:"username"`
	Email       string          `json:"email"`
	PhoneNumber string          `json:"phone_number"`
	Status      string          `json:"status"`
	Items       []OrderItemView `json:"items"`
}

// Service implements order creation, line-item attachment, the
// inventory/sales transaction and the joined listing.
type Service struct {
	db  *gorm.DB
	bus EventBus.Bus
}

func NewService(db *gorm.DB, bus EventBus.Bus) *Service {
	return &Service{db: db, bus: bus}
}

// CreateOrder inserts one order header in pending state and returns its id.
// Username, phone and email are stored as given; no format validation.
func (s *Service) CreateOrder(ctx context.Context, username, phone, email string) (int64, error) {
	order := domain.Order{
		ID:          common.UUIDint64(),
		Username:    username,
		Email:       email,
		PhoneNumber: phone,
		Status:      domain.OrderPending,
		CreatedAt:   time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&order).Error; err != nil {
		return 0, err
	}
	s.publish(TopicOrderCreated, order.ID)
	return order.ID, nil
}

// AttachLineItems bulk-inserts the items in the order given and promotes the
// order to placed, both inside one transaction.
func (s *Service) AttachLineItems(ctx context.Context, orderID int64, items []LineItemInput) error {
	if len(items) == 0 {
		return ErrEmptyItems
	}
	rows := make([]domain.OrderLineItem, 0, len(items))
	for _, item := range items {
		rows = append(rows, domain.OrderLineItem{
			OrderID:   orderID,
			ProductID: item.ProductID,
			Qty:       item.Qty,
		})
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Order{}).
			Where("id = ?", orderID).
			Update("status", domain.OrderPlaced).Error
	})
}

// ProcessOrder applies the inventory decrement and sales increment for every
// line item of the order in one transaction. The affected product rows are
// locked with a locking read before adjustment so concurrent processing of
// overlapping products serializes instead of double-spending stock. Any
// failure rolls the whole set back. Processing is one-shot: an order already
// marked processed is rejected so its adjustments cannot be applied twice.
func (s *Service) ProcessOrder(ctx context.Context, orderID int64) (int, error) {
	var processed int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order domain.Order
		err := tx.Where("id = ?", orderID).First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoItems
		}
		if err != nil {
			return err
		}
		if order.Status == domain.OrderProcessed {
			return ErrAlreadyProcessed
		}

		var items []domain.OrderLineItem
		if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrNoItems
		}

		if strings.EqualFold(tx.Name(), "postgres") {
			ids := make([]int64, 0, len(items))
			for _, item := range items {
				ids = append(ids, item.ProductID)
			}
			var locked []domain.Product
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id IN ?", ids).Find(&locked).Error; err != nil {
				return err
			}
		}

		for _, item := range items {
			res := tx.Model(&domain.Product{}).
				Where("id = ?", item.ProductID).
				UpdateColumn("quantity", gorm.Expr("quantity - ?", item.Qty))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrProductMissing
			}

			if err := s.bumpSales(tx, item.ProductID, int64(item.Qty)); err != nil {
				return err
			}
		}

		if err := tx.Model(&domain.Order{}).
			Where("id = ?", orderID).
			Update("status", domain.OrderProcessed).Error; err != nil {
			return err
		}

		processed = len(items)
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.publish(TopicOrderProcessed, orderID)
	return processed, nil
}

// bumpSales adds qty units to the product's cumulative sales counter,
// inserting the row on first sale.
func (s *Service) bumpSales(tx *gorm.DB, productID, qty int64) error {
	res := tx.Model(&domain.Sales{}).
		Where("product_id = ?", productID).
		UpdateColumn("units", gorm.Expr("units + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return tx.Create(&domain.Sales{ProductID: productID, Units: qty}).Error
	}
	return nil
}

// ListWithItems returns every order, most recent first, with its line items
// nested. Orders without items carry an empty list.
func (s *Service) ListWithItems(ctx context.Context) ([]OrderView, error) {
	var orders []domain.Order
	if err := s.db.WithContext(ctx).Order("id DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	views := make([]OrderView, 0, len(orders))
	if len(orders) == 0 {
		return views, nil
	}

	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	type itemRow struct {
		OrderID     int64
		ProductID   int64
		ProductName string
		Qty         int
	}
	var rows []itemRow
	err := s.db.WithContext(ctx).
		Table("order_product").
		Select("order_product.order_id, order_product.product_id, products.product_name, order_product.qty").
		Joins("LEFT JOIN products ON products.id = order_product.product_id").
		Where("order_product.order_id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	itemsByOrder := make(map[int64][]OrderItemView, len(orders))
	for _, r := range rows {
		itemsByOrder[r.OrderID] = append(itemsByOrder[r.OrderID], OrderItemView{
			ProductID:   r.ProductID,
			ProductName: r.ProductName,
			Qty:         r.Qty,
		})
	}

	for _, o := range orders {
		items := itemsByOrder[o.ID]
		if items == nil {
			items = []OrderItemView{}
		}
		views = append(views, OrderView{
			ID:          o.ID,
			Username:    o.Username,
			Email:       o.Email,
			PhoneNumber: o.PhoneNumber,
			Status:      o.Status,
			Items:       items,
		})
	}
	return views, nil
}

// ReconcilePending deletes pending orders older than the cutoff that never
// got items attached. Run from the scheduler.
func (s *Service) ReconcilePending(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	res := s.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", domain.OrderPending, cutoff).
		Where("NOT EXISTS (SELECT 1 FROM order_product WHERE order_product.order_id = orders.id)").
		Delete(&domain.Order{})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		zap.L().Info("reconciled stale pending orders", zap.Int64("count", res.RowsAffected))
	}
	return res.RowsAffected, nil
}

func (s *Service) publish(topic string, orderID int64) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(topic, orderID)
}
