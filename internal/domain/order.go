package domain

import "time"

// Order status lifecycle. An order is created pending, promoted to placed
// when its line items are attached, and marked processed after the
// inventory/sales transaction commits.
const (
	OrderPending   = "pending"
	OrderPlaced    = "placed"
	OrderProcessed = "processed"
)

// Order is the order header. Username, email and phone are accepted as
// opaque strings; headers are never updated or deleted through the API.
type Order struct {
	ID          int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Username    string    `gorm:"size:200" json:"username"`
	Email       string    `gorm:"size:200" json:"email"`
	PhoneNumber string    `gorm:"column:phone_number;size:64" json:"phone_number"`
	Status      string    `gorm:"size:32;index" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderLineItem associates one product and quantity with an order.
// Rows are bulk-inserted at attachment time and immutable afterwards.
type OrderLineItem struct {
	OrderID   int64 `gorm:"column:order_id;primaryKey;autoIncrement:false" json:"order_id"`
	ProductID int64 `gorm:"column:product_id;primaryKey;autoIncrement:false" json:"product_id"`
	Qty       int   `gorm:"column:qty" json:"qty"`
}

func (OrderLineItem) TableName() string {
	return "order_product"
}
