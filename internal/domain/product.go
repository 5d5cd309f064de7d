package domain

import "time"

// Product categories recognized by the category metrics tally. Category is
// stored as free text; values outside this set are kept but never counted.
const (
	CategoryPrinter   = "printer"
	CategoryLaptop    = "laptop"
	CategoryScreen    = "screen"
	CategoryAccessory = "accessory"
	CategoryOther     = "other"
)

// Product represents one catalog item. The image lives in the external
// blob store; only its public URL is persisted.
type Product struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"column:product_name;index" json:"product_name"`
	MakeModel   string    `gorm:"column:make_model;size:200" json:"make_model"`
	Category    string    `gorm:"size:64" json:"category"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	ImageURL    *string   `gorm:"column:image_url;size:1024" json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}
