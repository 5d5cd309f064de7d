package domain

// Sales tracks cumulative units sold per product. Rows are upserted only by
// the order-processing transaction.
type Sales struct {
	ProductID int64 `gorm:"column:product_id;primaryKey;autoIncrement:false" json:"product_id"`
	Units     int64 `gorm:"column:units" json:"units"`
}

func (Sales) TableName() string {
	return "sales"
}
