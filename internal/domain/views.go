package domain

// ViewCounterID is the singleton row id in the views table.
const ViewCounterID = 1

// ViewCounter is the single-row page view counter.
type ViewCounter struct {
	ID    int64 `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Count int64 `gorm:"column:count" json:"count"`
}

func (ViewCounter) TableName() string {
	return "views"
}
