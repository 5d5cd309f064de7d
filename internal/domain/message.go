package domain

import "time"

// Message is one contact-form submission. Append-only.
type Message struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Fullname  string    `gorm:"size:200" json:"fullname"`
	Email     string    `gorm:"size:200" json:"email"`
	Message   string    `gorm:"column:message" json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}
