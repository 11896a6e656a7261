package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DeliveryMethod is a shipping option the buyer picks at checkout.
type DeliveryMethod struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ShortName    string          `gorm:"column:short_name;not null" json:"short_name"`
	Description  string          `gorm:"column:description;not null;default:''" json:"description"`
	DeliveryTime string          `gorm:"column:delivery_time;not null;default:''" json:"delivery_time"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric(18,2);not null" json:"price"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
