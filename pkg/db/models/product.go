package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry; its price is the only authoritative price source.
type Product struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string          `gorm:"column:name;not null" json:"name"`
	Description string          `gorm:"column:description;not null;default:''" json:"description"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(18,2);not null" json:"price"`
	ImageURL    string          `gorm:"column:image_url;not null;default:''" json:"image_url"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
