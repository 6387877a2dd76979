package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Product is a listing of a store.
type Product struct {
	ID          int64                 `gorm:"column:id;primaryKey;autoIncrement"`
	StoreID     int64                 `gorm:"column:store_id;not null;index"`
	Name        string                `gorm:"column:name;not null"`
	Description *string               `gorm:"column:description"`
	Category    enums.ProductCategory `gorm:"column:category;type:text;not null"`
	Price       decimal.Decimal       `gorm:"column:price;type:numeric(10,2);not null;default:0"`
	Inventory   int                   `gorm:"column:inventory;not null;default:0"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
