package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID        uint            `gorm:"primaryKey"`
	Name      string          `gorm:"size:150;index;not null"`
	SKU       string          `gorm:"size:50;uniqueIndex;not null"`
	Cost      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Sellable  bool            `gorm:"not null;default:true"` // repuestos de uso interno no aparecen en búsquedas de venta
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LocationStock: existencia de un producto en una ubicación concreta.
type LocationStock struct {
	ID         uint `gorm:"primaryKey"`
	ProductID  uint `gorm:"not null;uniqueIndex:idx_stock_product_location"`
	Product    Product
	LocationID uint `gorm:"not null;uniqueIndex:idx_stock_product_location"`
	Location   Location
	Quantity   int `gorm:"not null;default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
