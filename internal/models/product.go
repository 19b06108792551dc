package models

import (
	"time"
)

// Product is a catalog entry from the grocery price pipeline. Nutrition
// facts and tags arrive as free-form JSON from the importer and are kept
// as JSON columns rather than normalized tables.
type Product struct {
	ID                uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ItemCode          string     `gorm:"size:64;uniqueIndex;not null" json:"item_code"`
	Name              string     `gorm:"size:255;not null;index" json:"name"`
	NameEN            string     `gorm:"size:255" json:"name_en,omitempty"`
	Description       string     `gorm:"size:1024" json:"description,omitempty"`
	Brand             string     `gorm:"size:255" json:"brand,omitempty"`
	Category          string     `gorm:"size:255;index" json:"category,omitempty"`
	SizeAmount        float64    `json:"size_amount,omitempty"`
	SizeUnit          string     `gorm:"size:32" json:"size_unit,omitempty"`
	Nutrition         JSON       `json:"nutrition,omitempty"`
	Tags              JSON       `json:"tags,omitempty"`
	CanIncludeInMenu  bool       `gorm:"not null;default:true" json:"can_include_in_menu"`
	IsActive          bool       `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	Prices            []PriceRecord `gorm:"foreignKey:ProductID" json:"prices,omitempty"`
}

// TableName overrides the table name for Product
func (Product) TableName() string {
	return "products"
}

// PriceRecord is one observed supermarket price for a product.
type PriceRecord struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID      uint64    `gorm:"not null;index" json:"product_id"`
	Supermarket    string    `gorm:"size:255;not null" json:"supermarket"`
	Price          float64   `gorm:"not null" json:"price"`
	Currency       string    `gorm:"size:8;not null;default:ILS" json:"currency"`
	IsOnSale       bool      `gorm:"not null;default:false" json:"is_on_sale"`
	SalePercentage float64   `json:"sale_percentage,omitempty"`
	RecordedAt     time.Time `gorm:"not null;index" json:"recorded_at"`
}

// TableName overrides the table name for PriceRecord
func (PriceRecord) TableName() string {
	return "price_history"
}
