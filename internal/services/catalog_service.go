package services

import (
	"errors"
	"strings"

	"github.com/nutricart/nutricart-api/internal/models"
	"github.com/nutricart/nutricart-api/internal/types"
	"gorm.io/gorm"
)

// GetProduct returns one active catalog product with its recorded prices.
func GetProduct(db *gorm.DB, id uint64) (*models.Product, error) {
	var product models.Product
	err := db.
		Preload("Prices", func(tx *gorm.DB) *gorm.DB { return tx.Order("recorded_at DESC") }).
		Where("id = ? AND is_active = ?", id, true).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &types.NotFoundError{Resource: "product", ID: id}
		}
		return nil, &types.StoreError{Op: "get product", Err: err}
	}
	return &product, nil
}

// GetProductByItemCode returns one active product by its retail item code.
func GetProductByItemCode(db *gorm.DB, itemCode string) (*models.Product, error) {
	var product models.Product
	err := db.
		Preload("Prices", func(tx *gorm.DB) *gorm.DB { return tx.Order("recorded_at DESC") }).
		Where("item_code = ? AND is_active = ?", itemCode, true).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &types.NotFoundError{Resource: "product", ID: itemCode}
		}
		return nil, &types.StoreError{Op: "get product", Err: err}
	}
	return &product, nil
}

// SearchProducts lists active products matching the query and optional
// category, ordered by name.
func SearchProducts(db *gorm.DB, query, category string, limit, offset int) ([]models.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	q := db.Model(&models.Product{}).Where("is_active = ?", true)
	if s := strings.TrimSpace(query); s != "" {
		pattern := "%" + s + "%"
		q = q.Where("name LIKE ? OR name_en LIKE ? OR brand LIKE ?", pattern, pattern, pattern)
	}
	if category != "" {
		q = q.Where("category = ?", category)
	}

	var products []models.Product
	err := q.Order("name ASC").Limit(limit).Offset(offset).Find(&products).Error
	if err != nil {
		return nil, &types.StoreError{Op: "search products", Err: err}
	}
	return products, nil
}
