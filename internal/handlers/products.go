package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nutricart/nutricart-api/internal/services"
	"github.com/nutricart/nutricart-api/internal/utils"
	"gorm.io/gorm"
)

// ProductHandler handles product catalog routes
type ProductHandler struct {
	DB *gorm.DB
}

// Search handles GET /api/products/search
// @Summary Search products
// @Description Search the product catalog by name or brand, optionally filtered by category
// @Tags Products
// @Produce json
// @Param q query string false "Search term"
// @Param category query string false "Category filter"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /products/search [get]
func (h *ProductHandler) Search(c *fiber.Ctx) error {
	query := c.Query("q")
	category := c.Query("category")
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	products, err := services.SearchProducts(h.DB, query, category, limit, offset)
	if err != nil {
		return respondError(c, err, "searchProducts")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"products": products,
		"count":    len(products),
	})
}

// GetByID handles GET /api/products/:id
// @Summary Get a product
// @Tags Products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.Product
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.ValidationErrorResponse(c, "id must be a positive integer")
	}

	product, err := services.GetProduct(h.DB, uint64(id))
	if err != nil {
		return respondError(c, err, "getProduct")
	}
	return c.Status(fiber.StatusOK).JSON(product)
}

// GetByItemCode handles GET /api/products/item-code/:itemCode
// @Summary Get a product by retailer item code
// @Tags Products
// @Produce json
// @Param itemCode path string true "Retailer item code"
// @Success 200 {object} models.Product
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /products/item-code/{itemCode} [get]
func (h *ProductHandler) GetByItemCode(c *fiber.Ctx) error {
	itemCode := c.Params("itemCode")
	if itemCode == "" {
		return utils.ValidationErrorResponse(c, "itemCode is required")
	}

	product, err := services.GetProductByItemCode(h.DB, itemCode)
	if err != nil {
		return respondError(c, err, "getProductByItemCode")
	}
	return c.Status(fiber.StatusOK).JSON(product)
}
