package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nutricart/nutricart-api/internal/compute"
	"github.com/nutricart/nutricart-api/internal/middleware"
	"github.com/nutricart/nutricart-api/internal/services"
	"github.com/nutricart/nutricart-api/internal/types"
	"github.com/nutricart/nutricart-api/internal/utils"
	"gorm.io/gorm"
)

// ComputeHandler proxies analysis requests to the computation service.
type ComputeHandler struct {
	DB      *gorm.DB
	Compute *compute.Client
}

type calculateRequest struct {
	Calories      *types.FlexFloat64 `json:"calories"`
	Protein       *types.FlexFloat64 `json:"protein"`
	Carbs         *types.FlexFloat64 `json:"carbs"`
	Fat           *types.FlexFloat64 `json:"fat"`
	MealType      string             `json:"meal_type"`
	NumItems      *int               `json:"num_items"`
	IncludePrices bool               `json:"include_prices"`
}

// Calculate handles POST /api/nutrition/calculate
// @Summary Calculate a meal from nutrition targets
// @Description Forward nutrition targets to the computation service and return its meal suggestion
// @Tags Nutrition
// @Accept json
// @Produce json
// @Param request body calculateRequest true "Nutrition targets"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 503 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /nutrition/calculate [post]
func (h *ComputeHandler) Calculate(c *fiber.Ctx) error {
	var req calculateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ValidationErrorResponse(c, "invalid request body")
	}
	for name, v := range map[string]*types.FlexFloat64{
		"calories": req.Calories, "protein": req.Protein, "carbs": req.Carbs, "fat": req.Fat,
	} {
		if v == nil {
			return utils.ValidationErrorResponse(c, name+" is required")
		}
		if v.Float64() < 0 {
			return utils.ValidationErrorResponse(c, name+" must not be negative")
		}
	}

	payload := map[string]interface{}{
		"calories":       req.Calories.Float64(),
		"protein":        req.Protein.Float64(),
		"carbs":          req.Carbs.Float64(),
		"fat":            req.Fat.Float64(),
		"include_prices": req.IncludePrices,
	}
	if req.MealType != "" {
		payload["meal_type"] = req.MealType
	}
	if req.NumItems != nil {
		payload["num_items"] = *req.NumItems
	}

	result, err := h.Compute.CalculateNutrition(c.UserContext(), payload)
	if err != nil {
		return respondError(c, err, "calculateNutrition")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Nutrition calculated successfully",
		"data":    result,
	})
}

// Recommendations handles GET /api/nutrition/recommendations
// @Summary Get personalized recommendations
// @Description Send the user's profile and last seven days of logs to the computation service
// @Tags Nutrition
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 503 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /nutrition/recommendations [get]
func (h *ComputeHandler) Recommendations(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	user, logs, err := services.RecentLogs(h.DB, userID)
	if err != nil {
		return respondError(c, err, "getRecommendations")
	}

	result, err := h.Compute.Recommendations(c.UserContext(), map[string]interface{}{
		"userId":              userID,
		"userProfile":         user.NutritionProfile,
		"recentNutritionData": logs,
	})
	if err != nil {
		return respondError(c, err, "getRecommendations")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":         "Recommendations generated successfully",
		"recommendations": result,
	})
}

// Trends handles GET /api/nutrition/trends
// @Summary Analyze nutrition trends
// @Description Weekly averages and calorie-goal progress over the trailing period
// @Tags Nutrition
// @Produce json
// @Param period query int false "Period in days (default 30)"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /nutrition/trends [get]
func (h *ComputeHandler) Trends(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	period := c.QueryInt("period", 30)

	trends, err := services.AnalyzeTrends(h.DB, userID, period)
	if err != nil {
		return respondError(c, err, "analyzeTrends")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Trends analyzed successfully",
		"trends":  trends,
	})
}

type menuItemRequest struct {
	ItemCode     string             `json:"item_code"`
	Name         string             `json:"name"`
	PortionGrams *types.FlexFloat64 `json:"portion_grams"`
}

type priceRequest struct {
	MenuItems types.FlexList[menuItemRequest] `json:"menu_items"`
}

func (r *priceRequest) validate() error {
	if len(r.MenuItems) == 0 {
		return types.NewValidationError("menu_items", "must be a non-empty array")
	}
	for _, item := range r.MenuItems {
		if item.ItemCode == "" {
			return types.NewValidationError("item_code", "is required for every menu item")
		}
		if item.PortionGrams != nil && item.PortionGrams.Float64() <= 0 {
			return types.NewValidationError("portion_grams", "must be positive")
		}
	}
	return nil
}

// ComparePrices handles POST /api/price/compare
// @Summary Compare menu prices across supermarkets
// @Tags Price
// @Accept json
// @Produce json
// @Param request body priceRequest true "Menu items"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 503 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /price/compare [post]
func (h *ComputeHandler) ComparePrices(c *fiber.Ctx) error {
	var req priceRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ValidationErrorResponse(c, "invalid request body")
	}
	if err := req.validate(); err != nil {
		return respondError(c, err, "comparePrices")
	}

	result, err := h.Compute.ComparePrices(c.UserContext(), req)
	if err != nil {
		return respondError(c, err, "comparePrices")
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// CheapestCombination handles POST /api/price/cheapest-combination
// @Summary Find the cheapest basket across supermarkets
// @Tags Price
// @Accept json
// @Produce json
// @Param request body priceRequest true "Menu items"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 503 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /price/cheapest-combination [post]
func (h *ComputeHandler) CheapestCombination(c *fiber.Ctx) error {
	var req priceRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ValidationErrorResponse(c, "invalid request body")
	}
	if err := req.validate(); err != nil {
		return respondError(c, err, "cheapestCombination")
	}

	result, err := h.Compute.CheapestCombination(c.UserContext(), req)
	if err != nil {
		return respondError(c, err, "cheapestCombination")
	}
	return c.Status(fiber.StatusOK).JSON(result)
}
