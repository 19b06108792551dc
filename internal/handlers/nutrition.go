package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nutricart/nutricart-api/internal/middleware"
	"github.com/nutricart/nutricart-api/internal/models"
	"github.com/nutricart/nutricart-api/internal/services"
	"github.com/nutricart/nutricart-api/internal/types"
	"github.com/nutricart/nutricart-api/internal/utils"
	"gorm.io/gorm"
)

// NutritionHandler handles nutrition log routes
type NutritionHandler struct {
	DB *gorm.DB
}

// macrosRequest carries per-food macro grams. Clients sometimes send
// numbers as strings, so everything flexes.
type macrosRequest struct {
	Protein types.FlexFloat64 `json:"protein"`
	Carbs   types.FlexFloat64 `json:"carbs"`
	Fat     types.FlexFloat64 `json:"fat"`
}

type foodRequest struct {
	ProductID *uint64            `json:"product_id"`
	Name      string             `json:"name"`
	Quantity  *types.FlexFloat64 `json:"quantity"`
	Unit      string             `json:"unit"`
	Calories  types.FlexFloat64  `json:"calories"`
	Macros    *macrosRequest     `json:"macros"`
}

type mealRequest struct {
	Type  string                      `json:"type"`
	Time  string                      `json:"time"`
	Foods types.FlexList[foodRequest] `json:"foods"`
}

type logRequest struct {
	Date        string                      `json:"date"`
	Meals       types.FlexList[mealRequest] `json:"meals"`
	WaterIntake *types.FlexFloat64          `json:"waterIntake"`
}

type waterRequest struct {
	Date        string            `json:"date"`
	WaterIntake types.FlexFloat64 `json:"waterIntake"`
}

func toItemInputs(foods []foodRequest) []services.ItemInput {
	items := make([]services.ItemInput, 0, len(foods))
	for _, f := range foods {
		item := services.ItemInput{
			ProductID: f.ProductID,
			Name:      f.Name,
			Quantity:  100,
			Unit:      f.Unit,
			Calories:  f.Calories.Float64(),
		}
		if f.Quantity != nil {
			item.Quantity = f.Quantity.Float64()
		}
		if f.Macros != nil {
			item.Protein = f.Macros.Protein.Float64()
			item.Carbs = f.Macros.Carbs.Float64()
			item.Fat = f.Macros.Fat.Float64()
		}
		items = append(items, item)
	}
	return items
}

func parseMealTime(value string, logDate time.Time) (time.Time, error) {
	if value == "" {
		return time.Now().UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse("15:04", value); err == nil {
		d := services.DateOnly(logDate)
		return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
	}
	return time.Time{}, types.NewValidationError("time", "must be an RFC3339 timestamp or HH:MM")
}

// LogNutrition handles POST /api/nutrition/log
// @Summary Record nutrition for a day
// @Description Append one or more meals to the user's daily log, creating the log on first use
// @Tags Nutrition
// @Accept json
// @Produce json
// @Param request body logRequest true "Meals to record"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /nutrition/log [post]
func (h *NutritionHandler) LogNutrition(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var req logRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ValidationErrorResponse(c, "invalid request body")
	}
	if len(req.Meals) == 0 {
		return utils.ValidationErrorResponse(c, "at least one meal is required")
	}

	date, err := parseDateParam(req.Date)
	if err != nil {
		return respondError(c, err, "logNutrition")
	}

	log, err := services.FindOrCreateLog(h.DB, userID, date)
	if err != nil {
		return respondError(c, err, "logNutrition")
	}

	meals := make([]*models.Meal, 0, len(req.Meals))
	for _, m := range req.Meals {
		mealTime, err := parseMealTime(m.Time, date)
		if err != nil {
			return respondError(c, err, "logNutrition")
		}
		meal, err := services.AddMeal(h.DB, userID, log.ID, m.Type, mealTime, toItemInputs(m.Foods))
		if err != nil {
			return respondError(c, err, "logNutrition")
		}
		meals = append(meals, meal)
	}

	if req.WaterIntake != nil {
		if err := services.UpdateWaterIntake(h.DB, userID, log.ID, req.WaterIntake.Float64()); err != nil {
			return respondError(c, err, "logNutrition")
		}
	}

	updated, err := services.GetLog(h.DB, userID, date)
	if err != nil {
		return respondError(c, err, "logNutrition")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"log":         updated,
		"meals_added": len(meals),
	})
}

// GetDailyLog handles GET /api/nutrition/log/:date
// @Summary Get a daily log
// @Description Get the full log for a date with meals, items and macro breakdown
// @Tags Nutrition
// @Produce json
// @Param date path string true "Log date (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /nutrition/log/{date} [get]
func (h *NutritionHandler) GetDailyLog(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	date, err := parseDateParam(c.Params("date"))
	if err != nil {
		return respondError(c, err, "getDailyLog")
	}

	log, err := services.GetLog(h.DB, userID, date)
	if err != nil {
		return respondError(c, err, "getDailyLog")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"log":             log,
		"macro_breakdown": log.MacroBreakdown(),
	})
}

// GetHistory handles GET /api/nutrition/history
// @Summary List past logs
// @Description List the user's nutrition logs within a date range, most recent first
// @Tags Nutrition
// @Produce json
// @Param startDate query string false "Range start (YYYY-MM-DD)"
// @Param endDate query string false "Range end (YYYY-MM-DD)"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /nutrition/history [get]
func (h *NutritionHandler) GetHistory(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	start, end, err := parseDateRange(c, 30)
	if err != nil {
		return respondError(c, err, "getHistory")
	}

	limit := c.QueryInt("limit", 30)
	offset := c.QueryInt("offset", 0)

	logs, err := services.GetUserLogs(h.DB, userID, start, end, limit, offset)
	if err != nil {
		return respondError(c, err, "getHistory")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"logs":  logs,
		"count": len(logs),
	})
}

// GetSummary handles GET /api/nutrition/summary
// @Summary Summarize a date range
// @Description Average and total nutrition over the user's logs in a range
// @Tags Nutrition
// @Produce json
// @Param startDate query string false "Range start (YYYY-MM-DD)"
// @Param endDate query string false "Range end (YYYY-MM-DD)"
// @Success 200 {object} services.Summary
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /nutrition/summary [get]
func (h *NutritionHandler) GetSummary(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	start, end, err := parseDateRange(c, 30)
	if err != nil {
		return respondError(c, err, "getSummary")
	}

	summary, err := services.GetSummary(h.DB, userID, start, end)
	if err != nil {
		return respondError(c, err, "getSummary")
	}

	return c.Status(fiber.StatusOK).JSON(summary)
}

// UpdateWater handles PUT /api/nutrition/water
// @Summary Update water intake
// @Description Set the day's water intake in milliliters
// @Tags Nutrition
// @Accept json
// @Produce json
// @Param request body waterRequest true "Water intake"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /nutrition/water [put]
func (h *NutritionHandler) UpdateWater(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var req waterRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ValidationErrorResponse(c, "invalid request body")
	}

	date, err := parseDateParam(req.Date)
	if err != nil {
		return respondError(c, err, "updateWater")
	}

	log, err := services.FindOrCreateLog(h.DB, userID, date)
	if err != nil {
		return respondError(c, err, "updateWater")
	}

	if err := services.UpdateWaterIntake(h.DB, userID, log.ID, req.WaterIntake.Float64()); err != nil {
		return respondError(c, err, "updateWater")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"date":         services.DateOnly(date).Format(dateLayout),
		"water_intake": req.WaterIntake.Float64(),
	})
}

// RemoveMeal handles DELETE /api/nutrition/log/:date/meals/:mealID
// @Summary Remove a meal
// @Description Remove a meal and its items from the day's log and recompute totals
// @Tags Nutrition
// @Produce json
// @Param date path string true "Log date (YYYY-MM-DD)"
// @Param mealID path int true "Meal ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /nutrition/log/{date}/meals/{mealID} [delete]
func (h *NutritionHandler) RemoveMeal(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	date, err := parseDateParam(c.Params("date"))
	if err != nil {
		return respondError(c, err, "removeMeal")
	}

	mealID, err := c.ParamsInt("mealID")
	if err != nil || mealID <= 0 {
		return utils.ValidationErrorResponse(c, "mealID must be a positive integer")
	}

	log, err := services.GetLog(h.DB, userID, date)
	if err != nil {
		return respondError(c, err, "removeMeal")
	}

	if err := services.RemoveMeal(h.DB, userID, log.ID, uint64(mealID)); err != nil {
		return respondError(c, err, "removeMeal")
	}

	updated, err := services.GetLog(h.DB, userID, date)
	if err != nil {
		return respondError(c, err, "removeMeal")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"log": updated,
	})
}
