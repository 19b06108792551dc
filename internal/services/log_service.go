// log_service.go
//
// The transactional nutrition-log aggregation engine. A log's stored
// totals always equal the sum over its current items; every mutation
// recomputes them from scratch inside the same transaction instead of
// adjusting incrementally, so a retried or interleaved operation can
// never leave the totals drifted.

package services

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/nutricart/nutricart-api/internal/models"
	"github.com/nutricart/nutricart-api/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ItemInput is one food entry of an add-meal request. Either ProductID
// or Name must be set; nutrient values are absolute for the given
// quantity, not per-100g.
type ItemInput struct {
	ProductID *uint64 `json:"product_id,omitempty"`
	Name      string  `json:"name,omitempty"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit,omitempty"`
	Calories  float64 `json:"calories"`
	Protein   float64 `json:"protein,omitempty"`
	Carbs     float64 `json:"carbs,omitempty"`
	Fat       float64 `json:"fat,omitempty"`
}

// FindOrCreateLog returns the nutrition log for (userID, date), creating
// it with zeroed totals if absent. Insert-or-return-existing semantics:
// two concurrent calls for the same key both resolve to the same row.
func FindOrCreateLog(db *gorm.DB, userID uint64, date time.Time) (*models.NutritionLog, error) {
	day := DateOnly(date)

	fresh := models.NutritionLog{UserID: userID, LogDate: day}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "log_date"}},
		DoNothing: true,
	}).Create(&fresh).Error
	if err != nil {
		return nil, &types.StoreError{Op: "create log", Err: err}
	}

	// Re-select regardless of whether the insert won the race, so the
	// caller always sees the row that actually exists.
	var log models.NutritionLog
	if err := db.Where("user_id = ? AND log_date = ?", userID, day).First(&log).Error; err != nil {
		return nil, &types.StoreError{Op: "find log", Err: err}
	}
	return &log, nil
}

// GetLog returns the log for (userID, date) with meals and items
// preloaded, ordered by meal time.
func GetLog(db *gorm.DB, userID uint64, date time.Time) (*models.NutritionLog, error) {
	var log models.NutritionLog
	err := db.
		Preload("Meals", func(tx *gorm.DB) *gorm.DB { return tx.Order("meal_time ASC") }).
		Preload("Meals.Items").
		Where("user_id = ? AND log_date = ?", userID, DateOnly(date)).
		First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &types.NotFoundError{Resource: "nutrition log"}
		}
		return nil, &types.StoreError{Op: "get log", Err: err}
	}
	return &log, nil
}

// AddMeal inserts a meal with its items into the log and recomputes the
// stored totals, all in one transaction. Readers never observe the new
// rows without the matching totals or vice versa. An empty item list is
// legal.
func AddMeal(db *gorm.DB, userID, logID uint64, mealType string, mealTime time.Time, items []ItemInput) (*models.Meal, error) {
	if err := validateMealInput(mealType, items); err != nil {
		return nil, err
	}
	if mealTime.IsZero() {
		mealTime = time.Now().UTC()
	}

	var populated models.Meal
	err := db.Transaction(func(tx *gorm.DB) error {
		log, err := lockLog(tx, userID, logID)
		if err != nil {
			return err
		}

		meal := models.Meal{
			NutritionLogID: log.ID,
			MealType:       mealType,
			MealTime:       mealTime,
		}
		if err := tx.Create(&meal).Error; err != nil {
			return &types.StoreError{Op: "create meal", Err: err}
		}

		if len(items) > 0 {
			rows := make([]models.LogItem, 0, len(items))
			for _, it := range items {
				unit := it.Unit
				if unit == "" {
					unit = "grams"
				}
				rows = append(rows, models.LogItem{
					MealID:         meal.ID,
					ProductID:      it.ProductID,
					CustomFoodName: it.Name,
					Quantity:       it.Quantity,
					Unit:           unit,
					Calories:       it.Calories,
					Protein:        it.Protein,
					Carbs:          it.Carbs,
					Fat:            it.Fat,
				})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return &types.StoreError{Op: "create items", Err: err}
			}
		}

		if err := recomputeTotals(tx, log.ID); err != nil {
			return err
		}

		return tx.Preload("Items").First(&populated, meal.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &populated, nil
}

// RemoveMeal deletes the meal's items and the meal itself, then
// recomputes the log's totals, in one transaction. The delete is scoped
// by both meal id and owning log id, so a meal id from another log is a
// NotFoundError and leaves this log untouched.
func RemoveMeal(db *gorm.DB, userID, logID, mealID uint64) error {
	return db.Transaction(func(tx *gorm.DB) error {
		log, err := lockLog(tx, userID, logID)
		if err != nil {
			return err
		}

		var meal models.Meal
		if err := tx.Where("id = ? AND nutrition_log_id = ?", mealID, log.ID).First(&meal).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &types.NotFoundError{Resource: "meal", ID: mealID}
			}
			return &types.StoreError{Op: "find meal", Err: err}
		}

		if err := tx.Where("meal_id = ?", meal.ID).Delete(&models.LogItem{}).Error; err != nil {
			return &types.StoreError{Op: "delete items", Err: err}
		}
		if err := tx.Where("id = ? AND nutrition_log_id = ?", meal.ID, log.ID).Delete(&models.Meal{}).Error; err != nil {
			return &types.StoreError{Op: "delete meal", Err: err}
		}

		return recomputeTotals(tx, log.ID)
	})
}

// UpdateWaterIntake sets water intake directly. It is the one log field
// not derived from items, so no recomputation is involved.
func UpdateWaterIntake(db *gorm.DB, userID, logID uint64, amount float64) error {
	if amount < 0 {
		return types.NewValidationError("waterIntake", "must be a non-negative number")
	}

	result := db.Model(&models.NutritionLog{}).
		Where("id = ? AND user_id = ?", logID, userID).
		Update("water_intake", amount)
	if result.Error != nil {
		return &types.StoreError{Op: "update water intake", Err: result.Error}
	}
	if result.RowsAffected == 0 {
		return &types.NotFoundError{Resource: "nutrition log", ID: logID}
	}
	return nil
}

// RecomputeTotals re-derives the stored totals from the log's current
// items in its own transaction. Idempotent: with no intervening writes,
// a second call stores identical values.
func RecomputeTotals(db *gorm.DB, userID, logID uint64) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := lockLog(tx, userID, logID); err != nil {
			return err
		}
		return recomputeTotals(tx, logID)
	})
}

// lockLog fetches the log row with a row-level write lock, scoping by
// user so cross-user ids read as absent.
func lockLog(tx *gorm.DB, userID, logID uint64) (*models.NutritionLog, error) {
	q := tx
	// SQLite has no FOR UPDATE; its single-writer model serializes the
	// transaction anyway.
	if tx.Dialector.Name() != "sqlite" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var log models.NutritionLog
	if err := q.Where("id = ? AND user_id = ?", logID, userID).First(&log).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &types.NotFoundError{Resource: "nutrition log", ID: logID}
		}
		return nil, &types.StoreError{Op: "lock log", Err: err}
	}
	return &log, nil
}

type totalsRow struct {
	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
}

// recomputeTotals sums calories/protein/carbs/fat across all items of
// all meals currently in the log and persists the rounded aggregates.
// Runs inside the caller's transaction so it sees that transaction's own
// inserts and deletes. Per-item values are summed unrounded; only the
// stored aggregate is rounded.
func recomputeTotals(tx *gorm.DB, logID uint64) error {
	var row totalsRow
	err := tx.Table("nutrition_log_items").
		Select("COALESCE(SUM(nutrition_log_items.calories), 0) AS calories, " +
			"COALESCE(SUM(nutrition_log_items.protein), 0) AS protein, " +
			"COALESCE(SUM(nutrition_log_items.carbs), 0) AS carbs, " +
			"COALESCE(SUM(nutrition_log_items.fat), 0) AS fat").
		Joins("JOIN nutrition_log_meals ON nutrition_log_meals.id = nutrition_log_items.meal_id").
		Where("nutrition_log_meals.nutrition_log_id = ?", logID).
		Scan(&row).Error
	if err != nil {
		return &types.StoreError{Op: "sum items", Err: err}
	}

	err = tx.Model(&models.NutritionLog{}).
		Where("id = ?", logID).
		Updates(map[string]interface{}{
			"total_calories": math.Round(row.Calories),
			"total_protein":  round2(row.Protein),
			"total_carbs":    round2(row.Carbs),
			"total_fat":      round2(row.Fat),
		}).Error
	if err != nil {
		return &types.StoreError{Op: "update totals", Err: err}
	}
	return nil
}

func validateMealInput(mealType string, items []ItemInput) error {
	if !models.ValidMealType(mealType) {
		return types.NewValidationError("meal_type",
			"must be one of breakfast, lunch, dinner, snack")
	}
	for _, it := range items {
		if it.ProductID == nil && strings.TrimSpace(it.Name) == "" {
			return types.NewValidationError("items", "each item needs a product reference or a name")
		}
		if it.Quantity <= 0 {
			return types.NewValidationError("items", "quantity must be a positive number")
		}
		if it.Calories < 0 || it.Protein < 0 || it.Carbs < 0 || it.Fat < 0 {
			return types.NewValidationError("items", "nutrient values must be non-negative")
		}
	}
	return nil
}

// DateOnly normalizes a timestamp to its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
