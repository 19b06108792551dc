package services

import (
	"math"
	"time"

	"github.com/nutricart/nutricart-api/internal/models"
	"github.com/nutricart/nutricart-api/internal/types"
	"gorm.io/gorm"
)

// DateRange bounds the days a summary actually covers. Both ends are nil
// when no logs exist in the requested range.
type DateRange struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

// Summary aggregates a user's logs over an inclusive date range.
type Summary struct {
	LogDays       int64     `json:"log_days"`
	AvgCalories   float64   `json:"avg_calories"`
	AvgProtein    float64   `json:"avg_protein"`
	AvgCarbs      float64   `json:"avg_carbs"`
	AvgFat        float64   `json:"avg_fat"`
	AvgWater      float64   `json:"avg_water"`
	TotalCalories float64   `json:"total_calories"`
	DateRange     DateRange `json:"date_range"`
}

// GetUserLogs lists a user's logs in the inclusive date range, newest
// first.
func GetUserLogs(db *gorm.DB, userID uint64, start, end time.Time, limit, offset int) ([]models.NutritionLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	var logs []models.NutritionLog
	err := db.
		Where("user_id = ? AND log_date BETWEEN ? AND ?", userID, DateOnly(start), DateOnly(end)).
		Order("log_date DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	if err != nil {
		return nil, &types.StoreError{Op: "list logs", Err: err}
	}
	return logs, nil
}

type summaryRow struct {
	AvgCalories   float64
	AvgProtein    float64
	AvgCarbs      float64
	AvgFat        float64
	AvgWater      float64
	TotalCalories float64
}

// GetSummary computes count, per-day means, calorie sum, and the date
// bounds over the user's logs in [start, end]. An empty range yields
// all zeros and nil bounds, never a division error.
func GetSummary(db *gorm.DB, userID uint64, start, end time.Time) (*Summary, error) {
	startDay, endDay := DateOnly(start), DateOnly(end)

	scoped := func() *gorm.DB {
		return db.Model(&models.NutritionLog{}).
			Where("user_id = ? AND log_date BETWEEN ? AND ?", userID, startDay, endDay)
	}

	var count int64
	if err := scoped().Count(&count).Error; err != nil {
		return nil, &types.StoreError{Op: "count logs", Err: err}
	}
	if count == 0 {
		return &Summary{}, nil
	}

	var row summaryRow
	err := scoped().
		Select("AVG(total_calories) AS avg_calories, " +
			"AVG(total_protein) AS avg_protein, " +
			"AVG(total_carbs) AS avg_carbs, " +
			"AVG(total_fat) AS avg_fat, " +
			"AVG(water_intake) AS avg_water, " +
			"SUM(total_calories) AS total_calories").
		Scan(&row).Error
	if err != nil {
		return nil, &types.StoreError{Op: "aggregate logs", Err: err}
	}

	// Bound dates come from ordered row lookups rather than MIN/MAX so the
	// date scan behaves the same across drivers.
	var first, last models.NutritionLog
	if err := scoped().Order("log_date ASC").First(&first).Error; err != nil {
		return nil, &types.StoreError{Op: "first log", Err: err}
	}
	if err := scoped().Order("log_date DESC").First(&last).Error; err != nil {
		return nil, &types.StoreError{Op: "last log", Err: err}
	}

	return &Summary{
		LogDays:       count,
		AvgCalories:   math.Round(row.AvgCalories),
		AvgProtein:    round2(row.AvgProtein),
		AvgCarbs:      round2(row.AvgCarbs),
		AvgFat:        round2(row.AvgFat),
		AvgWater:      math.Round(row.AvgWater),
		TotalCalories: math.Round(row.TotalCalories),
		DateRange:     DateRange{Start: &first.LogDate, End: &last.LogDate},
	}, nil
}
