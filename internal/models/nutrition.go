package models

import (
	"math"
	"time"
)

// Meal types accepted by the log engine.
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
	MealSnack     = "snack"
)

// ValidMealType reports whether t is one of the fixed meal types.
func ValidMealType(t string) bool {
	switch t {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return true
	}
	return false
}

// NutritionLog is the per-user, per-calendar-date aggregate of logged
// nutrition. The four totals are derived from the log's items and are
// written only by the log service's recomputation step; water intake is
// the one field set directly.
type NutritionLog struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        uint64    `gorm:"not null;index:idx_user_log_date,unique" json:"user_id"`
	LogDate       time.Time `gorm:"type:date;not null;index:idx_user_log_date,unique" json:"log_date"`
	TotalCalories float64   `gorm:"not null;default:0" json:"total_calories"`
	TotalProtein  float64   `gorm:"not null;default:0" json:"total_protein"`
	TotalCarbs    float64   `gorm:"not null;default:0" json:"total_carbs"`
	TotalFat      float64   `gorm:"not null;default:0" json:"total_fat"`
	WaterIntake   float64   `gorm:"not null;default:0" json:"water_intake"`
	Notes         string    `gorm:"size:1024" json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Meals         []Meal    `gorm:"foreignKey:NutritionLogID" json:"meals,omitempty"`
}

// TableName overrides the table name for NutritionLog
func (NutritionLog) TableName() string {
	return "nutrition_logs"
}

// Meal groups the items logged in one sitting within a log.
type Meal struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	NutritionLogID uint64    `gorm:"not null;index" json:"nutrition_log_id"`
	MealType       string    `gorm:"size:16;not null" json:"meal_type"`
	MealTime       time.Time `gorm:"not null" json:"meal_time"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Items          []LogItem `gorm:"foreignKey:MealID" json:"items"`
}

// TableName overrides the table name for Meal
func (Meal) TableName() string {
	return "nutrition_log_meals"
}

// LogItem is a single food entry belonging to a meal. ProductID is nil
// for custom free-text foods, in which case CustomFoodName carries the
// display name.
type LogItem struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	MealID         uint64    `gorm:"not null;index" json:"meal_id"`
	ProductID      *uint64   `gorm:"index" json:"product_id,omitempty"`
	CustomFoodName string    `gorm:"size:255" json:"custom_food_name,omitempty"`
	Quantity       float64   `gorm:"not null" json:"quantity"`
	Unit           string    `gorm:"size:32;not null;default:grams" json:"unit"`
	Calories       float64   `gorm:"not null" json:"calories"`
	Protein        float64   `gorm:"not null;default:0" json:"protein"`
	Carbs          float64   `gorm:"not null;default:0" json:"carbs"`
	Fat            float64   `gorm:"not null;default:0" json:"fat"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName overrides the table name for LogItem
func (LogItem) TableName() string {
	return "nutrition_log_items"
}

// MacroBreakdown is the percentage-of-calories view of the three macros.
type MacroBreakdown struct {
	Protein int `json:"protein"`
	Carbs   int `json:"carbs"`
	Fat     int `json:"fat"`
}

// Kcal per gram of each macronutrient.
const (
	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9
)

// MacroBreakdown derives the percentage of total calories attributable
// to protein, carbs, and fat. A log with zero total calories yields an
// all-zero breakdown rather than dividing by zero.
func (l *NutritionLog) MacroBreakdown() MacroBreakdown {
	if l.TotalCalories == 0 {
		return MacroBreakdown{}
	}
	return MacroBreakdown{
		Protein: int(math.Round(l.TotalProtein * kcalPerGramProtein / l.TotalCalories * 100)),
		Carbs:   int(math.Round(l.TotalCarbs * kcalPerGramCarbs / l.TotalCalories * 100)),
		Fat:     int(math.Round(l.TotalFat * kcalPerGramFat / l.TotalCalories * 100)),
	}
}
