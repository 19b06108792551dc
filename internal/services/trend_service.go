package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/nutricart/nutricart-api/internal/models"
	"github.com/nutricart/nutricart-api/internal/types"
	"gorm.io/gorm"
)

// WeeklyTrend averages one calendar week's worth of logs.
type WeeklyTrend struct {
	Week        string  `json:"week"`
	AvgCalories float64 `json:"avg_calories"`
	AvgProtein  float64 `json:"avg_protein"`
	AvgCarbs    float64 `json:"avg_carbs"`
	AvgFat      float64 `json:"avg_fat"`
}

// GoalProgress reports calorie-goal attainment for a period. It is nil in
// Trends when the user has no daily_calorie_goal in their profile.
type GoalProgress struct {
	DailyCalorieGoal  float64 `json:"daily_calorie_goal"`
	AvgDailyCalories  float64 `json:"avg_daily_calories"`
	GoalAchievementPC int     `json:"goal_achievement_percentage"`
	Status            string  `json:"status"`
}

// Trends is the analysis of a user's logs over the trailing period.
type Trends struct {
	PeriodDays   int           `json:"period_days"`
	TotalLogs    int           `json:"total_logs"`
	AverageDaily *Summary      `json:"average_daily"`
	WeeklyTrends []WeeklyTrend `json:"weekly_trends"`
	GoalProgress *GoalProgress `json:"goal_progress"`
}

// AnalyzeTrends builds the trend report for the trailing periodDays days.
func AnalyzeTrends(db *gorm.DB, userID uint64, periodDays int) (*Trends, error) {
	if periodDays <= 0 {
		periodDays = 30
	}
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -periodDays)

	logs, err := GetUserLogs(db, userID, start, end, 100, 0)
	if err != nil {
		return nil, err
	}
	summary, err := GetSummary(db, userID, start, end)
	if err != nil {
		return nil, err
	}

	return &Trends{
		PeriodDays:   periodDays,
		TotalLogs:    len(logs),
		AverageDaily: summary,
		WeeklyTrends: weeklyTrends(logs),
		GoalProgress: goalProgress(db, userID, summary),
	}, nil
}

func weeklyTrends(logs []models.NutritionLog) []WeeklyTrend {
	type bucket struct {
		calories, protein, carbs, fat float64
		n                             int
	}
	weeks := make(map[string]*bucket)
	for _, log := range logs {
		key := weekKey(log.LogDate)
		b, ok := weeks[key]
		if !ok {
			b = &bucket{}
			weeks[key] = b
		}
		b.calories += log.TotalCalories
		b.protein += log.TotalProtein
		b.carbs += log.TotalCarbs
		b.fat += log.TotalFat
		b.n++
	}

	trends := make([]WeeklyTrend, 0, len(weeks))
	for key, b := range weeks {
		n := float64(b.n)
		trends = append(trends, WeeklyTrend{
			Week:        key,
			AvgCalories: round2(b.calories / n),
			AvgProtein:  round2(b.protein / n),
			AvgCarbs:    round2(b.carbs / n),
			AvgFat:      round2(b.fat / n),
		})
	}
	sort.Slice(trends, func(i, j int) bool { return trends[i].Week < trends[j].Week })
	return trends
}

func weekKey(date time.Time) string {
	year, week := date.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// goalProgress is best-effort: a missing user, missing profile, or absent
// goal all yield nil rather than an error.
func goalProgress(db *gorm.DB, userID uint64, summary *Summary) *GoalProgress {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return nil
	}
	if len(user.NutritionProfile.JSON) == 0 {
		return nil
	}

	var profile struct {
		DailyCalorieGoal float64 `json:"daily_calorie_goal"`
	}
	if err := json.Unmarshal(user.NutritionProfile.JSON, &profile); err != nil || profile.DailyCalorieGoal <= 0 {
		return nil
	}

	progress := int(math.Round(summary.AvgCalories / profile.DailyCalorieGoal * 100))
	status := "on_track"
	switch {
	case progress < 90:
		status = "under_target"
	case progress > 110:
		status = "over_target"
	}
	return &GoalProgress{
		DailyCalorieGoal:  profile.DailyCalorieGoal,
		AvgDailyCalories:  summary.AvgCalories,
		GoalAchievementPC: progress,
		Status:            status,
	}
}

// RecentLogs returns the user's logs over the trailing seven days, along
// with the stored nutrition profile, for recommendation payloads.
func RecentLogs(db *gorm.DB, userID uint64) (*models.User, []models.NutritionLog, error) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, &types.NotFoundError{Resource: "user", ID: userID}
		}
		return nil, nil, &types.StoreError{Op: "load user", Err: err}
	}

	end := time.Now().UTC()
	logs, err := GetUserLogs(db, userID, end.AddDate(0, 0, -7), end, 7, 0)
	if err != nil {
		return nil, nil, err
	}
	return &user, logs, nil
}
