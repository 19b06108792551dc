package services_test

import (
	"testing"
	"time"

	"github.com/nutricart/nutricart-api/internal/models"
	"github.com/nutricart/nutricart-api/internal/services"
)

func TestGetSummaryEmptyRange(t *testing.T) {
	db := setupTestDB(t)
	userID := createUser(t, db)

	summary, err := services.GetSummary(db, userID, testDate.AddDate(0, 0, -7), testDate)
	if err != nil {
		t.Fatalf("GetSummary failed: %v", err)
	}

	if summary.LogDays != 0 || summary.AvgCalories != 0 || summary.TotalCalories != 0 {
		t.Errorf("Expected zeroed summary for an empty range, got %+v", summary)
	}
	if summary.DateRange.Start != nil || summary.DateRange.End != nil {
		t.Errorf("Expected nil date bounds for an empty range, got %+v", summary.DateRange)
	}
}

func TestGetSummaryAveragesAndBounds(t *testing.T) {
	db := setupTestDB(t)
	userID := createUser(t, db)

	days := []struct {
		date     time.Time
		calories float64
		protein  float64
		water    float64
	}{
		{testDate, 2000, 100, 1500},
		{testDate.AddDate(0, 0, 1), 1800, 90, 2000},
		{testDate.AddDate(0, 0, 2), 2205, 110.5, 1000},
	}

	for _, d := range days {
		log, err := services.FindOrCreateLog(db, userID, d.date)
		if err != nil {
			t.Fatalf("FindOrCreateLog failed: %v", err)
		}
		_, err = services.AddMeal(db, userID, log.ID, models.MealDinner, time.Now().UTC(), []services.ItemInput{
			{Name: "dinner", Quantity: 100, Calories: d.calories, Protein: d.protein},
		})
		if err != nil {
			t.Fatalf("AddMeal failed: %v", err)
		}
		if err := services.UpdateWaterIntake(db, userID, log.ID, d.water); err != nil {
			t.Fatalf("UpdateWaterIntake failed: %v", err)
		}
	}

	summary, err := services.GetSummary(db, userID, testDate, testDate.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("GetSummary failed: %v", err)
	}

	if summary.LogDays != 3 {
		t.Errorf("Expected 3 log days, got %d", summary.LogDays)
	}
	// (2000+1800+2205)/3 = 2001.67 -> rounded to an integer count.
	if summary.AvgCalories != 2002 {
		t.Errorf("Expected avg_calories 2002, got %v", summary.AvgCalories)
	}
	// (100+90+110.5)/3 = 100.1666... -> 100.17 at 2dp.
	if summary.AvgProtein != 100.17 {
		t.Errorf("Expected avg_protein 100.17, got %v", summary.AvgProtein)
	}
	// (1500+2000+1000)/3 = 1500
	if summary.AvgWater != 1500 {
		t.Errorf("Expected avg_water 1500, got %v", summary.AvgWater)
	}
	if summary.TotalCalories != 6005 {
		t.Errorf("Expected total_calories 6005, got %v", summary.TotalCalories)
	}

	if summary.DateRange.Start == nil || summary.DateRange.End == nil {
		t.Fatalf("Expected date bounds, got %+v", summary.DateRange)
	}
	if !summary.DateRange.Start.Equal(testDate) {
		t.Errorf("Expected range start %v, got %v", testDate, summary.DateRange.Start)
	}
	if !summary.DateRange.End.Equal(testDate.AddDate(0, 0, 2)) {
		t.Errorf("Expected range end %v, got %v", testDate.AddDate(0, 0, 2), summary.DateRange.End)
	}
}

func TestGetSummaryExcludesOtherUsersAndDates(t *testing.T) {
	db := setupTestDB(t)
	userID := createUser(t, db)
	other := models.User{Email: "other@example.com"}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("Failed to create second user: %v", err)
	}

	inRange, _ := services.FindOrCreateLog(db, userID, testDate)
	if _, err := services.AddMeal(db, userID, inRange.ID, models.MealLunch, time.Now().UTC(), []services.ItemInput{
		{Name: "lunch", Quantity: 100, Calories: 500},
	}); err != nil {
		t.Fatalf("AddMeal failed: %v", err)
	}

	// Out of range for the same user.
	outOfRange, _ := services.FindOrCreateLog(db, userID, testDate.AddDate(0, 0, 10))
	if _, err := services.AddMeal(db, userID, outOfRange.ID, models.MealLunch, time.Now().UTC(), []services.ItemInput{
		{Name: "lunch", Quantity: 100, Calories: 900},
	}); err != nil {
		t.Fatalf("AddMeal failed: %v", err)
	}

	// Same date, different user.
	foreign, _ := services.FindOrCreateLog(db, other.ID, testDate)
	if _, err := services.AddMeal(db, other.ID, foreign.ID, models.MealLunch, time.Now().UTC(), []services.ItemInput{
		{Name: "lunch", Quantity: 100, Calories: 700},
	}); err != nil {
		t.Fatalf("AddMeal failed: %v", err)
	}

	summary, err := services.GetSummary(db, userID, testDate, testDate.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("GetSummary failed: %v", err)
	}
	if summary.LogDays != 1 || summary.TotalCalories != 500 {
		t.Errorf("Expected only the in-range log counted, got %+v", summary)
	}
}

func TestGetUserLogsOrderAndLimit(t *testing.T) {
	db := setupTestDB(t)
	userID := createUser(t, db)

	for i := 0; i < 5; i++ {
		if _, err := services.FindOrCreateLog(db, userID, testDate.AddDate(0, 0, i)); err != nil {
			t.Fatalf("FindOrCreateLog failed: %v", err)
		}
	}

	logs, err := services.GetUserLogs(db, userID, testDate, testDate.AddDate(0, 0, 4), 3, 0)
	if err != nil {
		t.Fatalf("GetUserLogs failed: %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("Expected 3 logs with limit 3, got %d", len(logs))
	}
	for i := 1; i < len(logs); i++ {
		if logs[i].LogDate.After(logs[i-1].LogDate) {
			t.Errorf("Expected newest-first ordering, got %v before %v", logs[i-1].LogDate, logs[i].LogDate)
		}
	}
}
