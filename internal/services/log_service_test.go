package services_test

import (
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/nutricart/nutricart-api/internal/models"
	"github.com/nutricart/nutricart-api/internal/services"
	"github.com/nutricart/nutricart-api/internal/types"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.PriceRecord{},
		&models.NutritionLog{},
		&models.Meal{},
		&models.LogItem{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func createUser(t *testing.T, db *gorm.DB) uint64 {
	t.Helper()
	user := models.User{Email: "test@example.com"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user.ID
}

var testDate = time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

func oatmealAndBanana() []services.ItemInput {
	return []services.ItemInput{
		{Name: "oatmeal", Quantity: 150, Calories: 150, Protein: 5, Carbs: 30, Fat: 3},
		{Name: "banana", Quantity: 100, Calories: 100, Protein: 1, Carbs: 25, Fat: 0},
	}
}

func TestFindOrCreateLogIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	userID := createUser(t, db)

	first, err := services.FindOrCreateLog(db, userID, testDate)
	if err != nil {
		t.Fatalf("FindOrCreateLog failed: %v", err)
	}
	second, err := services.FindOrCreateLog(db, userID, testDate)
	if err != nil {
		t.Fatalf("FindOrCreateLog (second call) failed: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("Expected both calls to resolve to the same log, got ids %d and %d", first.ID, second.ID)
	}
	if first.TotalCalories != 0 || first.WaterIntake != 0 {
		t.Errorf("Expected a fresh log with zeroed totals, got %+v", first)
	}

	var count int64
	db.Model(&models.NutritionLog{}).Where("user_id = ?", userID).Count(&count)
	if count != 1 {
		t.Errorf("Expected exactly one log row, got %d", count)
	}
}

func TestFindOrCreateLogNormalizesTimestamps(t *testing.T) {
	db := setupTestDB(t)
	userID := createUser(t, db)

	morning := time.Date(2026, 8, 15, 8, 30, 0, 0, time.UTC)
	evening := time.Date(2026, 8, 15, 22, 45, 0, 0, time.UTC)

	first, err := services.FindOrCreateLog(db, userID, morning)
	if err != nil {
		t.Fatalf("FindOrCreateLog failed: %v", err)
	}
	second, err := services.FindOrCreateLog(db, userID, evening)
	if err != nil {
		t.Fatalf("FindOrCreateLog failed: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("Expected timestamps on the same date to map to one log, got ids %d and %d", first.ID, second.ID)
	}
}

func TestAddMealRecomputesTotals(t *testing.T) {
	db := setupTestDB(t)
	userID := createUser(t, db)

	log, err := services.FindOrCreateLog(db, userID, testDate)
	if err != nil {
		t.Fatalf("FindOrCreateLog failed: %v", err)
	}

	meal, err := services.AddMeal(db, userID, log.ID, models.MealBreakfast, time.Now().UTC(), oatmealAndBanana())
	if err != nil {
		t.Fatalf("AddMeal failed: %v", err)
	}
	if len(meal.Items) != 2 {
		t.Fatalf("Expected 2 items on the returned meal, got %d", len(meal.Items))
	}

	updated, err := services.GetLog(db, userID, testDate)
	if err != nil {
		t.Fatalf("GetLog failed: %v", err)
	}
	if updated.TotalCalories != 250 {
		t.Errorf("Expected total_calories 250, got %v", updated.TotalCalories)
	}
	if updated.TotalProtein != 6 {
		t.Errorf("Expected total_protein 6, got %v", updated.TotalProtein)
	}
	if updated.TotalCarbs != 55 {
		t.Errorf("Expected total_carbs 55, got %v", updated.TotalCarbs)
	}
	if updated.TotalFat != 3 {
		t.Errorf("Expected total_fat 3, got %v", updated.TotalFat)
	}
}

func TestAddMealRoundsOnlyTheAggregate(t *testing.T) {
	db := setupTestDB(t)
	userID := createUser(t, db)

	log, _ := services.FindOrCreateLog(db, userID, testDate)

	// Three items whose thirds only round correctly when summed first.
	items := []services.ItemInput{
		{Name: "a", Quantity: 10, Calories: 100.4, Protein: 1.333},
		{Name: "b", Quantity: 10, Calories: 100.4, Protein: 1.333},
		{Name: "c", Quantity: 10, Calories: 100.4, Protein: 1.333},
	}
	if _, err := services.AddMeal(db, userID, log.ID, models.MealLunch, time.Now().UTC(), items); err != nil {
		t.Fatalf("AddMeal failed: %v", err)
	}

	updated, _ := services.GetLog(db, userID, testDate)
	if updated.TotalCalories != 301 {
		t.Errorf("Expected calories rounded from the unrounded sum (301.2 -> 301), got %v", updated.TotalCalories)
	}
	if updated.TotalProtein != 4.0 {
		t.Errorf("Expected protein 3.999 -> 4.00, got %v", updated.TotalProtein)
	}
}

func TestAddMealValidation(t *testing.T) {
	db := setupTestDB(t)
	userID := createUser(t, db)
	log, _ := services.FindOrCreateLog(db, userID, testDate)

	cases := []struct {
		name     string
		mealType string
		items    []services.ItemInput
	}{
		{"unknown meal type", "brunch", oatmealAndBanana()},
		{"no product and no name", models.MealSnack, []services.ItemInput{{Quantity: 10, Calories: 50}}},
		{"zero quantity", models.MealSnack, []services.ItemInput{{Name: "apple", Quantity: 0, Calories: 50}}},
		{"negative calories", models.MealSnack, []services.ItemInput{{Name: "apple", Quantity: 10, Calories: -5}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := services.AddMeal(db, userID, log.ID, tc.mealType, time.Now().UTC(), tc.items)
			var validationErr *types.ValidationError
			if !errors.As(err, &validationErr) {
				t.Errorf("Expected ValidationError, got %v", err)
			}
		})
	}

	// Nothing should have been written.
	updated, _ := services.GetLog(db, userID, testDate)
	if len(updated.Meals) != 0 || updated.TotalCalories != 0 {
		t.Errorf("Expected log untouched after rejected inputs, got %+v", updated)
	}
}

func TestAddMealRollsBackWhenTotalsUpdateFails(t *testing.T) {
	db := setupTestDB(t)
	userID := createUser(t, db)
	log, _ := services.FindOrCreateLog(db, userID, testDate)

	// Committed baseline state the failed call must not disturb.
	if _, err := services.AddMeal(db, userID, log.ID, models.MealBreakfast, time.Now().UTC(), oatmealAndBanana()); err != nil {
		t.Fatalf("AddMeal failed: %v", err)
	}

	// Fail the totals write. The meal and item inserts run first inside
	// the same transaction, so the whole operation must roll back.
	forced := errors.New("totals write refused")
	err := db.Callback().Update().Before("gorm:update").Register("refuse_log_totals", func(tx *gorm.DB) {
		if tx.Statement.Table == "nutrition_logs" {
			_ = tx.AddError(forced)
		}
	})
	if err != nil {
		t.Fatalf("Failed to register callback: %v", err)
	}

	_, err = services.AddMeal(db, userID, log.ID, models.MealLunch, time.Now().UTC(),
		[]services.ItemInput{{Name: "soup", Quantity: 250, Calories: 400, Protein: 12}})

	var storeErr *types.StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("Expected StoreError from the failed totals update, got %v", err)
	}
	if !errors.Is(err, forced) {
		t.Errorf("Expected the injected failure in the error chain, got %v", err)
	}

	if err := db.Callback().Update().Remove("refuse_log_totals"); err != nil {
		t.Fatalf("Failed to remove callback: %v", err)
	}

	// No trace of the failed call: one meal, two items, baseline totals.
	updated, err := services.GetLog(db, userID, testDate)
	if err != nil {
		t.Fatalf("GetLog failed: %v", err)
	}
	if len(updated.Meals) != 1 {
		t.Fatalf("Expected the baseline meal only, got %d meals", len(updated.Meals))
	}
	if updated.TotalCalories != 250 || updated.TotalProtein != 6 {
		t.Errorf("Expected totals unchanged at 250/6, got %v/%v", updated.TotalCalories, updated.TotalProtein)
	}

	var items int64
	db.Model(&models.LogItem{}).Count(&items)
	if items != 2 {
		t.Errorf("Expected 2 item rows, got %d", items)
	}
	var meals int64
	db.Model(&models.Meal{}).Count(&meals)
	if meals != 1 {
		t.Errorf("Expected 1 meal row, got %d", meals)
	}
}

func TestAddMealToMissingLog(t *testing.T) {
	db := setupTestDB(t)
	userID := createUser(t, db)

	_, err := services.AddMeal(db, userID, 9999, models.MealDinner, time.Now().UTC(), oatmealAndBanana())
	var notFoundErr *types.NotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Errorf("Expected NotFoundError for a missing log, got %v", err)
	}
}

func TestAddMealOtherUsersLog(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db)
	other := models.User{Email: "other@example.com"}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("Failed to create second user: %v", err)
	}

	log, _ := services.FindOrCreateLog(db, owner, testDate)

	_, err := services.AddMeal(db, other.ID, log.ID, models.MealDinner, time.Now().UTC(), oatmealAndBanana())
	var notFoundErr *types.NotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Errorf("Expected NotFoundError when the log belongs to another user, got %v", err)
	}
}

func TestRemoveMealRecomputesTotals(t *testing.T) {
	db := setupTestDB(t)
	userID := createUser(t, db)
	log, _ := services.FindOrCreateLog(db, userID, testDate)

	breakfast, err := services.AddMeal(db, userID, log.ID, models.MealBreakfast, time.Now().UTC(), oatmealAndBanana())
	if err != nil {
		t.Fatalf("AddMeal failed: %v", err)
	}
	_, err = services.AddMeal(db, userID, log.ID, models.MealLunch, time.Now().UTC(), []services.ItemInput{
		{Name: "chicken", Quantity: 200, Calories: 330, Protein: 62, Carbs: 0, Fat: 7.2},
	})
	if err != nil {
		t.Fatalf("AddMeal failed: %v", err)
	}

	if err := services.RemoveMeal(db, userID, log.ID, breakfast.ID); err != nil {
		t.Fatalf("RemoveMeal failed: %v", err)
	}

	updated, _ := services.GetLog(db, userID, testDate)
	if len(updated.Meals) != 1 {
		t.Fatalf("Expected 1 remaining meal, got %d", len(updated.Meals))
	}
	if updated.TotalCalories != 330 {
		t.Errorf("Expected totals recomputed to 330 calories, got %v", updated.TotalCalories)
	}

	// Items of the removed meal must be gone too.
	var orphaned int64
	db.Model(&models.LogItem{}).Where("meal_id = ?", breakfast.ID).Count(&orphaned)
	if orphaned != 0 {
		t.Errorf("Expected removed meal's items deleted, found %d", orphaned)
	}
}

func TestRemoveMealScopedToLog(t *testing.T) {
	db := setupTestDB(t)
	userID := createUser(t, db)

	log1, _ := services.FindOrCreateLog(db, userID, testDate)
	log2, _ := services.FindOrCreateLog(db, userID, testDate.AddDate(0, 0, 1))

	meal, err := services.AddMeal(db, userID, log1.ID, models.MealBreakfast, time.Now().UTC(), oatmealAndBanana())
	if err != nil {
		t.Fatalf("AddMeal failed: %v", err)
	}

	// Removing via the wrong log must fail and leave everything intact.
	err = services.RemoveMeal(db, userID, log2.ID, meal.ID)
	var notFoundErr *types.NotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Fatalf("Expected NotFoundError removing a meal through a foreign log, got %v", err)
	}

	updated, _ := services.GetLog(db, userID, testDate)
	if len(updated.Meals) != 1 || updated.TotalCalories != 250 {
		t.Errorf("Expected the meal and totals untouched, got %+v", updated)
	}
}

func TestRemoveLastMealZeroesTotals(t *testing.T) {
	db := setupTestDB(t)
	userID := createUser(t, db)
	log, _ := services.FindOrCreateLog(db, userID, testDate)

	meal, _ := services.AddMeal(db, userID, log.ID, models.MealSnack, time.Now().UTC(), oatmealAndBanana())
	if err := services.RemoveMeal(db, userID, log.ID, meal.ID); err != nil {
		t.Fatalf("RemoveMeal failed: %v", err)
	}

	updated, _ := services.GetLog(db, userID, testDate)
	if updated.TotalCalories != 0 || updated.TotalProtein != 0 || updated.TotalCarbs != 0 || updated.TotalFat != 0 {
		t.Errorf("Expected all totals zeroed after removing the only meal, got %+v", updated)
	}
}

func TestUpdateWaterIntake(t *testing.T) {
	db := setupTestDB(t)
	userID := createUser(t, db)
	log, _ := services.FindOrCreateLog(db, userID, testDate)

	if err := services.UpdateWaterIntake(db, userID, log.ID, 1500); err != nil {
		t.Fatalf("UpdateWaterIntake failed: %v", err)
	}
	updated, _ := services.GetLog(db, userID, testDate)
	if updated.WaterIntake != 1500 {
		t.Errorf("Expected water intake 1500, got %v", updated.WaterIntake)
	}

	err := services.UpdateWaterIntake(db, userID, log.ID, -10)
	var validationErr *types.ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("Expected ValidationError for negative water intake, got %v", err)
	}

	err = services.UpdateWaterIntake(db, userID, 9999, 500)
	var notFoundErr *types.NotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Errorf("Expected NotFoundError for a missing log, got %v", err)
	}
}

func TestRecomputeTotalsIsIdempotentAndSelfCorrecting(t *testing.T) {
	db := setupTestDB(t)
	userID := createUser(t, db)
	log, _ := services.FindOrCreateLog(db, userID, testDate)

	if _, err := services.AddMeal(db, userID, log.ID, models.MealBreakfast, time.Now().UTC(), oatmealAndBanana()); err != nil {
		t.Fatalf("AddMeal failed: %v", err)
	}

	// Recompute with no intervening writes stores identical values.
	if err := services.RecomputeTotals(db, userID, log.ID); err != nil {
		t.Fatalf("RecomputeTotals failed: %v", err)
	}
	first, _ := services.GetLog(db, userID, testDate)

	// Corrupt the stored aggregate directly, then recompute.
	db.Model(&models.NutritionLog{}).Where("id = ?", log.ID).Update("total_calories", 9000)
	if err := services.RecomputeTotals(db, userID, log.ID); err != nil {
		t.Fatalf("RecomputeTotals failed: %v", err)
	}
	second, _ := services.GetLog(db, userID, testDate)

	if second.TotalCalories != first.TotalCalories {
		t.Errorf("Expected drifted totals self-corrected to %v, got %v", first.TotalCalories, second.TotalCalories)
	}
}

func TestMacroBreakdown(t *testing.T) {
	log := models.NutritionLog{
		TotalCalories: 2000,
		TotalProtein:  150, // 600 kcal -> 30%
		TotalCarbs:    200, // 800 kcal -> 40%
		TotalFat:      62,  // 558 kcal -> 28%
	}
	b := log.MacroBreakdown()
	if b.Protein != 30 || b.Carbs != 40 || b.Fat != 28 {
		t.Errorf("Expected 30/40/28, got %d/%d/%d", b.Protein, b.Carbs, b.Fat)
	}

	empty := models.NutritionLog{}
	if eb := empty.MacroBreakdown(); eb.Protein != 0 || eb.Carbs != 0 || eb.Fat != 0 {
		t.Errorf("Expected all-zero breakdown for a zero-calorie log, got %+v", eb)
	}
}

func TestGetLogMissing(t *testing.T) {
	db := setupTestDB(t)
	userID := createUser(t, db)

	_, err := services.GetLog(db, userID, testDate)
	var notFoundErr *types.NotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Errorf("Expected NotFoundError for a day with no log, got %v", err)
	}
}
