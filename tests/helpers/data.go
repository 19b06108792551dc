package helpers

import (
	"testing"
	"time"

	"github.com/nutricart/nutricart-api/internal/models"
	"github.com/nutricart/nutricart-api/internal/services"
	"gorm.io/gorm"
)

// CreateTestUser creates a user row and returns its id.
func CreateTestUser(t *testing.T, db *gorm.DB, email string) uint64 {
	t.Helper()
	user := models.User{Email: email}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user.ID
}

// CreateTestProduct creates a catalog product and returns its id.
func CreateTestProduct(t *testing.T, db *gorm.DB, itemCode, name string) uint64 {
	t.Helper()
	product := models.Product{ItemCode: itemCode, Name: name}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}
	return product.ID
}

// LogMeal adds a meal of custom foods to the user's log for date.
func LogMeal(t *testing.T, db *gorm.DB, userID uint64, date time.Time, mealType string, items []services.ItemInput) *models.Meal {
	t.Helper()
	log, err := services.FindOrCreateLog(db, userID, date)
	if err != nil {
		t.Fatalf("Failed to find or create log: %v", err)
	}
	meal, err := services.AddMeal(db, userID, log.ID, mealType, time.Now().UTC(), items)
	if err != nil {
		t.Fatalf("Failed to add meal: %v", err)
	}
	return meal
}
