package models

import (
	"time"
)

// User is the account that owns nutrition logs. Credential issuance is
// handled by the auth frontend; this service only verifies bearer tokens
// and scopes data by user id.
type User struct {
	ID               uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Email            string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name             string    `gorm:"size:255" json:"name,omitempty"`
	NutritionProfile JSON      `json:"nutrition_profile,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}
