package compute

import (
	"context"
	"encoding/json"
	"net/http"
)

// Endpoint wrappers for the computation service. Each is a passthrough
// over Call so the retry and classification policy stays in one place.

// CalculateNutrition evaluates a nutrition target and optionally builds
// a menu for it.
func (c *Client) CalculateNutrition(ctx context.Context, payload interface{}) (json.RawMessage, error) {
	return c.Call(ctx, http.MethodPost, "/api/nutrition/calculate", payload)
}

// Recommendations produces personalized recommendations from a user
// profile and recent logs.
func (c *Client) Recommendations(ctx context.Context, payload interface{}) (json.RawMessage, error) {
	return c.Call(ctx, http.MethodPost, "/api/nutrition/recommendations", payload)
}

// Trends analyzes nutrition trends over a log history.
func (c *Client) Trends(ctx context.Context, payload interface{}) (json.RawMessage, error) {
	return c.Call(ctx, http.MethodPost, "/api/nutrition/trends", payload)
}

// Metabolism calculates BMR and TDEE for a user profile.
func (c *Client) Metabolism(ctx context.Context, payload interface{}) (json.RawMessage, error) {
	return c.Call(ctx, http.MethodPost, "/api/nutrition/metabolism", payload)
}

// MealPlan generates a meal plan.
func (c *Client) MealPlan(ctx context.Context, payload interface{}) (json.RawMessage, error) {
	return c.Call(ctx, http.MethodPost, "/api/nutrition/meal-plan", payload)
}

// AnalyzeFood analyzes the composition of a food.
func (c *Client) AnalyzeFood(ctx context.Context, payload interface{}) (json.RawMessage, error) {
	return c.Call(ctx, http.MethodPost, "/api/nutrition/analyze-food", payload)
}

// ComparePrices compares supermarket prices for a list of menu items.
func (c *Client) ComparePrices(ctx context.Context, payload interface{}) (json.RawMessage, error) {
	return c.Call(ctx, http.MethodPost, "/api/price/compare", payload)
}

// CheapestCombination finds the cheapest store combination for a list of
// menu items.
func (c *Client) CheapestCombination(ctx context.Context, payload interface{}) (json.RawMessage, error) {
	return c.Call(ctx, http.MethodPost, "/api/price/cheapest-combination", payload)
}

// Health reports whether the computation service answers its health
// endpoint.
func (c *Client) Health(ctx context.Context) bool {
	_, err := c.Call(ctx, http.MethodGet, "/health", nil)
	return err == nil
}
