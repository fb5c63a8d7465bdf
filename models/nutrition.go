package models

import "time"

const (
	MealTypeBreakfast = "breakfast"
	MealTypeLunch     = "lunch"
	MealTypeDinner    = "dinner"
	MealTypeSnack     = "snack"
)

// IsMealType reports whether m is one of the four meal slots.
func IsMealType(m string) bool {
	switch m {
	case MealTypeBreakfast, MealTypeLunch, MealTypeDinner, MealTypeSnack:
		return true
	}
	return false
}

// FoodLog is an append-only record of something the user ate. Nutrition values are per serving.
type FoodLog struct {
	ID          string  `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string  `gorm:"type:uuid;index:idx_food_logs_user_logged,priority:1;not null" json:"user_id"`
	FoodName    string  `gorm:"not null" json:"food_name"`
	Brand       *string `json:"brand"`
	ServingSize string  `gorm:"not null" json:"serving_size"`

	CaloriesPerServing float64  `gorm:"not null" json:"calories_per_serving"`
	ProteinG           float64  `gorm:"default:0" json:"protein_g"`
	CarbsG             float64  `gorm:"default:0" json:"carbs_g"`
	FatG               float64  `gorm:"default:0" json:"fat_g"`
	FiberG             *float64 `json:"fiber_g"`
	SugarG             *float64 `json:"sugar_g"`
	SodiumMg           *float64 `json:"sodium_mg"`

	ServingsConsumed float64   `gorm:"not null;default:1" json:"servings_consumed"`
	MealType         string    `gorm:"type:varchar(16);not null" json:"meal_type"`
	LoggedAt         time.Time `gorm:"index:idx_food_logs_user_logged,priority:2;not null" json:"logged_at"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// DailyNutritionSummary is the running total for one user on one UTC calendar day.
// Fiber, sugar and sodium stay nil until a log contributes to them.
type DailyNutritionSummary struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"type:uuid;uniqueIndex:idx_daily_summary_user_date,priority:1;not null" json:"user_id"`
	Date   string `gorm:"type:varchar(10);uniqueIndex:idx_daily_summary_user_date,priority:2;not null" json:"date"`

	TotalCalories float64  `gorm:"not null;default:0" json:"total_calories"`
	TotalProteinG float64  `gorm:"not null;default:0" json:"total_protein_g"`
	TotalCarbsG   float64  `gorm:"not null;default:0" json:"total_carbs_g"`
	TotalFatG     float64  `gorm:"not null;default:0" json:"total_fat_g"`
	TotalFiberG   *float64 `json:"total_fiber_g"`
	TotalSugarG   *float64 `json:"total_sugar_g"`
	TotalSodiumMg *float64 `json:"total_sodium_mg"`

	XPEarned XPReward `gorm:"serializer:json;type:jsonb" json:"xp_earned"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// WaterLog is a single hydration entry.
type WaterLog struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string    `gorm:"type:uuid;index;not null" json:"user_id"`
	AmountMl  int       `gorm:"not null" json:"amount_ml"`
	LoggedAt  time.Time `gorm:"index;not null" json:"logged_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
