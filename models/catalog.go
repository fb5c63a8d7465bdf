package models

import (
	"time"

	"gorm.io/datatypes"
)

// Exercise is a catalog entry. Tags holds list-valued keys (primary_muscles,
// secondary_muscles, equipment, discipline) and the single-valued difficulty.
type Exercise struct {
	ID             string            `gorm:"primaryKey;type:uuid" json:"id"`
	Name           string            `gorm:"not null;index" json:"name"`
	Description    string            `gorm:"type:text" json:"description"`
	Instructions   string            `gorm:"type:text" json:"instructions"`
	CommonMistakes string            `gorm:"type:text" json:"common_mistakes"`
	VideoURL       *string           `json:"video_url"`
	Tags           datatypes.JSONMap `gorm:"type:jsonb" json:"tags"`
	CreatedAt      time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

// FoodItem is a row of the searchable food database.
type FoodItem struct {
	ID          string   `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string   `gorm:"not null;index" json:"name"`
	Brand       *string  `json:"brand"`
	ServingSize string   `gorm:"default:'1 serving'" json:"serving_size"`
	Calories    float64  `gorm:"not null" json:"calories"`
	Protein     float64  `gorm:"default:0" json:"protein"`
	Carbs       float64  `gorm:"default:0" json:"carbs"`
	Fat         float64  `gorm:"default:0" json:"fat"`
	Fiber       *float64 `json:"fiber"`
	Sugar       *float64 `json:"sugar"`
	Sodium      *float64 `json:"sodium"`
	Category    *string  `gorm:"index" json:"category"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (FoodItem) TableName() string { return "food_database" }

// MealFood is one ingredient line of a meal template.
type MealFood struct {
	Name     string  `json:"name"`
	Amount   string  `json:"amount,omitempty"`
	Calories float64 `json:"calories,omitempty"`
}

// MealTemplate is a reusable meal. Rows without an owner are global catalog entries.
type MealTemplate struct {
	ID          string                        `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      *string                       `gorm:"type:uuid;index" json:"user_id"`
	Name        string                        `gorm:"not null" json:"name"`
	Description *string                       `gorm:"type:text" json:"description"`
	MealType    *string                       `gorm:"type:varchar(16);index" json:"meal_type"`
	Calories    float64                       `gorm:"not null" json:"calories"`
	Protein     float64                       `gorm:"default:0" json:"protein"`
	Carbs       float64                       `gorm:"default:0" json:"carbs"`
	Fat         float64                       `gorm:"default:0" json:"fat"`
	Fiber       *float64                      `json:"fiber"`
	Foods       datatypes.JSONSlice[MealFood] `gorm:"type:jsonb" json:"foods"`
	Tags        datatypes.JSONSlice[string]   `gorm:"type:jsonb" json:"tags"`
	IsPublic    bool                          `gorm:"default:false;index" json:"is_public"`

	Timestamps
}
