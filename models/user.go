package models

const (
	StoragePreferenceCloud = "cloud"
	StoragePreferenceLocal = "local"
)

const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// User is an account plus the profile fields used for goal setting.
type User struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	Email          string `gorm:"uniqueIndex;not null" json:"email"`
	Username       string `gorm:"uniqueIndex;not null" json:"username"`
	HashedPassword string `gorm:"not null" json:"-"`

	StoragePreference string   `gorm:"default:'cloud'" json:"storage_preference"`
	PrimaryGoal       string   `gorm:"default:'general_fitness'" json:"primary_goal"`
	HeightCm          *int     `json:"height_cm"`
	WeightKg          *float64 `json:"weight_kg"`
	Age               *int     `json:"age"`
	Gender            *string  `json:"gender"`
	ActivityLevel     string   `gorm:"default:'moderately_active'" json:"activity_level"`

	Timestamps
}
