package models

import "time"

// Workout is one logged training session. XPEarned is fixed when the row is created.
type Workout struct {
	ID              string            `gorm:"primaryKey;type:uuid" json:"id"`
	UserID          string            `gorm:"type:uuid;index;not null" json:"user_id"`
	Name            string            `gorm:"not null" json:"name"`
	DateLogged      time.Time         `gorm:"index" json:"date_logged"`
	DurationMinutes *int              `json:"duration_minutes"`
	Notes           *string           `gorm:"type:text" json:"notes"`
	XPEarned        XPReward          `gorm:"serializer:json;type:jsonb" json:"xp_earned"`
	Exercises       []WorkoutExercise `gorm:"foreignKey:WorkoutID" json:"exercises,omitempty"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"created_at"`
}

// WorkoutExercise is one exercise line inside a workout.
type WorkoutExercise struct {
	ID              string   `gorm:"primaryKey;type:uuid" json:"id"`
	WorkoutID       string   `gorm:"type:uuid;index;not null" json:"workout_id"`
	ExerciseID      string   `gorm:"type:uuid;index;not null" json:"exercise_id"`
	Sets            int      `gorm:"not null" json:"sets"`
	Reps            *int     `json:"reps"`
	WeightKg        *float64 `json:"weight_kg"`
	DurationSeconds *int     `json:"duration_seconds"`
	DistanceMeters  *float64 `json:"distance_meters"`
	RestSeconds     *int     `json:"rest_seconds"`
	Notes           *string  `gorm:"type:text" json:"notes"`
	OrderInWorkout  int      `gorm:"default:0" json:"order_in_workout"`
}
