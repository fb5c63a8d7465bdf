package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"project-ascend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultWorkoutMinutes = 30
	minWorkoutBaseXP      = 20
)

// WorkoutXP derives the reward for a session: base = max(20, minutes/2),
// STR gets the base and END half of it. A missing or zero duration counts as 30 minutes.
func WorkoutXP(durationMinutes *int) models.XPReward {
	minutes := DefaultWorkoutMinutes
	if durationMinutes != nil && *durationMinutes > 0 {
		minutes = *durationMinutes
	}
	base := int64(max(minWorkoutBaseXP, minutes/2))
	return models.XPReward{
		string(models.AttributeSTR): base,
		string(models.AttributeEND): base / 2,
	}
}

type WorkoutService struct {
	DB *gorm.DB

	now func() time.Time
}

func NewWorkoutService(db *gorm.DB) *WorkoutService {
	return &WorkoutService{DB: db, now: time.Now}
}

type WorkoutExerciseInput struct {
	ExerciseID      string   `json:"exercise_id"`
	Sets            int      `json:"sets"`
	Reps            *int     `json:"reps"`
	WeightKg        *float64 `json:"weight_kg"`
	DurationSeconds *int     `json:"duration_seconds"`
	DistanceMeters  *float64 `json:"distance_meters"`
	RestSeconds     *int     `json:"rest_seconds"`
	Notes           *string  `json:"notes"`
	OrderInWorkout  *int     `json:"order_in_workout"`
}

type CreateWorkoutInput struct {
	Name            string                 `json:"name"`
	DateLogged      *time.Time             `json:"date_logged"`
	DurationMinutes *int                   `json:"duration_minutes"`
	Notes           *string                `json:"notes"`
	Exercises       []WorkoutExerciseInput `json:"exercises"`
}

// Create stores the workout and its exercise lines in one transaction.
func (s *WorkoutService) Create(ctx context.Context, userID string, in CreateWorkoutInput) (*models.Workout, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationError("name is required")
	}
	if in.DurationMinutes != nil && *in.DurationMinutes < 0 {
		return nil, validationError("duration_minutes must not be negative")
	}
	logged := s.now()
	if in.DateLogged != nil {
		logged = *in.DateLogged
	}

	workout := models.Workout{
		ID:              uuid.NewString(),
		UserID:          userID,
		Name:            name,
		DateLogged:      logged.UTC(),
		DurationMinutes: in.DurationMinutes,
		Notes:           in.Notes,
		XPEarned:        WorkoutXP(in.DurationMinutes),
	}
	for i, line := range in.Exercises {
		if line.Sets <= 0 {
			return nil, validationError("exercise %d: sets must be positive", i+1)
		}
		order := i + 1
		if line.OrderInWorkout != nil {
			order = *line.OrderInWorkout
		}
		workout.Exercises = append(workout.Exercises, models.WorkoutExercise{
			ID:              uuid.NewString(),
			WorkoutID:       workout.ID,
			ExerciseID:      line.ExerciseID,
			Sets:            line.Sets,
			Reps:            line.Reps,
			WeightKg:        line.WeightKg,
			DurationSeconds: line.DurationSeconds,
			DistanceMeters:  line.DistanceMeters,
			RestSeconds:     line.RestSeconds,
			Notes:           line.Notes,
			OrderInWorkout:  order,
		})
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireUser(tx, userID); err != nil {
			return err
		}
		for _, line := range workout.Exercises {
			if !validID(line.ExerciseID) {
				return notFound("exercise " + line.ExerciseID)
			}
			var exercise models.Exercise
			err := tx.Select("id").Where("id = ?", line.ExerciseID).First(&exercise).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("exercise " + line.ExerciseID)
			}
			if err != nil {
				return storageError("load exercise", err)
			}
		}
		if err := tx.Create(&workout).Error; err != nil {
			return storageError("insert workout", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[WORKOUT] user %s logged %q (%v)", userID, workout.Name, workout.XPEarned)
	return &workout, nil
}

// List returns the user's workouts, newest first. limit <= 0 means no limit.
func (s *WorkoutService) List(ctx context.Context, userID string, limit int) ([]models.Workout, error) {
	q := s.DB.WithContext(ctx).
		Preload("Exercises", func(db *gorm.DB) *gorm.DB { return db.Order("order_in_workout ASC") }).
		Where("user_id = ?", userID).
		Order("date_logged DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var workouts []models.Workout
	if err := q.Find(&workouts).Error; err != nil {
		return nil, storageError("list workouts", err)
	}
	return workouts, nil
}
