package models

// All lists every table the service owns, in migration order.
func All() []any {
	return []any{
		&User{},
		&Exercise{},
		&Workout{},
		&WorkoutExercise{},
		&Quest{},
		&FoodLog{},
		&DailyNutritionSummary{},
		&WaterLog{},
		&FoodItem{},
		&MealTemplate{},
	}
}
