package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"project-ascend/models"
	"project-ascend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Nutrition XP rules, evaluated against a day's cumulative totals.
const (
	NutritionLoggingXP  = 10
	ProteinTargetG      = 80
	ProteinTargetXP     = 15
	BalancedCaloriesMin = 1500
	BalancedCaloriesMax = 2500
	BalancedCaloriesXP  = 10
)

// CalculateNutritionXP awards INT for logging at all, END for hitting the protein
// target and CHA for landing in the balanced calorie band. Unmet bonuses are absent.
func CalculateNutritionXP(totalCalories, totalProtein float64) models.XPReward {
	xp := models.XPReward{string(models.AttributeINT): NutritionLoggingXP}
	if totalProtein >= ProteinTargetG {
		xp[string(models.AttributeEND)] = ProteinTargetXP
	}
	if totalCalories >= BalancedCaloriesMin && totalCalories <= BalancedCaloriesMax {
		xp[string(models.AttributeCHA)] = BalancedCaloriesXP
	}
	return xp
}

// NutritionTotals is what one food log adds to its day.
type NutritionTotals struct {
	Calories float64
	ProteinG float64
	CarbsG   float64
	FatG     float64
	FiberG   float64
	SugarG   float64
	SodiumMg float64
}

// Contribution scales the per-serving values of entry by servings consumed.
// Missing fiber, sugar and sodium count as zero.
func Contribution(entry models.FoodLog) NutritionTotals {
	n := entry.ServingsConsumed
	return NutritionTotals{
		Calories: entry.CaloriesPerServing * n,
		ProteinG: entry.ProteinG * n,
		CarbsG:   entry.CarbsG * n,
		FatG:     entry.FatG * n,
		FiberG:   valueOrZero(entry.FiberG) * n,
		SugarG:   valueOrZero(entry.SugarG) * n,
		SodiumMg: valueOrZero(entry.SodiumMg) * n,
	}
}

// Accumulate adds c to the summary in place and recomputes its XP from the new totals.
func Accumulate(s *models.DailyNutritionSummary, c NutritionTotals) {
	s.TotalCalories += c.Calories
	s.TotalProteinG += c.ProteinG
	s.TotalCarbsG += c.CarbsG
	s.TotalFatG += c.FatG
	s.TotalFiberG = addOptional(s.TotalFiberG, c.FiberG)
	s.TotalSugarG = addOptional(s.TotalSugarG, c.SugarG)
	s.TotalSodiumMg = addOptional(s.TotalSodiumMg, c.SodiumMg)
	s.XPEarned = CalculateNutritionXP(s.TotalCalories, s.TotalProteinG)
}

func newSummary(userID, date string, c NutritionTotals) models.DailyNutritionSummary {
	s := models.DailyNutritionSummary{
		ID:            uuid.NewString(),
		UserID:        userID,
		Date:          date,
		TotalCalories: c.Calories,
		TotalProteinG: c.ProteinG,
		TotalCarbsG:   c.CarbsG,
		TotalFatG:     c.FatG,
		TotalFiberG:   floatPtr(c.FiberG),
		TotalSugarG:   floatPtr(c.SugarG),
		TotalSodiumMg: floatPtr(c.SodiumMg),
	}
	s.XPEarned = CalculateNutritionXP(s.TotalCalories, s.TotalProteinG)
	return s
}

type NutritionService struct {
	DB *gorm.DB

	locks *keyedMutex
	now   func() time.Time
}

func NewNutritionService(db *gorm.DB) *NutritionService {
	return &NutritionService{DB: db, locks: newKeyedMutex(), now: time.Now}
}

// RecordFoodLog persists entry and folds it into the user's summary for the UTC day of
// entry.LoggedAt. Both writes share one transaction, and writers for the same
// (user, date) are serialized so concurrent logs never lose an increment.
func (s *NutritionService) RecordFoodLog(ctx context.Context, userID string, entry models.FoodLog) (*models.FoodLog, *models.DailyNutritionSummary, error) {
	if err := s.prepareFoodLog(userID, &entry); err != nil {
		return nil, nil, err
	}

	date := utils.DateKey(entry.LoggedAt)
	contribution := Contribution(entry)

	unlock := s.locks.Lock(userID + "|" + date)
	defer unlock()

	var summary models.DailyNutritionSummary
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireUser(tx, userID); err != nil {
			return err
		}
		if err := tx.Create(&entry).Error; err != nil {
			return storageError("insert food log", err)
		}

		err := lockRows(tx).Where("user_id = ? AND date = ?", userID, date).First(&summary).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			created := newSummary(userID, date, contribution)
			res := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
				DoNothing: true,
			}).Create(&created)
			if res.Error != nil {
				return storageError("create daily summary", res.Error)
			}
			if res.RowsAffected == 1 {
				summary = created
				log.Printf("[NUTRITION] created summary %s for user %s: %.1f kcal, %.1fg protein",
					date, userID, summary.TotalCalories, summary.TotalProteinG)
				return nil
			}
			// Another writer created the row between our read and insert.
			err = lockRows(tx).Where("user_id = ? AND date = ?", userID, date).First(&summary).Error
		}
		if err != nil {
			return storageError("load daily summary", err)
		}

		Accumulate(&summary, contribution)
		if err := tx.Save(&summary).Error; err != nil {
			return storageError("update daily summary", err)
		}
		log.Printf("[NUTRITION] updated summary %s for user %s: %.1f kcal, %.1fg protein",
			date, userID, summary.TotalCalories, summary.TotalProteinG)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &entry, &summary, nil
}

func (s *NutritionService) prepareFoodLog(userID string, entry *models.FoodLog) error {
	entry.FoodName = strings.TrimSpace(entry.FoodName)
	if entry.FoodName == "" {
		return validationError("food_name is required")
	}
	if entry.CaloriesPerServing < 0 || entry.ProteinG < 0 || entry.CarbsG < 0 || entry.FatG < 0 {
		return validationError("nutrition values must not be negative")
	}
	for _, v := range []*float64{entry.FiberG, entry.SugarG, entry.SodiumMg} {
		if v != nil && *v < 0 {
			return validationError("nutrition values must not be negative")
		}
	}
	if entry.ServingsConsumed < 0 {
		return validationError("servings_consumed must be positive")
	}
	if entry.ServingsConsumed == 0 {
		entry.ServingsConsumed = 1
	}
	if !models.IsMealType(entry.MealType) {
		return validationError("meal_type must be one of breakfast, lunch, dinner, snack")
	}
	if strings.TrimSpace(entry.ServingSize) == "" {
		entry.ServingSize = "1 serving"
	}
	if entry.LoggedAt.IsZero() {
		entry.LoggedAt = s.now()
	}
	entry.LoggedAt = entry.LoggedAt.UTC()
	entry.ID = uuid.NewString()
	entry.UserID = userID
	entry.CreatedAt = time.Time{}
	return nil
}

// ListFoodLogs returns the user's logs, newest first, optionally limited to one UTC day.
func (s *NutritionService) ListFoodLogs(ctx context.Context, userID string, day *time.Time) ([]models.FoodLog, error) {
	q := s.DB.WithContext(ctx).Where("user_id = ?", userID)
	if day != nil {
		start, end := utils.DayBounds(*day)
		q = q.Where("logged_at >= ? AND logged_at < ?", start, end)
	}
	var logs []models.FoodLog
	if err := q.Order("logged_at DESC").Find(&logs).Error; err != nil {
		return nil, storageError("list food logs", err)
	}
	return logs, nil
}

// DailySummary returns the stored summary for the day, or an empty one when nothing was logged.
func (s *NutritionService) DailySummary(ctx context.Context, userID string, day time.Time) (*models.DailyNutritionSummary, error) {
	date := utils.DateKey(day)
	var summary models.DailyNutritionSummary
	err := s.DB.WithContext(ctx).Where("user_id = ? AND date = ?", userID, date).First(&summary).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.DailyNutritionSummary{UserID: userID, Date: date, XPEarned: models.XPReward{}}, nil
	}
	if err != nil {
		return nil, storageError("load daily summary", err)
	}
	return &summary, nil
}

type HistoryDay struct {
	ID            string          `json:"id"`
	Date          string          `json:"date"`
	TotalCalories float64         `json:"total_calories"`
	TotalProteinG float64         `json:"total_protein_g"`
	TotalCarbsG   float64         `json:"total_carbs_g"`
	TotalFatG     float64         `json:"total_fat_g"`
	TotalFiberG   float64         `json:"total_fiber_g"`
	TotalSugarG   float64         `json:"total_sugar_g"`
	TotalSodiumMg float64         `json:"total_sodium_mg"`
	MealsLogged   int64           `json:"meals_logged"`
	XPEarned      models.XPReward `json:"xp_earned"`
}

type NutritionHistory struct {
	Data   []HistoryDay `json:"data"`
	Total  int64        `json:"total"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}

// History pages through the user's daily summaries, newest day first.
func (s *NutritionService) History(ctx context.Context, userID string, limit, offset int) (*NutritionHistory, error) {
	if limit <= 0 || limit > 365 {
		limit = 30
	}
	if offset < 0 {
		offset = 0
	}
	db := s.DB.WithContext(ctx)

	var total int64
	if err := db.Model(&models.DailyNutritionSummary{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, storageError("count daily summaries", err)
	}

	var summaries []models.DailyNutritionSummary
	if err := db.Where("user_id = ?", userID).
		Order("date DESC").
		Limit(limit).Offset(offset).
		Find(&summaries).Error; err != nil {
		return nil, storageError("list daily summaries", err)
	}

	out := &NutritionHistory{Data: make([]HistoryDay, 0, len(summaries)), Total: total, Limit: limit, Offset: offset}
	for _, sum := range summaries {
		day, err := time.Parse(utils.DateLayout, sum.Date)
		if err != nil {
			return nil, fmt.Errorf("summary %s has malformed date %q: %w", sum.ID, sum.Date, err)
		}
		start, end := utils.DayBounds(day)
		var meals int64
		if err := db.Model(&models.FoodLog{}).
			Where("user_id = ? AND logged_at >= ? AND logged_at < ?", userID, start, end).
			Count(&meals).Error; err != nil {
			return nil, storageError("count food logs", err)
		}
		xp := sum.XPEarned
		if xp == nil {
			xp = models.XPReward{}
		}
		out.Data = append(out.Data, HistoryDay{
			ID:            sum.ID,
			Date:          sum.Date,
			TotalCalories: sum.TotalCalories,
			TotalProteinG: sum.TotalProteinG,
			TotalCarbsG:   sum.TotalCarbsG,
			TotalFatG:     sum.TotalFatG,
			TotalFiberG:   valueOrZero(sum.TotalFiberG),
			TotalSugarG:   valueOrZero(sum.TotalSugarG),
			TotalSodiumMg: valueOrZero(sum.TotalSodiumMg),
			MealsLogged:   meals,
			XPEarned:      xp,
		})
	}
	return out, nil
}

type WeeklyDay struct {
	Date     string  `json:"date"`
	Day      string  `json:"day"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
}

// Weekly returns the summaries of the last `weeks` weeks up to today (UTC), oldest first.
func (s *NutritionService) Weekly(ctx context.Context, userID string, weeks int) ([]WeeklyDay, int, error) {
	if weeks <= 0 || weeks > 52 {
		weeks = 4
	}
	end := utils.DayStart(s.now())
	start := end.AddDate(0, 0, -weeks*7)

	var summaries []models.DailyNutritionSummary
	if err := s.DB.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, utils.DateKey(start), utils.DateKey(end)).
		Order("date ASC").
		Find(&summaries).Error; err != nil {
		return nil, weeks, storageError("list weekly summaries", err)
	}

	days := make([]WeeklyDay, 0, len(summaries))
	for _, sum := range summaries {
		label := ""
		if d, err := time.Parse(utils.DateLayout, sum.Date); err == nil {
			label = d.Format("Mon")
		}
		days = append(days, WeeklyDay{
			Date:     sum.Date,
			Day:      label,
			Calories: sum.TotalCalories,
			Protein:  sum.TotalProteinG,
			Carbs:    sum.TotalCarbsG,
			Fat:      sum.TotalFatG,
			Fiber:    valueOrZero(sum.TotalFiberG),
		})
	}
	return days, weeks, nil
}

// lockRows adds SELECT ... FOR UPDATE on backends that support row locks.
func lockRows(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func floatPtr(v float64) *float64 { return &v }

func addOptional(total *float64, v float64) *float64 {
	return floatPtr(valueOrZero(total) + v)
}
