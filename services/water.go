package services

import (
	"context"
	"time"

	"project-ascend/models"
	"project-ascend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultWaterTargetMl = 3000

type WaterService struct {
	DB       *gorm.DB
	TargetMl int

	now func() time.Time
}

func NewWaterService(db *gorm.DB, targetMl int) *WaterService {
	if targetMl <= 0 {
		targetMl = DefaultWaterTargetMl
	}
	return &WaterService{DB: db, TargetMl: targetMl, now: time.Now}
}

type WaterEntry struct {
	Time     string `json:"time"`
	AmountMl int    `json:"amount"`
}

type WaterDay struct {
	Date     string       `json:"date"`
	TotalMl  int          `json:"total_ml"`
	TargetMl int          `json:"target_ml"`
	Logs     []WaterEntry `json:"logs"`
}

// Log records amountMl; a zero loggedAt means now.
func (s *WaterService) Log(ctx context.Context, userID string, amountMl int, loggedAt time.Time) (*models.WaterLog, error) {
	if amountMl <= 0 {
		return nil, validationError("amount_ml must be positive")
	}
	if loggedAt.IsZero() {
		loggedAt = s.now()
	}
	entry := models.WaterLog{
		ID:       uuid.NewString(),
		UserID:   userID,
		AmountMl: amountMl,
		LoggedAt: loggedAt.UTC(),
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireUser(tx, userID); err != nil {
			return err
		}
		if err := tx.Create(&entry).Error; err != nil {
			return storageError("insert water log", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Today aggregates the current UTC day's hydration against the target.
func (s *WaterService) Today(ctx context.Context, userID string) (*WaterDay, error) {
	start, end := utils.DayBounds(s.now())
	var logs []models.WaterLog
	if err := s.DB.WithContext(ctx).
		Where("user_id = ? AND logged_at >= ? AND logged_at < ?", userID, start, end).
		Order("logged_at ASC").
		Find(&logs).Error; err != nil {
		return nil, storageError("list water logs", err)
	}

	day := &WaterDay{Date: utils.DateKey(start), TargetMl: s.TargetMl, Logs: make([]WaterEntry, 0, len(logs))}
	for _, l := range logs {
		day.TotalMl += l.AmountMl
		day.Logs = append(day.Logs, WaterEntry{Time: l.LoggedAt.UTC().Format("15:04"), AmountMl: l.AmountMl})
	}
	return day, nil
}
