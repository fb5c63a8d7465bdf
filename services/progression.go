package services

import (
	"context"

	"project-ascend/models"

	"gorm.io/gorm"
)

const (
	// XPPerAttributePoint is the XP an attribute needs per point above its base of 1.
	XPPerAttributePoint = 100
	// XPPerLevel is the total XP needed per level above level 1.
	XPPerLevel = 1000
)

// LevelForXP returns the level reached with totalXP.
func LevelForXP(totalXP int64) int64 {
	return 1 + totalXP/XPPerLevel
}

// XPToNextLevel returns the XP still missing before the next level.
// At an exact multiple of XPPerLevel the full XPPerLevel is required.
func XPToNextLevel(totalXP int64) int64 {
	return XPPerLevel - totalXP%XPPerLevel
}

// AttributeValue returns the stat value for the XP accumulated in it.
func AttributeValue(xp int64) int64 {
	return 1 + xp/XPPerAttributePoint
}

// ComputeStats derives level and attributes from every workout and every completed
// quest. Quests passed in with another status are skipped; unknown attribute keys
// never count toward any total.
func ComputeStats(workouts []models.Workout, quests []models.Quest) models.PlayerStats {
	xp := make(map[models.Attribute]int64, len(models.Attributes))
	var total int64

	add := func(reward models.XPReward) {
		for name, amount := range reward {
			if !models.IsAttribute(name) {
				continue
			}
			xp[models.Attribute(name)] += amount
			total += amount
		}
	}

	for _, w := range workouts {
		add(w.XPEarned)
	}
	for _, q := range quests {
		if q.Status != models.QuestStatusCompleted {
			continue
		}
		add(q.XPReward)
	}

	attrs := make(map[models.Attribute]models.AttributeScore, len(models.Attributes))
	for _, a := range models.Attributes {
		attrs[a] = models.AttributeScore{Value: AttributeValue(xp[a]), XP: xp[a]}
	}

	return models.PlayerStats{
		Level:         LevelForXP(total),
		TotalXP:       total,
		XPToNextLevel: XPToNextLevel(total),
		Attributes:    attrs,
	}
}

type ProgressionService struct {
	DB *gorm.DB
}

func NewProgressionService(db *gorm.DB) *ProgressionService {
	return &ProgressionService{DB: db}
}

// ComputeStats rescans the user's full history. There is no cached running total,
// so the result can never be stale, at O(events) per call.
func (s *ProgressionService) ComputeStats(ctx context.Context, userID string) (models.PlayerStats, error) {
	db := s.DB.WithContext(ctx)

	var workouts []models.Workout
	if err := db.Select("id", "xp_earned").
		Where("user_id = ?", userID).
		Find(&workouts).Error; err != nil {
		return models.PlayerStats{}, storageError("load workouts", err)
	}

	var quests []models.Quest
	if err := db.Select("id", "status", "xp_reward").
		Where("user_id = ? AND status = ?", userID, models.QuestStatusCompleted).
		Find(&quests).Error; err != nil {
		return models.PlayerStats{}, storageError("load completed quests", err)
	}

	return ComputeStats(workouts, quests), nil
}
