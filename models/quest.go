package models

import "time"

type QuestType string

const (
	QuestTypeFitness   QuestType = "fitness"
	QuestTypeNutrition QuestType = "nutrition"
	QuestTypeLearning  QuestType = "learning"
	QuestTypeSocial    QuestType = "social"
)

// Valid reports whether t is one of the four known quest types.
func (t QuestType) Valid() bool {
	switch t {
	case QuestTypeFitness, QuestTypeNutrition, QuestTypeLearning, QuestTypeSocial:
		return true
	}
	return false
}

type QuestStatus string

const (
	QuestStatusActive    QuestStatus = "active"
	QuestStatusCompleted QuestStatus = "completed"
	QuestStatusFailed    QuestStatus = "failed"
	QuestStatusPaused    QuestStatus = "paused"
)

func (s QuestStatus) Valid() bool {
	switch s {
	case QuestStatusActive, QuestStatusCompleted, QuestStatusFailed, QuestStatusPaused:
		return true
	}
	return false
}

// Terminal statuses never transition again.
func (s QuestStatus) Terminal() bool {
	return s == QuestStatusCompleted || s == QuestStatusFailed
}

type Quest struct {
	ID          string      `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string      `gorm:"type:uuid;index;not null" json:"user_id"`
	Title       string      `gorm:"not null" json:"title"`
	Description string      `gorm:"type:text" json:"description"`
	Type        QuestType   `gorm:"type:varchar(32);not null" json:"type"`
	Status      QuestStatus `gorm:"type:varchar(16);index;not null;default:'active'" json:"status"`
	XPReward    XPReward    `gorm:"serializer:json;type:jsonb" json:"xp_reward"`
	DueDate     *time.Time  `gorm:"index" json:"due_date"`
	CompletedAt *time.Time  `json:"completed_at"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
}
