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

type QuestService struct {
	DB          *gorm.DB
	Generator   QuestGenerator
	Interpreter QuestInterpreter

	now func() time.Time
}

func NewQuestService(db *gorm.DB, generator QuestGenerator, interpreter QuestInterpreter) *QuestService {
	return &QuestService{DB: db, Generator: generator, Interpreter: interpreter, now: time.Now}
}

type CreateQuestInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Type        string          `json:"type"`
	XPReward    models.XPReward `json:"xp_reward"`
	DueDate     *time.Time      `json:"due_date"`
}

// QuestUpdate lists the quest fields a client may change.
type QuestUpdate struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Type        *string          `json:"type"`
	Status      *string          `json:"status"`
	XPReward    *models.XPReward `json:"xp_reward"`
	DueDate     *time.Time       `json:"due_date"`
}

func validateReward(r models.XPReward) error {
	for attr, amount := range r {
		if strings.TrimSpace(attr) == "" {
			return validationError("xp_reward has an empty attribute")
		}
		if amount < 0 {
			return validationError("xp_reward for %s must not be negative", attr)
		}
	}
	return nil
}

func (s *QuestService) Create(ctx context.Context, userID string, in CreateQuestInput) (*models.Quest, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, validationError("title is required")
	}
	qt := models.QuestType(strings.ToLower(strings.TrimSpace(in.Type)))
	if !qt.Valid() {
		return nil, validationError("type must be one of fitness, nutrition, learning, social")
	}
	if in.DueDate == nil {
		return nil, validationError("due_date is required")
	}
	if err := validateReward(in.XPReward); err != nil {
		return nil, err
	}
	reward := in.XPReward
	if reward == nil {
		reward = models.XPReward{}
	}
	due := in.DueDate.UTC()

	quest := models.Quest{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Type:        qt,
		Status:      models.QuestStatusActive,
		XPReward:    reward,
		DueDate:     &due,
	}
	if err := s.insert(ctx, &quest); err != nil {
		return nil, err
	}
	return &quest, nil
}

func (s *QuestService) insert(ctx context.Context, quest *models.Quest) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireUser(tx, quest.UserID); err != nil {
			return err
		}
		if err := tx.Create(quest).Error; err != nil {
			return storageError("insert quest", err)
		}
		return nil
	})
}

// List returns the user's quests, newest first, optionally filtered by status.
func (s *QuestService) List(ctx context.Context, userID, status string) ([]models.Quest, error) {
	q := s.DB.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		if !models.QuestStatus(status).Valid() {
			return nil, validationError("unknown status %q", status)
		}
		q = q.Where("status = ?", status)
	}
	var quests []models.Quest
	if err := q.Order("created_at DESC").Find(&quests).Error; err != nil {
		return nil, storageError("list quests", err)
	}
	return quests, nil
}

func (s *QuestService) Get(ctx context.Context, userID, questID string) (*models.Quest, error) {
	return s.load(s.DB.WithContext(ctx), userID, questID)
}

// load treats another user's quest the same as a missing one.
func (s *QuestService) load(db *gorm.DB, userID, questID string) (*models.Quest, error) {
	if !validID(questID) {
		return nil, notFound("quest")
	}
	var quest models.Quest
	err := db.Where("id = ? AND user_id = ?", questID, userID).First(&quest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("quest")
	}
	if err != nil {
		return nil, storageError("load quest", err)
	}
	return &quest, nil
}

// Update applies the allow-listed fields. A completed or failed quest keeps its status.
func (s *QuestService) Update(ctx context.Context, userID, questID string, in QuestUpdate) (*models.Quest, error) {
	var quest *models.Quest
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if quest, err = s.load(tx, userID, questID); err != nil {
			return err
		}
		if in.Title != nil {
			title := strings.TrimSpace(*in.Title)
			if title == "" {
				return validationError("title must not be empty")
			}
			quest.Title = title
		}
		if in.Description != nil {
			quest.Description = strings.TrimSpace(*in.Description)
		}
		if in.Type != nil {
			qt := models.QuestType(strings.ToLower(strings.TrimSpace(*in.Type)))
			if !qt.Valid() {
				return validationError("type must be one of fitness, nutrition, learning, social")
			}
			quest.Type = qt
		}
		if in.XPReward != nil {
			if err := validateReward(*in.XPReward); err != nil {
				return err
			}
			quest.XPReward = *in.XPReward
		}
		if in.DueDate != nil {
			due := in.DueDate.UTC()
			quest.DueDate = &due
		}
		if in.Status != nil {
			if err := s.transition(quest, models.QuestStatus(strings.ToLower(strings.TrimSpace(*in.Status)))); err != nil {
				return err
			}
		}
		if err := tx.Save(quest).Error; err != nil {
			return storageError("update quest", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return quest, nil
}

// Complete moves an active or paused quest to completed.
func (s *QuestService) Complete(ctx context.Context, userID, questID string) (*models.Quest, error) {
	status := string(models.QuestStatusCompleted)
	quest, err := s.Update(ctx, userID, questID, QuestUpdate{Status: &status})
	if err != nil {
		return nil, err
	}
	log.Printf("[QUEST] user %s completed quest %s (%v)", userID, quest.ID, quest.XPReward)
	return quest, nil
}

func (s *QuestService) transition(q *models.Quest, to models.QuestStatus) error {
	if !to.Valid() {
		return validationError("unknown status %q", to)
	}
	if q.Status == to {
		if to == models.QuestStatusCompleted {
			return validationError("quest is already completed")
		}
		return nil
	}
	if q.Status.Terminal() {
		return validationError("quest is already %s", q.Status)
	}
	q.Status = to
	if to == models.QuestStatusCompleted {
		now := s.now().UTC()
		q.CompletedAt = &now
	}
	return nil
}

// Generate asks the generator for a quest and persists the interpreted draft.
// Malformed generator text never fails the call; only generator or storage errors do.
func (s *QuestService) Generate(ctx context.Context, userID string, req QuestRequest) (*models.Quest, error) {
	if err := req.Normalize(); err != nil {
		return nil, err
	}
	if s.Generator == nil {
		return nil, ErrGeneratorUnavailable
	}
	text, err := s.Generator.Generate(ctx, req)
	if err != nil {
		log.Printf("[QUEST] generator failed for user %s: %v", userID, err)
		return nil, err
	}

	now := s.now().UTC()
	draft := s.Interpreter.Parse(text, now)
	qt := coerceQuestType(draft.Type, req.Focus)
	if string(qt) != draft.Type {
		log.Printf("[QUEST] generator returned unknown type %q, stored as %q", draft.Type, qt)
	}

	due := draft.DueDate
	quest := models.Quest{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       draft.Title,
		Description: draft.Description,
		Type:        qt,
		Status:      draft.Status,
		XPReward:    draft.XPReward,
		DueDate:     &due,
	}
	if err := s.insert(ctx, &quest); err != nil {
		return nil, err
	}
	log.Printf("[QUEST] generated %q for user %s with %v, due in %d days", quest.Title, userID, quest.XPReward, draft.DueDays)
	return &quest, nil
}

// coerceQuestType keeps stored quests inside the known set: an unknown type becomes
// the requested focus when that is valid, otherwise fitness.
func coerceQuestType(raw, focus string) models.QuestType {
	if qt := models.QuestType(strings.ToLower(strings.TrimSpace(raw))); qt.Valid() {
		return qt
	}
	if qt := models.QuestType(strings.ToLower(strings.TrimSpace(focus))); qt.Valid() {
		return qt
	}
	return models.QuestTypeFitness
}

// FailOverdue marks active quests whose due date passed more than grace ago as failed.
func (s *QuestService) FailOverdue(ctx context.Context, now time.Time, grace time.Duration) (int64, error) {
	cutoff := now.UTC().Add(-grace)
	res := s.DB.WithContext(ctx).Model(&models.Quest{}).
		Where("status = ? AND due_date IS NOT NULL AND due_date < ?", models.QuestStatusActive, cutoff).
		Update("status", models.QuestStatusFailed)
	if res.Error != nil {
		return 0, storageError("fail overdue quests", res.Error)
	}
	return res.RowsAffected, nil
}
