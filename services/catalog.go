package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sort"
	"strings"

	"project-ascend/models"
	"project-ascend/utils"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultFoodSearchLimit = 20
	maxFoodSearchLimit     = 100
	popularFoodCount       = 10
	defaultTemplateLimit   = 20
	popularTemplateCount   = 6
)

// CatalogService serves the exercise library, the food database and meal templates.
type CatalogService struct {
	DB *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{DB: db}
}

// ---------- exercises ----------

type ExerciseFilter struct {
	Search      string
	MuscleGroup string
	Discipline  string
	Equipment   string
	Difficulty  string
}

// tagList reads a list-valued tag; a bare string counts as a one-element list.
func tagList(tags datatypes.JSONMap, key string) []string {
	switch v := tags[key].(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func (f ExerciseFilter) matches(e models.Exercise) bool {
	if f.MuscleGroup != "" {
		muscles := slices.Concat(tagList(e.Tags, "primary_muscles"), tagList(e.Tags, "secondary_muscles"))
		if !slices.Contains(muscles, f.MuscleGroup) {
			return false
		}
	}
	if f.Discipline != "" && !slices.Contains(tagList(e.Tags, "discipline"), f.Discipline) {
		return false
	}
	if f.Equipment != "" && !slices.Contains(tagList(e.Tags, "equipment"), f.Equipment) {
		return false
	}
	if f.Difficulty != "" {
		if d, _ := e.Tags["difficulty"].(string); d != f.Difficulty {
			return false
		}
	}
	return true
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a lower-cased LIKE pattern matching text literally.
func containsPattern(text string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(text))) + "%"
}

// ListExercises searches by name in the store and filters tags in memory,
// which keeps the JSON matching identical on every backend.
func (s *CatalogService) ListExercises(ctx context.Context, f ExerciseFilter) ([]models.Exercise, error) {
	q := s.DB.WithContext(ctx).Order("name ASC")
	if search := strings.TrimSpace(f.Search); search != "" {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\'", containsPattern(search))
	}
	var all []models.Exercise
	if err := q.Find(&all).Error; err != nil {
		return nil, storageError("list exercises", err)
	}
	out := make([]models.Exercise, 0, len(all))
	for _, e := range all {
		if f.matches(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *CatalogService) GetExercise(ctx context.Context, id string) (*models.Exercise, error) {
	if !validID(id) {
		return nil, notFound("exercise")
	}
	var e models.Exercise
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("exercise")
	}
	if err != nil {
		return nil, storageError("load exercise", err)
	}
	return &e, nil
}

type ExerciseInput struct {
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	Instructions   string         `json:"instructions"`
	CommonMistakes string         `json:"common_mistakes"`
	VideoURL       *string        `json:"video_url"`
	Tags           map[string]any `json:"tags"`
}

// UpsertExercise creates the exercise or replaces the one with the same name (case-insensitive).
func (s *CatalogService) UpsertExercise(ctx context.Context, in ExerciseInput) (*models.Exercise, bool, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, false, validationError("name is required")
	}
	var e models.Exercise
	created := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("LOWER(name) = ?", strings.ToLower(name)).First(&e).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			e = models.Exercise{ID: uuid.NewString()}
			created = true
		case err != nil:
			return storageError("load exercise", err)
		}
		e.Name = name
		e.Description = in.Description
		e.Instructions = in.Instructions
		e.CommonMistakes = in.CommonMistakes
		e.VideoURL = in.VideoURL
		e.Tags = datatypes.JSONMap(in.Tags)
		if e.Tags == nil {
			e.Tags = datatypes.JSONMap{}
		}
		if err := tx.Save(&e).Error; err != nil {
			return storageError("save exercise", err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	log.Printf("[CATALOG] upserted exercise %q (created=%t)", e.Name, created)
	return &e, created, nil
}

// ---------- food database ----------

func (s *CatalogService) SearchFoods(ctx context.Context, query string, limit int) ([]models.FoodItem, error) {
	if limit <= 0 {
		limit = defaultFoodSearchLimit
	}
	limit = min(limit, maxFoodSearchLimit)
	var foods []models.FoodItem
	if err := s.DB.WithContext(ctx).
		Where("LOWER(name) LIKE ? ESCAPE '\\'", containsPattern(query)).
		Order("name ASC").
		Limit(limit).
		Find(&foods).Error; err != nil {
		return nil, storageError("search foods", err)
	}
	return foods, nil
}

type CategoryCount struct {
	Name  string `json:"name"`
	Label string `json:"label,omitempty"`
	Count int64  `json:"count"`
}

func (s *CatalogService) FoodCategories(ctx context.Context) ([]CategoryCount, error) {
	var out []CategoryCount
	if err := s.DB.WithContext(ctx).Model(&models.FoodItem{}).
		Select("category AS name, COUNT(*) AS count").
		Where("category IS NOT NULL AND category <> ''").
		Group("category").
		Order("category ASC").
		Scan(&out).Error; err != nil {
		return nil, storageError("food categories", err)
	}
	return out, nil
}

func (s *CatalogService) PopularFoods(ctx context.Context) ([]models.FoodItem, error) {
	var foods []models.FoodItem
	if err := s.DB.WithContext(ctx).Order("name ASC").Limit(popularFoodCount).Find(&foods).Error; err != nil {
		return nil, storageError("popular foods", err)
	}
	return foods, nil
}

func (s *CatalogService) CreateFood(ctx context.Context, item models.FoodItem) (*models.FoodItem, error) {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return nil, validationError("name is required")
	}
	if item.Calories < 0 || item.Protein < 0 || item.Carbs < 0 || item.Fat < 0 {
		return nil, validationError("nutrition values must not be negative")
	}
	if strings.TrimSpace(item.ServingSize) == "" {
		item.ServingSize = "1 serving"
	}
	item.ID = uuid.NewString()
	if err := s.DB.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, storageError("insert food", err)
	}
	return &item, nil
}

// ---------- meal templates ----------

type MealTemplateInput struct {
	Name        string            `json:"name"`
	Description *string           `json:"description"`
	MealType    *string           `json:"meal_type"`
	Calories    float64           `json:"calories"`
	Protein     float64           `json:"protein"`
	Carbs       float64           `json:"carbs"`
	Fat         float64           `json:"fat"`
	Fiber       *float64          `json:"fiber"`
	Foods       []models.MealFood `json:"foods"`
	Tags        []string          `json:"tags"`
	IsPublic    bool              `json:"is_public"`
}

// MealTemplateUpdate lists the template fields an owner may change.
type MealTemplateUpdate struct {
	Name        *string            `json:"name"`
	Description *string            `json:"description"`
	MealType    *string            `json:"meal_type"`
	Calories    *float64           `json:"calories"`
	Protein     *float64           `json:"protein"`
	Carbs       *float64           `json:"carbs"`
	Fat         *float64           `json:"fat"`
	Fiber       *float64           `json:"fiber"`
	Foods       *[]models.MealFood `json:"foods"`
	Tags        *[]string          `json:"tags"`
	IsPublic    *bool              `json:"is_public"`
}

type MealTemplateFilter struct {
	MealType string
	Category string
	Limit    int
}

func checkMealType(mt *string) error {
	if mt != nil && !models.IsMealType(*mt) {
		return validationError("meal_type must be one of breakfast, lunch, dinner, snack")
	}
	return nil
}

func checkMacros(values ...float64) error {
	for _, v := range values {
		if v < 0 {
			return validationError("nutrition values must not be negative")
		}
	}
	return nil
}

// visibleTo scopes a query to global, public and the caller's own templates.
func visibleTo(db *gorm.DB, userID string) *gorm.DB {
	return db.Where("user_id IS NULL OR is_public = ? OR user_id = ?", true, userID)
}

func canRead(t *models.MealTemplate, userID string) bool {
	return t.UserID == nil || t.IsPublic || *t.UserID == userID
}

func (s *CatalogService) ListMealTemplates(ctx context.Context, userID string, f MealTemplateFilter) ([]models.MealTemplate, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultTemplateLimit
	}
	q := visibleTo(s.DB.WithContext(ctx), userID).Order("name ASC")
	if f.MealType != "" {
		q = q.Where("meal_type = ?", f.MealType)
	}
	var all []models.MealTemplate
	if err := q.Find(&all).Error; err != nil {
		return nil, storageError("list meal templates", err)
	}

	category := ""
	if f.Category != "" {
		if norm := utils.NormalizeTags([]string{f.Category}); len(norm) > 0 {
			category = norm[0]
		}
	}
	out := make([]models.MealTemplate, 0, min(limit, len(all)))
	for _, t := range all {
		if category != "" && !slices.Contains([]string(t.Tags), category) {
			continue
		}
		out = append(out, t)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *CatalogService) loadTemplate(db *gorm.DB, id string) (*models.MealTemplate, error) {
	if !validID(id) {
		return nil, notFound("meal template")
	}
	var t models.MealTemplate
	err := db.Where("id = ?", id).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("meal template")
	}
	if err != nil {
		return nil, storageError("load meal template", err)
	}
	return &t, nil
}

// GetMealTemplate returns ErrForbidden for another user's private template.
func (s *CatalogService) GetMealTemplate(ctx context.Context, userID, id string) (*models.MealTemplate, error) {
	t, err := s.loadTemplate(s.DB.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if !canRead(t, userID) {
		return nil, fmt.Errorf("%w: meal template belongs to another user", ErrForbidden)
	}
	return t, nil
}

func (s *CatalogService) CreateMealTemplate(ctx context.Context, userID string, in MealTemplateInput) (*models.MealTemplate, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationError("name is required")
	}
	if err := checkMealType(in.MealType); err != nil {
		return nil, err
	}
	if err := checkMacros(in.Calories, in.Protein, in.Carbs, in.Fat); err != nil {
		return nil, err
	}
	owner := userID
	t := models.MealTemplate{
		ID:          uuid.NewString(),
		UserID:      &owner,
		Name:        name,
		Description: in.Description,
		MealType:    in.MealType,
		Calories:    in.Calories,
		Protein:     in.Protein,
		Carbs:       in.Carbs,
		Fat:         in.Fat,
		Fiber:       in.Fiber,
		Foods:       datatypes.JSONSlice[models.MealFood](in.Foods),
		Tags:        datatypes.JSONSlice[string](utils.NormalizeTags(in.Tags)),
		IsPublic:    in.IsPublic,
	}
	if t.Foods == nil {
		t.Foods = datatypes.JSONSlice[models.MealFood]{}
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireUser(tx, userID); err != nil {
			return err
		}
		if err := tx.Create(&t).Error; err != nil {
			return storageError("insert meal template", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ownedTemplate loads a template for mutation. Global templates are read-only.
func (s *CatalogService) ownedTemplate(db *gorm.DB, userID, id string) (*models.MealTemplate, error) {
	t, err := s.loadTemplate(db, id)
	if err != nil {
		return nil, err
	}
	if t.UserID == nil {
		return nil, fmt.Errorf("%w: global meal templates are read-only", ErrForbidden)
	}
	if *t.UserID != userID {
		return nil, fmt.Errorf("%w: meal template belongs to another user", ErrForbidden)
	}
	return t, nil
}

func (s *CatalogService) UpdateMealTemplate(ctx context.Context, userID, id string, in MealTemplateUpdate) (*models.MealTemplate, error) {
	var t *models.MealTemplate
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if t, err = s.ownedTemplate(tx, userID, id); err != nil {
			return err
		}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return validationError("name must not be empty")
			}
			t.Name = name
		}
		if in.Description != nil {
			t.Description = in.Description
		}
		if in.MealType != nil {
			if err := checkMealType(in.MealType); err != nil {
				return err
			}
			t.MealType = in.MealType
		}
		for _, f := range []struct {
			src *float64
			dst *float64
		}{{in.Calories, &t.Calories}, {in.Protein, &t.Protein}, {in.Carbs, &t.Carbs}, {in.Fat, &t.Fat}} {
			if f.src == nil {
				continue
			}
			if err := checkMacros(*f.src); err != nil {
				return err
			}
			*f.dst = *f.src
		}
		if in.Fiber != nil {
			t.Fiber = in.Fiber
		}
		if in.Foods != nil {
			t.Foods = datatypes.JSONSlice[models.MealFood](*in.Foods)
		}
		if in.Tags != nil {
			t.Tags = datatypes.JSONSlice[string](utils.NormalizeTags(*in.Tags))
		}
		if in.IsPublic != nil {
			t.IsPublic = *in.IsPublic
		}
		if err := tx.Save(t).Error; err != nil {
			return storageError("update meal template", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *CatalogService) DeleteMealTemplate(ctx context.Context, userID, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := s.ownedTemplate(tx, userID, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(t).Error; err != nil {
			return storageError("delete meal template", err)
		}
		return nil
	})
}

func (s *CatalogService) PopularMealTemplates(ctx context.Context) ([]models.MealTemplate, error) {
	var out []models.MealTemplate
	if err := s.DB.WithContext(ctx).
		Where("is_public = ?", true).
		Order("created_at DESC").
		Limit(popularTemplateCount).
		Find(&out).Error; err != nil {
		return nil, storageError("popular meal templates", err)
	}
	return out, nil
}

// MealTemplateCategories counts tags across global and public templates.
func (s *CatalogService) MealTemplateCategories(ctx context.Context) ([]CategoryCount, error) {
	var templates []models.MealTemplate
	if err := s.DB.WithContext(ctx).
		Select("id", "tags").
		Where("user_id IS NULL OR is_public = ?", true).
		Find(&templates).Error; err != nil {
		return nil, storageError("meal template categories", err)
	}
	counts := make(map[string]int64)
	for _, t := range templates {
		for _, tag := range t.Tags {
			counts[tag]++
		}
	}
	out := make([]CategoryCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, CategoryCount{Name: tag, Label: utils.TagLabel(tag), Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
