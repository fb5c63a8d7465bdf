package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"

	"project-ascend/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	minPasswordLength = 8
	// bcrypt only hashes the first 72 bytes and refuses anything longer.
	maxPasswordBytes = 72
)

type UserService struct {
	DB     *gorm.DB
	Tokens *TokenIssuer
}

func NewUserService(db *gorm.DB, tokens *TokenIssuer) *UserService {
	return &UserService{DB: db, Tokens: tokens}
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	ProfileUpdate
}

// ProfileUpdate is the allow-list of profile fields a user may change.
// Anything else in a request body is ignored.
type ProfileUpdate struct {
	StoragePreference *string  `json:"storage_preference"`
	PrimaryGoal       *string  `json:"primary_goal"`
	HeightCm          *int     `json:"height_cm"`
	WeightKg          *float64 `json:"weight_kg"`
	Age               *int     `json:"age"`
	Gender            *string  `json:"gender"`
	ActivityLevel     *string  `json:"activity_level"`
}

// Session is what register and login hand back to the client.
type Session struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *models.User `json:"user"`
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, validationError("invalid email address")
	}
	if username == "" {
		return nil, validationError("username is required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, validationError("password must be at least %d characters", minPasswordLength)
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, validationError("password must be at most %d bytes", maxPasswordBytes)
	}

	user := models.User{
		ID:                uuid.NewString(),
		Email:             email,
		Username:          username,
		StoragePreference: models.StoragePreferenceCloud,
		PrimaryGoal:       "general_fitness",
		ActivityLevel:     "moderately_active",
	}
	if err := in.ProfileUpdate.apply(&user); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.HashedPassword = string(hash)

	db := s.DB.WithContext(ctx)
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, storageError("check email", err)
	}
	if count > 0 {
		return nil, validationError("email already registered")
	}
	if err := db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, storageError("check username", err)
	}
	if count > 0 {
		return nil, validationError("username already taken")
	}

	if err := db.Create(&user).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, validationError("email or username already registered")
		}
		return nil, storageError("create user", err)
	}
	log.Printf("[USERS] registered %s (%s)", user.Username, user.ID)
	return s.session(&user)
}

func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: incorrect email or password", ErrUnauthorized)
	}
	if err != nil {
		return nil, storageError("load user", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) != nil {
		return nil, fmt.Errorf("%w: incorrect email or password", ErrUnauthorized)
	}
	return s.session(&user)
}

func (s *UserService) session(user *models.User) (*Session, error) {
	token, _, err := s.Tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: token, TokenType: "bearer", User: user}, nil
}

func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	if !validID(userID) {
		return nil, notFound("user")
	}
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, storageError("load user", err)
	}
	return &user, nil
}

// UpdateProfile applies only the allow-listed fields in upd.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*models.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := upd.apply(user); err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Save(user).Error; err != nil {
		return nil, storageError("update user", err)
	}
	return user, nil
}

func (p ProfileUpdate) apply(u *models.User) error {
	if p.StoragePreference != nil {
		switch *p.StoragePreference {
		case models.StoragePreferenceCloud, models.StoragePreferenceLocal:
			u.StoragePreference = *p.StoragePreference
		default:
			return validationError("storage_preference must be cloud or local")
		}
	}
	if p.PrimaryGoal != nil {
		goal := strings.TrimSpace(*p.PrimaryGoal)
		if goal == "" {
			return validationError("primary_goal must not be empty")
		}
		u.PrimaryGoal = goal
	}
	if p.HeightCm != nil {
		if *p.HeightCm <= 0 || *p.HeightCm > 300 {
			return validationError("height_cm out of range")
		}
		u.HeightCm = p.HeightCm
	}
	if p.WeightKg != nil {
		if *p.WeightKg <= 0 || *p.WeightKg > 700 {
			return validationError("weight_kg out of range")
		}
		u.WeightKg = p.WeightKg
	}
	if p.Age != nil {
		if *p.Age <= 0 || *p.Age > 150 {
			return validationError("age out of range")
		}
		u.Age = p.Age
	}
	if p.Gender != nil {
		switch *p.Gender {
		case models.GenderMale, models.GenderFemale, models.GenderOther:
			u.Gender = p.Gender
		default:
			return validationError("gender must be male, female or other")
		}
	}
	if p.ActivityLevel != nil {
		level := strings.TrimSpace(*p.ActivityLevel)
		if level == "" {
			return validationError("activity_level must not be empty")
		}
		u.ActivityLevel = level
	}
	return nil
}

// requireUser rejects writes on behalf of an account that does not exist.
func requireUser(db *gorm.DB, userID string) error {
	if !validID(userID) {
		return validationError("unknown user %s", userID)
	}
	var count int64
	if err := db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return storageError("check user", err)
	}
	if count == 0 {
		return validationError("unknown user %s", userID)
	}
	return nil
}
