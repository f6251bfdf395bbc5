package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/princeprakhar/reviewflow-backend/internal/models"
	"github.com/princeprakhar/reviewflow-backend/internal/utils"
	"gorm.io/gorm"
)

var ErrEmailTaken = fmt.Errorf("email already registered: %w", ErrConflict)

type AuthResponse struct {
	Token utils.TokenPair `json:"token"`
	User  models.User     `json:"user"`
}

type AuthService struct {
	db     *gorm.DB
	tokens utils.TokenConfig
}

func NewAuthService(db *gorm.DB, tokens utils.TokenConfig) *AuthService {
	return &AuthService{db: db, tokens: tokens}
}

type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	Name        string `json:"name" binding:"required"`
	CompanyName string `json:"company_name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type UpdateProfileRequest struct {
	Name             *string `json:"name,omitempty"`
	CompanyName      *string `json:"company_name,omitempty"`
	GoogleBusinessID *string `json:"google_business_id,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

type SubscriptionRequest struct {
	Plan string `json:"plan" binding:"required"`
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	email := strings.ToLower(utils.SanitizeString(req.Email))
	if !utils.IsValidEmail(email) {
		return nil, invalid("email", "invalid email format")
	}
	if !utils.IsValidPassword(req.Password) {
		return nil, invalid("password", fmt.Sprintf("password must be at least %d characters", utils.MinPasswordLength))
	}
	name := utils.SanitizeString(req.Name)
	if name == "" {
		return nil, invalid("name", "name is required")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, dbError("check existing user", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	user := models.User{
		Email:       email,
		Password:    req.Password, // Will be hashed in BeforeCreate hook
		Name:        name,
		CompanyName: optionalString(utils.SanitizeString(req.CompanyName)),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, dbError("create user", err)
	}

	return s.issue(user)
}

// Login does not reveal whether the email or the password was wrong.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(utils.SanitizeString(req.Email))

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, lookupError("find user by email", err, ErrUnauthorized)
	}
	if !user.CheckPassword(req.Password) {
		return nil, ErrUnauthorized
	}

	return s.issue(user)
}

// Refresh exchanges a valid refresh token for a new pair. Tokens are not
// persisted, so any unexpired refresh token of an existing user is accepted.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*AuthResponse, error) {
	claims, err := utils.ValidateTokenOfType(req.RefreshToken, s.tokens.Secret, utils.RefreshToken)
	if err != nil {
		return nil, ErrUnauthorized
	}

	user, err := s.GetProfile(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	return s.issue(*user)
}

func (s *AuthService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, lookupError("find user", err, ErrUserNotFound)
	}
	return &user, nil
}

// UpdateProfile changes only the fields present in req.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uint, req UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		name := utils.SanitizeString(*req.Name)
		if name == "" {
			return nil, invalid("name", "name cannot be empty")
		}
		updates["name"] = name
	}
	if req.CompanyName != nil {
		updates["company_name"] = optionalString(utils.SanitizeString(*req.CompanyName))
	}
	if req.GoogleBusinessID != nil {
		updates["google_business_id"] = optionalString(utils.SanitizeString(*req.GoogleBusinessID))
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, dbError("update profile", err)
	}
	return s.GetProfile(ctx, userID)
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uint, req ChangePasswordRequest) error {
	if !utils.IsValidPassword(req.NewPassword) {
		return invalid("new_password", fmt.Sprintf("password must be at least %d characters", utils.MinPasswordLength))
	}

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	if !user.CheckPassword(req.CurrentPassword) {
		return invalid("current_password", "current password is incorrect")
	}

	if err := user.UpdatePassword(req.NewPassword); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password", user.Password).Error; err != nil {
		return dbError("save password", err)
	}
	return nil
}

func (s *AuthService) UpdateSubscription(ctx context.Context, userID uint, value string) (*models.User, error) {
	plan, err := models.ParseSubscriptionPlan(value)
	if err != nil {
		return nil, invalid("plan", err.Error())
	}

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(user).Update("subscription_plan", plan).Error; err != nil {
		return nil, dbError("update subscription", err)
	}
	user.SubscriptionPlan = plan
	return user, nil
}

func (s *AuthService) issue(user models.User) (*AuthResponse, error) {
	tokenPair, err := utils.GenerateTokenPair(user.ID, user.Email, s.tokens)
	if err != nil {
		return nil, fmt.Errorf("generate tokens: %w", err)
	}
	return &AuthResponse{Token: *tokenPair, User: user}, nil
}
