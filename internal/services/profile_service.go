package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/venturelink/venturelink/internal/models"
	apperrors "github.com/venturelink/venturelink/pkg/errors"
)

// UpsertProfileInput carries the editable fields of a user's profile.
type UpsertProfileInput struct {
	Bio      string
	Location string
	Website  string

	Company      string
	Pitch        string
	FundingStage string
	FundingGoal  int64

	Firm            string
	FocusIndustries []string
	MinCheckSize    int64
	MaxCheckSize    int64
}

// BrowseProfilesInput filters the public profile directory.
type BrowseProfilesInput struct {
	Role   string
	Limit  int
	Offset int
}

// ProfileService manages the public-facing profile attached to each account.
type ProfileService struct {
	db *gorm.DB
}

// NewProfileService constructs a ProfileService.
func NewProfileService(db *gorm.DB) (*ProfileService, error) {
	if db == nil {
		return nil, errors.New("profile service: db is required")
	}
	return &ProfileService{db: db}, nil
}

// Upsert creates or updates the caller's profile.
func (s *ProfileService) Upsert(ctx context.Context, userID string, input UpsertProfileInput) (*models.Profile, error) {
	ctx = ensureContext(ctx)

	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("profile service: load user: %w", err)
	}

	var focus datatypes.JSON
	if len(input.FocusIndustries) > 0 {
		data, err := json.Marshal(input.FocusIndustries)
		if err != nil {
			return nil, fmt.Errorf("profile service: marshal focus industries: %w", err)
		}
		focus = datatypes.JSON(data)
	}

	var profile models.Profile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		profile = models.Profile{UserID: userID}
	case err != nil:
		return nil, fmt.Errorf("profile service: load profile: %w", err)
	}

	profile.Bio = strings.TrimSpace(input.Bio)
	profile.Location = strings.TrimSpace(input.Location)
	profile.Website = strings.TrimSpace(input.Website)

	switch user.Role {
	case models.RoleEntrepreneur:
		profile.Company = strings.TrimSpace(input.Company)
		profile.Pitch = strings.TrimSpace(input.Pitch)
		profile.FundingStage = strings.TrimSpace(input.FundingStage)
		profile.FundingGoal = input.FundingGoal
	case models.RoleInvestor:
		profile.Firm = strings.TrimSpace(input.Firm)
		profile.FocusIndustries = focus
		profile.MinCheckSize = input.MinCheckSize
		profile.MaxCheckSize = input.MaxCheckSize
	}

	if err := s.db.WithContext(ctx).Save(&profile).Error; err != nil {
		return nil, fmt.Errorf("profile service: save profile: %w", err)
	}

	return &profile, nil
}

// GetByUserID loads the profile of the supplied user.
func (s *ProfileService) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	ctx = ensureContext(ctx)

	var profile models.Profile
	if err := s.db.WithContext(ctx).Preload("User").
		Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("profile service: load profile: %w", err)
	}
	return &profile, nil
}

// Browse lists profiles, optionally filtered by account role.
func (s *ProfileService) Browse(ctx context.Context, input BrowseProfilesInput) ([]models.Profile, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Preload("User").
		Joins("JOIN users ON users.id = profiles.user_id").
		Where("users.is_active = ?", true)

	role := strings.ToLower(strings.TrimSpace(input.Role))
	if role != "" {
		if !models.ValidRole(role) {
			return nil, apperrors.NewBadRequest("role must be entrepreneur or investor")
		}
		query = query.Where("users.role = ?", role)
	}

	var profiles []models.Profile
	if err := query.
		Order("profiles.updated_at DESC").
		Limit(clampLimit(input.Limit, 25, 100)).
		Offset(clampOffset(input.Offset)).
		Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("profile service: browse profiles: %w", err)
	}
	return profiles, nil
}
