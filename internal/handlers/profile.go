package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/venturelink/venturelink/internal/middleware"
	"github.com/venturelink/venturelink/internal/services"
	appErrors "github.com/venturelink/venturelink/pkg/errors"
	"github.com/venturelink/venturelink/pkg/response"
)

// ProfileHandler exposes the public profile directory and profile editing.
type ProfileHandler struct {
	profiles *services.ProfileService
}

// NewProfileHandler constructs a profile handler.
func NewProfileHandler(db *gorm.DB) (*ProfileHandler, error) {
	profiles, err := services.NewProfileService(db)
	if err != nil {
		return nil, err
	}
	return &ProfileHandler{profiles: profiles}, nil
}

type upsertProfileRequest struct {
	Bio      string `json:"bio" validate:"max=2000"`
	Location string `json:"location" validate:"max=200"`
	Website  string `json:"website" validate:"omitempty,url"`

	Company      string `json:"company" validate:"max=200"`
	Pitch        string `json:"pitch" validate:"max=2000"`
	FundingStage string `json:"funding_stage" validate:"max=100"`
	FundingGoal  int64  `json:"funding_goal" validate:"min=0"`

	Firm            string   `json:"firm" validate:"max=200"`
	FocusIndustries []string `json:"focus_industries" validate:"max=20,dive,max=100"`
	MinCheckSize    int64    `json:"min_check_size" validate:"min=0"`
	MaxCheckSize    int64    `json:"max_check_size" validate:"min=0"`
}

// Upsert creates or updates the caller's profile.
func (h *ProfileHandler) Upsert(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req upsertProfileRequest
	if !bindAndValidate(c, &req) {
		return
	}

	profile, err := h.profiles.Upsert(requestContext(c), userID, services.UpsertProfileInput{
		Bio:             req.Bio,
		Location:        req.Location,
		Website:         req.Website,
		Company:         req.Company,
		Pitch:           req.Pitch,
		FundingStage:    req.FundingStage,
		FundingGoal:     req.FundingGoal,
		Firm:            req.Firm,
		FocusIndustries: req.FocusIndustries,
		MinCheckSize:    req.MinCheckSize,
		MaxCheckSize:    req.MaxCheckSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, profile)
}

// Me returns the caller's own profile.
func (h *ProfileHandler) Me(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	profile, err := h.profiles.GetByUserID(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile)
}

// Get returns another user's profile by user ID.
func (h *ProfileHandler) Get(c *gin.Context) {
	targetID := strings.TrimSpace(c.Param("userID"))
	profile, err := h.profiles.GetByUserID(requestContext(c), targetID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile)
}

// Browse lists the profile directory with optional role filter and paging.
func (h *ProfileHandler) Browse(c *gin.Context) {
	profiles, err := h.profiles.Browse(requestContext(c), services.BrowseProfilesInput{
		Role:   c.Query("role"),
		Limit:  parseIntQuery(c, "limit", 25),
		Offset: parseIntQuery(c, "offset", 0),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, profiles)
}
