package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/venturelink/venturelink/internal/middleware"
	"github.com/venturelink/venturelink/internal/services"
	appErrors "github.com/venturelink/venturelink/pkg/errors"
	"github.com/venturelink/venturelink/pkg/response"
)

// DealHandler exposes deal and investment endpoints.
type DealHandler struct {
	deals *services.DealService
}

// NewDealHandler constructs a deal handler.
func NewDealHandler(deals *services.DealService) *DealHandler {
	return &DealHandler{deals: deals}
}

type createDealRequest struct {
	InvestorID  string  `json:"investor_id" validate:"required"`
	Title       string  `json:"title" validate:"required,min=3,max=200"`
	Description string  `json:"description" validate:"max=5000"`
	Amount      int64   `json:"amount" validate:"required,min=1"`
	EquityPct   float64 `json:"equity_pct" validate:"min=0,max=100"`
}

type updateDealStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=proposed active completed cancelled"`
}

type investRequest struct {
	Amount int64 `json:"amount" validate:"required,min=1"`
}

// Create opens a new deal with a connected investor. Entrepreneur only.
func (h *DealHandler) Create(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req createDealRequest
	if !bindAndValidate(c, &req) {
		return
	}

	deal, err := h.deals.Create(requestContext(c), userID, services.CreateDealInput{
		InvestorID:  req.InvestorID,
		Title:       req.Title,
		Description: req.Description,
		Amount:      req.Amount,
		EquityPct:   req.EquityPct,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, deal)
}

// Get returns a single deal the caller participates in.
func (h *DealHandler) Get(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	deal, err := h.deals.Get(requestContext(c), userID, strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, deal)
}

// List returns the caller's deals.
func (h *DealHandler) List(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	deals, err := h.deals.List(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, deals)
}

// UpdateStatus transitions a deal's lifecycle state.
func (h *DealHandler) UpdateStatus(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req updateDealStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}

	deal, err := h.deals.UpdateStatus(requestContext(c), userID, strings.TrimSpace(c.Param("id")), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, deal)
}

// Invest records committed capital against the deal. Investor only.
func (h *DealHandler) Invest(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req investRequest
	if !bindAndValidate(c, &req) {
		return
	}

	investment, err := h.deals.Invest(requestContext(c), userID, strings.TrimSpace(c.Param("id")), req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, investment)
}

// MarkInvestmentPaid records settlement of an investment. Entrepreneur only.
func (h *DealHandler) MarkInvestmentPaid(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	investment, err := h.deals.MarkInvestmentPaid(requestContext(c), userID, strings.TrimSpace(c.Param("investmentID")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, investment)
}
