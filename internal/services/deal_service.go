package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/venturelink/venturelink/internal/models"
	apperrors "github.com/venturelink/venturelink/pkg/errors"
)

// CreateDealInput defines the attributes of a new funding deal.
type CreateDealInput struct {
	InvestorID  string
	Title       string
	Description string
	Amount      int64
	EquityPct   float64
}

// DealService manages funding deals and the investments recorded against them.
type DealService struct {
	db            *gorm.DB
	requests      *RequestService
	notifications *NotificationService
}

// NewDealService constructs a DealService.
func NewDealService(db *gorm.DB, requests *RequestService, notifications *NotificationService) (*DealService, error) {
	if db == nil {
		return nil, errors.New("deal service: db is required")
	}
	if requests == nil {
		return nil, errors.New("deal service: request service is required")
	}
	if notifications == nil {
		return nil, errors.New("deal service: notification service is required")
	}
	return &DealService{db: db, requests: requests, notifications: notifications}, nil
}

// Create opens a deal between the entrepreneur and a connected investor, then
// notifies the investor.
func (s *DealService) Create(ctx context.Context, entrepreneurID string, input CreateDealInput) (*models.Deal, error) {
	ctx = ensureContext(ctx)

	investorID := strings.TrimSpace(input.InvestorID)
	if investorID == "" {
		return nil, apperrors.NewBadRequest("investor is required")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewBadRequest("title is required")
	}
	if input.Amount <= 0 {
		return nil, apperrors.NewBadRequest("amount must be positive")
	}

	var investor models.User
	if err := s.db.WithContext(ctx).
		Where("id = ? AND role = ? AND is_active = ?", investorID, models.RoleInvestor, true).
		First(&investor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("deal service: load investor: %w", err)
	}

	connected, err := s.requests.AreConnected(ctx, entrepreneurID, investorID)
	if err != nil {
		return nil, err
	}
	if !connected {
		return nil, apperrors.New("NOT_CONNECTED", "you can only open deals with your connections", 403)
	}

	var entrepreneur models.User
	if err := s.db.WithContext(ctx).Where("id = ?", entrepreneurID).First(&entrepreneur).Error; err != nil {
		return nil, fmt.Errorf("deal service: load entrepreneur: %w", err)
	}

	deal := models.Deal{
		EntrepreneurID: entrepreneurID,
		InvestorID:     investorID,
		Title:          title,
		Description:    strings.TrimSpace(input.Description),
		Amount:         input.Amount,
		EquityPct:      input.EquityPct,
		Status:         models.DealProposed,
	}
	if err := s.db.WithContext(ctx).Create(&deal).Error; err != nil {
		return nil, fmt.Errorf("deal service: create deal: %w", err)
	}

	s.notifications.NotifyBestEffort(ctx, NotifyInput{
		SenderID:    entrepreneurID,
		RecipientID: investorID,
		Type:        models.NotifyDealCreated,
		Message:     fmt.Sprintf("%s proposed a deal: %s", entrepreneur.Name, deal.Title),
		Link:        &Link{Entity: models.LinkEntityDeal, ID: deal.ID},
	})

	return &deal, nil
}

// Get loads a deal the user participates in.
func (s *DealService) Get(ctx context.Context, userID, dealID string) (*models.Deal, error) {
	ctx = ensureContext(ctx)

	var deal models.Deal
	if err := s.db.WithContext(ctx).
		Preload("Entrepreneur").Preload("Investor").Preload("Investments").
		Where("id = ?", dealID).First(&deal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("deal service: load deal: %w", err)
	}

	if deal.EntrepreneurID != userID && deal.InvestorID != userID {
		return nil, apperrors.ErrForbidden
	}
	return &deal, nil
}

// List returns the deals the user participates in, newest first.
func (s *DealService) List(ctx context.Context, userID string) ([]models.Deal, error) {
	ctx = ensureContext(ctx)

	var deals []models.Deal
	if err := s.db.WithContext(ctx).
		Preload("Entrepreneur").Preload("Investor").
		Where("entrepreneur_id = ? OR investor_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&deals).Error; err != nil {
		return nil, fmt.Errorf("deal service: list deals: %w", err)
	}
	return deals, nil
}

// UpdateStatus transitions the deal state and notifies the counterparty.
func (s *DealService) UpdateStatus(ctx context.Context, userID, dealID, status string) (*models.Deal, error) {
	ctx = ensureContext(ctx)

	status = strings.ToLower(strings.TrimSpace(status))
	if !models.ValidDealStatus(status) {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("unknown deal status %q", status))
	}

	deal, err := s.Get(ctx, userID, dealID)
	if err != nil {
		return nil, err
	}
	if deal.Status == status {
		return deal, nil
	}

	if err := s.db.WithContext(ctx).Model(deal).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("deal service: update status: %w", err)
	}
	deal.Status = status

	actor, counterparty := s.parties(deal, userID)
	s.notifications.NotifyBestEffort(ctx, NotifyInput{
		SenderID:    userID,
		RecipientID: counterparty,
		Type:        models.NotifyDealUpdated,
		Message:     fmt.Sprintf("%s marked the deal %q as %s", actor, deal.Title, status),
		Link:        &Link{Entity: models.LinkEntityDeal, ID: deal.ID},
	})

	return deal, nil
}

// Invest records committed capital against the deal and notifies the
// entrepreneur. Only the deal's investor can invest.
func (s *DealService) Invest(ctx context.Context, investorID, dealID string, amount int64) (*models.Investment, error) {
	ctx = ensureContext(ctx)

	if amount <= 0 {
		return nil, apperrors.NewBadRequest("amount must be positive")
	}

	deal, err := s.Get(ctx, investorID, dealID)
	if err != nil {
		return nil, err
	}
	if deal.InvestorID != investorID {
		return nil, apperrors.ErrForbidden
	}
	if deal.Status == models.DealCompleted || deal.Status == models.DealCancelled {
		return nil, apperrors.NewConflict("deal is closed")
	}

	investment := models.Investment{
		DealID:     deal.ID,
		InvestorID: investorID,
		Amount:     amount,
		Status:     models.InvestmentCommitted,
	}
	if err := s.db.WithContext(ctx).Create(&investment).Error; err != nil {
		return nil, fmt.Errorf("deal service: create investment: %w", err)
	}

	if deal.Status == models.DealProposed {
		if err := s.db.WithContext(ctx).Model(deal).Update("status", models.DealActive).Error; err != nil {
			return nil, fmt.Errorf("deal service: activate deal: %w", err)
		}
	}

	investorName := ""
	if deal.Investor != nil {
		investorName = deal.Investor.Name
	}
	s.notifications.NotifyBestEffort(ctx, NotifyInput{
		SenderID:    investorID,
		RecipientID: deal.EntrepreneurID,
		Type:        models.NotifyInvestmentReceived,
		Message:     fmt.Sprintf("%s committed an investment to %q", investorName, deal.Title),
		Link:        &Link{Entity: models.LinkEntityDeal, ID: deal.ID},
	})

	return &investment, nil
}

// MarkInvestmentPaid records settlement of an investment and notifies the
// investor. Only the deal's entrepreneur can confirm payment.
func (s *DealService) MarkInvestmentPaid(ctx context.Context, userID, investmentID string) (*models.Investment, error) {
	ctx = ensureContext(ctx)

	var investment models.Investment
	if err := s.db.WithContext(ctx).Preload("Deal").
		Where("id = ?", investmentID).First(&investment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("deal service: load investment: %w", err)
	}

	if investment.Deal == nil || investment.Deal.EntrepreneurID != userID {
		return nil, apperrors.ErrForbidden
	}
	if investment.Status == models.InvestmentPaid {
		return &investment, nil
	}

	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(&investment).
		Updates(map[string]any{
			"status":  models.InvestmentPaid,
			"paid_at": now,
		}).Error; err != nil {
		return nil, fmt.Errorf("deal service: mark paid: %w", err)
	}
	investment.Status = models.InvestmentPaid
	investment.PaidAt = &now

	var entrepreneur models.User
	_ = s.db.WithContext(ctx).Select("name").Where("id = ?", userID).First(&entrepreneur).Error

	s.notifications.NotifyBestEffort(ctx, NotifyInput{
		SenderID:    userID,
		RecipientID: investment.InvestorID,
		Type:        models.NotifyPaymentReceived,
		Message:     fmt.Sprintf("%s confirmed receipt of your investment", entrepreneur.Name),
		Link:        &Link{Entity: models.LinkEntityDeal, ID: investment.DealID},
	})

	return &investment, nil
}

func (s *DealService) parties(deal *models.Deal, actorID string) (actorName, counterpartyID string) {
	if deal.EntrepreneurID == actorID {
		if deal.Entrepreneur != nil {
			actorName = deal.Entrepreneur.Name
		}
		return actorName, deal.InvestorID
	}
	if deal.Investor != nil {
		actorName = deal.Investor.Name
	}
	return actorName, deal.EntrepreneurID
}
