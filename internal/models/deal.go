package models

import "time"

// Deal states.
const (
	DealProposed  = "proposed"
	DealActive    = "active"
	DealCompleted = "completed"
	DealCancelled = "cancelled"
)

// Investment states.
const (
	InvestmentCommitted = "committed"
	InvestmentPaid      = "paid"
)

// Deal is a funding round between an entrepreneur and an investor.
type Deal struct {
	BaseModel

	EntrepreneurID string `gorm:"type:uuid;not null;index" json:"entrepreneur_id"`
	Entrepreneur   *User  `gorm:"foreignKey:EntrepreneurID" json:"entrepreneur,omitempty"`
	InvestorID     string `gorm:"type:uuid;not null;index" json:"investor_id"`
	Investor       *User  `gorm:"foreignKey:InvestorID" json:"investor,omitempty"`

	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Amount      int64  `gorm:"not null" json:"amount"`
	EquityPct   float64 `json:"equity_pct"`
	Status      string `gorm:"type:varchar(32);not null;default:'proposed';index" json:"status"`

	Investments []Investment `gorm:"foreignKey:DealID" json:"investments,omitempty"`
}

// Investment records capital committed against a deal.
type Investment struct {
	BaseModel

	DealID     string `gorm:"type:uuid;not null;index" json:"deal_id"`
	Deal       *Deal  `gorm:"foreignKey:DealID" json:"-"`
	InvestorID string `gorm:"type:uuid;not null;index" json:"investor_id"`
	Investor   *User  `gorm:"foreignKey:InvestorID" json:"investor,omitempty"`

	Amount int64  `gorm:"not null" json:"amount"`
	Status string `gorm:"type:varchar(32);not null;default:'committed'" json:"status"`
	PaidAt *time.Time `json:"paid_at"`
}

// ValidDealStatus reports whether the supplied status is a known deal state.
func ValidDealStatus(status string) bool {
	switch status {
	case DealProposed, DealActive, DealCompleted, DealCancelled:
		return true
	}
	return false
}
