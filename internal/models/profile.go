package models

import "gorm.io/datatypes"

// Profile holds the public-facing details of a user. Entrepreneur and
// investor accounts share one table; the role-specific columns are simply
// unused for the other role.
type Profile struct {
	BaseModel

	UserID string `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User   *User  `gorm:"foreignKey:UserID" json:"-"`

	Bio      string `gorm:"type:text" json:"bio"`
	Location string `json:"location"`
	Website  string `json:"website"`

	// Entrepreneur fields.
	Company      string `json:"company,omitempty"`
	Pitch        string `gorm:"type:text" json:"pitch,omitempty"`
	FundingStage string `gorm:"type:varchar(64)" json:"funding_stage,omitempty"`
	FundingGoal  int64  `json:"funding_goal,omitempty"`

	// Investor fields.
	Firm            string         `json:"firm,omitempty"`
	FocusIndustries datatypes.JSON `json:"focus_industries,omitempty"`
	MinCheckSize    int64          `json:"min_check_size,omitempty"`
	MaxCheckSize    int64          `json:"max_check_size,omitempty"`
}
