package models

// Document stores metadata for an uploaded file. The blob itself lives in
// the document store on disk, addressed by StoragePath.
type Document struct {
	BaseModel

	OwnerID string `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner   *User  `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`

	Name        string `gorm:"not null" json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	StoragePath string `gorm:"not null" json:"-"`

	Shares []DocumentShare `gorm:"foreignKey:DocumentID" json:"shares,omitempty"`
}

// DocumentShare grants another user read access to a document.
type DocumentShare struct {
	BaseModel

	DocumentID string    `gorm:"type:uuid;not null;uniqueIndex:idx_document_share" json:"document_id"`
	Document   *Document `gorm:"foreignKey:DocumentID" json:"-"`
	UserID     string    `gorm:"type:uuid;not null;uniqueIndex:idx_document_share" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
