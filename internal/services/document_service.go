package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/venturelink/venturelink/internal/models"
	"github.com/venturelink/venturelink/internal/storage"
	apperrors "github.com/venturelink/venturelink/pkg/errors"
	"github.com/venturelink/venturelink/pkg/logger"
)

// UploadDocumentInput describes an incoming file upload.
type UploadDocumentInput struct {
	Name        string
	ContentType string
	Content     io.Reader
}

// DocumentService manages uploaded files and the per-user shares that grant
// read access to them.
type DocumentService struct {
	db            *gorm.DB
	store         *storage.Store
	requests      *RequestService
	notifications *NotificationService
	log           *zap.Logger
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(db *gorm.DB, store *storage.Store, requests *RequestService, notifications *NotificationService) (*DocumentService, error) {
	if db == nil {
		return nil, errors.New("document service: db is required")
	}
	if store == nil {
		return nil, errors.New("document service: store is required")
	}
	if requests == nil {
		return nil, errors.New("document service: request service is required")
	}
	if notifications == nil {
		return nil, errors.New("document service: notification service is required")
	}
	return &DocumentService{
		db:            db,
		store:         store,
		requests:      requests,
		notifications: notifications,
		log:           logger.WithModule("documents"),
	}, nil
}

// Upload stores the blob and records its metadata under the owner.
func (s *DocumentService) Upload(ctx context.Context, ownerID string, input UploadDocumentInput) (*models.Document, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("file name is required")
	}
	if input.Content == nil {
		return nil, apperrors.NewBadRequest("file content is required")
	}

	path, size, err := s.store.Save(input.Content)
	if err != nil {
		return nil, fmt.Errorf("document service: store blob: %w", err)
	}

	document := models.Document{
		OwnerID:     ownerID,
		Name:        name,
		ContentType: strings.TrimSpace(input.ContentType),
		Size:        size,
		StoragePath: path,
	}
	if err := s.db.WithContext(ctx).Create(&document).Error; err != nil {
		if removeErr := s.store.Remove(path); removeErr != nil {
			s.log.Warn("orphaned blob after failed insert",
				zap.String("path", path), zap.Error(removeErr))
		}
		return nil, fmt.Errorf("document service: create document: %w", err)
	}
	return &document, nil
}

// List returns the documents the user owns plus those shared with them.
func (s *DocumentService) List(ctx context.Context, userID string) ([]models.Document, error) {
	ctx = ensureContext(ctx)

	var documents []models.Document
	if err := s.db.WithContext(ctx).
		Preload("Owner").Preload("Shares").
		Joins("LEFT JOIN document_shares ON document_shares.document_id = documents.id AND document_shares.user_id = ?", userID).
		Where("documents.owner_id = ? OR document_shares.user_id IS NOT NULL", userID).
		Group("documents.id").
		Order("documents.created_at DESC").
		Find(&documents).Error; err != nil {
		return nil, fmt.Errorf("document service: list documents: %w", err)
	}
	return documents, nil
}

// Share grants a connected user read access and notifies them. Sharing twice
// with the same user is a no-op.
func (s *DocumentService) Share(ctx context.Context, ownerID, documentID, userID string) (*models.DocumentShare, error) {
	ctx = ensureContext(ctx)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperrors.NewBadRequest("user is required")
	}
	if userID == ownerID {
		return nil, apperrors.NewBadRequest("you cannot share a document with yourself")
	}

	document, err := s.load(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if document.OwnerID != ownerID {
		return nil, apperrors.ErrForbidden
	}

	connected, err := s.requests.AreConnected(ctx, ownerID, userID)
	if err != nil {
		return nil, err
	}
	if !connected {
		return nil, apperrors.New("NOT_CONNECTED", "you can only share documents with your connections", 403)
	}

	var share models.DocumentShare
	err = s.db.WithContext(ctx).
		Where("document_id = ? AND user_id = ?", document.ID, userID).
		First(&share).Error
	switch {
	case err == nil:
		return &share, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("document service: check share: %w", err)
	}

	share = models.DocumentShare{DocumentID: document.ID, UserID: userID}
	if err := s.db.WithContext(ctx).Create(&share).Error; err != nil {
		return nil, fmt.Errorf("document service: create share: %w", err)
	}

	var owner models.User
	_ = s.db.WithContext(ctx).Select("name").Where("id = ?", ownerID).First(&owner).Error

	s.notifications.NotifyBestEffort(ctx, NotifyInput{
		SenderID:    ownerID,
		RecipientID: userID,
		Type:        models.NotifyDocumentShared,
		Message:     fmt.Sprintf("%s shared %q with you", owner.Name, document.Name),
		Link:        &Link{Entity: models.LinkEntityDocument, ID: document.ID},
	})

	return &share, nil
}

// Open returns the document metadata and a reader over its content for the
// owner or any user it is shared with. The caller closes the reader.
func (s *DocumentService) Open(ctx context.Context, userID, documentID string) (*models.Document, io.ReadCloser, error) {
	ctx = ensureContext(ctx)

	document, err := s.load(ctx, documentID)
	if err != nil {
		return nil, nil, err
	}

	allowed, err := s.canRead(ctx, userID, document)
	if err != nil {
		return nil, nil, err
	}
	if !allowed {
		return nil, nil, apperrors.ErrForbidden
	}

	reader, err := s.store.Open(document.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, apperrors.ErrNotFound
		}
		return nil, nil, fmt.Errorf("document service: open blob: %w", err)
	}
	return document, reader, nil
}

// Delete removes the document, its shares and its blob. Owner only.
func (s *DocumentService) Delete(ctx context.Context, ownerID, documentID string) error {
	ctx = ensureContext(ctx)

	document, err := s.load(ctx, documentID)
	if err != nil {
		return err
	}
	if document.OwnerID != ownerID {
		return apperrors.ErrForbidden
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", document.ID).Delete(&models.DocumentShare{}).Error; err != nil {
			return fmt.Errorf("delete shares: %w", err)
		}
		if err := tx.Delete(document).Error; err != nil {
			return fmt.Errorf("delete document: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("document service: delete: %w", err)
	}

	if err := s.store.Remove(document.StoragePath); err != nil {
		// Metadata is gone; a stale blob is harmless but worth noting.
		s.log.Warn("blob removal failed",
			zap.String("document_id", document.ID),
			zap.Error(err),
		)
	}
	return nil
}

func (s *DocumentService) load(ctx context.Context, documentID string) (*models.Document, error) {
	var document models.Document
	if err := s.db.WithContext(ctx).Where("id = ?", documentID).First(&document).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("document service: load document: %w", err)
	}
	return &document, nil
}

func (s *DocumentService) canRead(ctx context.Context, userID string, document *models.Document) (bool, error) {
	if document.OwnerID == userID {
		return true, nil
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.DocumentShare{}).
		Where("document_id = ? AND user_id = ?", document.ID, userID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("document service: check share: %w", err)
	}
	return count > 0, nil
}
