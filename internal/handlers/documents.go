package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/venturelink/venturelink/internal/middleware"
	"github.com/venturelink/venturelink/internal/services"
	appErrors "github.com/venturelink/venturelink/pkg/errors"
	"github.com/venturelink/venturelink/pkg/response"
)

// maxUploadSize caps document uploads at 25 MiB.
const maxUploadSize = 25 << 20

// DocumentHandler exposes document upload, share and download endpoints.
type DocumentHandler struct {
	documents *services.DocumentService
}

// NewDocumentHandler constructs a document handler.
func NewDocumentHandler(documents *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

type shareDocumentRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// Upload stores a multipart file under the caller.
func (h *DocumentHandler) Upload(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.NewBadRequest("a file upload is required"))
		return
	}

	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.NewBadRequest("unable to read the uploaded file"))
		return
	}
	defer file.Close()

	document, err := h.documents.Upload(requestContext(c), userID, services.UploadDocumentInput{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     file,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, document)
}

// List returns documents the caller owns or can read.
func (h *DocumentHandler) List(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	documents, err := h.documents.List(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, documents)
}

// Share grants a connected user read access.
func (h *DocumentHandler) Share(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req shareDocumentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	share, err := h.documents.Share(requestContext(c), userID, strings.TrimSpace(c.Param("id")), req.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, share)
}

// Download streams the document content to an authorized reader.
func (h *DocumentHandler) Download(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	document, reader, err := h.documents.Open(requestContext(c), userID, strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer reader.Close()

	contentType := document.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", document.Name))
	c.Header("Content-Type", contentType)
	if document.Size > 0 {
		c.Header("Content-Length", fmt.Sprintf("%d", document.Size))
	}
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, reader)
}

// Delete removes a document the caller owns.
func (h *DocumentHandler) Delete(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.documents.Delete(requestContext(c), userID, strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
