package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/drive"
	"fintrack/internal/middleware"
)

// DocumentStorer is the remote document surface the drive handler relies on.
type DocumentStorer interface {
	Load(ctx context.Context, token *oauth2.Token) (*drive.Document, error)
	Save(ctx context.Context, token *oauth2.Token, content json.RawMessage, fileID string) (string, error)
}

// DriveHandler proxies the per-user dataset document.
type DriveHandler struct {
	store DocumentStorer
}

// NewDriveHandler creates a new DriveHandler.
func NewDriveHandler(store DocumentStorer) *DriveHandler {
	return &DriveHandler{store: store}
}

// SaveRequest is the payload for saving the dataset document. The file
// identifier is present on every save after the first.
type SaveRequest struct {
	Content json.RawMessage `json:"content" binding:"required"`
	FileID  string          `json:"fileId"`
}

// GetFile returns the dataset document, or {content: null} when the user has
// none yet. A missing document is an empty initial dataset, not an error.
func (h *DriveHandler) GetFile(c *gin.Context) {
	rec, ok := middleware.GetSession(c)
	if !ok {
		respondWithError(c, apperrors.ErrUnauthorized)
		return
	}

	doc, err := h.store.Load(c.Request.Context(), rec.Token)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if doc == nil {
		c.JSON(http.StatusOK, gin.H{"content": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": doc.Content, "fileId": doc.FileID})
}

// SaveFile overwrites the dataset document, creating it when no file
// identifier is supplied, and returns the identifier for subsequent saves.
func (h *DriveHandler) SaveFile(c *gin.Context) {
	rec, ok := middleware.GetSession(c)
	if !ok {
		respondWithError(c, apperrors.ErrUnauthorized)
		return
	}

	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "content is required"))
		return
	}

	fileID, err := h.store.Save(c.Request.Context(), rec.Token, req.Content, req.FileID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "fileId": fileID})
}
