package handler

import (
	"chesslounge/backend/internal/apperr"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// region --- DTOs ---

// ErrorResponse is returned by the account and auth endpoints on failure.
type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Message string `json:"message" example:"An error message"`
}

// MessageResponse is returned by the chat endpoints on failure.
type MessageResponse struct {
	Message string `json:"message" example:"Invalid cursor."`
}

// endregion

// respondError writes {success:false, message} with the status for err.
func respondError(c *gin.Context, logger *zap.Logger, err error, fallback string) {
	status := apperr.HTTPStatus(err)
	if status >= 500 {
		logger.Error(fallback, zap.Error(err), zap.String("path", c.FullPath()))
	}
	c.JSON(status, ErrorResponse{Success: false, Message: apperr.PublicMessage(err, fallback)})
}

// respondChatError writes {message} with the status for err.
func respondChatError(c *gin.Context, logger *zap.Logger, err error, fallback string) {
	status := apperr.HTTPStatus(err)
	if status >= 500 {
		logger.Error(fallback, zap.Error(err), zap.String("path", c.FullPath()))
	}
	c.JSON(status, MessageResponse{Message: apperr.PublicMessage(err, fallback)})
}
