package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/lk2023060901/ai-chat-backend/internal/pkg/errors"
)

// Response is the unified JSON envelope for the REST surface
type Response struct {
	Code    int         `json:"code"`              // Business code (0 on success)
	Message string      `json:"message,omitempty"` // Error or status message
	Kind    string      `json:"kind,omitempty"`    // Stable error category, empty on success
	Data    interface{} `json:"data"`              // Payload (may be an empty object)
}

// Success writes a 200 envelope
func Success(c *gin.Context, data interface{}) {
	if data == nil {
		data = struct{}{}
	}
	c.JSON(http.StatusOK, Response{
		Code: apperrors.Success,
		Data: data,
	})
}

// Created writes a 201 envelope
func Created(c *gin.Context, data interface{}) {
	if data == nil {
		data = struct{}{}
	}
	c.JSON(http.StatusCreated, Response{
		Code: apperrors.Success,
		Data: data,
	})
}

// Error writes an error envelope with an explicit status
func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, Response{
		Code:    httpStatus,
		Message: message,
		Data:    struct{}{},
	})
}

// BadRequest writes a 400 envelope
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{
		Code:    apperrors.ErrInvalidParams,
		Message: message,
		Kind:    string(apperrors.KindInvalidArgument),
		Data:    struct{}{},
	})
}

// HandleError writes the envelope for an application error. Every AppError
// kind maps to a deterministic HTTP status; the message text is the same one
// the tool surface reports for the same failure.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	code := apperrors.ExtractCode(err)
	c.JSON(apperrors.GetHTTPStatus(code), Response{
		Code:    code,
		Message: apperrors.UserMessage(err),
		Kind:    string(apperrors.GetKind(code)),
		Data:    struct{}{},
	})
}
