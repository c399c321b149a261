package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/worksheetlab/worksheet-service/internal/ingest"
	"github.com/worksheetlab/worksheet-service/internal/services"
	"github.com/worksheetlab/worksheet-service/internal/utils"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ===== ERROR CODES =====

// Stable codes clients branch on, e.g. redirecting to the upload screen on
// WORKSHEET_NOT_LOADED or to the report on SESSION_COMPLETED.
const (
	CodeSessionNotFound       = "SESSION_NOT_FOUND"
	CodeWorksheetNotLoaded    = "WORKSHEET_NOT_LOADED"
	CodeQuestionNotFound      = "QUESTION_NOT_FOUND"
	CodeSessionCompleted      = "SESSION_COMPLETED"
	CodeSessionNotCompleted   = "SESSION_NOT_COMPLETED"
	CodeIngestionInProgress   = "INGESTION_IN_PROGRESS"
	CodeUnsupportedFileType   = "UNSUPPORTED_FILE_TYPE"
	CodeParseTimeout          = "PARSE_TIMEOUT"
	CodeParseFailed           = "PARSE_FAILED"
	CodeFormatNotRecognized   = "FORMAT_NOT_RECOGNIZED"
	CodeParserUnavailable     = "PARSER_UNAVAILABLE"
	CodeEarlyFinishNotAllowed = "EARLY_FINISH_NOT_ALLOWED"
	CodeValidationError       = "VALIDATION_ERROR"
)

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging and error mapping for all handlers
type BaseHandler struct {
	logger utils.Logger
}

// NewBaseHandler creates a new base handler with logging capability
func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

// LogRequest logs incoming HTTP requests with context information
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"remote_addr", c.ClientIP(),
		"request_id", c.GetHeader("X-Request-ID"),
	}
	fields = append(fields, additionalFields...)

	h.logger.Info(message, fields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"request_id", c.GetHeader("X-Request-ID"),
	}
	fields = append(fields, additionalFields...)

	h.logger.LogError(err, message, fields...)
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, message string, err error, code string) {
	if err != nil {
		h.LogError(c, err, message, "status_code", statusCode)
	}

	c.JSON(statusCode, ErrorResponse{
		Message: message,
		Code:    code,
	})
}

// handleServiceError maps service-layer errors onto HTTP statuses and the
// stable error codes above.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	// Handle custom error types first
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
			Code:    CodeValidationError,
		})
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		code := ""
		if businessRuleError.Rule == "early_finish_threshold" {
			code = CodeEarlyFinishNotAllowed
		}
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: businessRuleError.Message,
			Details: map[string]interface{}{
				"rule":    businessRuleError.Rule,
				"context": businessRuleError.Context,
			},
			Code: code,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrWorksheetNotLoaded):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "No worksheet loaded for this session - upload one first",
			Code:    CodeWorksheetNotLoaded,
		})
	case errors.Is(err, services.ErrQuestionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Question not found in the loaded worksheet",
			Code:    CodeQuestionNotFound,
		})
	case errors.Is(err, services.ErrSessionCompleted):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Session is already completed",
			Code:    CodeSessionCompleted,
		})
	case errors.Is(err, services.ErrSessionNotCompleted):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Session is not completed yet",
			Code:    CodeSessionNotCompleted,
		})
	case errors.Is(err, services.ErrStudentInfoMissing):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Student info must be saved before generating a report",
			Code:    CodeValidationError,
		})
	case errors.Is(err, ingest.ErrIngestionInProgress):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Another upload for this session is still being processed",
			Code:    CodeIngestionInProgress,
		})
	case errors.Is(err, ingest.ErrEmptyFile):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Uploaded file is empty",
			Code:    CodeValidationError,
		})
	case errors.Is(err, ingest.ErrUnsupportedFileType):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Only image and PDF uploads are supported",
			Code:    CodeUnsupportedFileType,
		})
	case errors.Is(err, ingest.ErrParseTimeout):
		c.JSON(http.StatusGatewayTimeout, ErrorResponse{
			Message: "Worksheet processing timed out - try a smaller file",
			Code:    CodeParseTimeout,
		})
	case errors.Is(err, ingest.ErrFormatNotRecognized):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: "Could not recognize a worksheet in this file",
			Details: err.Error(),
			Code:    CodeFormatNotRecognized,
		})
	case errors.Is(err, ingest.ErrInvalidResponse), errors.Is(err, ingest.ErrRemoteError):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: "Parsing service could not process the file",
			Details: err.Error(),
			Code:    CodeParseFailed,
		})
	case errors.Is(err, ingest.ErrRemoteStatus), errors.Is(err, ingest.ErrServiceUnreachable):
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Message: "Parsing service is unavailable",
			Code:    CodeParserUnavailable,
		})
	default:
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}

// HealthCheck reports service liveness
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "worksheet-service",
	})
}
