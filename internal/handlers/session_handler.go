package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/worksheetlab/worksheet-service/internal/ingest"
	"github.com/worksheetlab/worksheet-service/internal/services"
	"github.com/worksheetlab/worksheet-service/internal/utils"
)

type SessionHandler struct {
	BaseHandler
	sessionService services.SessionService
	validator      *utils.Validator
}

func NewSessionHandler(
	sessionService services.SessionService,
	validator *utils.Validator,
	logger utils.Logger,
) *SessionHandler {
	return &SessionHandler{
		BaseHandler:    NewBaseHandler(logger),
		sessionService: sessionService,
		validator:      validator,
	}
}

// CreateSession creates a new worksheet session
// @Summary Create session
// @Description Creates a fresh session and returns its id
// @Tags sessions
// @Produce json
// @Success 201 {object} services.SessionResponse
// @Router /sessions [post]
func (h *SessionHandler) CreateSession(c *gin.Context) {
	session, err := h.sessionService.CreateSession(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// ClearSession wipes all session state
// @Summary Clear session
// @Description Removes the worksheet, answers, progress and student info of a session
// @Tags sessions
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id} [delete]
func (h *SessionHandler) ClearSession(c *gin.Context) {
	sessionID := ParseSessionIDParam(c)
	if sessionID == "" {
		return
	}

	if err := h.sessionService.ClearSession(c.Request.Context(), sessionID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UploadWorksheet ingests an uploaded worksheet file
// @Summary Upload worksheet
// @Description Sends an image or PDF to the parsing service and installs the result as the session worksheet
// @Tags worksheet
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Session ID"
// @Param file formData file true "Worksheet image or PDF"
// @Success 201 {object} SuccessResponse{data=models.Worksheet}
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Failure 504 {object} ErrorResponse
// @Router /sessions/{id}/worksheet [post]
func (h *SessionHandler) UploadWorksheet(c *gin.Context) {
	sessionID := ParseSessionIDParam(c)
	if sessionID == "" {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Worksheet file is required",
			Code:    CodeValidationError,
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Failed to read uploaded file", err, CodeValidationError)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Failed to read uploaded file", err, CodeValidationError)
		return
	}

	h.LogRequest(c, "Uploading worksheet",
		"session_id", sessionID,
		"filename", fileHeader.Filename,
		"size_bytes", len(data))

	upload := ingest.Upload{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}

	worksheet, err := h.sessionService.IngestWorksheet(c.Request.Context(), sessionID, upload)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "Worksheet ingested",
		Data:    worksheet,
	})
}

// LoadDemoWorksheet installs the built-in demo worksheet
// @Summary Load demo worksheet
// @Description Loads the bundled demo worksheet without calling the parsing service
// @Tags worksheet
// @Produce json
// @Param id path string true "Session ID"
// @Success 201 {object} SuccessResponse{data=models.Worksheet}
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id}/worksheet/demo [post]
func (h *SessionHandler) LoadDemoWorksheet(c *gin.Context) {
	sessionID := ParseSessionIDParam(c)
	if sessionID == "" {
		return
	}

	worksheet, err := h.sessionService.LoadDemoWorksheet(c.Request.Context(), sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "Demo worksheet loaded",
		Data:    worksheet,
	})
}

// GetWorksheet returns the full worksheet of a session
// @Summary Get worksheet
// @Tags worksheet
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.Worksheet
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id}/worksheet [get]
func (h *SessionHandler) GetWorksheet(c *gin.Context) {
	sessionID := ParseSessionIDParam(c)
	if sessionID == "" {
		return
	}

	worksheet, err := h.sessionService.GetWorksheet(c.Request.Context(), sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, worksheet)
}

// GetCurrentQuestion returns the question at the session's pointer
// @Summary Get current question
// @Tags questions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.CurrentQuestion
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/questions/current [get]
func (h *SessionHandler) GetCurrentQuestion(c *gin.Context) {
	sessionID := ParseSessionIDParam(c)
	if sessionID == "" {
		return
	}

	current, err := h.sessionService.CurrentQuestion(c.Request.Context(), sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, current)
}

// SubmitAnswer grades an answer for one question
// @Summary Submit answer
// @Description Evaluates the submitted answer, stores the verdict, and returns it. Does not advance the question pointer.
// @Tags questions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param answer body services.SubmitAnswerRequest true "Answer data"
// @Success 200 {object} services.SubmitAnswerResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/answers [post]
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	sessionID := ParseSessionIDParam(c)
	if sessionID == "" {
		return
	}

	var req services.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
			Code:    CodeValidationError,
		})
		return
	}

	verdict, err := h.sessionService.SubmitAnswer(c.Request.Context(), sessionID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, verdict)
}

// Advance moves the session pointer to the next question
// @Summary Advance
// @Description Moves forward one question; at the last question the session completes. There is no backward navigation.
// @Tags questions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} services.AdvanceResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/advance [post]
func (h *SessionHandler) Advance(c *gin.Context) {
	sessionID := ParseSessionIDParam(c)
	if sessionID == "" {
		return
	}

	result, err := h.sessionService.Advance(c.Request.Context(), sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// FinishEarly completes the session before the last question
// @Summary Finish early
// @Description Completes the session once at least half of the questions are answered
// @Tags questions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} services.AdvanceResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /sessions/{id}/finish [post]
func (h *SessionHandler) FinishEarly(c *gin.Context) {
	sessionID := ParseSessionIDParam(c)
	if sessionID == "" {
		return
	}

	result, err := h.sessionService.FinishEarly(c.Request.Context(), sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetProgress returns answered/correct counts and the early-finish state
// @Summary Get progress
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.Progress
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id}/progress [get]
func (h *SessionHandler) GetProgress(c *gin.Context) {
	sessionID := ParseSessionIDParam(c)
	if sessionID == "" {
		return
	}

	progress, err := h.sessionService.Progress(c.Request.Context(), sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// SaveStudentInfo stores the student name for the report header
// @Summary Save student info
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param student body services.StudentInfoRequest true "Student data"
// @Success 200 {object} models.StudentInfo
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id}/student [put]
func (h *SessionHandler) SaveStudentInfo(c *gin.Context) {
	sessionID := ParseSessionIDParam(c)
	if sessionID == "" {
		return
	}

	var req services.StudentInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
			Code:    CodeValidationError,
		})
		return
	}

	info, err := h.sessionService.SaveStudentInfo(c.Request.Context(), sessionID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}
