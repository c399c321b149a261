package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/worksheetlab/worksheet-service/internal/evaluator"
	"github.com/worksheetlab/worksheet-service/internal/events"
	"github.com/worksheetlab/worksheet-service/internal/ingest"
	"github.com/worksheetlab/worksheet-service/internal/models"
	"github.com/worksheetlab/worksheet-service/internal/store"
	"github.com/worksheetlab/worksheet-service/internal/utils"
)

// SessionService drives a worksheet session from upload to completion:
// ingestion, one-at-a-time question navigation, answer evaluation, and the
// early-finish rule. Navigation is forward-only.
type SessionService interface {
	CreateSession(ctx context.Context) (*SessionResponse, error)

	IngestWorksheet(ctx context.Context, sessionID string, upload ingest.Upload) (*models.Worksheet, error)
	LoadDemoWorksheet(ctx context.Context, sessionID string) (*models.Worksheet, error)
	GetWorksheet(ctx context.Context, sessionID string) (*models.Worksheet, error)

	CurrentQuestion(ctx context.Context, sessionID string) (*models.CurrentQuestion, error)
	SubmitAnswer(ctx context.Context, sessionID string, req *SubmitAnswerRequest) (*SubmitAnswerResponse, error)
	Advance(ctx context.Context, sessionID string) (*AdvanceResponse, error)
	FinishEarly(ctx context.Context, sessionID string) (*AdvanceResponse, error)
	Progress(ctx context.Context, sessionID string) (*models.Progress, error)

	SaveStudentInfo(ctx context.Context, sessionID string, req *StudentInfoRequest) (*models.StudentInfo, error)
	ClearSession(ctx context.Context, sessionID string) error
}

type sessionService struct {
	store     store.SessionStore
	adapter   *ingest.Adapter
	evaluator evaluator.Evaluator
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *utils.Validator
}

func NewSessionService(
	sessionStore store.SessionStore,
	adapter *ingest.Adapter,
	eval evaluator.Evaluator,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *utils.Validator,
) SessionService {
	return &sessionService{
		store:     sessionStore,
		adapter:   adapter,
		evaluator: eval,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

type SessionResponse struct {
	SessionID string `json:"session_id"`
}

type SubmitAnswerRequest struct {
	QuestionID string `json:"question_id" validate:"required"`
	Answer     string `json:"answer"`
}

type SubmitAnswerResponse struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
	IsCorrect  bool   `json:"is_correct"`
}

type AdvanceResponse struct {
	CurrentIndex int  `json:"current_index"`
	Finished     bool `json:"finished"`
}

type StudentInfoRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

// ===== SESSION LIFECYCLE =====

func (s *sessionService) CreateSession(ctx context.Context) (*SessionResponse, error) {
	sessionID := uuid.NewString()

	// No state is written yet; the session materializes in the store on
	// first worksheet load.
	s.logger.Info("Session created", "session_id", sessionID)

	return &SessionResponse{SessionID: sessionID}, nil
}

func (s *sessionService) ClearSession(ctx context.Context, sessionID string) error {
	if err := s.store.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	s.logger.Info("Session cleared", "session_id", sessionID)
	return nil
}

// ===== WORKSHEET LOADING =====

func (s *sessionService) IngestWorksheet(ctx context.Context, sessionID string, upload ingest.Upload) (*models.Worksheet, error) {
	s.logger.Info("Ingesting worksheet",
		"session_id", sessionID,
		"filename", upload.Filename,
		"content_type", upload.ContentType,
		"size_bytes", len(upload.Data))

	worksheet, err := s.adapter.Ingest(ctx, sessionID, upload)
	if err != nil {
		return nil, err
	}

	if err := s.resetSession(ctx, sessionID, worksheet); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.NewWorksheetIngestedEvent(sessionID, worksheet, "upload"))

	s.logger.Info("Worksheet ingested",
		"session_id", sessionID,
		"worksheet_id", worksheet.ID,
		"title", worksheet.Title,
		"questions", worksheet.TotalQuestions())

	return worksheet, nil
}

func (s *sessionService) LoadDemoWorksheet(ctx context.Context, sessionID string) (*models.Worksheet, error) {
	worksheet := models.DemoWorksheet()

	if err := s.resetSession(ctx, sessionID, worksheet); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.NewWorksheetIngestedEvent(sessionID, worksheet, "demo"))

	s.logger.Info("Demo worksheet loaded", "session_id", sessionID, "worksheet_id", worksheet.ID)
	return worksheet, nil
}

func (s *sessionService) GetWorksheet(ctx context.Context, sessionID string) (*models.Worksheet, error) {
	return s.loadWorksheet(ctx, sessionID)
}

// resetSession wipes any previous state before installing the new
// worksheet. A fresh upload always starts a clean session: index at zero,
// not completed, no student info, no previous responses.
func (s *sessionService) resetSession(ctx context.Context, sessionID string, worksheet *models.Worksheet) error {
	if err := s.store.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to clear previous session state: %w", err)
	}
	if err := s.store.SaveWorksheet(ctx, sessionID, worksheet); err != nil {
		return fmt.Errorf("failed to save worksheet: %w", err)
	}
	if err := s.store.SaveCurrentIndex(ctx, sessionID, 0); err != nil {
		return fmt.Errorf("failed to reset question index: %w", err)
	}
	if err := s.store.MarkCompleted(ctx, sessionID, false); err != nil {
		return fmt.Errorf("failed to reset completion flag: %w", err)
	}
	return nil
}

// ===== NAVIGATION =====

func (s *sessionService) CurrentQuestion(ctx context.Context, sessionID string) (*models.CurrentQuestion, error) {
	worksheet, err := s.loadWorksheet(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	completed, err := s.store.IsCompleted(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get completion flag: %w", err)
	}
	if completed {
		return nil, ErrSessionCompleted
	}

	index, err := s.store.GetCurrentIndex(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get question index: %w", err)
	}

	question, section, ok := worksheet.QuestionAt(index)
	if !ok {
		return nil, fmt.Errorf("question index %d out of range for worksheet %s", index, worksheet.ID)
	}

	return &models.CurrentQuestion{
		Question:            question,
		SectionTitle:        section.Title,
		SectionInstructions: section.Instructions,
		Index:               index,
		Total:               worksheet.TotalQuestions(),
	}, nil
}

func (s *sessionService) SubmitAnswer(ctx context.Context, sessionID string, req *SubmitAnswerRequest) (*SubmitAnswerResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	worksheet, err := s.loadWorksheet(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	completed, err := s.store.IsCompleted(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get completion flag: %w", err)
	}
	if completed {
		return nil, ErrSessionCompleted
	}

	question, ok := worksheet.FindQuestion(req.QuestionID)
	if !ok {
		return nil, ErrQuestionNotFound
	}

	verdict, err := s.evaluator.Evaluate(question, req.Answer)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate answer: %w", err)
	}

	// Resubmission replaces the previous response; the pointer does not
	// move until the client advances.
	if err := s.store.UpdateQuestionAnswer(ctx, sessionID, question.ID, verdict.NormalizedAnswer, verdict.IsCorrect); err != nil {
		return nil, fmt.Errorf("failed to record answer: %w", err)
	}

	s.publishEvent(ctx, events.NewAnswerSubmittedEvent(sessionID, worksheet.ID, question.ID, question.Type, verdict.IsCorrect))

	s.logger.Info("Answer submitted",
		"session_id", sessionID,
		"question_id", question.ID,
		"question_type", question.Type,
		"is_correct", verdict.IsCorrect)

	return &SubmitAnswerResponse{
		QuestionID: question.ID,
		Answer:     verdict.NormalizedAnswer,
		IsCorrect:  verdict.IsCorrect,
	}, nil
}

func (s *sessionService) Advance(ctx context.Context, sessionID string) (*AdvanceResponse, error) {
	worksheet, err := s.loadWorksheet(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	completed, err := s.store.IsCompleted(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get completion flag: %w", err)
	}
	if completed {
		return nil, ErrSessionCompleted
	}

	index, err := s.store.GetCurrentIndex(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get question index: %w", err)
	}

	if index >= worksheet.TotalQuestions()-1 {
		return s.finish(ctx, sessionID, worksheet, index, false)
	}

	if err := s.store.SaveCurrentIndex(ctx, sessionID, index+1); err != nil {
		return nil, fmt.Errorf("failed to advance question index: %w", err)
	}

	return &AdvanceResponse{CurrentIndex: index + 1}, nil
}

func (s *sessionService) FinishEarly(ctx context.Context, sessionID string) (*AdvanceResponse, error) {
	worksheet, err := s.loadWorksheet(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	completed, err := s.store.IsCompleted(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get completion flag: %w", err)
	}
	if completed {
		return nil, ErrSessionCompleted
	}

	total := worksheet.TotalQuestions()
	answered := worksheet.AnsweredQuestions()
	threshold := models.EarlyFinishThreshold(total)
	if answered < threshold {
		return nil, NewBusinessRuleError("early_finish_threshold",
			fmt.Sprintf("at least %d of %d questions must be answered before finishing early", threshold, total),
			map[string]interface{}{
				"answered": answered,
				"required": threshold,
				"total":    total,
			})
	}

	index, err := s.store.GetCurrentIndex(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get question index: %w", err)
	}

	return s.finish(ctx, sessionID, worksheet, index, true)
}

// finish marks the session completed and publishes the completion event.
// Shared by Advance at the last question and FinishEarly.
func (s *sessionService) finish(ctx context.Context, sessionID string, worksheet *models.Worksheet, index int, early bool) (*AdvanceResponse, error) {
	if err := s.store.MarkCompleted(ctx, sessionID, true); err != nil {
		return nil, fmt.Errorf("failed to mark session completed: %w", err)
	}

	total := worksheet.TotalQuestions()
	correct := worksheet.CorrectAnswers()
	scorePercent := models.ScorePercent(correct, total)

	s.publishEvent(ctx, events.NewSessionCompletedEvent(
		sessionID, worksheet.ID, total, worksheet.AnsweredQuestions(), correct, scorePercent, early))

	s.logger.Info("Session completed",
		"session_id", sessionID,
		"worksheet_id", worksheet.ID,
		"early_finish", early,
		"score_percent", scorePercent)

	return &AdvanceResponse{CurrentIndex: index, Finished: true}, nil
}

func (s *sessionService) Progress(ctx context.Context, sessionID string) (*models.Progress, error) {
	worksheet, err := s.loadWorksheet(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	index, err := s.store.GetCurrentIndex(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get question index: %w", err)
	}

	completed, err := s.store.IsCompleted(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get completion flag: %w", err)
	}

	total := worksheet.TotalQuestions()
	answered := worksheet.AnsweredQuestions()
	threshold := models.EarlyFinishThreshold(total)

	return &models.Progress{
		TotalQuestions:       total,
		AnsweredQuestions:    answered,
		CorrectAnswers:       worksheet.CorrectAnswers(),
		CurrentIndex:         index,
		Completed:            completed,
		EarlyFinishEligible:  !completed && answered >= threshold,
		EarlyFinishThreshold: threshold,
	}, nil
}

// ===== STUDENT INFO =====

func (s *sessionService) SaveStudentInfo(ctx context.Context, sessionID string, req *StudentInfoRequest) (*models.StudentInfo, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	info := models.NewStudentInfo(req.Name)
	if info.Name == "" {
		return nil, ValidationErrors{*NewValidationError("name", "name is required", req.Name)}
	}

	if err := s.store.SaveStudentInfo(ctx, sessionID, info); err != nil {
		return nil, fmt.Errorf("failed to save student info: %w", err)
	}

	s.logger.Info("Student info saved", "session_id", sessionID, "student_name", info.Name)
	return info, nil
}

// ===== HELPERS =====

func (s *sessionService) loadWorksheet(ctx context.Context, sessionID string) (*models.Worksheet, error) {
	worksheet, err := s.store.GetWorksheet(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrWorksheetNotLoaded
		}
		return nil, fmt.Errorf("failed to get worksheet: %w", err)
	}
	return worksheet, nil
}

// publishEvent delivers a lifecycle event on a best-effort basis. A broker
// failure must never break the student's flow, so errors are logged and
// swallowed here.
func (s *sessionService) publishEvent(ctx context.Context, event *events.SessionEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSessionEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish session event",
			"event_type", event.Type,
			"event_id", event.ID,
			"error", err)
	}
}
