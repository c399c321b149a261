package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/worksheetlab/worksheet-service/internal/models"
)

// EventType represents different types of session lifecycle events
type EventType string

const (
	EventWorksheetIngested EventType = "worksheet.ingested"
	EventAnswerSubmitted   EventType = "answer.submitted"
	EventSessionCompleted  EventType = "session.completed"
	EventReportGenerated   EventType = "report.generated"
)

const eventSource = "worksheet-service"

// SessionEvent is the base event structure for all session events
type SessionEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Event payloads

type WorksheetIngestedEvent struct {
	SessionID   string `json:"session_id"`
	WorksheetID string `json:"worksheet_id"`
	Title       string `json:"title"`
	Sections    int    `json:"sections"`
	Questions   int    `json:"questions"`
	Origin      string `json:"origin"` // upload or demo
}

type AnswerSubmittedEvent struct {
	SessionID    string              `json:"session_id"`
	WorksheetID  string              `json:"worksheet_id"`
	QuestionID   string              `json:"question_id"`
	QuestionType models.QuestionType `json:"question_type"`
	IsCorrect    bool                `json:"is_correct"`
	AnsweredAt   time.Time           `json:"answered_at"`
}

type SessionCompletedEvent struct {
	SessionID         string    `json:"session_id"`
	WorksheetID       string    `json:"worksheet_id"`
	TotalQuestions    int       `json:"total_questions"`
	AnsweredQuestions int       `json:"answered_questions"`
	CorrectAnswers    int       `json:"correct_answers"`
	ScorePercent      int       `json:"score_percent"`
	EarlyFinish       bool      `json:"early_finish"`
	CompletedAt       time.Time `json:"completed_at"`
}

type ReportGeneratedEvent struct {
	SessionID    string    `json:"session_id"`
	WorksheetID  string    `json:"worksheet_id"`
	Format       string    `json:"format"` // pdf or xlsx
	Filename     string    `json:"filename"`
	ScorePercent int       `json:"score_percent"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// Event factory functions

func NewWorksheetIngestedEvent(sessionID string, worksheet *models.Worksheet, origin string) *SessionEvent {
	return &SessionEvent{
		ID:        generateEventID(),
		Type:      EventWorksheetIngested,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   "1.0",
		Data: WorksheetIngestedEvent{
			SessionID:   sessionID,
			WorksheetID: worksheet.ID,
			Title:       worksheet.Title,
			Sections:    len(worksheet.Sections),
			Questions:   worksheet.TotalQuestions(),
			Origin:      origin,
		},
	}
}

func NewAnswerSubmittedEvent(sessionID, worksheetID, questionID string, questionType models.QuestionType, isCorrect bool) *SessionEvent {
	return &SessionEvent{
		ID:        generateEventID(),
		Type:      EventAnswerSubmitted,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   "1.0",
		Data: AnswerSubmittedEvent{
			SessionID:    sessionID,
			WorksheetID:  worksheetID,
			QuestionID:   questionID,
			QuestionType: questionType,
			IsCorrect:    isCorrect,
			AnsweredAt:   time.Now(),
		},
	}
}

func NewSessionCompletedEvent(sessionID, worksheetID string, total, answered, correct, scorePercent int, earlyFinish bool) *SessionEvent {
	return &SessionEvent{
		ID:        generateEventID(),
		Type:      EventSessionCompleted,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   "1.0",
		Data: SessionCompletedEvent{
			SessionID:         sessionID,
			WorksheetID:       worksheetID,
			TotalQuestions:    total,
			AnsweredQuestions: answered,
			CorrectAnswers:    correct,
			ScorePercent:      scorePercent,
			EarlyFinish:       earlyFinish,
			CompletedAt:       time.Now(),
		},
	}
}

func NewReportGeneratedEvent(sessionID, worksheetID, format, filename string, scorePercent int) *SessionEvent {
	return &SessionEvent{
		ID:        generateEventID(),
		Type:      EventReportGenerated,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   "1.0",
		Data: ReportGeneratedEvent{
			SessionID:    sessionID,
			WorksheetID:  worksheetID,
			Format:       format,
			Filename:     filename,
			ScorePercent: scorePercent,
			GeneratedAt:  time.Now(),
		},
	}
}

// Helper function to generate unique event IDs
func generateEventID() string {
	return uuid.NewString()
}
