package store

import (
	"context"
	"errors"

	"github.com/worksheetlab/worksheet-service/internal/models"
)

// ErrNotFound is returned when a session slot has never been written or
// has expired.
var ErrNotFound = errors.New("not found in session store")

// SessionStore holds all state for active sessions: the worksheet, the
// current question pointer, student info, and the completion flag. Four
// independent slots per session, cleared together. This is the only
// persistence in the system; sessions expire instead of being archived.
type SessionStore interface {
	SaveWorksheet(ctx context.Context, sessionID string, worksheet *models.Worksheet) error
	GetWorksheet(ctx context.Context, sessionID string) (*models.Worksheet, error)

	SaveCurrentIndex(ctx context.Context, sessionID string, index int) error
	// GetCurrentIndex returns 0 for a session that never advanced.
	GetCurrentIndex(ctx context.Context, sessionID string) (int, error)

	SaveStudentInfo(ctx context.Context, sessionID string, info *models.StudentInfo) error
	GetStudentInfo(ctx context.Context, sessionID string) (*models.StudentInfo, error)

	MarkCompleted(ctx context.Context, sessionID string, completed bool) error
	// IsCompleted returns false for a session that was never marked.
	IsCompleted(ctx context.Context, sessionID string) (bool, error)

	// UpdateQuestionAnswer replaces one question's response and persists
	// the whole worksheet. A missing worksheet or unknown question id is
	// a no-op, not an error.
	UpdateQuestionAnswer(ctx context.Context, sessionID, questionID, answer string, isCorrect bool) error

	// Clear removes every slot of the session in one step; no partially
	// cleared state is observable.
	Clear(ctx context.Context, sessionID string) error

	Ping(ctx context.Context) error
	Close() error
}
