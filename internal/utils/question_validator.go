package utils

import (
	"fmt"

	"github.com/worksheetlab/worksheet-service/internal/models"
)

// QuestionValidator handles structural validation for parsed questions.
// The shape rules differ per question type: option-backed types need an
// option list, free-text types must not carry one.
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateQuestion validates a complete question object
func (v *QuestionValidator) ValidateQuestion(question *models.Question) error {
	if question.ID == "" {
		return fmt.Errorf("question id is required")
	}
	if question.Prompt == "" {
		return fmt.Errorf("question prompt is required")
	}
	if len(question.AnswerKey) == 0 {
		return fmt.Errorf("question answer key is required")
	}

	switch question.Type {
	case models.MultipleChoice, models.Matching:
		return v.validateOptions(question)
	case models.TextAnswer, models.FillBlank:
		if len(question.Options) > 0 {
			return fmt.Errorf("%s questions must not carry options", question.Type)
		}
		return nil
	default:
		return fmt.Errorf("unsupported question type: %s", question.Type)
	}
}

func (v *QuestionValidator) validateOptions(question *models.Question) error {
	if len(question.Options) < 2 {
		return fmt.Errorf("%s questions need at least 2 options, got %d", question.Type, len(question.Options))
	}

	seen := make(map[string]bool, len(question.Options))
	for i, opt := range question.Options {
		if opt.ID == "" {
			return fmt.Errorf("option %d is missing an id", i+1)
		}
		if opt.Text == "" {
			return fmt.Errorf("option %q is missing display text", opt.ID)
		}
		if seen[opt.ID] {
			return fmt.Errorf("duplicate option id %q", opt.ID)
		}
		seen[opt.ID] = true
	}
	return nil
}

// ValidateWorksheet validates a whole parsed worksheet: identity fields,
// section shape, per-question rules, and worksheet-wide question id
// uniqueness (answer lookup assumes globally unique ids).
func (v *QuestionValidator) ValidateWorksheet(worksheet *models.Worksheet) error {
	if worksheet == nil {
		return fmt.Errorf("worksheet cannot be nil")
	}
	if worksheet.ID == "" {
		return fmt.Errorf("worksheet id is required")
	}
	if worksheet.Title == "" {
		return fmt.Errorf("worksheet title is required")
	}
	if len(worksheet.Sections) == 0 {
		return fmt.Errorf("worksheet has no sections")
	}

	questionIDs := make(map[string]bool)
	for si, section := range worksheet.Sections {
		if section.ID == "" {
			return fmt.Errorf("section %d is missing an id", si+1)
		}
		if section.Title == "" {
			return fmt.Errorf("section %d is missing a title", si+1)
		}
		if len(section.Questions) == 0 {
			return fmt.Errorf("section %q has no questions", section.Title)
		}

		for qi := range section.Questions {
			question := &section.Questions[qi]
			if err := v.ValidateQuestion(question); err != nil {
				return fmt.Errorf("validation failed for question %d in section %q: %w", qi+1, section.Title, err)
			}
			if questionIDs[question.ID] {
				return fmt.Errorf("duplicate question id %q", question.ID)
			}
			questionIDs[question.ID] = true
		}
	}
	return nil
}
