package utils

import (
	"strings"
	"testing"

	"github.com/worksheetlab/worksheet-service/internal/models"
)

func TestValidateWorksheetAcceptsDemo(t *testing.T) {
	v := NewQuestionValidator()
	if err := v.ValidateWorksheet(models.DemoWorksheet()); err != nil {
		t.Fatalf("demo worksheet should validate, got: %v", err)
	}
}

func TestValidateQuestionShapeRules(t *testing.T) {
	v := NewQuestionValidator()

	tests := []struct {
		name     string
		question models.Question
		wantErr  string
	}{
		{
			name: "multiple choice without options",
			question: models.Question{
				ID: "q1", Type: models.MultipleChoice, Prompt: "pick one",
				AnswerKey: models.AnswerKey{"a"},
			},
			wantErr: "at least 2 options",
		},
		{
			name: "fill blank with options",
			question: models.Question{
				ID: "q1", Type: models.FillBlank, Prompt: "fill it",
				Options:   []models.Option{{ID: "a", Text: "x"}, {ID: "b", Text: "y"}},
				AnswerKey: models.AnswerKey{"x"},
			},
			wantErr: "must not carry options",
		},
		{
			name: "duplicate option ids",
			question: models.Question{
				ID: "q1", Type: models.Matching, Prompt: "match",
				Options:   []models.Option{{ID: "a", Text: "x"}, {ID: "a", Text: "y"}},
				AnswerKey: models.AnswerKey{"a"},
			},
			wantErr: "duplicate option id",
		},
		{
			name: "missing answer key",
			question: models.Question{
				ID: "q1", Type: models.TextAnswer, Prompt: "say it",
			},
			wantErr: "answer key is required",
		},
		{
			name: "unknown type",
			question: models.Question{
				ID: "q1", Type: "essay", Prompt: "write",
				AnswerKey: models.AnswerKey{"x"},
			},
			wantErr: "unsupported question type",
		},
		{
			name: "missing prompt",
			question: models.Question{
				ID: "q1", Type: models.TextAnswer,
				AnswerKey: models.AnswerKey{"x"},
			},
			wantErr: "prompt is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateQuestion(&tt.question)
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestValidateWorksheetDuplicateQuestionIDs(t *testing.T) {
	v := NewQuestionValidator()
	w := models.DemoWorksheet()
	w.Sections[1].Questions[0].ID = "demo-q1"

	err := v.ValidateWorksheet(w)
	if err == nil || !strings.Contains(err.Error(), "duplicate question id") {
		t.Errorf("expected duplicate question id error, got %v", err)
	}
}

func TestValidatorQuestionTypeTag(t *testing.T) {
	type payload struct {
		Type string `json:"type" validate:"required,question_type"`
	}

	v := NewValidator()
	if err := v.Validate(payload{Type: "fill-blank"}); err != nil {
		t.Errorf("fill-blank should pass the question_type tag, got %v", err)
	}
	if err := v.Validate(payload{Type: "essay"}); err == nil {
		t.Errorf("essay should fail the question_type tag")
	}
}
