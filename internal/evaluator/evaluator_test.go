package evaluator

import (
	"errors"
	"testing"

	"github.com/worksheetlab/worksheet-service/internal/models"
)

func mcQuestion(key ...string) models.Question {
	return models.Question{
		ID:   "q1",
		Type: models.MultipleChoice,
		Options: []models.Option{
			{ID: "a", Text: "Adiós"},
			{ID: "b", Text: "Hola"},
			{ID: "c", Text: "Gracias"},
		},
		AnswerKey: models.AnswerKey(key),
	}
}

func textQuestion(t models.QuestionType, key ...string) models.Question {
	return models.Question{ID: "q1", Type: t, AnswerKey: models.AnswerKey(key)}
}

func TestEvaluateOptionTypes(t *testing.T) {
	e := New()

	tests := []struct {
		name      string
		question  models.Question
		submitted string
		want      bool
	}{
		{name: "exact id match", question: mcQuestion("b"), submitted: "b", want: true},
		{name: "wrong id", question: mcQuestion("b"), submitted: "a", want: false},
		{name: "ids are case sensitive", question: mcQuestion("b"), submitted: "B", want: false},
		{name: "no trimming on ids", question: mcQuestion("b"), submitted: " b ", want: false},
		{name: "matching uses the same rule", question: models.Question{
			ID: "m1", Type: models.Matching,
			Options:   []models.Option{{ID: "a", Text: "x"}, {ID: "b", Text: "y"}},
			AnswerKey: models.AnswerKey{"a"},
		}, submitted: "a", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, err := e.Evaluate(tt.question, tt.submitted)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if verdict.IsCorrect != tt.want {
				t.Errorf("IsCorrect = %v, expected %v", verdict.IsCorrect, tt.want)
			}
			if verdict.NormalizedAnswer != tt.submitted {
				t.Errorf("option answers must pass through unnormalized, got %q", verdict.NormalizedAnswer)
			}
		})
	}
}

func TestEvaluateFreeTextTypes(t *testing.T) {
	e := New()

	tests := []struct {
		name           string
		question       models.Question
		submitted      string
		wantCorrect    bool
		wantNormalized string
	}{
		{
			name:           "exact match",
			question:       textQuestion(models.FillBlank, "Es"),
			submitted:      "Es",
			wantCorrect:    true,
			wantNormalized: "Es",
		},
		{
			name:           "case insensitive",
			question:       textQuestion(models.FillBlank, "Es"),
			submitted:      "ES",
			wantCorrect:    true,
			wantNormalized: "ES",
		},
		{
			name:           "surrounding whitespace trimmed",
			question:       textQuestion(models.TextAnswer, "Answer"),
			submitted:      "  Answer  ",
			wantCorrect:    true,
			wantNormalized: "Answer",
		},
		{
			name:           "set membership any member",
			question:       textQuestion(models.FillBlank, "Es", "es"),
			submitted:      "ES",
			wantCorrect:    true,
			wantNormalized: "ES",
		},
		{
			name:           "near miss is a miss",
			question:       textQuestion(models.FillBlank, "Es"),
			submitted:      "no",
			wantCorrect:    false,
			wantNormalized: "no",
		},
		{
			name:           "internal whitespace is not collapsed",
			question:       textQuestion(models.TextAnswer, "two words"),
			submitted:      "two  words",
			wantCorrect:    false,
			wantNormalized: "two  words",
		},
		{
			name:           "whitespace only normalizes to empty",
			question:       textQuestion(models.FillBlank, "Es"),
			submitted:      "   ",
			wantCorrect:    false,
			wantNormalized: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, err := e.Evaluate(tt.question, tt.submitted)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if verdict.IsCorrect != tt.wantCorrect {
				t.Errorf("IsCorrect = %v, expected %v", verdict.IsCorrect, tt.wantCorrect)
			}
			if verdict.NormalizedAnswer != tt.wantNormalized {
				t.Errorf("NormalizedAnswer = %q, expected %q", verdict.NormalizedAnswer, tt.wantNormalized)
			}
		})
	}
}

func TestEvaluateCaseVariantsAgree(t *testing.T) {
	e := New()
	q := textQuestion(models.TextAnswer, "Answer")

	base, _ := e.Evaluate(q, "Answer")
	for _, submitted := range []string{"  Answer  ", "answer", "ANSWER"} {
		verdict, err := e.Evaluate(q, submitted)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if verdict.IsCorrect != base.IsCorrect {
			t.Errorf("%q graded differently from %q", submitted, "Answer")
		}
	}
}

func TestEvaluateUnknownType(t *testing.T) {
	e := New()
	_, err := e.Evaluate(models.Question{ID: "q1", Type: "essay", AnswerKey: models.AnswerKey{"x"}}, "x")
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
}

type alwaysRight struct{}

func (alwaysRight) Evaluate(models.Question, string) Verdict {
	return Verdict{IsCorrect: true}
}

func TestWithStrategyOverride(t *testing.T) {
	e := New(WithStrategy(models.FillBlank, alwaysRight{}))
	verdict, err := e.Evaluate(textQuestion(models.FillBlank, "Es"), "wrong")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !verdict.IsCorrect {
		t.Errorf("override strategy was not used")
	}
}
