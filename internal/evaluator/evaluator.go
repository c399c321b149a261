package evaluator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/worksheetlab/worksheet-service/internal/models"
)

var ErrUnsupportedType = errors.New("unsupported question type")

// Verdict is the outcome of evaluating a single submission.
type Verdict struct {
	NormalizedAnswer string `json:"normalized_answer"`
	IsCorrect        bool   `json:"is_correct"`
}

// Strategy grades one submitted answer against a question's answer key.
type Strategy interface {
	Evaluate(q models.Question, submitted string) Verdict
}

// Evaluator routes by question type to the correct Strategy. Evaluation is
// a pure computation: callers decide whether to persist the verdict.
type Evaluator interface {
	Evaluate(q models.Question, submitted string) (Verdict, error)
}

type defaultEvaluator struct {
	strategies map[models.QuestionType]Strategy
}

func (e *defaultEvaluator) Evaluate(q models.Question, submitted string) (Verdict, error) {
	strategy, ok := e.strategies[q.Type]
	if !ok {
		return Verdict{}, fmt.Errorf("%w: %s", ErrUnsupportedType, q.Type)
	}
	return strategy.Evaluate(q, submitted), nil
}

type Option func(*defaultEvaluator)

// WithStrategy overrides or adds the strategy for one question type.
func WithStrategy(t models.QuestionType, s Strategy) Option {
	return func(e *defaultEvaluator) { e.strategies[t] = s }
}

// New installs the built-in strategies: exact option-id matching for
// option-backed types, trimmed case-insensitive matching for free text.
func New(opts ...Option) Evaluator {
	e := &defaultEvaluator{
		strategies: map[models.QuestionType]Strategy{
			models.MultipleChoice: optionKeyStrategy{},
			models.Matching:       optionKeyStrategy{},
			models.TextAnswer:     freeTextStrategy{},
			models.FillBlank:      freeTextStrategy{},
		},
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// optionKeyStrategy compares submitted option ids exactly. Ids are short
// machine-generated tokens, so case matters.
type optionKeyStrategy struct{}

func (optionKeyStrategy) Evaluate(q models.Question, submitted string) Verdict {
	return Verdict{
		NormalizedAnswer: submitted,
		IsCorrect:        q.AnswerKey.Contains(submitted),
	}
}

// freeTextStrategy trims the submission and accepts a case-insensitive
// match against any answer-key member. No partial credit, no fuzzy
// matching: a near miss is a miss.
type freeTextStrategy struct{}

func (freeTextStrategy) Evaluate(q models.Question, submitted string) Verdict {
	normalized := strings.TrimSpace(submitted)
	for _, accepted := range q.AnswerKey {
		if strings.EqualFold(normalized, accepted) {
			return Verdict{NormalizedAnswer: normalized, IsCorrect: true}
		}
	}
	return Verdict{NormalizedAnswer: normalized, IsCorrect: false}
}
