package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple-choice"
	TextAnswer     QuestionType = "text"
	FillBlank      QuestionType = "fill-blank"
	Matching       QuestionType = "matching"
)

func (t QuestionType) IsValid() bool {
	switch t {
	case MultipleChoice, TextAnswer, FillBlank, Matching:
		return true
	}
	return false
}

// UsesOptions reports whether answers for this type reference an option id.
func (t QuestionType) UsesOptions() bool {
	return t == MultipleChoice || t == Matching
}

type Option struct {
	ID   string `json:"id" validate:"required"`
	Text string `json:"text" validate:"required"`
}

// AnswerKey holds the accepted answers for a question. The parsing service
// emits either a bare string or an array of strings; both decode into the
// same slice, and a single-member key marshals back to a bare string.
type AnswerKey []string

func (k *AnswerKey) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*k = AnswerKey{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("answer key must be a string or an array of strings: %w", err)
	}
	*k = AnswerKey(many)
	return nil
}

func (k AnswerKey) MarshalJSON() ([]byte, error) {
	if len(k) == 1 {
		return json.Marshal(k[0])
	}
	return json.Marshal([]string(k))
}

// Contains reports exact, case-sensitive membership.
func (k AnswerKey) Contains(answer string) bool {
	for _, accepted := range k {
		if accepted == answer {
			return true
		}
	}
	return false
}

func (k AnswerKey) Join(sep string) string {
	return strings.Join(k, sep)
}

// Response records a graded submission. Answer and IsCorrect always appear
// together: evaluation sets both in one step or the response stays nil.
type Response struct {
	Answer    string `json:"answer"`
	IsCorrect bool   `json:"is_correct"`
}

type Question struct {
	ID        string       `json:"id" validate:"required"`
	Type      QuestionType `json:"type" validate:"required,question_type"`
	Prompt    string       `json:"prompt" validate:"required"`
	Options   []Option     `json:"options,omitempty"`
	AnswerKey AnswerKey    `json:"answer_key" validate:"required,min=1"`
	Response  *Response    `json:"response,omitempty"`
}

func (q *Question) Answered() bool {
	return q.Response != nil
}

// OptionText resolves an option id to its display text. Falls back to the
// id itself for free-text answers and unknown ids.
func (q *Question) OptionText(id string) string {
	for _, opt := range q.Options {
		if opt.ID == id {
			return opt.Text
		}
	}
	return id
}

type Section struct {
	ID           string     `json:"id" validate:"required"`
	Title        string     `json:"title" validate:"required"`
	Instructions string     `json:"instructions"`
	Questions    []Question `json:"questions" validate:"required,min=1,dive"`
}

type Worksheet struct {
	ID          string    `json:"id" validate:"required"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description,omitempty"`
	Sections    []Section `json:"sections" validate:"required,min=1,dive"`
}

// AllQuestions flattens the worksheet in section order, question order
// within section. Navigation and reporting index into this sequence.
func (w *Worksheet) AllQuestions() []Question {
	var questions []Question
	for _, section := range w.Sections {
		questions = append(questions, section.Questions...)
	}
	return questions
}

func (w *Worksheet) TotalQuestions() int {
	total := 0
	for _, section := range w.Sections {
		total += len(section.Questions)
	}
	return total
}

func (w *Worksheet) AnsweredQuestions() int {
	count := 0
	for _, section := range w.Sections {
		for _, q := range section.Questions {
			if q.Answered() {
				count++
			}
		}
	}
	return count
}

func (w *Worksheet) CorrectAnswers() int {
	count := 0
	for _, section := range w.Sections {
		for _, q := range section.Questions {
			if q.Response != nil && q.Response.IsCorrect {
				count++
			}
		}
	}
	return count
}

// FindQuestion returns a copy of the first question with the given id.
// Ids are unique within one worksheet, so first match is the match.
func (w *Worksheet) FindQuestion(id string) (Question, bool) {
	for _, section := range w.Sections {
		for _, q := range section.Questions {
			if q.ID == id {
				return q, true
			}
		}
	}
	return Question{}, false
}

// QuestionAt walks the flattened sequence and returns the question at the
// given index together with its owning section.
func (w *Worksheet) QuestionAt(index int) (Question, Section, bool) {
	if index < 0 {
		return Question{}, Section{}, false
	}
	offset := index
	for _, section := range w.Sections {
		if offset < len(section.Questions) {
			return section.Questions[offset], section, true
		}
		offset -= len(section.Questions)
	}
	return Question{}, Section{}, false
}

// WithAnswer produces a new worksheet value with exactly one question's
// response replaced. The second return is false when the id is unknown,
// in which case the receiver is returned unchanged. Questions themselves
// never mutate in place.
func (w *Worksheet) WithAnswer(questionID, answer string, isCorrect bool) (*Worksheet, bool) {
	for si, section := range w.Sections {
		for qi, q := range section.Questions {
			if q.ID != questionID {
				continue
			}
			updated := *w
			updated.Sections = make([]Section, len(w.Sections))
			copy(updated.Sections, w.Sections)

			questions := make([]Question, len(section.Questions))
			copy(questions, section.Questions)
			questions[qi].Response = &Response{Answer: answer, IsCorrect: isCorrect}
			updated.Sections[si].Questions = questions
			return &updated, true
		}
	}
	return w, false
}

// TimestampLayout is the human-readable form student info carries into
// the report header.
const TimestampLayout = "Jan 2, 2006 3:04 PM"

type StudentInfo struct {
	Name      string `json:"name" validate:"required,min=1,max=120"`
	Timestamp string `json:"timestamp"`
}

func NewStudentInfo(name string) *StudentInfo {
	return &StudentInfo{
		Name:      strings.TrimSpace(name),
		Timestamp: time.Now().Format(TimestampLayout),
	}
}
