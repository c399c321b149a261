package models

import "math"

// ScorePercent rounds correct/total to a whole percentage. An empty
// worksheet scores 0, never NaN.
func ScorePercent(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// EarlyFinishThreshold is the minimum number of answered questions before
// a session may finish early: at least half, rounded up.
func EarlyFinishThreshold(total int) int {
	return (total + 1) / 2
}

type QuestionResult struct {
	Prompt          string       `json:"prompt"`
	Type            QuestionType `json:"type"`
	Answered        bool         `json:"answered"`
	GivenAnswer     string       `json:"given_answer,omitempty"`
	IsCorrect       bool         `json:"is_correct"`
	AcceptedAnswers string       `json:"accepted_answers"`
}

type SectionResult struct {
	Title     string           `json:"title"`
	Questions []QuestionResult `json:"questions"`
}

type ReportSummary struct {
	StudentName       string          `json:"student_name"`
	Timestamp         string          `json:"timestamp"`
	WorksheetTitle    string          `json:"worksheet_title"`
	TotalQuestions    int             `json:"total_questions"`
	AnsweredQuestions int             `json:"answered_questions"`
	CorrectAnswers    int             `json:"correct_answers"`
	ScorePercent      int             `json:"score_percent"`
	Sections          []SectionResult `json:"sections"`
}

type Progress struct {
	TotalQuestions       int  `json:"total_questions"`
	AnsweredQuestions    int  `json:"answered_questions"`
	CorrectAnswers       int  `json:"correct_answers"`
	CurrentIndex         int  `json:"current_index"`
	Completed            bool `json:"completed"`
	EarlyFinishEligible  bool `json:"early_finish_eligible"`
	EarlyFinishThreshold int  `json:"early_finish_threshold"`
}

type CurrentQuestion struct {
	Question            Question `json:"question"`
	SectionTitle        string   `json:"section_title"`
	SectionInstructions string   `json:"section_instructions,omitempty"`
	Index               int      `json:"index"`
	Total               int      `json:"total"`
}
