package models

import (
	"encoding/json"
	"testing"
)

func TestAnswerKeyUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    AnswerKey
		wantErr bool
	}{
		{
			name:  "bare string",
			input: `"Es"`,
			want:  AnswerKey{"Es"},
		},
		{
			name:  "array of strings",
			input: `["Es","es"]`,
			want:  AnswerKey{"Es", "es"},
		},
		{
			name:  "empty array",
			input: `[]`,
			want:  AnswerKey{},
		},
		{
			name:    "number rejected",
			input:   `42`,
			wantErr: true,
		},
		{
			name:    "mixed array rejected",
			input:   `["Es", 2]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var key AnswerKey
			err := json.Unmarshal([]byte(tt.input), &key)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for input %s, got none", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(key) != len(tt.want) {
				t.Fatalf("expected %d members, got %d", len(tt.want), len(key))
			}
			for i := range tt.want {
				if key[i] != tt.want[i] {
					t.Errorf("member %d: expected %q, got %q", i, tt.want[i], key[i])
				}
			}
		})
	}
}

func TestAnswerKeyMarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		key  AnswerKey
		want string
	}{
		{name: "single member as bare string", key: AnswerKey{"b"}, want: `"b"`},
		{name: "multiple members as array", key: AnswerKey{"Es", "es"}, want: `["Es","es"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.key)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("expected %s, got %s", tt.want, string(data))
			}
		})
	}
}

func TestAnswerKeyRoundTripThroughQuestion(t *testing.T) {
	q := Question{
		ID:        "q1",
		Type:      FillBlank,
		Prompt:    "Yo ___ estudiante.",
		AnswerKey: AnswerKey{"soy", "Soy"},
	}

	data, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Question
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(decoded.AnswerKey) != 2 || decoded.AnswerKey[0] != "soy" || decoded.AnswerKey[1] != "Soy" {
		t.Errorf("answer key did not survive the round trip: %v", decoded.AnswerKey)
	}
	if decoded.Response != nil {
		t.Errorf("unanswered question decoded with a response")
	}
}

func TestWorksheetCounts(t *testing.T) {
	w := DemoWorksheet()

	if got := w.TotalQuestions(); got != 10 {
		t.Errorf("expected 10 total questions, got %d", got)
	}
	if got := w.AnsweredQuestions(); got != 0 {
		t.Errorf("fresh worksheet reports %d answered questions", got)
	}
	if got := w.CorrectAnswers(); got != 0 {
		t.Errorf("fresh worksheet reports %d correct answers", got)
	}
	if got := len(w.AllQuestions()); got != 10 {
		t.Errorf("expected 10 flattened questions, got %d", got)
	}
}

func TestAllQuestionsPreservesOrder(t *testing.T) {
	w := DemoWorksheet()
	flat := w.AllQuestions()

	wantOrder := []string{
		"demo-q1", "demo-q2", "demo-q3", "demo-q4", "demo-q5",
		"demo-q6", "demo-q7", "demo-q8", "demo-q9", "demo-q10",
	}
	for i, id := range wantOrder {
		if flat[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, flat[i].ID)
		}
	}
}

func TestQuestionAt(t *testing.T) {
	w := DemoWorksheet()

	q, section, ok := w.QuestionAt(0)
	if !ok || q.ID != "demo-q1" || section.ID != "demo-s1" {
		t.Errorf("index 0: got %s in %s (ok=%v)", q.ID, section.ID, ok)
	}

	q, section, ok = w.QuestionAt(5)
	if !ok || q.ID != "demo-q6" || section.ID != "demo-s2" {
		t.Errorf("index 5 should cross into section 2: got %s in %s (ok=%v)", q.ID, section.ID, ok)
	}

	if _, _, ok := w.QuestionAt(10); ok {
		t.Errorf("index past the end reported ok")
	}
	if _, _, ok := w.QuestionAt(-1); ok {
		t.Errorf("negative index reported ok")
	}
}

func TestWithAnswer(t *testing.T) {
	w := DemoWorksheet()

	updated, changed := w.WithAnswer("demo-q6", "ES", true)
	if !changed {
		t.Fatalf("known question id reported unchanged")
	}
	if w.AnsweredQuestions() != 0 {
		t.Errorf("original worksheet mutated by WithAnswer")
	}

	q, _ := updated.FindQuestion("demo-q6")
	if q.Response == nil {
		t.Fatalf("updated worksheet lost the response")
	}
	if q.Response.Answer != "ES" || !q.Response.IsCorrect {
		t.Errorf("unexpected response: %+v", q.Response)
	}
	if updated.AnsweredQuestions() != 1 || updated.CorrectAnswers() != 1 {
		t.Errorf("counts after answer: answered=%d correct=%d",
			updated.AnsweredQuestions(), updated.CorrectAnswers())
	}

	// Repeating the identical call must not change anything further.
	again, changed := updated.WithAnswer("demo-q6", "ES", true)
	if !changed {
		t.Fatalf("second identical call reported unchanged")
	}
	first := updated.AllQuestions()
	second := again.AllQuestions()
	for i := range first {
		a, b := first[i], second[i]
		if a.ID != b.ID || a.Answered() != b.Answered() {
			t.Errorf("question %s differs after repeated identical answer", a.ID)
		}
		if a.Response != nil && (a.Response.Answer != b.Response.Answer || a.Response.IsCorrect != b.Response.IsCorrect) {
			t.Errorf("response for %s differs after repeated identical answer", a.ID)
		}
	}

	_, changed = w.WithAnswer("no-such-id", "x", false)
	if changed {
		t.Errorf("unknown question id reported changed")
	}
}

func TestScorePercent(t *testing.T) {
	tests := []struct {
		name    string
		correct int
		total   int
		want    int
	}{
		{name: "zero total guards division", correct: 0, total: 0, want: 0},
		{name: "all correct", correct: 10, total: 10, want: 100},
		{name: "rounds up", correct: 2, total: 3, want: 67},
		{name: "rounds down", correct: 1, total: 3, want: 33},
		{name: "half", correct: 5, total: 10, want: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScorePercent(tt.correct, tt.total); got != tt.want {
				t.Errorf("ScorePercent(%d, %d) = %d, expected %d", tt.correct, tt.total, got, tt.want)
			}
		})
	}
}

func TestEarlyFinishThreshold(t *testing.T) {
	tests := []struct {
		total int
		want  int
	}{
		{total: 10, want: 5},
		{total: 9, want: 5},
		{total: 1, want: 1},
		{total: 0, want: 0},
	}

	for _, tt := range tests {
		if got := EarlyFinishThreshold(tt.total); got != tt.want {
			t.Errorf("EarlyFinishThreshold(%d) = %d, expected %d", tt.total, got, tt.want)
		}
	}
}

func TestOptionText(t *testing.T) {
	w := DemoWorksheet()
	q, _ := w.FindQuestion("demo-q1")

	if got := q.OptionText("b"); got != "Hola" {
		t.Errorf("expected option b to resolve to Hola, got %q", got)
	}
	if got := q.OptionText("z"); got != "z" {
		t.Errorf("unknown id should fall back to itself, got %q", got)
	}

	fill, _ := w.FindQuestion("demo-q6")
	if got := fill.OptionText("Es"); got != "Es" {
		t.Errorf("free-text answer should pass through, got %q", got)
	}
}
