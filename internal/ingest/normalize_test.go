package ingest

import (
	"errors"
	"testing"

	"github.com/worksheetlab/worksheet-service/internal/models"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain json untouched",
			input: `{"worksheet": null}`,
			want:  `{"worksheet": null}`,
		},
		{
			name:  "json fence",
			input: "```json\n{\"a\":1}\n```",
			want:  `{"a":1}`,
		},
		{
			name:  "bare fence",
			input: "```\n{\"a\":1}\n```",
			want:  `{"a":1}`,
		},
		{
			name:  "surrounding whitespace",
			input: "  \n```json\n{\"a\":1}\n```\n  ",
			want:  `{"a":1}`,
		},
		{
			name:  "single line fence",
			input: "```json{\"a\":1}```",
			want:  `{"a":1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFences(tt.input); got != tt.want {
				t.Errorf("StripCodeFences(%q) = %q, expected %q", tt.input, got, tt.want)
			}
		})
	}
}

const sampleResponse = `{
  "worksheet": {
    "title": "Spanish Basics",
    "description": "Practice worksheet",
    "sections": [
      {
        "title": "Vocabulary",
        "instructionsText": "Choose the best answer.",
        "questions": [
          {
            "type": "multiple_choice",
            "promptText": "How do you say hello?",
            "options": [
              {"displayText": "Adiós"},
              {"displayText": "Hola"},
              {"displayText": "Gracias"}
            ],
            "correctAnswer": "b"
          }
        ]
      },
      {
        "title": "Fill in the blank",
        "instructions": "Complete each sentence.",
        "questions": [
          {
            "type": "fill-blank",
            "prompt": "___ un placer.",
            "correctAnswer": ["Es", "es"]
          },
          {
            "type": "text",
            "promptText": "Translate: thank you",
            "options": [{"displayText": "noise"}],
            "correctAnswer": "gracias"
          }
        ]
      }
    ]
  }
}`

func TestNormalizeResponse(t *testing.T) {
	worksheet, err := NormalizeResponse([]byte(sampleResponse))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if worksheet.ID == "" {
		t.Errorf("worksheet id was not backfilled")
	}
	if worksheet.Title != "Spanish Basics" {
		t.Errorf("unexpected title %q", worksheet.Title)
	}
	if len(worksheet.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(worksheet.Sections))
	}

	// Every entity gets a non-empty unique id.
	ids := map[string]bool{worksheet.ID: true}
	for _, section := range worksheet.Sections {
		if section.ID == "" {
			t.Errorf("section %q id was not backfilled", section.Title)
		}
		if ids[section.ID] {
			t.Errorf("duplicate id %q", section.ID)
		}
		ids[section.ID] = true
		for _, q := range section.Questions {
			if q.ID == "" {
				t.Errorf("question %q id was not backfilled", q.Prompt)
			}
			if ids[q.ID] {
				t.Errorf("duplicate id %q", q.ID)
			}
			ids[q.ID] = true
		}
	}

	// Section and question order preserved.
	if worksheet.Sections[0].Title != "Vocabulary" || worksheet.Sections[1].Title != "Fill in the blank" {
		t.Errorf("section order changed: %q, %q", worksheet.Sections[0].Title, worksheet.Sections[1].Title)
	}

	mc := worksheet.Sections[0].Questions[0]
	if mc.Type != models.MultipleChoice {
		t.Errorf("underscore type not canonicalized, got %q", mc.Type)
	}
	if len(mc.Options) != 3 {
		t.Fatalf("expected 3 options, got %d", len(mc.Options))
	}
	for i, wantID := range []string{"a", "b", "c"} {
		if mc.Options[i].ID != wantID {
			t.Errorf("option %d: expected letter id %q, got %q", i, wantID, mc.Options[i].ID)
		}
	}
	if mc.Options[1].Text != "Hola" {
		t.Errorf("displayText not carried, got %q", mc.Options[1].Text)
	}
	if len(mc.AnswerKey) != 1 || mc.AnswerKey[0] != "b" {
		t.Errorf("string answer key mishandled: %v", mc.AnswerKey)
	}

	fill := worksheet.Sections[1].Questions[0]
	if fill.Prompt != "___ un placer." {
		t.Errorf("prompt alias not honored, got %q", fill.Prompt)
	}
	if len(fill.AnswerKey) != 2 {
		t.Errorf("array answer key mishandled: %v", fill.AnswerKey)
	}

	text := worksheet.Sections[1].Questions[1]
	if len(text.Options) != 0 {
		t.Errorf("options on a free-text question should be dropped, got %v", text.Options)
	}
}

func TestNormalizeResponseFenced(t *testing.T) {
	fenced := "```json\n" + sampleResponse + "\n```"
	worksheet, err := NormalizeResponse([]byte(fenced))
	if err != nil {
		t.Fatalf("fenced response should normalize, got: %v", err)
	}
	if worksheet.TotalQuestions() != 3 {
		t.Errorf("expected 3 questions, got %d", worksheet.TotalQuestions())
	}
}

func TestNormalizeResponseErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{
			name:    "invalid json",
			body:    "this is not json",
			wantErr: ErrInvalidResponse,
		},
		{
			name:    "remote reported error",
			body:    `{"error": "could not read the image"}`,
			wantErr: ErrRemoteError,
		},
		{
			name:    "missing worksheet field",
			body:    `{"something": "else"}`,
			wantErr: ErrFormatNotRecognized,
		},
		{
			name:    "null worksheet",
			body:    `{"worksheet": null}`,
			wantErr: ErrFormatNotRecognized,
		},
		{
			name: "unknown question type",
			body: `{"worksheet": {"title": "T", "sections": [
				{"title": "S", "questions": [{"type": "essay", "promptText": "Write", "correctAnswer": "x"}]}
			]}}`,
			wantErr: ErrFormatNotRecognized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeResponse([]byte(tt.body))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLetterID(t *testing.T) {
	if got := letterID(0); got != "a" {
		t.Errorf("letterID(0) = %q", got)
	}
	if got := letterID(25); got != "z" {
		t.Errorf("letterID(25) = %q", got)
	}
	if got := letterID(26); got != "opt-27" {
		t.Errorf("letterID(26) = %q", got)
	}
}
