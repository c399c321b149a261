package ingest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/worksheetlab/worksheet-service/internal/models"
)

// Raw shapes as the parsing service emits them, before id backfill. Field
// names follow the AI contract; a few aliases are tolerated because the
// upstream model is not perfectly consistent.

type rawOption struct {
	ID          string `json:"id"`
	DisplayText string `json:"displayText"`
	Text        string `json:"text"`
}

type rawQuestion struct {
	ID            string           `json:"id"`
	Type          string           `json:"type"`
	PromptText    string           `json:"promptText"`
	Prompt        string           `json:"prompt"`
	Options       []rawOption      `json:"options"`
	CorrectAnswer models.AnswerKey `json:"correctAnswer"`
}

type rawSection struct {
	ID               string        `json:"id"`
	Title            string        `json:"title"`
	InstructionsText string        `json:"instructionsText"`
	Instructions     string        `json:"instructions"`
	Questions        []rawQuestion `json:"questions"`
}

type rawWorksheet struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Sections    []rawSection `json:"sections"`
}

type parseEnvelope struct {
	Worksheet *rawWorksheet `json:"worksheet"`
	Error     string        `json:"error"`
}

// StripCodeFences removes a markdown code-fence wrapper the AI sometimes
// leaves around its JSON output.
func StripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	if i := strings.Index(trimmed, "\n"); i >= 0 {
		trimmed = trimmed[i+1:]
	} else {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
	}
	trimmed = strings.TrimSpace(trimmed)
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}

// canonicalType maps the type strings the AI emits onto the closed enum.
// Underscore spellings of the four known types count as formatting noise.
func canonicalType(raw string) (models.QuestionType, bool) {
	t := models.QuestionType(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "_", "-"))
	if t.IsValid() {
		return t, true
	}
	return "", false
}

// NormalizeResponse turns a raw parsing-service response body into a
// worksheet with every entity carrying a non-empty id: fresh UUIDs for the
// worksheet, sections and questions, and sequential letter ids for options
// that arrived without one. The rest of the system relies on this backfill.
func NormalizeResponse(body []byte) (*models.Worksheet, error) {
	text := StripCodeFences(string(body))

	var envelope parseEnvelope
	if err := json.Unmarshal([]byte(text), &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if envelope.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrRemoteError, envelope.Error)
	}
	if envelope.Worksheet == nil {
		return nil, ErrFormatNotRecognized
	}

	raw := envelope.Worksheet
	worksheet := &models.Worksheet{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(raw.Title),
		Description: strings.TrimSpace(raw.Description),
	}

	for _, rs := range raw.Sections {
		section := models.Section{
			ID:           uuid.NewString(),
			Title:        strings.TrimSpace(rs.Title),
			Instructions: strings.TrimSpace(firstNonEmpty(rs.InstructionsText, rs.Instructions)),
		}

		for _, rq := range rs.Questions {
			questionType, ok := canonicalType(rq.Type)
			if !ok {
				return nil, fmt.Errorf("%w: unknown question type %q", ErrFormatNotRecognized, rq.Type)
			}

			question := models.Question{
				ID:        uuid.NewString(),
				Type:      questionType,
				Prompt:    strings.TrimSpace(firstNonEmpty(rq.PromptText, rq.Prompt)),
				AnswerKey: rq.CorrectAnswer,
			}

			// Options only exist on option-backed types; anything the AI
			// attached to a free-text question is noise.
			if questionType.UsesOptions() {
				question.Options = normalizeOptions(rq.Options)
			}

			section.Questions = append(section.Questions, question)
		}
		worksheet.Sections = append(worksheet.Sections, section)
	}
	return worksheet, nil
}

// normalizeOptions keeps ids the service provided and assigns letters in
// array order to the rest: a, b, c, ...
func normalizeOptions(raw []rawOption) []models.Option {
	options := make([]models.Option, 0, len(raw))
	for i, ro := range raw {
		id := strings.TrimSpace(ro.ID)
		if id == "" {
			id = letterID(i)
		}
		options = append(options, models.Option{
			ID:   id,
			Text: strings.TrimSpace(firstNonEmpty(ro.DisplayText, ro.Text)),
		})
	}
	return options
}

func letterID(index int) string {
	if index < 26 {
		return string(rune('a' + index))
	}
	return fmt.Sprintf("opt-%d", index+1)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
