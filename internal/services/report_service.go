package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/worksheetlab/worksheet-service/internal/events"
	"github.com/worksheetlab/worksheet-service/internal/models"
	"github.com/worksheetlab/worksheet-service/internal/store"
)

const (
	pdfContentType  = "application/pdf"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ReportService produces the scored report for a completed session: the
// summary view, a printable PDF, an XLSX export, and a one-line share
// text. Reports never mutate session state.
type ReportService interface {
	BuildSummary(ctx context.Context, sessionID string) (*models.ReportSummary, error)
	RenderPDF(ctx context.Context, sessionID string) (*ReportFile, error)
	ExportXLSX(ctx context.Context, sessionID string) (*ReportFile, error)
	ShareText(ctx context.Context, sessionID string) (string, error)
}

// ReportFile is a rendered report ready for download.
type ReportFile struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}

type reportService struct {
	store     store.SessionStore
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewReportService(sessionStore store.SessionStore, publisher events.EventPublisher, logger *slog.Logger) ReportService {
	return &reportService{
		store:     sessionStore,
		publisher: publisher,
		logger:    logger,
	}
}

// ===== SUMMARY =====

func (s *reportService) BuildSummary(ctx context.Context, sessionID string) (*models.ReportSummary, error) {
	worksheet, student, err := s.loadReportState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return buildSummary(worksheet, student), nil
}

// buildSummary flattens the graded worksheet into the report view. Answers
// on option-backed questions render as display text, never bare option
// ids; accepted answers are listed only next to missed questions.
func buildSummary(worksheet *models.Worksheet, student *models.StudentInfo) *models.ReportSummary {
	summary := &models.ReportSummary{
		StudentName:       student.Name,
		Timestamp:         student.Timestamp,
		WorksheetTitle:    worksheet.Title,
		TotalQuestions:    worksheet.TotalQuestions(),
		AnsweredQuestions: worksheet.AnsweredQuestions(),
		CorrectAnswers:    worksheet.CorrectAnswers(),
		Sections:          make([]models.SectionResult, 0, len(worksheet.Sections)),
	}
	summary.ScorePercent = models.ScorePercent(summary.CorrectAnswers, summary.TotalQuestions)

	for _, section := range worksheet.Sections {
		sectionResult := models.SectionResult{
			Title:     section.Title,
			Questions: make([]models.QuestionResult, 0, len(section.Questions)),
		}
		for _, question := range section.Questions {
			result := models.QuestionResult{
				Prompt: question.Prompt,
				Type:   question.Type,
			}
			if question.Response != nil {
				result.Answered = true
				result.GivenAnswer = displayAnswer(question, question.Response.Answer)
				result.IsCorrect = question.Response.IsCorrect
			}
			if !result.IsCorrect {
				result.AcceptedAnswers = acceptedAnswers(question)
			}
			sectionResult.Questions = append(sectionResult.Questions, result)
		}
		summary.Sections = append(summary.Sections, sectionResult)
	}

	return summary
}

// ===== PDF =====

func (s *reportService) RenderPDF(ctx context.Context, sessionID string) (*ReportFile, error) {
	worksheet, student, err := s.loadReportState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	summary := buildSummary(worksheet, student)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.MultiCell(0, 9, tr(summary.WorksheetTitle), "", "C", false)
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 6, tr(summary.StudentName+"  |  "+summary.Timestamp), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	// Score block
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 8, fmt.Sprintf("Score: %d%% (%d/%d)", summary.ScorePercent, summary.CorrectAnswers, summary.TotalQuestions), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	for _, section := range summary.Sections {
		pdf.SetFont("Arial", "B", 12)
		pdf.MultiCell(0, 7, tr(section.Title), "", "L", false)
		pdf.Ln(1)

		for i, question := range section.Questions {
			pdf.SetFont("Arial", "", 11)
			pdf.MultiCell(0, 6, tr(fmt.Sprintf("%d. %s", i+1, question.Prompt)), "", "L", false)

			answerLine := "Your answer: (not answered)"
			if question.Answered {
				answerLine = "Your answer: " + question.GivenAnswer
			}
			verdict := "Incorrect"
			if question.IsCorrect {
				verdict = "Correct"
			}

			pdf.SetFont("Arial", "I", 10)
			pdf.MultiCell(0, 5, tr(answerLine+"  ["+verdict+"]"), "", "L", false)
			if question.AcceptedAnswers != "" {
				pdf.MultiCell(0, 5, tr("Accepted: "+question.AcceptedAnswers), "", "L", false)
			}
			pdf.Ln(2)
		}
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	file := &ReportFile{
		Filename:    reportFilename(summary, "pdf"),
		ContentType: pdfContentType,
		Data:        buf.Bytes(),
	}

	s.publishEvent(ctx, events.NewReportGeneratedEvent(sessionID, worksheet.ID, "pdf", file.Filename, summary.ScorePercent))
	s.logger.Info("Report PDF rendered",
		"session_id", sessionID,
		"filename", file.Filename,
		"size_bytes", len(file.Data))

	return file, nil
}

// ===== XLSX =====

func (s *reportService) ExportXLSX(ctx context.Context, sessionID string) (*ReportFile, error) {
	worksheet, student, err := s.loadReportState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	summary := buildSummary(worksheet, student)

	f := excelize.NewFile()
	defer f.Close()

	summarySheet := "Summary"
	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	summaryRows := [][]interface{}{
		{"Student", summary.StudentName},
		{"Date", summary.Timestamp},
		{"Worksheet", summary.WorksheetTitle},
		{"Total Questions", summary.TotalQuestions},
		{"Answered", summary.AnsweredQuestions},
		{"Correct", summary.CorrectAnswers},
		{"Score (%)", summary.ScorePercent},
	}
	for i, row := range summaryRows {
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, i+1)
			f.SetCellValue(summarySheet, cell, value)
		}
	}

	questionsSheet := "Questions"
	if _, err := f.NewSheet(questionsSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	headers := []string{"Section", "Question", "Your Answer", "Accepted Answers", "Result"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(questionsSheet, cell, header)
	}

	rowIndex := 0
	for _, section := range summary.Sections {
		for _, question := range section.Questions {
			verdict := "Not answered"
			if question.Answered {
				verdict = "Incorrect"
				if question.IsCorrect {
					verdict = "Correct"
				}
			}
			row := []interface{}{
				section.Title,
				question.Prompt,
				question.GivenAnswer,
				question.AcceptedAnswers,
				verdict,
			}
			for colIndex, value := range row {
				cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
				f.SetCellValue(questionsSheet, cell, value)
			}
			rowIndex++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	file := &ReportFile{
		Filename:    reportFilename(summary, "xlsx"),
		ContentType: xlsxContentType,
		Data:        buf.Bytes(),
	}

	s.publishEvent(ctx, events.NewReportGeneratedEvent(sessionID, worksheet.ID, "xlsx", file.Filename, summary.ScorePercent))
	s.logger.Info("Report XLSX exported",
		"session_id", sessionID,
		"filename", file.Filename,
		"size_bytes", len(file.Data))

	return file, nil
}

// ===== SHARE TEXT =====

func (s *reportService) ShareText(ctx context.Context, sessionID string) (string, error) {
	worksheet, student, err := s.loadReportState(ctx, sessionID)
	if err != nil {
		return "", err
	}

	total := worksheet.TotalQuestions()
	correct := worksheet.CorrectAnswers()
	return fmt.Sprintf("I scored %d%% (%d/%d) on %s - %s",
		models.ScorePercent(correct, total), correct, total, worksheet.Title, student.Name), nil
}

// ===== HELPERS =====

// loadReportState gates every report operation: a worksheet must be
// loaded, the session completed, and student info saved.
func (s *reportService) loadReportState(ctx context.Context, sessionID string) (*models.Worksheet, *models.StudentInfo, error) {
	worksheet, err := s.store.GetWorksheet(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrWorksheetNotLoaded
		}
		return nil, nil, fmt.Errorf("failed to get worksheet: %w", err)
	}

	completed, err := s.store.IsCompleted(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get completion flag: %w", err)
	}
	if !completed {
		return nil, nil, ErrSessionNotCompleted
	}

	student, err := s.store.GetStudentInfo(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrStudentInfoMissing
		}
		return nil, nil, fmt.Errorf("failed to get student info: %w", err)
	}

	return worksheet, student, nil
}

func (s *reportService) publishEvent(ctx context.Context, event *events.SessionEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSessionEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish session event",
			"event_type", event.Type,
			"event_id", event.ID,
			"error", err)
	}
}

func displayAnswer(q models.Question, answer string) string {
	if q.Type.UsesOptions() {
		return q.OptionText(answer)
	}
	return answer
}

func acceptedAnswers(q models.Question) string {
	if q.Type.UsesOptions() {
		texts := make([]string, 0, len(q.AnswerKey))
		for _, id := range q.AnswerKey {
			texts = append(texts, q.OptionText(id))
		}
		return strings.Join(texts, ", ")
	}
	return q.AnswerKey.Join(", ")
}

// reportFilename builds "<student>_<title>.<ext>" with whitespace runs
// collapsed to underscores.
func reportFilename(summary *models.ReportSummary, ext string) string {
	base := summary.StudentName + " " + summary.WorksheetTitle
	return strings.Join(strings.Fields(base), "_") + "." + ext
}
