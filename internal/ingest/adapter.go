package ingest

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"github.com/worksheetlab/worksheet-service/internal/models"
	"github.com/worksheetlab/worksheet-service/internal/utils"
)

// Upload is one file submitted for parsing.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Adapter converts an upload into a normalized worksheet: encode the file,
// pick the transport for its media type, call the parsing service, and
// normalize the response. One ingestion may run per session at a time;
// a second upload while the first is in flight is rejected rather than
// being allowed to race it.
type Adapter struct {
	image     Transport
	pdf       Transport
	validator *utils.QuestionValidator
	logger    utils.Logger

	mu       sync.Mutex
	inflight map[string]bool
}

func NewAdapter(image, pdf Transport, validator *utils.QuestionValidator, logger utils.Logger) *Adapter {
	return &Adapter{
		image:     image,
		pdf:       pdf,
		validator: validator,
		logger:    logger,
		inflight:  make(map[string]bool),
	}
}

// EncodeDataURL encodes file content the way the remote contract expects.
func EncodeDataURL(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func (a *Adapter) transportFor(upload Upload) (Transport, error) {
	contentType := strings.ToLower(strings.TrimSpace(upload.ContentType))
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return a.image, nil
	case contentType == "application/pdf":
		return a.pdf, nil
	case strings.HasSuffix(strings.ToLower(upload.Filename), ".pdf"):
		return a.pdf, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, upload.ContentType)
	}
}

func (a *Adapter) begin(sessionID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.inflight[sessionID] {
		return false
	}
	a.inflight[sessionID] = true
	return true
}

func (a *Adapter) end(sessionID string) {
	a.mu.Lock()
	delete(a.inflight, sessionID)
	a.mu.Unlock()
}

// Ingest parses one upload for the given session.
func (a *Adapter) Ingest(ctx context.Context, sessionID string, upload Upload) (*models.Worksheet, error) {
	if len(upload.Data) == 0 {
		return nil, ErrEmptyFile
	}

	transport, err := a.transportFor(upload)
	if err != nil {
		return nil, err
	}

	if !a.begin(sessionID) {
		return nil, ErrIngestionInProgress
	}
	defer a.end(sessionID)

	a.logger.InfoContext(ctx, "ingesting worksheet",
		"session_id", sessionID,
		"transport", transport.Name(),
		"filename", upload.Filename,
		"size_bytes", len(upload.Data))

	req := ParseRequest{
		Image:    EncodeDataURL(upload.ContentType, upload.Data),
		FileType: upload.ContentType,
	}

	body, err := transport.Parse(ctx, req)
	if err != nil {
		a.logger.LogError(err, "worksheet parse call failed",
			"session_id", sessionID, "transport", transport.Name())
		return nil, err
	}

	worksheet, err := NormalizeResponse(body)
	if err != nil {
		a.logger.LogError(err, "worksheet response not usable",
			"session_id", sessionID, "transport", transport.Name())
		return nil, err
	}

	if err := a.validator.ValidateWorksheet(worksheet); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormatNotRecognized, err)
	}

	a.logger.InfoContext(ctx, "worksheet ingested",
		"session_id", sessionID,
		"worksheet_id", worksheet.ID,
		"title", worksheet.Title,
		"sections", len(worksheet.Sections),
		"questions", worksheet.TotalQuestions())
	return worksheet, nil
}
