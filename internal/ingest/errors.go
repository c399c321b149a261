package ingest

import "errors"

// Ingestion failures are distinct and user-displayable; none of them are
// fatal and none are retried automatically. The user resubmits.
var (
	// ErrEmptyFile means the upload carried no content.
	ErrEmptyFile = errors.New("uploaded file is empty")

	// ErrUnsupportedFileType means the upload is neither an image nor a PDF.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrServiceUnreachable means no parsing endpoint could be reached.
	ErrServiceUnreachable = errors.New("parsing service unreachable")

	// ErrRemoteStatus means the parsing service answered with a non-2xx code.
	ErrRemoteStatus = errors.New("parsing service returned an error status")

	// ErrRemoteError means the parsing service answered 2xx but reported a
	// failure in its response body.
	ErrRemoteError = errors.New("parsing service reported an error")

	// ErrInvalidResponse means the response body was not decodable JSON.
	ErrInvalidResponse = errors.New("parsing service response is not valid JSON")

	// ErrFormatNotRecognized means the response decoded but did not contain
	// a usable worksheet.
	ErrFormatNotRecognized = errors.New("worksheet format not recognized")

	// ErrParseTimeout means PDF processing exceeded its deadline. The user
	// should try a smaller file.
	ErrParseTimeout = errors.New("worksheet processing timed out")

	// ErrIngestionInProgress means another upload for the same session is
	// still being parsed.
	ErrIngestionInProgress = errors.New("an ingestion for this session is already in progress")
)
