package model

import "errors"

const (
	ErrCodeDatasetNotFound   = "DS001"
	ErrCodeInvalidForm       = "DS002"
	ErrCodeNoAuthors         = "DS003"
	ErrCodeUploadMissing     = "DS004"
	ErrCodeForbidden         = "DS005"
	ErrCodeExportFailed      = "DS006"
	ErrCodeHubfileNotFound   = "DS007"
	ErrCodePersistenceFailed = "DS008"
)

var (
	ErrDatasetNotFound    = errors.New("dataset not found")
	ErrDSMetaDataNotFound = errors.New("dataset metadata not found")
	ErrHubfileNotFound    = errors.New("file not found")
	ErrNoAuthors          = errors.New("dataset must have at least one author")
	ErrNoFeatureModels    = errors.New("dataset must have at least one feature model")
	ErrUploadMissing      = errors.New("uploaded file not found in temporary folder")
	ErrInvalidFilename    = errors.New("invalid file name")
	ErrForbidden          = errors.New("dataset does not belong to user")
)

// DataSetError carries an API code next to the underlying cause.
type DataSetError struct {
	Code    string
	Message string
	Err     error
}

func (e *DataSetError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DataSetError) Unwrap() error {
	return e.Err
}

func NewDataSetError(code, message string, err error) *DataSetError {
	return &DataSetError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ToHTTPStatus maps domain errors to status codes.
func ToHTTPStatus(err error) int {
	var dsErr *DataSetError
	if errors.As(err, &dsErr) && dsErr.Code == ErrCodeInvalidForm {
		return 400
	}

	switch {
	case errors.Is(err, ErrDatasetNotFound), errors.Is(err, ErrDSMetaDataNotFound), errors.Is(err, ErrHubfileNotFound):
		return 404
	case errors.Is(err, ErrForbidden):
		return 403
	case errors.Is(err, ErrNoAuthors), errors.Is(err, ErrNoFeatureModels),
		errors.Is(err, ErrUploadMissing), errors.Is(err, ErrInvalidFilename):
		return 400
	default:
		return 500
	}
}
