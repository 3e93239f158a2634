package app

import (
	"fmt"
	"time"

	"github.com/deploymenttheory/go-sav/internal/disk"
	"github.com/deploymenttheory/go-sav/pkg/services"
)

// DatasetTarget represents the system file selection shared by all commands
type DatasetTarget struct {
	Path       string
	Charset    string
	BufferSize int
}

// Validate ensures the dataset target is valid
func (dt *DatasetTarget) Validate() error {
	if dt.Path == "" {
		return NewError(ErrCodeInvalidInput, "dataset path is required", nil)
	}
	if dt.Charset != "" {
		if _, err := disk.LookupCharset(dt.Charset); err != nil {
			return NewError(ErrCodeInvalidInput, "invalid charset", err)
		}
	}
	if dt.BufferSize < 0 {
		return NewError(ErrCodeInvalidInput, "buffer size must not be negative", nil)
	}
	return nil
}

// OpenOptions converts the target into service options
func (dt *DatasetTarget) OpenOptions(trace func(string)) services.OpenOptions {
	return services.OpenOptions{
		Charset:    dt.Charset,
		BufferSize: dt.BufferSize,
		Trace:      trace,
	}
}

// String returns a string representation of the dataset target
func (dt *DatasetTarget) String() string {
	if dt.Charset != "" {
		return fmt.Sprintf("%s (charset %s)", dt.Path, dt.Charset)
	}
	return dt.Path
}

// ProgressUpdate represents progress information
type ProgressUpdate struct {
	Message     string
	Completed   int64
	Total       int64
	StartedAt   time.Time
	ElapsedTime time.Duration
}

// Percent calculates completion percentage
func (p *ProgressUpdate) Percent() int {
	if p.Total <= 0 {
		return 0
	}
	return int((p.Completed * 100) / p.Total)
}

// Rate calculates items per second
func (p *ProgressUpdate) Rate() float64 {
	if p.ElapsedTime == 0 {
		return 0
	}
	return float64(p.Completed) / p.ElapsedTime.Seconds()
}

// ETA estimates time to completion
func (p *ProgressUpdate) ETA() time.Duration {
	if p.Completed == 0 || p.Total <= 0 {
		return 0
	}
	rate := p.Rate()
	if rate == 0 {
		return 0
	}
	remaining := p.Total - p.Completed
	return time.Duration(float64(remaining) / rate * float64(time.Second))
}

// CommonError represents application-level errors
type CommonError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CommonError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *CommonError) Unwrap() error {
	return e.Cause
}

// Common error codes
const (
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeFileAccess   = "FILE_ACCESS"
	ErrCodeDecode       = "DECODE"
	ErrCodeOutput       = "OUTPUT"
	ErrCodeTimeout      = "TIMEOUT"
)

// NewError creates a new CommonError
func NewError(code, message string, cause error) *CommonError {
	return &CommonError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
