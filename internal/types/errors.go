package types

import (
	"errors"
	"fmt"
)

// Error kinds raised while decoding a system file.
var (
	// ErrFormatViolation covers bad magic, unexpected record tags, inconsistent
	// element counts or sizes, unknown format codes and invalid compression codes.
	ErrFormatViolation = errors.New("format violation")

	// ErrStructural covers orphan string segments, unresolved names and variable
	// indexes that do not exist.
	ErrStructural = errors.New("structural inconsistency")

	// ErrIO covers short reads and seeks outside the file.
	ErrIO = errors.New("i/o failure")
)

// Session state errors.
var (
	ErrDictionaryLoaded    = errors.New("dictionary is already loaded")
	ErrDictionaryNotLoaded = errors.New("dictionary has not been loaded")
	ErrDataNotLoaded       = errors.New("data has not been loaded")
	ErrDataOffsetUnknown   = errors.New("data section offset is not known")
	ErrObservationRange    = errors.New("observation number out of range")
	ErrUnknownFormat       = errors.New("unknown write format type")
)

// DecodeError describes a decoding failure at a byte offset.
type DecodeError struct {
	// Kind is one of ErrFormatViolation, ErrStructural or ErrIO.
	Kind error
	// Op names the record or step being decoded.
	Op string
	// Offset is the absolute byte offset where the failing record or read started,
	// or -1 when not applicable.
	Offset int64
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset %d: %v", e.Op, e.Offset, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is matches the error kind as well as the wrapped error.
func (e *DecodeError) Is(target error) bool {
	return target == e.Kind
}

// FormatViolation builds a DecodeError of kind ErrFormatViolation.
func FormatViolation(op string, offset int64, format string, args ...any) error {
	return &DecodeError{Kind: ErrFormatViolation, Op: op, Offset: offset, Err: fmt.Errorf(format, args...)}
}

// Structural builds a DecodeError of kind ErrStructural.
func Structural(op string, offset int64, format string, args ...any) error {
	return &DecodeError{Kind: ErrStructural, Op: op, Offset: offset, Err: fmt.Errorf(format, args...)}
}

// IOFailure wraps an I/O error as a DecodeError of kind ErrIO.
func IOFailure(op string, offset int64, err error) error {
	var de *DecodeError
	if errors.As(err, &de) {
		return err
	}
	return &DecodeError{Kind: ErrIO, Op: op, Offset: offset, Err: err}
}
