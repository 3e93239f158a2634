package services

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/deploymenttheory/go-sav/internal/format"
	"github.com/deploymenttheory/go-sav/internal/types"
	"github.com/deploymenttheory/go-sav/internal/variables"
)

const opData = "data"

// errEndOfData reports a clean end of the data section at a record boundary
var errEndOfData = errors.New("end of data")

// compressionState is the bytecode cluster being consumed and the index of the
// next code in it. It belongs to one session and survives between records.
type compressionState struct {
	cluster [types.ClusterSize]byte
	index   int
}

// reset forces the next code to come from a fresh cluster
func (c *compressionState) reset() {
	c.cluster = [types.ClusterSize]byte{}
	c.index = types.ClusterSize
}

type readMode int

const (
	streamMode readMode = iota
	bulkMode
)

// recordReader decodes the blocks of one record. started is set once the record
// has consumed any data, after which running out of input is an error.
type recordReader struct {
	s       *Session
	started bool
}

// nextCode returns the next compression code that is not CodeIgnore
func (rr *recordReader) nextCode() (byte, error) {
	s := rr.s
	c := &s.compression
	for {
		if c.index >= types.ClusterSize {
			raw, err := s.reader.ReadBytes(types.ClusterSize)
			if err != nil {
				if !rr.started && errors.Is(err, io.EOF) {
					return 0, errEndOfData
				}
				return 0, err
			}
			copy(c.cluster[:], raw)
			c.index = 0
		}

		code := c.cluster[c.index]
		c.index++
		if code == types.CodeIgnore {
			continue
		}
		if code == types.CodeEndOfFile {
			if !rr.started && s.header.CaseCount == types.UnknownCaseCount {
				return 0, errEndOfData
			}
			return 0, types.FormatViolation(opData, s.reader.Position(), "unexpected end of compressed stream")
		}
		rr.started = true
		return code, nil
	}
}

// rawBlock reads one uncompressed 8-byte block
func (rr *recordReader) rawBlock() ([]byte, error) {
	raw, err := rr.s.reader.ReadBytes(types.BlockSize)
	if err != nil {
		if !rr.started && errors.Is(err, io.EOF) {
			return nil, errEndOfData
		}
		return nil, err
	}
	rr.started = true
	return raw, nil
}

func (rr *recordReader) numeric() (float64, error) {
	s := rr.s
	if !s.header.IsCompressed() {
		raw, err := rr.rawBlock()
		if err != nil {
			return 0, err
		}
		return s.sysmiss(math.Float64frombits(s.reader.ByteOrder().Uint64(raw))), nil
	}

	code, err := rr.nextCode()
	if err != nil {
		return 0, err
	}
	switch code {
	case types.CodeLiteral:
		x, err := s.reader.ReadFloat64()
		if err != nil {
			return 0, err
		}
		return s.sysmiss(x), nil
	case types.CodeBlanks:
		return 0, nil
	case types.CodeSysMiss:
		return math.NaN(), nil
	}
	return float64(code) - s.header.Bias, nil
}

// stringBlock returns the 8 bytes of one string block
func (rr *recordReader) stringBlock(name string) ([]byte, error) {
	s := rr.s
	if !s.header.IsCompressed() {
		return rr.rawBlock()
	}

	code, err := rr.nextCode()
	if err != nil {
		return nil, err
	}
	switch code {
	case types.CodeLiteral:
		return s.reader.ReadBytes(types.BlockSize)
	case types.CodeBlanks:
		return []byte(strings.Repeat(" ", types.BlockSize)), nil
	case types.CodeSysMiss:
		return nil, types.FormatViolation(opData, s.reader.Position(), "system-missing code for string variable %s", name)
	}
	return nil, types.FormatViolation(opData, s.reader.Position(), "numeric code %d for string variable %s", code, name)
}

// blankBytes are the single-byte whitespace characters trimmed from the end of
// each string entry before the entries are joined
const blankBytes = " \t\n\v\f\r"

// entry returns the meaningful bytes of one string dictionary entry without
// trailing blanks
func (rr *recordReader) entry(v *variables.StringVariable) ([]byte, error) {
	width := v.EntryWidth()
	buf := make([]byte, 0, width)
	for b := 0; b < v.Blocks(); b++ {
		block, err := rr.stringBlock(v.ShortName())
		if err != nil {
			return nil, err
		}
		buf = append(buf, block[:min(types.BlockSize, width-b*types.BlockSize)]...)
	}
	return bytes.TrimRight(buf, blankBytes), nil
}

// str decodes a string variable and its segments. The raw bytes of all entries
// are joined and decoded once, so a multi-byte character may span two entries.
func (rr *recordReader) str(v *variables.StringVariable) (string, error) {
	raw, err := rr.entry(v)
	if err != nil {
		return "", err
	}
	for _, seg := range v.Segments() {
		part, err := rr.entry(seg)
		if err != nil {
			return "", err
		}
		raw = append(raw, part...)
	}
	return variables.TrimValue(rr.s.reader.DecodeString(raw)), nil
}

// sysmiss maps the on-disk system-missing value to NaN
func (s *Session) sysmiss(x float64) float64 {
	if x == -math.MaxFloat64 || (s.machineFloat != nil && x == s.machineFloat.SysMiss) {
		return math.NaN()
	}
	return x
}

// readRecord decodes one case into the current value of every variable. In bulk
// mode the values are also appended to the variables' value lists.
func (s *Session) readRecord(mode readMode) error {
	rr := &recordReader{s: s}

	for _, v := range s.variables {
		switch tv := v.(type) {
		case *variables.NumericVariable:
			x, err := rr.numeric()
			if err != nil {
				return err
			}
			tv.SetValue(x)
		case *variables.StringVariable:
			text, err := rr.str(tv)
			if err != nil {
				return err
			}
			tv.SetValue(text)
		}
	}

	if mode != bulkMode {
		return nil
	}

	weight := 1.0
	if s.weight != nil {
		weight = s.weight.Value()
	}
	for _, v := range s.variables {
		switch tv := v.(type) {
		case *variables.NumericVariable:
			tv.AppendValue(tv.Value(), weight)
		case *variables.StringVariable:
			tv.AppendValue(tv.Value())
		}
	}
	return nil
}

func (s *Session) checkData() error {
	if !s.dictionaryLoaded {
		return types.ErrDictionaryNotLoaded
	}
	if s.dataOffset < 0 {
		return types.ErrDataOffsetUnknown
	}
	return nil
}

// Rewind positions the session at the first case and discards the current
// compression cluster
func (s *Session) Rewind() error {
	if err := s.checkData(); err != nil {
		return err
	}
	if err := s.reader.Seek(s.dataOffset); err != nil {
		return err
	}
	s.compression.reset()
	s.streamed = 0
	return nil
}

// LoadAllData reads every case into the variables' value lists. Previously
// loaded values are discarded. When the header does not declare the case count,
// cases are read until the data section ends at a record boundary.
func (s *Session) LoadAllData() error {
	if err := s.Rewind(); err != nil {
		return err
	}
	for _, v := range s.variables {
		v.ResetValues()
	}
	s.dataLoaded = false
	s.recordCount = 0

	declared := int(s.header.CaseCount)
	for declared < 0 || s.recordCount < declared {
		err := s.readRecord(bulkMode)
		if errors.Is(err, errEndOfData) {
			if declared < 0 {
				break
			}
			return types.IOFailure(opData, s.reader.Position(),
				fmt.Errorf("data ends after %d of %d cases: %w", s.recordCount, declared, io.ErrUnexpectedEOF))
		}
		if err != nil {
			return err
		}
		s.recordCount++
	}

	s.streamed = s.recordCount
	s.dataLoaded = true
	return nil
}

// ReadOneRecord decodes the next case into the current value of every variable.
// It rewinds first when rewind is set or no case has been read yet, and returns
// io.EOF once the data section is exhausted.
func (s *Session) ReadOneRecord(rewind bool) error {
	if err := s.checkData(); err != nil {
		return err
	}
	if rewind || s.reader.Position() < s.dataOffset {
		if err := s.Rewind(); err != nil {
			return err
		}
	}

	declared := int(s.header.CaseCount)
	if declared >= 0 && s.streamed >= declared {
		return io.EOF
	}

	err := s.readRecord(streamMode)
	if errors.Is(err, errEndOfData) {
		if declared < 0 {
			return io.EOF
		}
		return types.IOFailure(opData, s.reader.Position(),
			fmt.Errorf("data ends after %d of %d cases: %w", s.streamed, declared, io.ErrUnexpectedEOF))
	}
	if err != nil {
		return err
	}
	s.streamed++
	return nil
}

// Record formats one bulk-loaded case (1-based), or the current values for 0
func (s *Session) Record(obs int, opts format.Options) ([]string, error) {
	if obs > 0 && !s.dataLoaded {
		return nil, types.ErrDataNotLoaded
	}
	fields := make([]string, len(s.variables))
	for i, v := range s.variables {
		text, err := v.ValueAsText(obs, opts)
		if err != nil {
			return nil, fmt.Errorf("variable %s: %w", v.Name(), err)
		}
		fields[i] = text
	}
	return fields, nil
}

// RecordFromDisk reads the next case and formats it
func (s *Session) RecordFromDisk(opts format.Options, rewind bool) ([]string, error) {
	if err := s.ReadOneRecord(rewind); err != nil {
		return nil, err
	}
	return s.Record(0, opts)
}

// HeaderRow returns the variable names shaped like string fields of their column
func (s *Session) HeaderRow(opts format.Options) []string {
	fields := make([]string, len(s.variables))
	for i, v := range s.variables {
		fields[i] = format.ShapeHeader(v.Name(), v.Width(), opts)
	}
	return fields
}

// FormatRow joins shaped fields with the separator of opts
func FormatRow(fields []string, opts format.Options) string {
	return strings.Join(fields, opts.Separator())
}
