package services

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"golang.org/x/text/encoding"

	"github.com/deploymenttheory/go-sav/internal/disk"
	"github.com/deploymenttheory/go-sav/internal/types"
	"github.com/deploymenttheory/go-sav/internal/variables"
)

// TraceEvent describes one dictionary record as it is decoded
type TraceEvent struct {
	Offset     int64
	RecordType int32
	Subtype    int32
	Detail     string
}

func (e TraceEvent) String() string {
	if e.RecordType == types.RecordTypeExtension {
		return fmt.Sprintf("@%d record %d/%d: %s", e.Offset, e.RecordType, e.Subtype, e.Detail)
	}
	return fmt.Sprintf("@%d record %d: %s", e.Offset, e.RecordType, e.Detail)
}

// TraceFunc receives trace events. It must not retain the session.
type TraceFunc func(TraceEvent)

// Option configures a session
type Option func(*sessionConfig)

type sessionConfig struct {
	charset     encoding.Encoding
	charsetName string
	trace       TraceFunc
	bufferSize  int
}

// WithCharset forces the character set used for all text. Encoding records in
// the file are then ignored.
func WithCharset(name string, enc encoding.Encoding) Option {
	return func(c *sessionConfig) {
		c.charset = enc
		c.charsetName = name
	}
}

// WithTrace installs a hook that receives one event per dictionary record
func WithTrace(fn TraceFunc) Option {
	return func(c *sessionConfig) {
		c.trace = fn
	}
}

// WithBufferSize sets the read-ahead block size of the byte source
func WithBufferSize(n int) Option {
	return func(c *sessionConfig) {
		c.bufferSize = n
	}
}

// Session decodes one system file. A session is not safe for concurrent use.
type Session struct {
	id     uuid.UUID
	source *disk.BufferedSource
	reader *disk.Reader
	config sessionConfig

	charsetName string

	header       *types.FileHeader
	records      []*types.VariableRecord
	variables    []variables.Variable
	bySlot       map[int]variables.Variable
	documents    []*types.DocumentRecord
	machineInt   *types.MachineIntegerInfo
	machineFloat *types.MachineFloatInfo
	variableSets []*types.VariableSets
	encodingName string
	extensions   []*types.ExtensionRecord
	weight       *variables.NumericVariable
	fingerprint  uint64

	dictionaryLoaded bool
	dataOffset       int64

	compression compressionState
	streamed    int
	dataLoaded  bool
	recordCount int
}

// OpenSession creates a session over src. The dictionary is not read until
// LoadDictionary is called.
func OpenSession(src io.ReadSeeker, opts ...Option) (*Session, error) {
	cfg := sessionConfig{bufferSize: disk.DefaultBlockSize}
	for _, opt := range opts {
		opt(&cfg)
	}

	source, err := disk.NewBufferedSource(src, cfg.bufferSize)
	if err != nil {
		return nil, fmt.Errorf("failed to open byte source: %w", err)
	}

	return newSession(source, cfg)
}

// OpenFile opens a system file from disk
func OpenFile(path string, opts ...Option) (*Session, error) {
	cfg := sessionConfig{bufferSize: disk.DefaultBlockSize}
	for _, opt := range opts {
		opt(&cfg)
	}

	source, err := disk.OpenFile(path, cfg.bufferSize)
	if err != nil {
		return nil, err
	}

	s, err := newSession(source, cfg)
	if err != nil {
		source.Close()
		return nil, err
	}
	return s, nil
}

func newSession(source *disk.BufferedSource, cfg sessionConfig) (*Session, error) {
	reader, err := disk.NewReader(source, cfg.charset)
	if err != nil {
		return nil, err
	}

	name := cfg.charsetName
	if cfg.charset == nil {
		name = "ISO-8859-1"
	}

	s := &Session{
		id:          uuid.New(),
		source:      source,
		reader:      reader,
		config:      cfg,
		charsetName: name,
		dataOffset:  -1,
	}
	s.compression.reset()
	return s, nil
}

// Close releases the underlying file when the session was opened with OpenFile
func (s *Session) Close() error {
	return s.source.Close()
}

// ID returns the unique identifier of the session
func (s *Session) ID() uuid.UUID { return s.id }

// Source returns the buffered byte source, for statistics
func (s *Session) Source() *disk.BufferedSource { return s.source }

// Charset returns the name of the character set in use
func (s *Session) Charset() string { return s.charsetName }

// ByteOrder returns the byte order detected from the header
func (s *Session) ByteOrder() binary.ByteOrder { return s.reader.ByteOrder() }

// Header returns the file header, nil before the dictionary is loaded
func (s *Session) Header() *types.FileHeader { return s.header }

// Documents returns the type 6 records
func (s *Session) Documents() []*types.DocumentRecord { return s.documents }

// MachineIntegerInfo returns extension subtype 3, if present
func (s *Session) MachineIntegerInfo() *types.MachineIntegerInfo { return s.machineInt }

// MachineFloatInfo returns extension subtype 4, if present
func (s *Session) MachineFloatInfo() *types.MachineFloatInfo { return s.machineFloat }

// VariableSets returns the extension subtype 5 records
func (s *Session) VariableSets() []*types.VariableSets { return s.variableSets }

// EncodingRecord returns the name found in extension subtype 20, if present
func (s *Session) EncodingRecord() string { return s.encodingName }

// Extensions returns the extension records without a dedicated decoder
func (s *Session) Extensions() []*types.ExtensionRecord { return s.extensions }

// Fingerprint returns an xxhash of the dictionary section bytes
func (s *Session) Fingerprint() uint64 { return s.fingerprint }

// DataOffset returns the offset of the data section, -1 before the dictionary is loaded
func (s *Session) DataOffset() int64 { return s.dataOffset }

// DictionaryLoaded reports whether LoadDictionary succeeded
func (s *Session) DictionaryLoaded() bool { return s.dictionaryLoaded }

// VariableCount returns the number of logical variables. Continuation records
// and string segments are not counted.
func (s *Session) VariableCount() int { return len(s.variables) }

// Variable returns the logical variable at a 0-based index, or nil
func (s *Session) Variable(i int) variables.Variable {
	if i < 0 || i >= len(s.variables) {
		return nil
	}
	return s.variables[i]
}

// Variables returns the logical variables in dictionary order
func (s *Session) Variables() []variables.Variable { return s.variables }

// VariableByName finds a logical variable by long or short name, ignoring case
func (s *Session) VariableByName(name string) variables.Variable {
	for _, v := range s.variables {
		if strings.EqualFold(v.Name(), name) || strings.EqualFold(v.ShortName(), name) {
			return v
		}
	}
	return nil
}

// Weight returns the weight variable, or nil for unweighted files
func (s *Session) Weight() *variables.NumericVariable { return s.weight }

// IsCompressed reports whether the data section is bytecode compressed
func (s *Session) IsCompressed() (bool, error) {
	if !s.dictionaryLoaded {
		return false, types.ErrDictionaryNotLoaded
	}
	return s.header.IsCompressed(), nil
}

// CaseCount returns the number of cases declared in the header, -1 if unknown
func (s *Session) CaseCount() int {
	if s.header == nil {
		return int(types.UnknownCaseCount)
	}
	return int(s.header.CaseCount)
}

// RecordCount returns the number of records loaded by LoadAllData
func (s *Session) RecordCount() int { return s.recordCount }

// DataLoaded reports whether LoadAllData succeeded
func (s *Session) DataLoaded() bool { return s.dataLoaded }

func (s *Session) emit(offset int64, recordType, subtype int32, format string, args ...any) {
	if s.config.trace == nil {
		return
	}
	s.config.trace(TraceEvent{Offset: offset, RecordType: recordType, Subtype: subtype, Detail: fmt.Sprintf(format, args...)})
}

// computeFingerprint hashes the dictionary section and restores the read position
func (s *Session) computeFingerprint() error {
	pos := s.reader.Position()
	if _, err := s.source.Seek(0, io.SeekStart); err != nil {
		return types.IOFailure("fingerprint", 0, err)
	}
	h := xxhash.New()
	if _, err := io.CopyN(h, s.source, s.dataOffset); err != nil {
		return types.IOFailure("fingerprint", 0, err)
	}
	s.fingerprint = h.Sum64()
	return s.reader.Seek(pos)
}
