package services

import (
	"strings"

	"github.com/deploymenttheory/go-sav/internal/disk"
	"github.com/deploymenttheory/go-sav/internal/parsers/dictionary"
	"github.com/deploymenttheory/go-sav/internal/types"
	"github.com/deploymenttheory/go-sav/internal/variables"
)

const opDictionary = "dictionary"

// LoadDictionary decodes the dictionary: the header, the variable records, every
// label, document and extension record up to the terminator. When the file
// declares a character set other than the one in use, and none was forced, the
// dictionary is decoded a second time with the declared one.
func (s *Session) LoadDictionary() error {
	if s.dictionaryLoaded {
		return types.ErrDictionaryLoaded
	}

	declared, err := s.loadDictionary()
	if err != nil {
		return err
	}

	if declared != "" && s.config.charset == nil && !strings.EqualFold(declared, s.charsetName) {
		enc, lookupErr := disk.LookupCharset(declared)
		if lookupErr != nil {
			s.emit(-1, types.RecordTypeExtension, types.SubtypeCharacterEncoding, "ignoring character set %q: %v", declared, lookupErr)
		} else {
			s.emit(-1, types.RecordTypeExtension, types.SubtypeCharacterEncoding, "re-reading dictionary as %s", declared)
			s.resetDictionary()
			s.reader.SetEncoding(enc)
			s.charsetName = declared
			if _, err := s.loadDictionary(); err != nil {
				return err
			}
		}
	}

	if err := s.computeFingerprint(); err != nil {
		return err
	}
	s.dictionaryLoaded = true
	return nil
}

func (s *Session) resetDictionary() {
	s.header = nil
	s.records = nil
	s.variables = nil
	s.bySlot = nil
	s.documents = nil
	s.machineInt = nil
	s.machineFloat = nil
	s.variableSets = nil
	s.encodingName = ""
	s.extensions = nil
	s.weight = nil
	s.dataOffset = -1
}

// loadDictionary runs the record state machine once and returns the name of the
// character set the file declares, if any
func (s *Session) loadDictionary() (string, error) {
	r := s.reader
	if err := r.Seek(0); err != nil {
		return "", err
	}

	header, err := dictionary.ReadHeader(r)
	if err != nil {
		return "", err
	}
	s.header = header
	s.emit(header.Offset, types.RecordTypeHeader, 0, "%q layout %d, %d cases, compression %d, bias %g",
		header.ProductName, header.LayoutCode, header.CaseCount, header.Compression, header.Bias)

	if err := s.readVariables(); err != nil {
		return "", err
	}

	for {
		start := r.Position()
		tag, err := r.PeekInt32()
		if err != nil {
			return "", err
		}

		switch tag {
		case types.RecordTypeValueLabels:
			err = s.readValueLabels()
		case types.RecordTypeDocument:
			err = s.readDocument()
		case types.RecordTypeExtension:
			err = s.readExtension()
		case types.RecordTypeTerminator:
			if err := s.readTerminator(); err != nil {
				return "", err
			}
			if err := s.resolveWeight(); err != nil {
				return "", err
			}
			return s.declaredCharset(), nil
		default:
			return "", types.FormatViolation(opDictionary, start, "invalid record type %d", tag)
		}
		if err != nil {
			return "", err
		}
	}
}

// readVariables reads the run of type 2 records that follows the header
func (s *Session) readVariables() error {
	r := s.reader
	s.bySlot = make(map[int]variables.Variable)

	var (
		continuations int
		owner         *types.VariableRecord
	)

	for slot := 0; ; slot++ {
		tag, err := r.PeekInt32()
		if err != nil {
			return err
		}
		if tag != types.RecordTypeVariable {
			if slot == 0 {
				return types.FormatViolation(opDictionary, r.Position(), "expected at least one variable record, found record type %d", tag)
			}
			break
		}

		rec, err := dictionary.ReadVariableRecord(r, slot)
		if err != nil {
			return err
		}
		s.records = append(s.records, rec)

		if rec.IsContinuation() {
			if continuations == 0 {
				return types.Structural(opDictionary, rec.Offset, "continuation record in slot %d follows no string variable", slot+1)
			}
			continuations--
			continue
		}
		if continuations > 0 {
			return types.Structural(opDictionary, rec.Offset, "string variable %s is missing %d continuation records", owner.Name, continuations)
		}

		v, err := s.newVariable(rec)
		if err != nil {
			return err
		}
		v.SetPosition(len(s.variables) + 1)
		s.variables = append(s.variables, v)
		s.bySlot[slot] = v

		owner = rec
		if rec.TypeCode > 0 {
			continuations = (int(rec.TypeCode)+types.BlockSize-1)/types.BlockSize - 1
		}
		s.emit(rec.Offset, types.RecordTypeVariable, 0, "%s type %d write %s", rec.Name, rec.TypeCode, rec.WriteFormat)
	}

	if continuations > 0 {
		return types.Structural(opDictionary, owner.Offset, "string variable %s is missing %d continuation records", owner.Name, continuations)
	}

	if s.header.ObservationsPerCase == types.UnknownObservationCount {
		s.header.ObservationsPerCase = int32(len(s.records))
	}
	return nil
}

func (s *Session) newVariable(rec *types.VariableRecord) (variables.Variable, error) {
	if rec.IsNumeric() {
		return variables.NewNumericVariable(rec, s.reader.ByteOrder())
	}
	return variables.NewStringVariable(rec, s.reader.DecodeString), nil
}

// readValueLabels reads a type 3 record and the type 4 record that must follow,
// then merges the labels into every referenced variable
func (s *Session) readValueLabels() error {
	r := s.reader

	labels, err := dictionary.ReadValueLabels(r)
	if err != nil {
		return err
	}

	next, err := r.PeekInt32()
	if err != nil {
		return err
	}
	if next != types.RecordTypeValueLabelIndex {
		return types.FormatViolation(opDictionary, r.Position(), "value label record at offset %d is followed by record type %d, expected %d",
			labels.Offset, next, types.RecordTypeValueLabelIndex)
	}

	index, err := dictionary.ReadValueLabelIndex(r)
	if err != nil {
		return err
	}

	for _, slot := range index.Variables {
		v, ok := s.bySlot[int(slot)-1]
		if !ok {
			return types.Structural(opDictionary, index.Offset, "value labels refer to dictionary slot %d, which holds no variable", slot)
		}
		for _, l := range labels.Labels {
			switch tv := v.(type) {
			case *variables.NumericVariable:
				if _, err := tv.AddRawCategory(l.Value, l.Label); err != nil {
					return err
				}
			case *variables.StringVariable:
				tv.AddRawCategory(l.Value, l.Label)
			}
		}
	}

	s.emit(labels.Offset, types.RecordTypeValueLabels, 0, "%d labels for slots %v", len(labels.Labels), index.Variables)
	return nil
}

func (s *Session) readDocument() error {
	doc, err := dictionary.ReadDocument(s.reader)
	if err != nil {
		return err
	}
	s.documents = append(s.documents, doc)
	s.emit(doc.Offset, types.RecordTypeDocument, 0, "%d lines", len(doc.Lines))
	return nil
}

func (s *Session) readTerminator() error {
	r := s.reader
	start := r.Position()
	if err := r.Skip(4); err != nil {
		return err
	}
	filler, err := r.ReadInt32()
	if err != nil {
		return err
	}
	if filler != 0 {
		return types.FormatViolation(opDictionary, start, "dictionary terminator is followed by %d, expected 0", filler)
	}
	s.dataOffset = r.Position()
	s.emit(start, types.RecordTypeTerminator, 0, "data starts at %d", s.dataOffset)
	return nil
}

// resolveWeight finds the weight variable named by the header
func (s *Session) resolveWeight() error {
	if s.header.WeightIndex <= 0 {
		return nil
	}
	v, ok := s.bySlot[int(s.header.WeightIndex)-1]
	if !ok {
		return types.Structural(opDictionary, s.header.Offset, "weight refers to dictionary slot %d, which holds no variable", s.header.WeightIndex)
	}
	nv, ok := v.(*variables.NumericVariable)
	if !ok {
		return types.Structural(opDictionary, s.header.Offset, "weight variable %s is not numeric", v.Name())
	}
	s.weight = nv
	return nil
}

// declaredCharset prefers the encoding record over the machine integer record
func (s *Session) declaredCharset() string {
	if s.encodingName != "" {
		return s.encodingName
	}
	if s.machineInt != nil {
		if name, ok := disk.CodePageName(s.machineInt.CharacterCode); ok {
			return name
		}
	}
	return ""
}
