// Package testutil synthesises system files in memory for tests.
package testutil

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/deploymenttheory/go-sav/internal/types"
)

// Variable describes one dictionary entry to emit. Strings wider than 8 bytes
// are followed by the required continuation records.
type Variable struct {
	Name  string
	Width int // 0 for numeric, 1-255 for strings
	Label string
	Print types.FormatSpec
	Write types.FormatSpec

	// MissingCode is written verbatim; Missing or MissingStrings supply the slots.
	MissingCode    int32
	Missing        []float64
	MissingStrings []string
}

// NumericLabel is a value label for a numeric variable
type NumericLabel struct {
	Value float64
	Label string
}

// Builder writes a system file record by record
type Builder struct {
	order       binary.ByteOrder
	compressed  bool
	bias        float64
	product     string
	label       string
	weightIndex int32
	caseCount   *int32
	obsPerCase  *int32
	layoutCode  int32
	magic       string
	filler      int32

	variables []Variable
	slots     int
	records   bytes.Buffer
	cases     [][]any
	rawData   []byte
	endCode   bool
}

// New creates a little- or big-endian builder for an uncompressed file
func New(order binary.ByteOrder) *Builder {
	return &Builder{
		order:      order,
		bias:       types.DefaultCompressionBias,
		product:    "@(#) SPSS DATA FILE go-sav test fixture",
		layoutCode: types.LayoutCodeStandard,
		magic:      types.FileMagic,
	}
}

// Compressed switches the data section to bytecode compression
func (b *Builder) Compressed(bias float64) *Builder {
	b.compressed = true
	b.bias = bias
	return b
}

// FileLabel sets the dataset label
func (b *Builder) FileLabel(label string) *Builder {
	b.label = label
	return b
}

// Weight sets the 1-based dictionary slot of the weight variable
func (b *Builder) Weight(slot int32) *Builder {
	b.weightIndex = slot
	return b
}

// CaseCount overrides the declared number of cases
func (b *Builder) CaseCount(n int32) *Builder {
	b.caseCount = &n
	return b
}

// ObservationsPerCase overrides the declared number of slots per case
func (b *Builder) ObservationsPerCase(n int32) *Builder {
	b.obsPerCase = &n
	return b
}

// LayoutCode overrides the layout code field
func (b *Builder) LayoutCode(code int32) *Builder {
	b.layoutCode = code
	return b
}

// Magic overrides the file signature
func (b *Builder) Magic(magic string) *Builder {
	b.magic = magic
	return b
}

// TerminatorFiller overrides the integer written after the 999 tag
func (b *Builder) TerminatorFiller(v int32) *Builder {
	b.filler = v
	return b
}

// EndOfData appends a 252 code after the last case of a compressed file
func (b *Builder) EndOfData() *Builder {
	b.endCode = true
	return b
}

// Numeric adds a numeric variable with an F8.2 format
func (b *Builder) Numeric(name string) *Builder {
	f := types.FormatSpec{Type: types.FormatF, Width: 8, Decimals: 2}
	return b.AddVariable(Variable{Name: name, Print: f, Write: f})
}

// String adds a string variable with an A format of the same width
func (b *Builder) String(name string, width int) *Builder {
	f := types.FormatSpec{Type: types.FormatA, Width: width}
	return b.AddVariable(Variable{Name: name, Width: width, Print: f, Write: f})
}

// AddVariable adds a type 2 record plus its continuations
func (b *Builder) AddVariable(v Variable) *Builder {
	b.variables = append(b.variables, v)

	w := &b.records
	b.putInt32(w, types.RecordTypeVariable)
	b.putInt32(w, int32(v.Width))
	if v.Label != "" {
		b.putInt32(w, 1)
	} else {
		b.putInt32(w, 0)
	}
	b.putInt32(w, v.MissingCode)
	b.putInt32(w, v.Print.Pack())
	b.putInt32(w, v.Write.Pack())
	w.WriteString(pad(v.Name, types.ShortNameSize))

	if v.Label != "" {
		b.putInt32(w, int32(len(v.Label)))
		w.WriteString(pad(v.Label, roundUp(len(v.Label), 4)))
	}

	for _, m := range v.Missing {
		b.putFloat64(w, m)
	}
	for _, m := range v.MissingStrings {
		w.WriteString(pad(m, types.BlockSize))
	}
	b.slots++

	for i := 1; i < blocks(v.Width); i++ {
		b.putInt32(w, types.RecordTypeVariable)
		b.putInt32(w, types.VariableTypeContinuation)
		b.putInt32(w, 0)
		b.putInt32(w, 0)
		b.putInt32(w, 0)
		b.putInt32(w, 0)
		w.WriteString(pad("", types.ShortNameSize))
		b.slots++
	}
	return b
}

// NumericLabels adds a type 3 record with numeric values and its type 4 index
func (b *Builder) NumericLabels(labels []NumericLabel, slots ...int32) *Builder {
	raw := make([][]byte, len(labels))
	text := make([]string, len(labels))
	for i, l := range labels {
		raw[i] = make([]byte, 8)
		b.order.PutUint64(raw[i], math.Float64bits(l.Value))
		text[i] = l.Label
	}
	return b.valueLabels(raw, text, slots)
}

// StringLabels adds a type 3 record with string values and its type 4 index.
// Values are keyed by value, in the order given by keys.
func (b *Builder) StringLabels(keys []string, labels map[string]string, slots ...int32) *Builder {
	raw := make([][]byte, len(keys))
	text := make([]string, len(keys))
	for i, k := range keys {
		raw[i] = []byte(pad(k, 8))
		text[i] = labels[k]
	}
	return b.valueLabels(raw, text, slots)
}

func (b *Builder) valueLabels(raw [][]byte, text []string, slots []int32) *Builder {
	b.ValueLabelsOnly(raw, text)
	return b.LabelIndex(slots...)
}

// ValueLabelsOnly adds a type 3 record without the type 4 index
func (b *Builder) ValueLabelsOnly(raw [][]byte, text []string) *Builder {
	w := &b.records
	b.putInt32(w, types.RecordTypeValueLabels)
	b.putInt32(w, int32(len(raw)))
	for i := range raw {
		w.Write(raw[i])
		w.WriteByte(byte(len(text[i])))
		w.WriteString(pad(text[i], roundUp(len(text[i])+1, 8)-1))
	}
	return b
}

// LabelIndex adds a type 4 record
func (b *Builder) LabelIndex(slots ...int32) *Builder {
	w := &b.records
	b.putInt32(w, types.RecordTypeValueLabelIndex)
	b.putInt32(w, int32(len(slots)))
	for _, s := range slots {
		b.putInt32(w, s)
	}
	return b
}

// Document adds a type 6 record
func (b *Builder) Document(lines ...string) *Builder {
	w := &b.records
	b.putInt32(w, types.RecordTypeDocument)
	b.putInt32(w, int32(len(lines)))
	for _, l := range lines {
		w.WriteString(pad(l, types.DocumentLineSize))
	}
	return b
}

// Extension adds a type 7 record with an arbitrary payload
func (b *Builder) Extension(subtype, size, count int32, data []byte) *Builder {
	w := &b.records
	b.putInt32(w, types.RecordTypeExtension)
	b.putInt32(w, subtype)
	b.putInt32(w, size)
	b.putInt32(w, count)
	w.Write(data)
	return b
}

// MachineInteger adds subtype 3 with the given character code
func (b *Builder) MachineInteger(characterCode int32) *Builder {
	endianness := int32(2)
	if b.order == binary.BigEndian {
		endianness = 1
	}
	var data bytes.Buffer
	for _, v := range []int32{20, 0, 0, -1, 1, 1, endianness, characterCode} {
		b.putInt32(&data, v)
	}
	return b.Extension(types.SubtypeMachineInteger, 4, 8, data.Bytes())
}

// MachineFloat adds subtype 4
func (b *Builder) MachineFloat() *Builder {
	var data bytes.Buffer
	b.putFloat64(&data, -math.MaxFloat64)
	b.putFloat64(&data, math.MaxFloat64)
	b.putFloat64(&data, math.Nextafter(-math.MaxFloat64, 0))
	return b.Extension(types.SubtypeMachineFloat, 8, 3, data.Bytes())
}

// DisplayParams adds subtype 11
func (b *Builder) DisplayParams(params ...types.DisplayParameter) *Builder {
	var data bytes.Buffer
	for _, p := range params {
		b.putInt32(&data, p.Measure)
		b.putInt32(&data, p.Width)
		b.putInt32(&data, p.Alignment)
	}
	return b.Extension(types.SubtypeDisplayParameters, 4, int32(len(params)*3), data.Bytes())
}

// LongNames adds subtype 13
func (b *Builder) LongNames(pairs ...types.NamePair) *Builder {
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.Key + "=" + p.Value
	}
	return b.text(types.SubtypeLongVariableNames, strings.Join(parts, "\t"))
}

// VeryLongStrings adds subtype 14 using the NUL-terminated layout SPSS writes
func (b *Builder) VeryLongStrings(entries ...types.VeryLongStringWidth) *Builder {
	var sb strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&sb, "%s=%05d\x00\t", e.Name, e.Width)
	}
	return b.text(types.SubtypeVeryLongStrings, sb.String())
}

// CharacterEncoding adds subtype 20
func (b *Builder) CharacterEncoding(name string) *Builder {
	return b.text(types.SubtypeCharacterEncoding, name)
}

// VariableSets adds subtype 5
func (b *Builder) VariableSets(text string) *Builder {
	return b.text(types.SubtypeVariableSets, text)
}

func (b *Builder) text(subtype int32, s string) *Builder {
	return b.Extension(subtype, 1, int32(len(s)), []byte(s))
}

// LongStringLabels adds subtype 21 for one variable
func (b *Builder) LongStringLabels(name string, width int32, labels ...types.LongStringLabel) *Builder {
	var data bytes.Buffer
	b.putInt32(&data, int32(len(name)))
	data.WriteString(name)
	b.putInt32(&data, width)
	b.putInt32(&data, int32(len(labels)))
	for _, l := range labels {
		b.putInt32(&data, int32(len(l.Value)))
		data.WriteString(l.Value)
		b.putInt32(&data, int32(len(l.Label)))
		data.WriteString(l.Label)
	}
	return b.Extension(types.SubtypeLongStringValueLabels, 1, int32(data.Len()), data.Bytes())
}

// Raw appends bytes to the dictionary section verbatim
func (b *Builder) Raw(p []byte) *Builder {
	b.records.Write(p)
	return b
}

// Case adds one case. Values are given per dictionary entry, excluding
// continuations: float64 for numeric entries, string for string entries.
func (b *Builder) Case(values ...any) *Builder {
	b.cases = append(b.cases, values)
	return b
}

// RawData replaces the generated data section
func (b *Builder) RawData(p []byte) *Builder {
	b.rawData = p
	return b
}

// Bytes renders the complete file
func (b *Builder) Bytes() []byte {
	var out bytes.Buffer
	b.writeHeader(&out)
	out.Write(b.records.Bytes())
	b.putInt32(&out, types.RecordTypeTerminator)
	b.putInt32(&out, b.filler)

	if b.rawData != nil {
		out.Write(b.rawData)
		return out.Bytes()
	}
	if b.compressed {
		b.writeCompressed(&out)
	} else {
		b.writeUncompressed(&out)
	}
	return out.Bytes()
}

// DictionaryRecords returns the records added so far, without header or terminator
func (b *Builder) DictionaryRecords() []byte {
	return append([]byte(nil), b.records.Bytes()...)
}

// DictionaryLength returns the offset at which the data section starts
func (b *Builder) DictionaryLength() int64 {
	return 176 + int64(b.records.Len()) + 8
}

func (b *Builder) writeHeader(w *bytes.Buffer) {
	w.WriteString(pad(b.magic, 4)[:4])
	w.WriteString(pad(b.product, types.ProductNameSize))
	b.putInt32(w, b.layoutCode)

	obs := int32(b.slots)
	if b.obsPerCase != nil {
		obs = *b.obsPerCase
	}
	b.putInt32(w, obs)

	if b.compressed {
		b.putInt32(w, types.CompressionBytecode)
	} else {
		b.putInt32(w, types.CompressionNone)
	}
	b.putInt32(w, b.weightIndex)

	cases := int32(len(b.cases))
	if b.caseCount != nil {
		cases = *b.caseCount
	}
	b.putInt32(w, cases)
	b.putFloat64(w, b.bias)
	w.WriteString(pad("17 Oct 26", types.CreationDateSize))
	w.WriteString(pad("10:30:00", types.CreationTimeSize))
	w.WriteString(pad(b.label, types.FileLabelSize))
	w.Write(make([]byte, types.HeaderPaddingSize))
}

func (b *Builder) writeUncompressed(w *bytes.Buffer) {
	for _, c := range b.cases {
		for i, v := range c {
			switch val := v.(type) {
			case float64:
				b.putFloat64(w, val)
			case string:
				w.WriteString(pad(val, blocks(b.variables[i].Width)*8))
			}
		}
	}
}

func (b *Builder) writeCompressed(w *bytes.Buffer) {
	bw := &bytecodeWriter{out: w, order: b.order, bias: b.bias}
	for _, c := range b.cases {
		for i, v := range c {
			switch val := v.(type) {
			case float64:
				bw.writeNumber(val)
			case string:
				bw.writeString(val, blocks(b.variables[i].Width))
			}
		}
	}
	if b.endCode {
		bw.push(types.CodeEndOfFile, nil)
	}
	bw.flush()
}

// bytecodeWriter is the encoder mirror of the record decoder
type bytecodeWriter struct {
	out     *bytes.Buffer
	order   binary.ByteOrder
	bias    float64
	command [8]byte
	index   int
	data    bytes.Buffer
}

func (w *bytecodeWriter) push(code byte, literal []byte) {
	w.command[w.index] = code
	w.index++
	w.data.Write(literal)
	if w.index == len(w.command) {
		w.out.Write(w.command[:])
		w.out.Write(w.data.Bytes())
		w.index = 0
		w.data.Reset()
	}
}

func (w *bytecodeWriter) writeNumber(v float64) {
	if math.IsNaN(v) {
		w.push(types.CodeSysMiss, nil)
		return
	}
	code := v + w.bias
	if code >= 1 && code <= float64(types.CodeBiasedMax) && code == math.Trunc(code) {
		w.push(byte(code), nil)
		return
	}
	lit := make([]byte, 8)
	w.order.PutUint64(lit, math.Float64bits(v))
	w.push(types.CodeLiteral, lit)
}

func (w *bytecodeWriter) writeString(s string, n int) {
	s = pad(s, n*8)
	for i := 0; i < n; i++ {
		chunk := s[i*8 : i*8+8]
		if chunk == "        " {
			w.push(types.CodeBlanks, nil)
		} else {
			w.push(types.CodeLiteral, []byte(chunk))
		}
	}
}

func (w *bytecodeWriter) flush() {
	if w.index == 0 {
		return
	}
	for w.index != 0 {
		w.push(types.CodeIgnore, nil)
	}
}

func (b *Builder) putInt32(w *bytes.Buffer, v int32) {
	var buf [4]byte
	b.order.PutUint32(buf[:], uint32(v))
	w.Write(buf[:])
}

func (b *Builder) putFloat64(w *bytes.Buffer, v float64) {
	var buf [8]byte
	b.order.PutUint64(buf[:], math.Float64bits(v))
	w.Write(buf[:])
}

func pad(s string, n int) string {
	if len(s) >= n {
		return s[:n]
	}
	return s + strings.Repeat(" ", n-len(s))
}

func roundUp(n, m int) int {
	return (n + m - 1) / m * m
}

func blocks(width int) int {
	if width <= 0 {
		return 1
	}
	return (width + 7) / 8
}
