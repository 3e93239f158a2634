package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/deploymenttheory/go-sav/internal/disk"
	sessions "github.com/deploymenttheory/go-sav/internal/services"
	"github.com/deploymenttheory/go-sav/internal/variables"
)

// datasetService implements the DatasetService interface
type datasetService struct{}

// NewDatasetService creates a new dataset service instance
func NewDatasetService() DatasetService {
	return &datasetService{}
}

// open creates a session and loads its dictionary
func (s *datasetService) open(path string, opts OpenOptions) (*sessions.Session, error) {
	var sessionOpts []sessions.Option
	if opts.Charset != "" {
		enc, err := disk.LookupCharset(opts.Charset)
		if err != nil {
			return nil, err
		}
		sessionOpts = append(sessionOpts, sessions.WithCharset(opts.Charset, enc))
	}
	if opts.BufferSize > 0 {
		sessionOpts = append(sessionOpts, sessions.WithBufferSize(opts.BufferSize))
	}
	if opts.Trace != nil {
		trace := opts.Trace
		sessionOpts = append(sessionOpts, sessions.WithTrace(func(e sessions.TraceEvent) {
			trace(e.String())
		}))
	}

	session, err := sessions.OpenFile(path, sessionOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	if err := session.LoadDictionary(); err != nil {
		session.Close()
		return nil, fmt.Errorf("failed to load dictionary of %s: %w", path, err)
	}
	return session, nil
}

// Describe decodes the dictionary of a system file
func (s *datasetService) Describe(ctx context.Context, path string, opts OpenOptions, summaries bool) (*DatasetInfo, error) {
	session, err := s.open(path, opts)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if summaries {
		if err := session.LoadAllData(); err != nil {
			return nil, fmt.Errorf("failed to load data of %s: %w", path, err)
		}
	}

	return describe(path, session, summaries), nil
}

func describe(path string, session *sessions.Session, summaries bool) *DatasetInfo {
	h := session.Header()
	info := &DatasetInfo{
		Path:                path,
		SessionID:           session.ID().String(),
		Product:             h.ProductName,
		FileLabel:           h.FileLabel,
		Created:             strings.TrimSpace(h.CreationDate + " " + h.CreationTime),
		ByteOrder:           session.ByteOrder().String(),
		LayoutCode:          h.LayoutCode,
		Compressed:          h.IsCompressed(),
		Bias:                h.Bias,
		CaseCount:           session.CaseCount(),
		ObservationsPerCase: int(h.ObservationsPerCase),
		VariableCount:       session.VariableCount(),
		Charset:             session.Charset(),
		Fingerprint:         fmt.Sprintf("%016x", session.Fingerprint()),
		DataOffset:          session.DataOffset(),
		RecordsLoaded:       session.RecordCount(),
	}

	if w := session.Weight(); w != nil {
		info.Weight = w.Name()
	}
	if m := session.MachineIntegerInfo(); m != nil {
		info.Release = fmt.Sprintf("%d.%d.%d", m.ReleaseMajor, m.ReleaseMinor, m.ReleaseSpecial)
	}
	for _, doc := range session.Documents() {
		info.Documents = append(info.Documents, doc.Lines...)
	}
	for _, ext := range session.Extensions() {
		info.Extensions = append(info.Extensions, ExtensionInfo{
			Subtype: ext.Subtype,
			Size:    ext.Size,
			Count:   ext.Count,
			Offset:  ext.Offset,
		})
	}

	for _, v := range session.Variables() {
		vi := VariableInfo{
			Position:     v.Position(),
			Name:         v.Name(),
			ShortName:    v.ShortName(),
			Label:        v.Label(),
			Type:         v.Kind().String(),
			Width:        v.Width(),
			Decimals:     v.Decimals(),
			Format:       v.SPSSFormat(),
			Measure:      variables.MeasureLabel(v.Measure()),
			Alignment:    variables.AlignmentLabel(v.Alignment()),
			DisplayWidth: v.DisplayWidth(),
			Missing:      v.Missing().String(),
		}
		for _, c := range v.Categories().All() {
			vi.ValueLabels = append(vi.ValueLabels, ValueLabelInfo{Value: c.Key, Label: c.Label, Missing: c.Missing})
		}

		switch tv := v.(type) {
		case *variables.StringVariable:
			vi.Segments = len(tv.Segments())
		case *variables.NumericVariable:
			if summaries {
				vi.Summary = summarise(tv.Summary(), session.Weight() != nil)
			}
		}
		info.Variables = append(info.Variables, vi)
	}

	return info
}

func summarise(sum variables.Summary, weighted bool) *SummaryInfo {
	out := &SummaryInfo{Valid: sum.Valid, Missing: sum.Missing}
	if sum.Valid == 0 {
		return out
	}
	out.Min = finite(sum.Min)
	out.Max = finite(sum.Max)
	out.Mean = finite(sum.Mean())
	if weighted {
		out.WeightedMean = finite(sum.WeightedMean())
	}
	return out
}

func finite(x float64) *float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil
	}
	return &x
}
