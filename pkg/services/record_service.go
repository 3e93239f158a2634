package services

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/deploymenttheory/go-sav/internal/format"
	sessions "github.com/deploymenttheory/go-sav/internal/services"
)

// Dump streams at most limit records from disk
func (s *datasetService) Dump(ctx context.Context, path string, opts OpenOptions, limit int, out format.Options) (*DumpResult, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	session, err := s.open(path, opts)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	result := &DumpResult{Header: session.HeaderRow(out)}
	for len(result.Rows) < limit {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fields, err := session.RecordFromDisk(out, false)
		if errors.Is(err, io.EOF) {
			return result, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record %d of %s: %w", len(result.Rows)+1, path, err)
		}
		result.Rows = append(result.Rows, fields)
	}

	result.Truncated = hasMore(session, limit)
	return result, nil
}

// hasMore reports whether records remain after the first n
func hasMore(session *sessions.Session, n int) bool {
	if declared := session.CaseCount(); declared >= 0 {
		return declared > n
	}
	return session.ReadOneRecord(false) == nil
}

// Export streams every record to w
func (s *datasetService) Export(ctx context.Context, path string, opts OpenOptions, w io.Writer, export ExportOptions) (*ExportResult, error) {
	session, err := s.open(path, opts)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	counter := &countingWriter{w: w}
	bw := bufio.NewWriter(counter)
	out := export.Format

	writeRow := func(fields []string) error {
		if _, err := bw.WriteString(sessions.FormatRow(fields, out)); err != nil {
			return err
		}
		return bw.WriteByte('\n')
	}

	if out.IncludeHeader {
		if err := writeRow(session.HeaderRow(out)); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	result := &ExportResult{}
	total := session.CaseCount()
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fields, err := session.RecordFromDisk(out, false)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record %d of %s: %w", result.Records+1, path, err)
		}
		if err := writeRow(fields); err != nil {
			return nil, fmt.Errorf("failed to write record %d: %w", result.Records+1, err)
		}
		result.Records++
		if export.Progress != nil {
			export.Progress(result.Records, total)
		}
	}

	if err := bw.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush output: %w", err)
	}
	result.Bytes = counter.n
	return result, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
