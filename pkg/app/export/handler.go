package export

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/deploymenttheory/go-sav/pkg/app"
	"github.com/deploymenttheory/go-sav/pkg/services"
)

// Handle processes an export request
func Handle(ctx *app.Context, svc services.DatasetService, req *Request) (*Response, error) {
	startTime := time.Now()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	compression, _ := ParseCompression(string(req.Compression))

	response := &Response{
		ID:          uuid.New().String(),
		Source:      req.Target.Path,
		OutputPath:  req.OutputPath,
		Format:      req.Format.Kind.String(),
		Compression: compression,
	}

	ctx.Logf("Exporting %s to %s (%s, compression %s)", req.Target.String(), req.OutputPath, response.Format, compression)
	ctx.Progress("Opening output...", 0)

	digest, err := writeExport(ctx, svc, req, compression, response)
	if err != nil {
		os.Remove(req.OutputPath)
		return nil, err
	}
	response.Checksum = formatChecksum(digest)
	ctx.Logf("Wrote %d records, %d bytes of text, %d bytes on disk", response.Records, response.TextBytes, response.FileBytes)

	if req.Verify {
		ctx.Progress("Verifying output...", 95)
		sum, n, err := ChecksumFile(req.OutputPath, compression)
		if err != nil {
			return nil, app.NewError(app.ErrCodeOutput, "failed to verify output", err)
		}
		if sum != response.Checksum || n != response.TextBytes {
			return nil, app.NewError(app.ErrCodeOutput,
				fmt.Sprintf("verification failed: checksum %s over %d bytes, expected %s over %d bytes", sum, n, response.Checksum, response.TextBytes), nil)
		}
		response.Verified = true
	}

	if req.Manifest {
		path, err := writeManifest(ctx, svc, req, response)
		if err != nil {
			return nil, err
		}
		response.ManifestPath = path
	}

	response.Duration = time.Since(startTime)
	ctx.Progress("Complete", 100)
	return response, nil
}

// writeExport streams the records through the codec into the output file and
// returns the digest of the uncompressed text
func writeExport(ctx *app.Context, svc services.DatasetService, req *Request, compression Compression, response *Response) (uint64, error) {
	f, err := os.Create(req.OutputPath)
	if err != nil {
		return 0, app.NewError(app.ErrCodeFileAccess, "failed to create output file", err)
	}
	defer f.Close()

	file := &countingWriter{w: f}
	codec, err := newCompressor(compression, file)
	if err != nil {
		return 0, app.NewError(app.ErrCodeOutput, "failed to create compressor", err)
	}

	digest := xxhash.New()
	started := time.Now()
	result, err := svc.Export(ctx, req.Target.Path, req.Target.OpenOptions(ctx.Trace()), io.MultiWriter(codec, digest), services.ExportOptions{
		Format: req.Format,
		Progress: func(done, total int) {
			if done%progressInterval != 0 && done != total {
				return
			}
			update := app.ProgressUpdate{
				Completed:   int64(done),
				Total:       int64(total),
				StartedAt:   started,
				ElapsedTime: time.Since(started),
			}
			update.Message = progressMessage(&update)
			ctx.Progress(update.Message, update.Percent()*90/100)
		},
	})
	if err != nil {
		codec.Close()
		return 0, app.NewError(app.ErrCodeDecode, "failed to export records", err)
	}

	if err := codec.Close(); err != nil {
		return 0, app.NewError(app.ErrCodeOutput, "failed to flush compressor", err)
	}
	if err := f.Close(); err != nil {
		return 0, app.NewError(app.ErrCodeOutput, "failed to close output file", err)
	}

	response.Records = result.Records
	response.TextBytes = result.Bytes
	response.FileBytes = file.n
	return digest.Sum64(), nil
}

func writeManifest(ctx *app.Context, svc services.DatasetService, req *Request, response *Response) (string, error) {
	info, err := svc.Describe(ctx, req.Target.Path, req.Target.OpenOptions(nil), false)
	if err != nil {
		return "", app.NewError(app.ErrCodeDecode, "failed to describe dataset", err)
	}

	m := &Manifest{
		ID:          response.ID,
		Source:      req.Target.Path,
		Fingerprint: info.Fingerprint,
		Charset:     info.Charset,
		Output:      req.OutputPath,
		Format:      response.Format,
		Header:      req.Format.IncludeHeader,
		Compression: response.Compression,
		Records:     response.Records,
		TextBytes:   response.TextBytes,
		Checksum:    response.Checksum,
		Created:     time.Now().UTC().Truncate(time.Second),
	}
	if separator := req.Format.Separator(); separator != "" {
		m.Delimiter = separator
	}

	path := ManifestPath(req.OutputPath)
	if err := WriteManifest(path, m); err != nil {
		return "", app.NewError(app.ErrCodeOutput, "failed to write manifest", err)
	}
	ctx.Logf("Manifest written to %s", path)
	return path, nil
}

// ChecksumFile decompresses an export file and returns the checksum and length
// of its text
func ChecksumFile(path string, compression Compression) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	r, err := newDecompressor(compression, f)
	if err != nil {
		return "", 0, err
	}
	defer r.Close()

	digest := xxhash.New()
	n, err := io.Copy(digest, r)
	if err != nil {
		return "", 0, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return formatChecksum(digest.Sum64()), n, nil
}

// progressInterval is the number of records between progress reports
const progressInterval = 1000

func progressMessage(p *app.ProgressUpdate) string {
	if p.Total <= 0 {
		return fmt.Sprintf("Exported %d records (%.0f/s)", p.Completed, p.Rate())
	}
	return fmt.Sprintf("Exported %d of %d records (%.0f/s, %v remaining)", p.Completed, p.Total, p.Rate(), p.ETA().Round(time.Second))
}

func formatChecksum(sum uint64) string {
	return fmt.Sprintf("xxhash64:%016x", sum)
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
