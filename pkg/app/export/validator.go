package export

import (
	"os"
	"path/filepath"

	"github.com/deploymenttheory/go-sav/internal/format"
	"github.com/deploymenttheory/go-sav/pkg/app"
)

// Validate validates an export request
func (r *Request) Validate() error {
	if err := r.Target.Validate(); err != nil {
		return err
	}

	if r.OutputPath == "" {
		return app.NewError(app.ErrCodeInvalidInput, "output path is required", nil)
	}
	if same(r.OutputPath, r.Target.Path) {
		return app.NewError(app.ErrCodeInvalidInput, "output path must differ from the dataset path", nil)
	}
	if _, err := ParseCompression(string(r.Compression)); err != nil {
		return app.NewError(app.ErrCodeInvalidInput, "invalid compression", err)
	}
	if r.Format.Kind == format.Delimited && r.Format.Delimiter == 0 {
		return app.NewError(app.ErrCodeInvalidInput, "delimited output needs a delimiter", nil)
	}

	if !r.Overwrite {
		if _, err := os.Stat(r.OutputPath); err == nil {
			return app.NewError(app.ErrCodeInvalidInput, "output file already exists: "+r.OutputPath, nil)
		}
	}

	return nil
}

func same(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}
