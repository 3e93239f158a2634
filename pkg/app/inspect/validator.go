package inspect

import (
	"github.com/deploymenttheory/go-sav/pkg/app"
)

// MaxRows bounds the number of records a dump may print
const MaxRows = 100000

// Validate validates an inspection request
func (r *Request) Validate() error {
	if err := r.Target.Validate(); err != nil {
		return err
	}

	if r.Rows < 0 || r.Rows > MaxRows {
		return app.NewError(app.ErrCodeInvalidInput, "rows must be between 0 and 100000", nil)
	}

	for _, name := range r.Variables {
		if name == "" {
			return app.NewError(app.ErrCodeInvalidInput, "variable names must not be empty", nil)
		}
	}

	return nil
}
