package inspect

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deploymenttheory/go-sav/pkg/app"
)

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		request Request
		wantErr bool
	}{
		{name: "valid", request: Request{Target: app.DatasetTarget{Path: "a.sav"}, Rows: 10}},
		{name: "missing path", request: Request{}, wantErr: true},
		{name: "negative rows", request: Request{Target: app.DatasetTarget{Path: "a.sav"}, Rows: -1}, wantErr: true},
		{name: "too many rows", request: Request{Target: app.DatasetTarget{Path: "a.sav"}, Rows: MaxRows + 1}, wantErr: true},
		{name: "empty variable", request: Request{Target: app.DatasetTarget{Path: "a.sav"}, Variables: []string{""}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
