package inspect

import (
	"strings"
	"time"

	"github.com/deploymenttheory/go-sav/pkg/app"
	"github.com/deploymenttheory/go-sav/pkg/services"
)

// Handle processes an inspection request
func Handle(ctx *app.Context, svc services.DatasetService, req *Request) (*Response, error) {
	startTime := time.Now()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx.Logf("Inspecting %s", req.Target.String())
	ctx.Progress("Reading dictionary...", 10)

	info, err := svc.Describe(ctx, req.Target.Path, req.Target.OpenOptions(ctx.Trace()), req.Summaries)
	if err != nil {
		return nil, app.NewError(app.ErrCodeDecode, "failed to describe dataset", err)
	}
	ctx.Logf("Dictionary: %d variables, %d cases, charset %s", info.VariableCount, info.CaseCount, info.Charset)

	if len(req.Variables) > 0 {
		selected, err := selectVariables(info.Variables, req.Variables)
		if err != nil {
			return nil, err
		}
		info.Variables = selected
	}

	response := &Response{Dataset: info}

	if req.Rows > 0 {
		ctx.Progress("Reading records...", 50)
		records, err := svc.Dump(ctx, req.Target.Path, req.Target.OpenOptions(nil), req.Rows, req.Format)
		if err != nil {
			return nil, app.NewError(app.ErrCodeDecode, "failed to read records", err)
		}
		response.Records = records
		ctx.Logf("Read %d records", len(records.Rows))
	}

	response.Duration = time.Since(startTime)
	ctx.Progress("Complete", 100)
	return response, nil
}

// selectVariables keeps the named variables in dictionary order. Names match
// long or short names case-insensitively.
func selectVariables(all []services.VariableInfo, names []string) ([]services.VariableInfo, error) {
	var selected []services.VariableInfo
	found := make(map[string]bool, len(names))

	for _, v := range all {
		for _, name := range names {
			if strings.EqualFold(v.Name, name) || strings.EqualFold(v.ShortName, name) {
				selected = append(selected, v)
				found[strings.ToLower(name)] = true
				break
			}
		}
	}

	for _, name := range names {
		if !found[strings.ToLower(name)] {
			return nil, app.NewError(app.ErrCodeInvalidInput, "unknown variable "+name, nil)
		}
	}
	return selected, nil
}
