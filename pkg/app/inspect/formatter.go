package inspect

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/deploymenttheory/go-sav/pkg/services"
)

// FormatOutput writes inspection results in the requested output format
func FormatOutput(w io.Writer, response *Response, format string) error {
	switch format {
	case "json":
		return formatJSON(w, response)
	case "yaml":
		return formatYAML(w, response)
	case "table", "":
		return formatTable(w, response)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// formatTable writes the dictionary summary, the variable table and any dumped records
func formatTable(w io.Writer, response *Response) error {
	info := response.Dataset

	fmt.Fprintf(w, "File:        %s\n", info.Path)
	if info.FileLabel != "" {
		fmt.Fprintf(w, "Label:       %s\n", info.FileLabel)
	}
	fmt.Fprintf(w, "Product:     %s\n", info.Product)
	fmt.Fprintf(w, "Created:     %s\n", info.Created)
	fmt.Fprintf(w, "Layout:      %d, %s\n", info.LayoutCode, info.ByteOrder)
	fmt.Fprintf(w, "Compressed:  %s\n", compression(info))
	fmt.Fprintf(w, "Cases:       %s\n", caseCount(info.CaseCount))
	fmt.Fprintf(w, "Variables:   %d\n", info.VariableCount)
	fmt.Fprintf(w, "Charset:     %s\n", info.Charset)
	if info.Weight != "" {
		fmt.Fprintf(w, "Weight:      %s\n", info.Weight)
	}
	fmt.Fprintf(w, "Fingerprint: %s\n", info.Fingerprint)

	if len(info.Documents) > 0 {
		fmt.Fprintf(w, "\nDocuments:\n")
		for _, line := range info.Documents {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "POS\tNAME\tTYPE\tFORMAT\tMEASURE\tMISSING\tLABEL\n")
	fmt.Fprintf(tw, "---\t----\t----\t------\t-------\t-------\t-----\n")
	for _, v := range info.Variables {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			v.Position, v.Name, v.Type, v.Format, v.Measure, v.Missing, v.Label)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	formatValueLabels(w, info.Variables)
	formatSummaries(w, info.Variables)

	if response.Records != nil {
		formatRecords(w, response.Records)
	}
	return nil
}

func formatValueLabels(w io.Writer, vars []services.VariableInfo) {
	for _, v := range vars {
		labelled := 0
		for _, c := range v.ValueLabels {
			if c.Label != "" || c.Missing {
				labelled++
			}
		}
		if labelled == 0 {
			continue
		}

		fmt.Fprintf(w, "\n%s:\n", v.Name)
		for _, c := range v.ValueLabels {
			marker := ""
			if c.Missing {
				marker = " (missing)"
			}
			fmt.Fprintf(w, "  %-12s %s%s\n", c.Value, c.Label, marker)
		}
	}
}

func formatSummaries(w io.Writer, vars []services.VariableInfo) {
	header := false
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, v := range vars {
		s := v.Summary
		if s == nil {
			continue
		}
		if !header {
			fmt.Fprintln(w)
			fmt.Fprintf(tw, "NAME\tVALID\tMISSING\tMIN\tMAX\tMEAN\tWEIGHTED\t\n")
			header = true
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\t%s\t\n",
			v.Name, s.Valid, s.Missing, number(s.Min), number(s.Max), number(s.Mean), number(s.WeightedMean))
	}
	tw.Flush()
}

func formatRecords(w io.Writer, records *services.DumpResult) {
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(trimAll(records.Header), "\t"))
	for _, row := range records.Rows {
		fmt.Fprintln(tw, strings.Join(trimAll(row), "\t"))
	}
	tw.Flush()

	if records.Truncated {
		fmt.Fprintf(w, "\n(showing first %d records)\n", len(records.Rows))
	}
}

func trimAll(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = strings.TrimSpace(f)
	}
	return out
}

func number(x *float64) string {
	if x == nil {
		return "."
	}
	return fmt.Sprintf("%.4g", *x)
}

func compression(info *services.DatasetInfo) string {
	if !info.Compressed {
		return "no"
	}
	return fmt.Sprintf("bytecode, bias %g", info.Bias)
}

func caseCount(n int) string {
	if n < 0 {
		return "unknown"
	}
	return fmt.Sprintf("%d", n)
}

// formatJSON formats results as JSON
func formatJSON(w io.Writer, response *Response) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

// formatYAML formats results as YAML
func formatYAML(w io.Writer, response *Response) error {
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()
	encoder.SetIndent(2)
	return encoder.Encode(response)
}

// FormatSummary provides a brief summary for verbose output
func FormatSummary(response *Response) string {
	info := response.Dataset
	summary := fmt.Sprintf("%d variable", info.VariableCount)
	if info.VariableCount != 1 {
		summary += "s"
	}
	summary += ", " + caseCount(info.CaseCount) + " cases"
	if response.Records != nil {
		summary += fmt.Sprintf(", %d records shown", len(response.Records.Rows))
	}
	return summary + fmt.Sprintf(" in %v", response.Duration)
}
