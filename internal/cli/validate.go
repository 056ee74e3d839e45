package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/aretw0/schemacheck/internal/presentation/tui"
	"github.com/aretw0/schemacheck/pkg/domain"
	"github.com/aretw0/schemacheck/pkg/ports"
)

// StdinPath names standard input as the data document.
const StdinPath = "-"

// ValidateOptions describes one validate invocation.
type ValidateOptions struct {
	DataPath   string
	SchemaPath string
	Engine     domain.Engine
	Format     Format
	Out        io.Writer
	In         io.Reader // read when DataPath is StdinPath; defaults to os.Stdin
}

// jsonReport is the machine-readable output of the validate command.
type jsonReport struct {
	Data   string `json:"data"`
	Schema string `json:"schema"`
	*domain.Report
}

// RunValidate checks the data file against the schema file and prints the report.
// It returns whether the data is valid; err is set only when the files could
// not be read, the submission was refused, or the output failed.
func RunValidate(ctx context.Context, checker ports.Checker, opts ValidateOptions) (bool, error) {
	data, err := readDocument(opts.DataPath, opts.In)
	if err != nil {
		return false, err
	}
	schemaDoc, err := readDocument(opts.SchemaPath, nil)
	if err != nil {
		return false, err
	}

	dataName := opts.DataPath
	if dataName == StdinPath {
		dataName = ""
	}

	report, err := checker.CheckDocuments(ctx, domain.Submission{
		DataName:   dataName,
		SchemaName: opts.SchemaPath,
		Data:       data,
		Schema:     schemaDoc,
		Engine:     opts.Engine,
	})
	if err != nil {
		return false, err
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	if err := Render(out, opts.Format, report, tui.Source{Data: opts.DataPath, Schema: opts.SchemaPath}); err != nil {
		return report.Valid, err
	}
	return report.Valid, nil
}

// Render prints report to w in the requested format.
func Render(w io.Writer, format Format, report *domain.Report, src tui.Source) error {
	switch format.Resolve(w) {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(jsonReport{Data: src.Data, Schema: src.Schema, Report: report})
	case FormatMarkdown:
		md := tui.Markdown(report, src)
		if !IsTerminal(w) {
			_, err := io.WriteString(w, md)
			return err
		}
		render, err := tui.NewRenderer(terminalWidth(w))
		if err != nil {
			return err
		}
		styled, err := render(md)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, styled)
		return err
	default:
		tui.WriteText(w, report, src)
		return nil
	}
}

func readDocument(path string, stdin io.Reader) ([]byte, error) {
	if path == StdinPath {
		if stdin == nil {
			stdin = os.Stdin
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
