package cli

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Format selects how a report is printed.
type Format string

const (
	FormatAuto     Format = "auto"
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Formats lists the accepted --format values.
var Formats = []Format{FormatAuto, FormatText, FormatJSON, FormatMarkdown}

// ParseFormat accepts a --format value. The empty string means auto.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case "":
		return FormatAuto, nil
	case FormatAuto, FormatText, FormatJSON, FormatMarkdown:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown format %q (want one of %v)", s, Formats)
}

// Resolve turns auto into a concrete format: markdown for terminals, JSON for pipes.
func (f Format) Resolve(w io.Writer) Format {
	if f != FormatAuto && f != "" {
		return f
	}
	if IsTerminal(w) {
		return FormatMarkdown
	}
	return FormatJSON
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of w, or 0 when unknown.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}
