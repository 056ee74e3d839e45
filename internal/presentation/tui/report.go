package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/aretw0/schemacheck/pkg/domain"
)

// Source names the documents a report was produced from.
type Source struct {
	Data   string
	Schema string
}

// Markdown renders a report as a markdown document.
func Markdown(r *domain.Report, src Source) string {
	var b strings.Builder

	if r.Valid {
		b.WriteString("# ✅ Valid\n\n")
	} else {
		b.WriteString("# ❌ Invalid\n\n")
	}

	fmt.Fprintf(&b, "| | |\n|---|---|\n")
	if src.Data != "" {
		fmt.Fprintf(&b, "| **Data** | `%s` |\n", src.Data)
	}
	if src.Schema != "" {
		fmt.Fprintf(&b, "| **Schema** | `%s` |\n", src.Schema)
	}
	fmt.Fprintf(&b, "| **Engine** | %s |\n", r.Engine)
	fmt.Fprintf(&b, "| **Duration** | %s |\n", r.Duration)
	if r.ID != "" {
		fmt.Fprintf(&b, "| **Report** | `%s` |\n", r.ID)
	}

	if len(r.Violations) == 0 {
		return b.String()
	}

	fmt.Fprintf(&b, "\n## %d violation%s\n\n", len(r.Violations), plural(len(r.Violations)))
	b.WriteString("| Path | Kind | Message |\n|---|---|---|\n")
	for _, v := range r.Violations {
		path := v.Path
		if path == "" {
			path = "(root)"
		}
		fmt.Fprintf(&b, "| `%s` | %s | %s |\n", path, v.Kind, escapeCell(v.Message))
	}
	return b.String()
}

// WriteText writes a report as plain lines, coloured when out supports it.
func WriteText(w io.Writer, r *domain.Report, src Source) {
	out := termenv.NewOutput(w)

	label := src.Data
	if label == "" {
		label = "document"
	}

	if r.Valid {
		fmt.Fprintf(w, "%s %s is valid (%s)\n", out.String("✔").Foreground(out.Color("2")), label, r.Engine)
		return
	}

	fmt.Fprintf(w, "%s %s is invalid (%s): %d violation%s\n",
		out.String("✘").Foreground(out.Color("1")), label, r.Engine,
		len(r.Violations), plural(len(r.Violations)))
	for _, v := range r.Violations {
		if v.Kind.Document() && v.Path == "" {
			fmt.Fprintf(w, "  - %s\n", v.Message)
			continue
		}
		fmt.Fprintf(w, "  - %s: %s\n", out.String(v.Path).Bold(), v.Message)
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func escapeCell(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}
