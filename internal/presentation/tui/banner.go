package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the schemacheck banner with the running version.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{"           _                          _               _    ", "#34d399"},
		{"  ___  ___| |__   ___ _ __ ___   __ _| |_ ___ _ __ __| | __", "#2dd4bf"},
		{" / __|/ __| '_ \\ / _ \\ '_ ` _ \\ / _` | __/ __| '__/ _` |/ /", "#22d3ee"},
		{" \\__ \\ (__| | | |  __/ | | | | | (_| | || (__| | | (_| <  ", "#38bdf8"},
		{" |___/\\___|_| |_|\\___|_| |_| |_|\\__,_|\\__\\___|_|  \\__,_|\\_\\", "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  v"+version).Faint())
	fmt.Fprintln(w)
}
