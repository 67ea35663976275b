package banner

import (
	"fmt"
	"io"

	"github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"
)

// Title is the line printed before any run output.
func Title(version string) string {
	return "URLTester " + version
}

// Print writes the startup banner followed by the title line to w.
func Print(w io.Writer, version string) {
	art := figure.NewFigure("URLTESTER", "doom", true).String()

	red := color.New(color.FgRed)
	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)

	_, _ = red.Fprint(w, art)
	_, _ = cyan.Fprintln(w, "════════════════════════════════════════════════")
	_, _ = green.Fprintf(w, "    Redirect regression tester | %s\n", Title(version))
	_, _ = cyan.Fprintln(w, "════════════════════════════════════════════════")
	fmt.Fprintln(w)
}
