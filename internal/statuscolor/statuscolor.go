package statuscolor

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
	gray   = color.New(color.FgHiBlack)
)

func colorFor(status int) *color.Color {
	switch {
	case status == 0:
		return gray
	case status >= 400:
		return red
	case status >= 300:
		return yellow
	case status == http.StatusOK:
		return green
	default:
		return yellow
	}
}

// WrapByStatus wraps the provided text with the color that corresponds to the
// supplied status code.
func WrapByStatus(text string, status int) string {
	return colorFor(status).Sprint(text)
}

// Result renders a test outcome as a colored Passed or Failed.
func Result(passed bool) string {
	if passed {
		return green.Sprint("Passed")
	}
	return red.Sprint("Failed")
}

// Line colors the result and response code columns of a report line. Lines
// without a result column, such as the header, are returned unchanged.
func Line(line string) string {
	parts := strings.SplitN(line, ", ", 4)
	if len(parts) < 4 || (parts[1] != "Passed" && parts[1] != "Failed") {
		return line
	}
	status, err := strconv.Atoi(parts[2])
	if err != nil {
		return line
	}
	parts[1] = Result(parts[1] == "Passed")
	parts[2] = WrapByStatus(parts[2], status)
	return strings.Join(parts, ", ")
}
