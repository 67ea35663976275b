package banner

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestPrint(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	var buf bytes.Buffer
	Print(&buf, "1.3.1")

	out := buf.String()
	if !strings.Contains(out, "URLTester 1.3.1") {
		t.Fatalf("banner is missing the title:\n%s", out)
	}
	if strings.Count(out, "\n") < 5 {
		t.Fatalf("banner is missing the figure:\n%s", out)
	}
}
