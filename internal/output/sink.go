package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Sink delivers report lines to the console and, optionally, to a file.
type Sink struct {
	Console io.Writer
	// Decorate is applied to console lines only, e.g. to add color.
	Decorate func(string) string
	// NoOverwrite picks a new file name instead of replacing an existing file.
	NoOverwrite bool
}

// Write persists lines to path when it is non-empty, then prints them to the
// console. It returns the path actually written. Console output happens even
// if the file cannot be written.
func (s Sink) Write(lines []string, path string) (string, error) {
	var fileErr error
	if path != "" {
		if s.NoOverwrite {
			path = UniquePath(path)
		}
		fileErr = writeFile(path, lines)
	}

	if s.Console != nil {
		w := bufio.NewWriter(s.Console)
		for _, line := range lines {
			if s.Decorate != nil {
				line = s.Decorate(line)
			}
			fmt.Fprintln(w, line)
		}
		if err := w.Flush(); err != nil && fileErr == nil {
			return path, fmt.Errorf("write console: %w", err)
		}
	}

	if fileErr != nil {
		return path, fileErr
	}
	return path, nil
}

func writeFile(path string, lines []string) error {
	if err := ensureDir(path); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, line := range lines {
		if _, err := w.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("write output file: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	return nil
}

// UniquePath returns path if nothing exists there, otherwise the first free
// "<name> <n><ext>" in the same directory.
func UniquePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	name := strings.TrimSuffix(filepath.Base(path), ext)
	for i := 1; ; i++ {
		candidate := filepath.Join(dir, name+" "+strconv.Itoa(i)+ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
