package output

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/selimozcann/URLTester/internal/model"
)

// Header is the first line of every report.
const Header = "0, Row Number, Test Result, Response Code, Response, url, expected url, actual url, error"

// emptyError is rendered in the error column of records without an error.
const emptyError = `""`

var statusNameReplacer = strings.NewReplacer(" ", "", "-", "", "'", "")

// StatusText returns the compact name of an HTTP status, such as OK or
// MovedPermanently. Unknown codes, including 0, render as the number.
func StatusText(code int) string {
	text := http.StatusText(code)
	if text == "" {
		return strconv.Itoa(code)
	}
	return statusNameReplacer.Replace(text)
}

// Format renders the report lines for records: the header followed by one
// line per record in file order.
func Format(records []*model.Record) []string {
	lines := make([]string, 0, len(records)+1)
	lines = append(lines, Header)
	for i, rec := range records {
		lines = append(lines, FormatRow(i+1, rec))
	}
	return lines
}

// FormatRow renders a single record as report row n.
func FormatRow(n int, rec *model.Record) string {
	result := "Passed"
	if rec.Failed {
		result = "Failed"
	}
	errMsg := rec.ErrorMessage
	if errMsg == "" {
		errMsg = emptyError
	}
	return fmt.Sprintf("%d, %s, %d, %s, %s, %s, %s, %s",
		n, result, rec.StatusCode, StatusText(rec.StatusCode),
		rec.URL, rec.ExpectedRedirect, rec.ActualRedirect, errMsg)
}

// FormatErrors renders one line per error message.
func FormatErrors(msgs []model.ErrorMessage) []string {
	lines := make([]string, len(msgs))
	for i, m := range msgs {
		lines[i] = m.Message
	}
	return lines
}
