package output

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/selimozcann/URLTester/internal/model"
)

// Row is one line of the JSONL export.
type Row struct {
	Row              int    `json:"row"`
	Result           string `json:"result"`
	URL              string `json:"url"`
	Domain           string `json:"domain,omitempty"`
	ExpectedRedirect string `json:"expected_redirect"`
	ActualRedirect   string `json:"actual_redirect"`
	StatusCode       int    `json:"status_code"`
	Status           string `json:"status"`
	Error            string `json:"error,omitempty"`
}

// BuildRow converts a record at report row n into a Row.
func BuildRow(n int, rec *model.Record) Row {
	result := "passed"
	if rec.Failed {
		result = "failed"
	}
	return Row{
		Row:              n,
		Result:           result,
		URL:              rec.URL,
		Domain:           rec.BaseDomain,
		ExpectedRedirect: rec.ExpectedRedirect,
		ActualRedirect:   rec.ActualRedirect,
		StatusCode:       rec.StatusCode,
		Status:           StatusText(rec.StatusCode),
		Error:            rec.ErrorMessage,
	}
}

// WriteJSONL writes each record as a JSON line to w.
func WriteJSONL(w io.Writer, records []*model.Record) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for i, rec := range records {
		if err := enc.Encode(BuildRow(i+1, rec)); err != nil {
			return err
		}
	}
	return bw.Flush()
}
