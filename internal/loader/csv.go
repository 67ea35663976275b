package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/selimozcann/URLTester/internal/model"
)

type csvDecoder struct{}

// Decode reads a CSV file with a header row naming the URL and
// expectedRedirect columns, plus domain when withDomain is set.
func (csvDecoder) Decode(path string, withDomain bool) ([]*model.Record, []error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, []error{fmt.Errorf("open %s: %w", path, err)}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, []error{errors.New("CSV file is empty")}
	}
	if err != nil {
		return nil, []error{fmt.Errorf("read CSV header: %w", err)}
	}

	cols, err := mapColumns(header, withDomain)
	if err != nil {
		return nil, []error{err}
	}

	var (
		records []*model.Record
		errs    []error
	)
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			errs = append(errs, err)
			if errors.Is(err, csv.ErrFieldCount) {
				continue
			}
			break
		}

		line, _ := r.FieldPos(0)
		raw := rawRecord{URL: row[cols.url], ExpectedRedirect: row[cols.expected]}
		if cols.domain >= 0 {
			raw.Domain = row[cols.domain]
		}
		rec, err := raw.toRecord(withDomain)
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		records = append(records, rec)
	}
	return records, errs
}

type columns struct {
	url      int
	expected int
	domain   int
}

func mapColumns(header []string, withDomain bool) (columns, error) {
	cols := columns{url: -1, expected: -1, domain: -1}
	for i, name := range header {
		name = strings.TrimPrefix(name, "\ufeff")
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "url":
			cols.url = i
		case "expectedredirect":
			cols.expected = i
		case "domain":
			cols.domain = i
		}
	}
	switch {
	case cols.url < 0:
		return cols, errors.New("CSV header is missing the URL column")
	case cols.expected < 0:
		return cols, errors.New("CSV header is missing the expectedRedirect column")
	case withDomain && cols.domain < 0:
		return cols, errors.New("CSV header is missing the domain column and no base domain was given")
	}
	return cols, nil
}
