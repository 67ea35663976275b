package loader

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/selimozcann/URLTester/internal/model"
)

type jsonDecoder struct{}

// Decode reads a JSON array of objects. Field names match case-insensitively.
// Elements are decoded one by one so a bad element does not hide the others.
func (jsonDecoder) Decode(path string, withDomain bool) ([]*model.Record, []error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, []error{fmt.Errorf("read %s: %w", path, err)}
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, []error{fmt.Errorf("decode JSON: %w", err)}
	}
	return convert(len(elems), func(i int) (rawRecord, error) {
		var raw rawRecord
		err := json.Unmarshal(elems[i], &raw)
		return raw, err
	}, withDomain)
}

// convert decodes n elements in order. Each failing element yields one
// "entry N" error and is skipped.
func convert(n int, decode func(i int) (rawRecord, error), withDomain bool) ([]*model.Record, []error) {
	var (
		records []*model.Record
		errs    []error
	)
	for i := 0; i < n; i++ {
		raw, err := decode(i)
		if err != nil {
			errs = append(errs, fmt.Errorf("entry %d: %w", i+1, err))
			continue
		}
		rec, err := raw.toRecord(withDomain)
		if err != nil {
			errs = append(errs, fmt.Errorf("entry %d: %w", i+1, err))
			continue
		}
		records = append(records, rec)
	}
	return records, errs
}
