// Package loader turns a test file into URL records.
package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/selimozcann/URLTester/internal/model"
)

// Decoder reads a file into records. withDomain is true when no global
// domain was supplied, in which case every record must carry its own.
type Decoder interface {
	Decode(path string, withDomain bool) ([]*model.Record, []error)
}

// ErrUnsupportedExtension is returned by DecoderFor for unknown extensions.
var ErrUnsupportedExtension = errors.New("File Extension is not supported.")

var decoders = map[string]Decoder{
	".csv":  csvDecoder{},
	".json": jsonDecoder{},
	".yaml": yamlDecoder{},
	".yml":  yamlDecoder{},
}

// DecoderFor selects a decoder by the case-insensitive file extension.
func DecoderFor(path string) (Decoder, error) {
	dec, ok := decoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, ErrUnsupportedExtension
	}
	return dec, nil
}

// Extensions lists the registered file extensions in sorted order.
func Extensions() []string {
	exts := make([]string, 0, len(decoders))
	for ext := range decoders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Load decodes filePath into records in file order. Any returned message
// means the load failed: a missing file or an unknown extension yields a
// single fatal message, decoder problems yield non-fatal ones.
func Load(filePath, globalDomain string) ([]*model.Record, []model.ErrorMessage) {
	if info, err := os.Stat(filePath); err != nil || info.IsDir() {
		return nil, []model.ErrorMessage{{
			Message: fmt.Sprintf("Specified file path, %s, does not exist.", filePath),
			Fatal:   true,
		}}
	}

	dec, err := DecoderFor(filePath)
	if err != nil {
		return nil, []model.ErrorMessage{{Message: err.Error(), Fatal: true}}
	}

	records, decodeErrs := dec.Decode(filePath, globalDomain == "")
	var msgs []model.ErrorMessage
	for _, e := range decodeErrs {
		msgs = append(msgs, model.ErrorMessage{Message: e.Error()})
	}
	return records, msgs
}

// rawRecord is the shape shared by every decoder. Keys match
// case-insensitively in every format.
type rawRecord struct {
	Domain           string `json:"domain"`
	URL              string `json:"URL"`
	ExpectedRedirect string `json:"expectedRedirect"`
}

func (raw rawRecord) toRecord(withDomain bool) (*model.Record, error) {
	rec := &model.Record{
		URL:              strings.TrimSpace(raw.URL),
		ExpectedRedirect: strings.TrimSpace(raw.ExpectedRedirect),
	}
	if rec.URL == "" {
		return nil, errors.New("URL is required")
	}
	if withDomain {
		rec.BaseDomain = strings.TrimSpace(raw.Domain)
		if rec.BaseDomain == "" {
			return nil, errors.New("domain is required when no base domain is given")
		}
	}
	return rec, nil
}
