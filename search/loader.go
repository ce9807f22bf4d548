package search

import (
	"errors"
	"io"
	"os"
	"strconv"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/benz9527/xsearch/lib/infra"
)

// The records file is a YAML sequence:
//
//	- title: The Go Programming Language
//	  url: https://go.dev/
//	  score: 98
type recordSource struct {
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
	Score string `yaml:"score"`
}

// LoadRecords returns the valid records and the multierr aggregate of
// the invalid ones. An empty document is no records.
func LoadRecords(r io.Reader) ([]*Record, error) {
	var sources []recordSource
	if err := yaml.NewDecoder(r).Decode(&sources); err != nil {
		if errors.Is(err, io.EOF) {
			return []*Record{}, nil
		}
		return nil, infra.WrapErrorStackWithMessage(err, "[xsearch] decode records")
	}

	var merr error
	records := make([]*Record, 0, len(sources))
	for i, src := range sources {
		score, err := ParseScore(src.Score)
		if err != nil {
			merr = multierr.Append(merr, infra.WrapErrorStackWithMessage(err, "[xsearch] record #"+strconv.Itoa(i)))
			continue
		}
		record, err := NewRecord(src.Title, src.URL, score)
		if err != nil {
			merr = multierr.Append(merr, infra.WrapErrorStackWithMessage(err, "[xsearch] record #"+strconv.Itoa(i)))
			continue
		}
		records = append(records, record)
	}
	return records, merr
}

func LoadRecordsFile(path string) ([]*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[xsearch] open records file")
	}
	defer func() {
		_ = f.Close()
	}()
	return LoadRecords(f)
}
