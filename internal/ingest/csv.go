// Package ingest loads the raw survey export. The loader is the single
// asynchronous boundary of the pipeline: a load failure is reported to the
// caller and nothing downstream runs.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"surveycore/internal/survey"
)

// ReadAll parses a header-keyed delimited export into raw records. Column
// headers are the literal question texts; each row maps header to verbatim
// cell value. Short rows are tolerated (missing cells simply absent from the
// record) because the forms export pads unevenly on trailing blanks.
func ReadAll(r io.Reader) ([]survey.Raw, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var raws []survey.Raw
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(raws)+2, err)
		}
		raw := make(survey.Raw, len(header))
		for i, question := range header {
			if i < len(row) {
				raw[question] = row[i]
			}
		}
		raws = append(raws, raw)
	}
	return raws, nil
}

// ReadFile loads an export from disk.
func ReadFile(path string) ([]survey.Raw, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadAll(f)
}
