// Package dataset loads local fixture data into execution engines.
package dataset

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/tablevet/tablevet/internal/engine/dataframe"
	"github.com/tablevet/tablevet/internal/engine/memtable"
)

// LoadCSV reads a CSV file with a header row into an in-memory table. All
// cells stay strings, the shape the string-integer expectations operate on.
func LoadCSV(log logrus.FieldLogger, name, path string) (*memtable.Table, error) {
	log = log.WithField("component", "dataset_loader")

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening csv file: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv file: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv file %s has no header row", path)
	}

	header := records[0]
	columns := make([]memtable.Column, len(header))
	for i, colName := range header {
		values := make([]any, 0, len(records)-1)
		for _, record := range records[1:] {
			values = append(values, record[i])
		}
		columns[i] = memtable.Column{Name: colName, Values: values}
	}

	table, err := memtable.NewTable(name, columns)
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"path":    path,
		"rows":    table.Rows(),
		"columns": len(header),
	}).Debug("loaded csv dataset")

	return table, nil
}

// LoadNDJSON reads newline-delimited JSON records into a frame, inferring a
// nested schema from the first record.
func LoadNDJSON(log logrus.FieldLogger, path string) (*dataframe.Frame, error) {
	log = log.WithField("component", "dataset_loader")

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ndjson file: %w", err)
	}
	defer f.Close()

	var rows []dataframe.Row
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var row dataframe.Row
		if err := json.Unmarshal(line, &row); err != nil {
			return nil, fmt.Errorf("parsing ndjson record %d: %w", len(rows)+1, err)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ndjson file: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("ndjson file %s has no records", path)
	}

	schema := dataframe.Schema{Fields: inferFields(rows[0])}

	log.WithFields(logrus.Fields{
		"path": path,
		"rows": len(rows),
	}).Debug("loaded ndjson dataset")

	return dataframe.NewFrame(schema, rows), nil
}

// inferFields derives schema fields from one record, recursing into nested
// objects. Keys come out sorted for a stable schema.
func inferFields(record map[string]any) []dataframe.Field {
	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]dataframe.Field, 0, len(keys))
	for _, k := range keys {
		switch v := record[k].(type) {
		case map[string]any:
			fields = append(fields, dataframe.StructField{Name: k, Fields: inferFields(v)})
		case string:
			fields = append(fields, dataframe.LeafField{Name: k, Type: "string"})
		case bool:
			fields = append(fields, dataframe.LeafField{Name: k, Type: "boolean"})
		case float64:
			fields = append(fields, dataframe.LeafField{Name: k, Type: "double"})
		default:
			fields = append(fields, dataframe.LeafField{Name: k, Type: "string"})
		}
	}
	return fields
}
