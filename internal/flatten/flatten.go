// Package flatten converts loose JSON or newline-delimited JSON text into a
// uniform tabular row set, flattening nested objects into dotted column
// names.
package flatten

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/MMC-CONVERT2505/reckonex/internal/domain"
)

var (
	// ErrEmptyInput is returned for input that is blank after trimming.
	ErrEmptyInput = errors.New("empty input")

	// ErrUnknownStructure is returned when the parsed document is neither a
	// sequence nor a mapping.
	ErrUnknownStructure = errors.New("unknown JSON structure")
)

// preferredKeys are tried in order against a top-level mapping; the first
// whose value is a sequence supplies the rows.
var preferredKeys = []string{"data", "items", "rows", "results", "records"}

// Parse extracts row records from text. Whole-document JSON is tried first;
// on failure every non-blank line must parse as its own record, and a single
// bad line fails the whole operation.
func Parse(text string) ([]map[string]any, error) {
	text = strings.TrimSpace(strings.TrimPrefix(text, "\uFEFF"))
	if text == "" {
		return nil, ErrEmptyInput
	}

	value, err := decodeDocument(text)
	if err != nil {
		return parseLines(text)
	}

	switch v := value.(type) {
	case []any:
		return wrapAll(v), nil
	case map[string]any:
		for _, key := range preferredKeys {
			if list, ok := v[key].([]any); ok {
				return wrapAll(list), nil
			}
		}

		return []map[string]any{v}, nil
	default:
		return nil, ErrUnknownStructure
	}
}

// decodeDocument parses text as one JSON document. Trailing content after
// the first value (as in NDJSON) is an error so the caller falls back to
// line-wise parsing.
func decodeDocument(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}

	if dec.More() {
		return nil, errors.New("trailing content after JSON document")
	}

	return value, nil
}

func parseLines(text string) ([]map[string]any, error) {
	var rows []map[string]any

	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		value, err := decodeDocument(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}

		rows = append(rows, wrap(value))
	}

	return rows, nil
}

func wrapAll(list []any) []map[string]any {
	rows := make([]map[string]any, 0, len(list))
	for _, element := range list {
		rows = append(rows, wrap(element))
	}

	return rows
}

// wrap coerces a parsed element into a row record; scalars become a single
// "value" column.
func wrap(element any) map[string]any {
	if m, ok := element.(map[string]any); ok {
		return m
	}

	return map[string]any{"value": element}
}

// Table flattens the rows into a named table. Nested mappings become dotted
// columns (parent.child); sequence-valued fields stay single stringified
// cells; null fields stay NULL. Columns appear in first-seen order, with
// keys within each record visited in sorted order.
func Table(name string, rows []map[string]any) *domain.Table {
	table := &domain.Table{Name: name}
	seen := make(map[string]bool)

	for _, record := range rows {
		row := make(domain.Row)
		flattenInto("", record, row, func(column string) {
			if !seen[column] {
				seen[column] = true
				table.Columns = append(table.Columns, column)
			}
		})

		table.Rows = append(table.Rows, row)
	}

	return table
}

func flattenInto(prefix string, record map[string]any, row domain.Row, addColumn func(string)) {
	keys := make([]string, 0, len(record))
	for key := range record {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		column := key
		if prefix != "" {
			column = prefix + "." + key
		}

		switch v := record[key].(type) {
		case map[string]any:
			flattenInto(column, v, row, addColumn)
		case nil:
			addColumn(column)
		default:
			addColumn(column)
			row[column] = stringify(v)
		}
	}
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		// sequences (and anything else) are preserved as one JSON cell
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}

		return string(b)
	}
}
