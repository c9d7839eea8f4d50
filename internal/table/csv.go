package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// FromCSV parses delimited data with a header row into a Table, inferring a
// type per column from the cell values. Column order follows the header.
//
// Inference rules, applied over the non-empty cells of each column:
// all parse as integers -> INT64; all parse as floats -> DOUBLE; all are
// true/false -> BOOLEAN; anything else (or no non-empty cells) -> UTF8.
// Empty cells become nulls in typed columns and stay empty strings in UTF8
// columns. Repeated header labels are made unique (a, a.1, a.2, ...).
func FromCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv has no header row")
	}

	header := dedupeHeader(records[0])
	data := records[1:]

	columns := make([]Column, len(header))
	for i, name := range header {
		columns[i] = Column{Name: name, Type: inferColumnType(data, i)}
	}

	rows := make([][]any, 0, len(data))
	for _, rec := range data {
		row := make([]any, len(columns))
		for i, col := range columns {
			var cell string
			if i < len(rec) {
				cell = rec[i]
			}
			row[i] = convertCell(cell, col.Type)
		}
		rows = append(rows, row)
	}

	return &Table{Columns: columns, Rows: rows}, nil
}

// dedupeHeader appends .1, .2 and so on to repeated header labels. Duplicate
// labels would otherwise collapse into a single Parquet field and corrupt
// the staged file.
func dedupeHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]struct{}, len(header))
	for i, name := range header {
		base := name
		for n := 1; ; n++ {
			if _, taken := seen[name]; !taken {
				break
			}
			name = fmt.Sprintf("%s.%d", base, n)
		}
		seen[name] = struct{}{}
		out[i] = name
	}
	return out
}

func inferColumnType(data [][]string, col int) Type {
	seen := false
	isInt, isFloat, isBool := true, true, true

	for _, rec := range data {
		if col >= len(rec) || rec[col] == "" {
			continue
		}
		seen = true
		cell := rec[col]
		if isInt {
			if _, err := strconv.ParseInt(cell, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				isFloat = false
			}
		}
		if isBool {
			switch strings.ToLower(cell) {
			case "true", "false":
			default:
				isBool = false
			}
		}
		if !isInt && !isFloat && !isBool {
			return TypeString
		}
	}

	switch {
	case !seen:
		return TypeString
	case isBool:
		return TypeBool
	case isInt:
		return TypeInt64
	case isFloat:
		return TypeDouble
	default:
		return TypeString
	}
}

func convertCell(cell string, typ Type) any {
	if cell == "" && typ != TypeString {
		return nil
	}
	switch typ {
	case TypeInt64:
		v, _ := strconv.ParseInt(cell, 10, 64)
		return v
	case TypeDouble:
		v, _ := strconv.ParseFloat(cell, 64)
		return v
	case TypeBool:
		return strings.EqualFold(cell, "true")
	default:
		return cell
	}
}
