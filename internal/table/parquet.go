package table

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/xitongsys/parquet-go-source/local"
	writerfile "github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

const parquetParallelism = 4

// WriteParquet serializes the table to a Parquet file at path, truncating
// any existing file. Column order and labels are preserved as-is; no row
// index column is added.
func (t *Table) WriteParquet(path string) error {
	pf, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("create parquet file: %w", err)
	}
	if err := t.writeTo(pf); err != nil {
		_ = pf.Close()
		return err
	}
	return pf.Close()
}

// WriteParquetTo serializes the table to w, used for in-memory uploads.
func (t *Table) WriteParquetTo(w io.Writer) error {
	pf := writerfile.NewWriterFile(w)
	if err := t.writeTo(pf); err != nil {
		_ = pf.Close()
		return err
	}
	return pf.Close()
}

func (t *Table) writeTo(pf source.ParquetFile) error {
	pw, err := writer.NewJSONWriter(t.parquetSchema(), pf, parquetParallelism)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, row := range t.Rows {
		obj := make(map[string]any, len(t.Columns))
		for i, col := range t.Columns {
			obj[col.Name] = row[i]
		}
		data, err := json.Marshal(obj)
		if err != nil {
			return fmt.Errorf("encode row: %w", err)
		}
		if err := pw.Write(string(data)); err != nil {
			_ = pw.WriteStop()
			return fmt.Errorf("write parquet row: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("finalize parquet file: %w", err)
	}
	return nil
}

// parquetSchema builds the JSON schema definition consumed by the parquet
// writer, one optional field per column.
func (t *Table) parquetSchema() string {
	fields := make([]map[string]string, 0, len(t.Columns))
	for _, col := range t.Columns {
		fields = append(fields, map[string]string{
			"Tag": fmt.Sprintf("name=%s, %s, repetitiontype=OPTIONAL", col.Name, parquetTypeClause(col.Type)),
		})
	}
	out := map[string]any{
		"Tag":    "name=parquet_go_root, repetitiontype=REQUIRED",
		"Fields": fields,
	}
	b, _ := json.Marshal(out)
	return string(b)
}

func parquetTypeClause(typ Type) string {
	switch typ {
	case TypeInt64:
		return "type=INT64"
	case TypeDouble:
		return "type=DOUBLE"
	case TypeBool:
		return "type=BOOLEAN"
	default:
		return "type=BYTE_ARRAY, convertedtype=UTF8"
	}
}

// ReadParquet loads a Parquet file written by WriteParquet back into a
// Table. Column labels come back verbatim from the file schema.
func ReadParquet(path string) (*Table, error) {
	pf, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}
	defer pf.Close()

	pr, err := reader.NewParquetReader(pf, nil, parquetParallelism)
	if err != nil {
		return nil, fmt.Errorf("read parquet schema: %w", err)
	}
	defer pr.ReadStop()

	columns, fieldNames := columnsFromSchema(pr)

	num := int(pr.GetNumRows())
	raw, err := pr.ReadByNumber(num)
	if err != nil {
		return nil, fmt.Errorf("read parquet rows: %w", err)
	}

	// The reader yields dynamically generated structs that marshal under
	// their generated Go field names, not the original labels; round-trip
	// through JSON and index by the generated name, relabeling from ExName.
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("decode parquet rows: %w", err)
	}
	var objects []map[string]any
	if err := json.Unmarshal(data, &objects); err != nil {
		return nil, fmt.Errorf("decode parquet rows: %w", err)
	}

	rows := make([][]any, 0, len(objects))
	for _, obj := range objects {
		row := make([]any, len(columns))
		for i, col := range columns {
			row[i] = convertParquetValue(obj[fieldNames[i]], col.Type)
		}
		rows = append(rows, row)
	}

	return &Table{Columns: columns, Rows: rows}, nil
}

// columnsFromSchema recovers the column labels and physical types, plus the
// generated Go field name per column. Infos carries the original label
// (ExName) and the generated field name (InName); the physical type lives in
// the footer schema elements, in the same order.
func columnsFromSchema(pr *reader.ParquetReader) ([]Column, []string) {
	infos := pr.SchemaHandler.Infos
	elements := pr.Footer.Schema
	columns := make([]Column, 0, len(infos)-1)
	fieldNames := make([]string, 0, len(infos)-1)
	for i := 1; i < len(infos); i++ { // skip the root element
		var physical string
		if i < len(elements) && elements[i].Type != nil {
			physical = elements[i].Type.String()
		}
		columns = append(columns, Column{
			Name: infos[i].ExName,
			Type: typeFromParquet(physical),
		})
		fieldNames = append(fieldNames, infos[i].InName)
	}
	return columns, fieldNames
}

func typeFromParquet(physical string) Type {
	switch physical {
	case "INT64", "INT32":
		return TypeInt64
	case "DOUBLE", "FLOAT":
		return TypeDouble
	case "BOOLEAN":
		return TypeBool
	default:
		return TypeString
	}
}

// convertParquetValue undoes the JSON round-trip widening: integers come
// back as float64 and need to be narrowed to match the column type.
func convertParquetValue(v any, typ Type) any {
	if v == nil {
		return nil
	}
	switch typ {
	case TypeInt64:
		if f, ok := v.(float64); ok {
			return int64(f)
		}
	case TypeDouble:
		if f, ok := v.(float64); ok {
			return f
		}
	case TypeBool:
		if b, ok := v.(bool); ok {
			return b
		}
	default:
		if s, ok := v.(string); ok {
			return s
		}
	}
	return v
}
