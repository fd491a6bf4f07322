package db

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Kind groups declared column types into the classes the NULL coercion cares about.
type Kind int

const (
	KindOther Kind = iota
	KindText
	KindTemporal
	KindNumeric
	KindBool
	KindBinary
)

type Column struct {
	Ordinal      int
	Name         string
	DatabaseType string
	Kind         Kind
}

// Value is a single cell as the driver returned it. A nil Raw is a database NULL.
type Value struct {
	Raw any
}

func (v Value) IsNull() bool {
	return v.Raw == nil
}

func (v Value) String() string {
	switch t := v.Raw.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		return t.Format(time.RFC3339)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Row is the ordered, string-encoded form of a result row.
type Row []string

// Record maps column names to string-encoded values.
type Record map[string]string

type ResultSet struct {
	Columns []Column
	Rows    [][]Value
}

// Strings returns the ordered-row form. A NULL becomes "" in text and temporal
// columns and "0" everywhere else, so no slot is ever absent.
func (rs *ResultSet) Strings() []Row {
	rows := make([]Row, 0, len(rs.Rows))
	for _, values := range rs.Rows {
		row := make(Row, len(values))
		for i, v := range values {
			if v.IsNull() {
				row[i] = nullText(rs.kind(i))
				continue
			}
			row[i] = v.String()
		}
		rows = append(rows, row)
	}
	return rows
}

// Dicts returns the dictionary form. NULLs are converted directly, with no
// regard for the column type.
func (rs *ResultSet) Dicts() []Record {
	records := make([]Record, 0, len(rs.Rows))
	for _, values := range rs.Rows {
		record := make(Record, len(values))
		for i, v := range values {
			record[rs.Columns[i].Name] = v.String()
		}
		records = append(records, record)
	}
	return records
}

func (rs *ResultSet) ColumnNames() []string {
	names := make([]string, len(rs.Columns))
	for i, c := range rs.Columns {
		names[i] = c.Name
	}
	return names
}

func (rs *ResultSet) kind(i int) Kind {
	if i < len(rs.Columns) {
		return rs.Columns[i].Kind
	}
	return KindOther
}

func nullText(k Kind) string {
	if k == KindText || k == KindTemporal {
		return ""
	}
	return "0"
}

var (
	timeType   = reflect.TypeOf(time.Time{})
	stringType = reflect.TypeOf("")
)

// ClassifyColumn derives a Kind from the driver's database type name, falling
// back to the scan type for drivers that leave the name empty.
func ClassifyColumn(ct ColumnType) Kind {
	name := strings.ToUpper(ct.DatabaseTypeName())
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = name[:i]
	}

	switch {
	case name == "":
	case strings.Contains(name, "CHAR"), strings.Contains(name, "TEXT"),
		strings.Contains(name, "CLOB"), name == "STRING", name == "XML",
		name == "JSON", name == "JSONB", name == "UUID", name == "UNIQUEIDENTIFIER",
		name == "ENUM", name == "SET":
		return KindText
	case strings.Contains(name, "DATE"), strings.Contains(name, "TIME"),
		strings.HasPrefix(name, "INTERVAL"):
		return KindTemporal
	case strings.Contains(name, "INT"), strings.Contains(name, "NUM"),
		strings.Contains(name, "DEC"), strings.Contains(name, "FLOAT"),
		strings.Contains(name, "DOUBLE"), name == "REAL", name == "MONEY",
		name == "SMALLMONEY", strings.HasPrefix(name, "BINARY_"):
		return KindNumeric
	case strings.HasPrefix(name, "BOOL"), name == "BIT":
		return KindBool
	case strings.Contains(name, "BLOB"), strings.Contains(name, "BINARY"),
		name == "RAW", name == "BYTEA", name == "IMAGE":
		return KindBinary
	}

	st := ct.ScanType()
	if st == nil {
		return KindOther
	}
	if st.Kind() == reflect.Pointer {
		st = st.Elem()
	}
	switch {
	case st == stringType:
		return KindText
	case st == timeType || st.ConvertibleTo(timeType):
		return KindTemporal
	}
	switch st.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return KindNumeric
	case reflect.Bool:
		return KindBool
	}
	return KindOther
}

func readResultSet(rows Rows) (*ResultSet, error) {
	cols, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("identifying columns: %w", err)
	}

	rs := &ResultSet{
		Columns: make([]Column, len(cols)),
		Rows:    make([][]Value, 0),
	}
	for i, col := range cols {
		rs.Columns[i] = Column{
			Ordinal:      i,
			Name:         col.Name(),
			DatabaseType: col.DatabaseTypeName(),
			Kind:         ClassifyColumn(col),
		}
	}

	colValues := make([]any, len(cols))
	colPointers := make([]any, len(cols))
	for rows.Next() {
		for i := range colValues {
			colValues[i] = nil
			colPointers[i] = &colValues[i]
		}
		if err := rows.Scan(colPointers...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		row := make([]Value, len(cols))
		for i, v := range colValues {
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[i] = Value{Raw: v}
		}
		rs.Rows = append(rs.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return rs, nil
}
