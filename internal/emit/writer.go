package emit

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
)

// Output format names accepted by the CLI.
const (
	FormatNDJSON = "ndjson"
	FormatCSV    = "csv"
	FormatTable  = "table"
)

// Writer consumes records one at a time. Implementations stream: a record
// handed to Write may be flushed to the sink before the next page of results
// is even requested.
type Writer interface {
	Write(rec Record) error
	Flush() error
}

// NDJSONWriter emits one JSON object per line, preserving field order.
type NDJSONWriter struct {
	w *bufio.Writer
}

// NewNDJSON returns a Writer emitting newline-delimited JSON to w.
func NewNDJSON(w io.Writer) *NDJSONWriter {
	return &NDJSONWriter{w: bufio.NewWriter(w)}
}

func (n *NDJSONWriter) Write(rec Record) error {
	// Build the object by hand: encoding/json on a map would reorder keys.
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range rec {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.Key)
		if err != nil {
			return err
		}
		val, err := json.Marshal(p.Value)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	buf.WriteByte('\n')

	_, err := n.w.Write(buf.Bytes())
	return err
}

func (n *NDJSONWriter) Flush() error {
	return n.w.Flush()
}

// CSVWriter emits comma-separated rows. The header is taken from the first
// record; later records are aligned to it by key, missing keys left empty
// and unknown keys dropped.
type CSVWriter struct {
	w      *csv.Writer
	header []string
}

// NewCSV returns a Writer emitting CSV to w.
func NewCSV(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

func (c *CSVWriter) Write(rec Record) error {
	if c.header == nil {
		c.header = make([]string, len(rec))
		for i, p := range rec {
			c.header[i] = p.Key
		}
		if err := c.w.Write(c.header); err != nil {
			return err
		}
	}

	row := make([]string, len(c.header))
	for i, key := range c.header {
		row[i] = rec.Get(key)
	}
	if err := c.w.Write(row); err != nil {
		return err
	}
	c.w.Flush()
	return c.w.Error()
}

func (c *CSVWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

// NewWriter returns the Writer for the named format. The table format is
// reserved for the fixed-shape admin row sets: it buffers rows to size
// columns, which would break the bounded-memory guarantee of a scroll.
func NewWriter(format string, w io.Writer, admin bool) (Writer, error) {
	switch format {
	case FormatNDJSON, "":
		return NewNDJSON(w), nil
	case FormatCSV:
		return NewCSV(w), nil
	case FormatTable:
		if !admin {
			return nil, fmt.Errorf("table output is only available for admin actions")
		}
		return NewTable(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}
