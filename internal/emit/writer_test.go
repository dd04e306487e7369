package emit

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dm/essearch-go/internal/flatten"
)

func rec(kv ...string) Record {
	var r Record
	for i := 0; i+1 < len(kv); i += 2 {
		r = append(r, flatten.Pair{Key: kv[i], Value: kv[i+1]})
	}
	return r
}

func TestNDJSON_PreservesFieldOrder(t *testing.T) {
	var buf bytes.Buffer
	w := NewNDJSON(&buf)

	require.NoError(t, w.Write(rec("_time", "1700000100", "host", "web-1", "msg", `say "hi"`)))
	require.NoError(t, w.Flush())

	line := strings.TrimSpace(buf.String())
	assert.Equal(t, `{"_time":"1700000100","host":"web-1","msg":"say \"hi\""}`, line)
}

func TestNDJSON_OneLinePerRecord(t *testing.T) {
	var buf bytes.Buffer
	w := NewNDJSON(&buf)

	require.NoError(t, w.Write(rec("a", "1")))
	require.NoError(t, w.Write(rec("a", "2")))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
}

func TestCSV_HeaderFromFirstRecord(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSV(&buf)

	require.NoError(t, w.Write(rec("_time", "1", "host", "web-1")))
	// Second record has a missing and an extra key.
	require.NoError(t, w.Write(rec("_time", "2", "extra", "x")))
	require.NoError(t, w.Flush())

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"_time", "host"}, rows[0])
	assert.Equal(t, []string{"1", "web-1"}, rows[1])
	assert.Equal(t, []string{"2", ""}, rows[2], "missing key empty, unknown key dropped")
}

func TestTable_AlignsColumns(t *testing.T) {
	var buf bytes.Buffer
	w := NewTable(&buf)

	require.NoError(t, w.Write(rec("index", "logs-2024", "docs.count", "12")))
	require.NoError(t, w.Write(rec("index", "x", "docs.count", "3400")))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "index")
	assert.Contains(t, lines[0], "docs.count")
	assert.Contains(t, lines[1], "logs-2024")
	assert.Contains(t, lines[2], "3400")
}

func TestNewWriter_Selection(t *testing.T) {
	var buf bytes.Buffer

	w, err := NewWriter("", &buf, false)
	require.NoError(t, err)
	assert.IsType(t, &NDJSONWriter{}, w)

	w, err = NewWriter(FormatCSV, &buf, false)
	require.NoError(t, err)
	assert.IsType(t, &CSVWriter{}, w)

	w, err = NewWriter(FormatTable, &buf, true)
	require.NoError(t, err)
	assert.IsType(t, &TableWriter{}, w)

	_, err = NewWriter(FormatTable, &buf, false)
	assert.Error(t, err, "table output is admin-only")

	_, err = NewWriter("xml", &buf, false)
	assert.Error(t, err)
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "0", FormatCount(0))
	assert.Equal(t, "999", FormatCount(999))
	assert.Equal(t, "1,000", FormatCount(1000))
	assert.Equal(t, "12,345,678", FormatCount(12345678))
	assert.Equal(t, "-1,234", FormatCount(-1234))
}
