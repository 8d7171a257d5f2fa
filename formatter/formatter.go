// Package formatter converts record sequences into the supported output
// encodings. It is stateless and safe for concurrent use.
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/use-agent/harvest/models"
)

// Format renders data in format f.
//
// JSON is an identity passthrough: the value is returned unchanged and the
// route layer serialises it. CSV and XML return a string. A value that is not
// a record sequence is embedded as an opaque string.
func Format(data any, f models.Format) (any, error) {
	switch f {
	case models.FormatJSON:
		return data, nil
	case models.FormatCSV:
		if records, ok := asRecords(data); ok {
			return ToCSV(records)
		}
		return opaqueCSV(data)
	case models.FormatXML:
		if records, ok := asRecords(data); ok {
			return ToXML(records), nil
		}
		return opaqueXML(data), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", f)
	}
}

func asRecords(data any) ([]models.Record, bool) {
	switch t := data.(type) {
	case []models.Record:
		return t, true
	case models.Record:
		return []models.Record{t}, true
	default:
		return nil, false
	}
}

// ToCSV writes a header row taken from the first record's keys followed by
// one row per record. Quoting follows RFC 4180. There is no trailing newline,
// so n records produce exactly n+1 lines.
func ToCSV(records []models.Record) (string, error) {
	if len(records) == 0 {
		return "", nil
	}
	header := records[0].Keys()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("formatter: write csv header: %w", err)
	}
	row := make([]string, len(header))
	for _, r := range records {
		for i, key := range header {
			row[i] = r.Text(key)
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("formatter: write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("formatter: flush csv: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// ToXML wraps every record as <item id="index"> inside a <data> root, with one
// child element per key of the first record.
func ToXML(records []models.Record) string {
	var sb strings.Builder
	sb.WriteString(xml.Header)
	sb.WriteString("<data>\n")

	var header []string
	if len(records) > 0 {
		header = records[0].Keys()
	}
	names := make([]string, len(header))
	for i, key := range header {
		names[i] = ElementName(key)
	}

	for idx, r := range records {
		sb.WriteString(`  <item id="`)
		sb.WriteString(strconv.Itoa(idx))
		sb.WriteString("\">\n")
		for i, key := range header {
			sb.WriteString("    <")
			sb.WriteString(names[i])
			sb.WriteString(">")
			writeEscaped(&sb, r.Text(key))
			sb.WriteString("</")
			sb.WriteString(names[i])
			sb.WriteString(">\n")
		}
		sb.WriteString("  </item>\n")
	}
	sb.WriteString("</data>")
	return sb.String()
}

func opaqueCSV(data any) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{models.Stringify(data)}); err != nil {
		return "", fmt.Errorf("formatter: write csv: %w", err)
	}
	w.Flush()
	return strings.TrimSuffix(buf.String(), "\n"), w.Error()
}

func opaqueXML(data any) string {
	var sb strings.Builder
	sb.WriteString(xml.Header)
	sb.WriteString("<data>")
	writeEscaped(&sb, models.Stringify(data))
	sb.WriteString("</data>")
	return sb.String()
}

func writeEscaped(sb *strings.Builder, s string) {
	// EscapeText only fails when the writer fails; strings.Builder never does.
	_ = xml.EscapeText(sb, []byte(s))
}

// ElementName turns an arbitrary record key into a valid XML element name.
// Invalid characters become underscores; a name that cannot start an element
// (digit, dash, dot, or the reserved "xml" prefix) gets a leading underscore.
func ElementName(key string) string {
	if key == "" {
		return "_"
	}
	var sb strings.Builder
	for _, r := range key {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_', r == '-', r == '.':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	name := sb.String()
	first := []rune(name)[0]
	if !unicode.IsLetter(first) && first != '_' {
		name = "_" + name
	}
	if strings.HasPrefix(strings.ToLower(name), "xml") {
		name = "_" + name
	}
	return name
}
