package dictionary

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"gopkg.in/yaml.v3"
)

// Decode converts an uploaded dictionary file to a string. A UTF-16 or
// UTF-8 byte order mark selects the encoding; without one the bytes are read
// as UTF-8 and the BOM, if any, is stripped.
func Decode(data []byte) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return "", fmt.Errorf("decode dictionary: %w", err)
	}
	return string(out), nil
}

type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportYAML ExportFormat = "yaml"
)

func (f ExportFormat) ContentType() string {
	if f == ExportYAML {
		return "application/yaml"
	}
	return "text/csv; charset=utf-8"
}

// Export renders pairs in the given format. CSV output is the unquoted
// "original,translation" line format that Parse reads; pairs accepted by
// Add or Parse read back unchanged.
func Export(pairs []WordPair, format ExportFormat) ([]byte, error) {
	switch format {
	case ExportCSV, "":
		var sb strings.Builder
		for _, p := range pairs {
			sb.WriteString(p.Original)
			sb.WriteByte(',')
			sb.WriteString(p.Translation)
			sb.WriteByte('\n')
		}
		return []byte(sb.String()), nil
	case ExportYAML:
		if pairs == nil {
			pairs = []WordPair{}
		}
		out, err := yaml.Marshal(struct {
			Words []WordPair `yaml:"words"`
		}{Words: pairs})
		if err != nil {
			return nil, fmt.Errorf("marshal yaml: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExport, format)
	}
}
