package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

var ErrUnsupportedFormat = errors.New("unsupported download format")

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDocx Format = "docx"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pdf":
		return FormatPDF, nil
	case "docx", "word":
		return FormatDocx, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return MIMEDocx
}

// Blob is a downloadable file.
type Blob struct {
	Name        string
	ContentType string
	Data        []byte
}

// Placeholder builds the stand-in "translated" file for documentName. The
// content only labels itself; no real PDF or Word structure is produced.
func Placeholder(format Format, documentName string, at time.Time) (Blob, error) {
	if format != FormatPDF && format != FormatDocx {
		return Blob{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	base := strings.TrimSuffix(filepath.Base(documentName), filepath.Ext(documentName))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "document"
	}

	var b strings.Builder
	if format == FormatPDF {
		b.WriteString("%PDF-1.4\n")
		fmt.Fprintf(&b, "%% Placeholder translation of %s\n", documentName)
		fmt.Fprintf(&b, "%% Generated %s\n", at.UTC().Format(time.RFC3339))
		b.WriteString("%%EOF\n")
	} else {
		fmt.Fprintf(&b, "Placeholder translation of %s\n", documentName)
		fmt.Fprintf(&b, "Generated %s\n", at.UTC().Format(time.RFC3339))
	}

	return Blob{
		Name:        fmt.Sprintf("%s_translated.%s", base, format),
		ContentType: format.ContentType(),
		Data:        []byte(b.String()),
	}, nil
}
