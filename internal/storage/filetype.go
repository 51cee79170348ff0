// Package storage decides which uploads are accepted and builds the
// placeholder files offered for download. Uploaded bytes are never written
// anywhere.
package storage

import (
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

var ErrInvalidFileType = errors.New("invalid file type")

// Kind is the upload slot a file was sent to.
type Kind string

const (
	KindDocument   Kind = "document"
	KindDictionary Kind = "dictionary"
	KindModel      Kind = "model"
)

const (
	MIMEDoc  = "application/msword"
	MIMEDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// InvalidFileTypeError is returned for an upload whose type does not fit its slot.
type InvalidFileTypeError struct {
	Kind     Kind
	Name     string
	MIMEType string
}

func (e *InvalidFileTypeError) Error() string {
	return fmt.Sprintf("invalid %s file %q (%s)", e.Kind, e.Name, e.MIMEType)
}

func (e *InvalidFileTypeError) Is(target error) bool {
	return target == ErrInvalidFileType
}

// Hint is the user-facing description of what the slot accepts.
func (e *InvalidFileTypeError) Hint() string {
	switch e.Kind {
	case KindDocument:
		return "Please upload a .doc or .docx file"
	case KindDictionary:
		return "Please upload a .csv or .txt file"
	case KindModel:
		return "Please upload a .gguf or .bin model file"
	}
	return "Unsupported file"
}

var documentExtensions = map[string]string{
	".doc":  MIMEDoc,
	".docx": MIMEDocx,
}

var dictionaryExtensions = map[string]bool{
	".csv": true, ".txt": true,
}

var dictionaryMIMETypes = map[string]bool{
	"application/csv":          true,
	"application/vnd.ms-excel": true, // what Windows browsers send for .csv
}

var modelExtensions = map[string]bool{
	".gguf": true, ".bin": true,
}

func ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// mediaType strips parameters and lower-cases the MIME type. Empty and
// application/octet-stream both mean the client did not know.
func mediaType(raw string) (mt string, generic bool) {
	mt, _, err := mime.ParseMediaType(raw)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(raw))
	}
	return mt, mt == "" || mt == "application/octet-stream"
}

// CheckDocument accepts Word documents and returns their MIME type. A
// specific MIME type decides; a generic one falls back to the extension.
func CheckDocument(name, mimeType string) (string, error) {
	mt, generic := mediaType(mimeType)
	if generic {
		if resolved, ok := documentExtensions[ext(name)]; ok {
			return resolved, nil
		}
	} else if mt == MIMEDoc || mt == MIMEDocx {
		return mt, nil
	}
	return "", &InvalidFileTypeError{Kind: KindDocument, Name: name, MIMEType: mimeType}
}

// CheckDictionary accepts .csv and .txt files or any text/* upload.
func CheckDictionary(name, mimeType string) error {
	mt, generic := mediaType(mimeType)
	switch {
	case dictionaryExtensions[ext(name)]:
		return nil
	case !generic && (strings.HasPrefix(mt, "text/") || dictionaryMIMETypes[mt]):
		return nil
	}
	return &InvalidFileTypeError{Kind: KindDictionary, Name: name, MIMEType: mimeType}
}

// CheckModel accepts local model weights by extension only; browsers report
// no useful MIME type for them.
func CheckModel(name string) error {
	if modelExtensions[ext(name)] {
		return nil
	}
	return &InvalidFileTypeError{Kind: KindModel, Name: name}
}
