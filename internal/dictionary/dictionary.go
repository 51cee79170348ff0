// Package dictionary holds the per-session "special words" list: ordered
// original/translation pairs entered by hand or ingested from a CSV upload.
package dictionary

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	ErrEmptyField        = errors.New("original and translation cannot be empty")
	ErrInvalidField      = errors.New("field cannot be stored as a dictionary line")
	ErrIndexOutOfRange   = errors.New("index out of range")
	ErrUnsupportedExport = errors.New("unsupported export format")
)

// WordPair is one user-defined mapping. Duplicates are allowed; insertion
// order is the display and lookup order.
type WordPair struct {
	Original    string `json:"original" yaml:"original"`
	Translation string `json:"translation" yaml:"translation"`
}

type Dictionary struct {
	mu     sync.RWMutex
	pairs  []WordPair
	policy ExtraFieldPolicy
}

func New(policy ExtraFieldPolicy) *Dictionary {
	return &Dictionary{policy: policy}
}

// Add appends a manually entered pair and returns it with its index. Both
// fields are trimmed and must be non-empty. A pair that Parse could not read
// back from an exported line is rejected: line breaks anywhere, a comma in
// the original, and a comma in the translation unless the policy keeps
// extra fields.
func (d *Dictionary) Add(original, translation string) (WordPair, int, error) {
	p := WordPair{
		Original:    strings.TrimSpace(original),
		Translation: strings.TrimSpace(translation),
	}
	if p.Original == "" || p.Translation == "" {
		return WordPair{}, -1, ErrEmptyField
	}
	if err := d.checkStorable(p); err != nil {
		return WordPair{}, -1, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.pairs = append(d.pairs, p)
	return p, len(d.pairs) - 1, nil
}

func (d *Dictionary) checkStorable(p WordPair) error {
	switch {
	case strings.ContainsAny(p.Original, "\r\n"):
		return fmt.Errorf("%w: original contains a line break", ErrInvalidField)
	case strings.ContainsAny(p.Translation, "\r\n"):
		return fmt.Errorf("%w: translation contains a line break", ErrInvalidField)
	case strings.Contains(p.Original, ","):
		return fmt.Errorf("%w: original contains a comma", ErrInvalidField)
	case (d.policy == ExtraFieldsTruncate || d.policy == ExtraFieldsReject) && strings.Contains(p.Translation, ","):
		return fmt.Errorf("%w: translation contains a comma", ErrInvalidField)
	}
	return nil
}

// Remove deletes the pair at the 0-based index and returns it.
func (d *Dictionary) Remove(index int) (WordPair, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if index < 0 || index >= len(d.pairs) {
		return WordPair{}, fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, index, len(d.pairs))
	}
	removed := d.pairs[index]
	d.pairs = append(d.pairs[:index], d.pairs[index+1:]...)
	return removed, nil
}

// List returns a copy of the pairs in insertion order.
func (d *Dictionary) List() []WordPair {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]WordPair, len(d.pairs))
	copy(out, d.pairs)
	return out
}

func (d *Dictionary) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.pairs)
}

// Ingest parses content and appends every valid pair, in file order, to the
// dictionary. Malformed lines are reported in the result and skipped.
func (d *Dictionary) Ingest(content string) IngestResult {
	pairs, warnings := Parse(content, d.policy)

	d.mu.Lock()
	d.pairs = append(d.pairs, pairs...)
	d.mu.Unlock()

	return IngestResult{Added: len(pairs), Warnings: warnings}
}
