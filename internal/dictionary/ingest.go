package dictionary

import (
	"fmt"
	"strings"
)

// ExtraFieldPolicy decides what happens to a line with more than one comma.
type ExtraFieldPolicy string

const (
	// ExtraFieldsKeep splits on the first comma only; the remaining commas
	// belong to the translation.
	ExtraFieldsKeep ExtraFieldPolicy = "keep"
	// ExtraFieldsTruncate uses the first two comma-separated tokens and drops the rest.
	ExtraFieldsTruncate ExtraFieldPolicy = "truncate"
	// ExtraFieldsReject treats a line with more than two tokens as malformed.
	ExtraFieldsReject ExtraFieldPolicy = "reject"
)

func ParsePolicy(s string) (ExtraFieldPolicy, error) {
	switch p := ExtraFieldPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return ExtraFieldsKeep, nil
	case ExtraFieldsKeep, ExtraFieldsTruncate, ExtraFieldsReject:
		return p, nil
	default:
		return "", fmt.Errorf("unknown extra field policy %q", s)
	}
}

// LineError reports a dictionary line that could not be turned into a pair.
type LineError struct {
	Line   int    `json:"line"` // 1-based, counting blank lines
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

type IngestResult struct {
	Added    int          `json:"added"`
	Warnings []*LineError `json:"warnings"`
}

// Summary is the user-facing count message; empty when nothing was added.
func (r IngestResult) Summary() string {
	switch r.Added {
	case 0:
		return ""
	case 1:
		return "Added 1 word"
	default:
		return fmt.Sprintf("Added %d words", r.Added)
	}
}

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Parse turns line-oriented "original,translation" text into pairs.
// Lines may end in \n, \r\n or a bare \r. Blank lines are skipped. Every
// other line either yields exactly one pair or exactly one LineError, so
// len(pairs)+len(errs) equals the number of non-blank lines.
func Parse(content string, policy ExtraFieldPolicy) ([]WordPair, []*LineError) {
	var (
		pairs []WordPair
		errs  []*LineError
	)

	content = lineEndings.Replace(content)
	for i, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		pair, reason := parseLine(line, policy)
		if reason != "" {
			errs = append(errs, &LineError{Line: i + 1, Text: line, Reason: reason})
			continue
		}
		pairs = append(pairs, pair)
	}

	return pairs, errs
}

func parseLine(line string, policy ExtraFieldPolicy) (WordPair, string) {
	original, rest, found := strings.Cut(line, ",")
	if !found {
		return WordPair{}, "missing comma separator"
	}

	translation := rest
	if strings.Contains(rest, ",") {
		switch policy {
		case ExtraFieldsReject:
			return WordPair{}, "more than two fields"
		case ExtraFieldsTruncate:
			translation, _, _ = strings.Cut(rest, ",")
		}
	}

	p := WordPair{
		Original:    strings.TrimSpace(original),
		Translation: strings.TrimSpace(translation),
	}
	switch {
	case p.Original == "" && p.Translation == "":
		return WordPair{}, "empty original and translation"
	case p.Original == "":
		return WordPair{}, "empty original"
	case p.Translation == "":
		return WordPair{}, "empty translation"
	}
	return p, ""
}
