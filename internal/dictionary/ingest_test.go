package dictionary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SingleLine(t *testing.T) {
	pairs, warnings := Parse("A,B", ExtraFieldsKeep)

	assert.Equal(t, []WordPair{{Original: "A", Translation: "B"}}, pairs)
	assert.Empty(t, warnings)
}

func TestParse_MalformedLines(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		reason string
	}{
		{name: "no comma", line: "hello", reason: "missing comma separator"},
		{name: "empty original", line: ",dog", reason: "empty original"},
		{name: "empty translation", line: "dog,", reason: "empty translation"},
		{name: "whitespace fields", line: "  ,  ", reason: "empty original and translation"},
		{name: "trimmed empty translation", line: "cat, \t", reason: "empty translation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pairs, warnings := Parse("ok,fine\n"+tt.line, ExtraFieldsKeep)

			assert.Len(t, pairs, 1)
			require.Len(t, warnings, 1)
			assert.Equal(t, 2, warnings[0].Line)
			assert.Equal(t, tt.reason, warnings[0].Reason)
			assert.Contains(t, warnings[0].Error(), "line 2")
		})
	}
}

func TestParse_Example(t *testing.T) {
	pairs, warnings := Parse("cat,chat\n,dog\ndog,chien", ExtraFieldsKeep)

	assert.Equal(t, []WordPair{
		{Original: "cat", Translation: "chat"},
		{Original: "dog", Translation: "chien"},
	}, pairs)
	require.Len(t, warnings, 1)
	assert.Equal(t, 2, warnings[0].Line)
}

func TestParse_BlankLinesAndCRLF(t *testing.T) {
	content := "\r\n  one , uno \r\n\r\n\t\ntwo,dos\r\nbroken\r\n"

	pairs, warnings := Parse(content, ExtraFieldsKeep)

	assert.Equal(t, []WordPair{
		{Original: "one", Translation: "uno"},
		{Original: "two", Translation: "dos"},
	}, pairs)
	require.Len(t, warnings, 1)
	assert.Equal(t, 6, warnings[0].Line, "line numbers count blank lines")
	assert.Equal(t, "broken", warnings[0].Text)
}

func TestParse_BareCarriageReturns(t *testing.T) {
	content := "one,uno\r\rtwo,dos\rbroken\r"

	pairs, warnings := Parse(content, ExtraFieldsKeep)

	assert.Equal(t, []WordPair{
		{Original: "one", Translation: "uno"},
		{Original: "two", Translation: "dos"},
	}, pairs)
	require.Len(t, warnings, 1)
	assert.Equal(t, 4, warnings[0].Line)
}

func TestParse_MixedLineEndings(t *testing.T) {
	pairs, warnings := Parse("a,1\r\nb,2\rc,3\nbad", ExtraFieldsKeep)

	assert.Len(t, pairs, 3)
	require.Len(t, warnings, 1)
	assert.Equal(t, 4, warnings[0].Line, "CRLF counts as one line break")
}

func TestParse_ValidPlusInvalidEqualsNonBlank(t *testing.T) {
	content := "a,b\n\nc\n,d\ne,f\n \ng,h,i\nj,\n"
	nonBlank := 6

	for _, policy := range []ExtraFieldPolicy{ExtraFieldsKeep, ExtraFieldsTruncate, ExtraFieldsReject} {
		t.Run(string(policy), func(t *testing.T) {
			pairs, warnings := Parse(content, policy)
			assert.Equal(t, nonBlank, len(pairs)+len(warnings))
		})
	}
}

func TestParse_ExtraFieldPolicies(t *testing.T) {
	tests := []struct {
		policy  ExtraFieldPolicy
		want    []WordPair
		warning bool
	}{
		{policy: ExtraFieldsKeep, want: []WordPair{{Original: "a", Translation: "b, c"}}},
		{policy: ExtraFieldsTruncate, want: []WordPair{{Original: "a", Translation: "b"}}},
		{policy: ExtraFieldsReject, warning: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			pairs, warnings := Parse("a, b, c", tt.policy)

			assert.Equal(t, tt.want, pairs)
			if tt.warning {
				require.Len(t, warnings, 1)
				assert.Equal(t, "more than two fields", warnings[0].Reason)
			} else {
				assert.Empty(t, warnings)
			}
		})
	}
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, ExtraFieldsKeep, p)

	p, err = ParsePolicy(" Truncate ")
	require.NoError(t, err)
	assert.Equal(t, ExtraFieldsTruncate, p)

	_, err = ParsePolicy("split")
	assert.Error(t, err)
}

func TestIngestResult_Summary(t *testing.T) {
	assert.Equal(t, "", IngestResult{}.Summary())
	assert.Equal(t, "Added 1 word", IngestResult{Added: 1}.Summary())
	assert.Equal(t, "Added 3 words", IngestResult{Added: 3}.Summary())
}
