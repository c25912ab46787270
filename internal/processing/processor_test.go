package processing_test

import (
	"testing"

	"github.com/DeafMist/federal-archive/backend/internal/processing"
	"github.com/stretchr/testify/require"
)

func TestYearPrefix(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   int
		wantOK bool
	}{
		{name: "iso date", input: "2020-05-01", want: 2020, wantOK: true},
		{name: "year only", input: "1993", want: 1993, wantOK: true},
		{name: "leading space", input: "  2001-01-01", want: 2001, wantOK: true},
		{name: "trailing text", input: "1999 (amended)", want: 1999, wantOK: true},
		{name: "empty", input: "", wantOK: false},
		{name: "no digits", input: "May 2020", wantOK: false},
		{name: "sign only", input: "-", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := processing.YearPrefix(tt.input)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				require.Equal(t, tt.want, got)
			}
		})
	}
}

func TestContainsFold(t *testing.T) {
	require.True(t, processing.ContainsFold("Environmental Protection Act", "environ"))
	require.True(t, processing.ContainsFold("Environmental Protection Act", "ENVIRON"))
	require.True(t, processing.ContainsFold("anything", ""))
	require.False(t, processing.ContainsFold("", "x"))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{name: "short", input: "Short summary", max: 50, want: "Short summary"},
		{name: "word boundary", input: "The quick brown fox jumps", max: 12, want: "The quick..."},
		{name: "collapse whitespace", input: "a\n\nb   c", max: 50, want: "a b c"},
		{name: "disabled", input: "The quick brown fox", max: 0, want: "The quick brown fox"},
		{name: "strip punctuation before ellipsis", input: "One, two, three", max: 9, want: "One..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, processing.Truncate(tt.input, tt.max))
		})
	}
}

func TestURLChecks(t *testing.T) {
	require.True(t, processing.HasHTTPScheme("https://pravo.gov.ru/doc"))
	require.True(t, processing.HasHTTPScheme("httpfoo"))
	require.False(t, processing.HasHTTPScheme("ftp://example.com"))
	require.False(t, processing.HasHTTPScheme(""))

	require.True(t, processing.IsAbsoluteHTTPURL("https://pravo.gov.ru/doc"))
	require.False(t, processing.IsAbsoluteHTTPURL("httpfoo"))
	require.False(t, processing.IsAbsoluteHTTPURL("/relative/path"))
}

func TestNormalizeTags(t *testing.T) {
	require.Equal(t, "environment, tax", processing.NormalizeTags(" environment ,, tax ,"))
	require.Equal(t, "", processing.NormalizeTags(""))
}

func TestBuildDocumentID(t *testing.T) {
	id1 := processing.BuildDocumentID("federal-law", "Water Code", "2006-06-03")
	id2 := processing.BuildDocumentID("federal-law", "  water   code ", "2006-06-03")
	require.NotEmpty(t, id1)
	require.Equal(t, id1, id2)
	require.NotEqual(t, id1, processing.BuildDocumentID("federal-law", "Water Code", "2007-01-01"))
}
