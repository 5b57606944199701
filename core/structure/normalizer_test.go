package structure

import (
	"testing"

	"github.com/gaurav-prasanna/docmark/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want core.Block
		ok   bool
	}{
		{"page number dropped", "42", core.Block{}, false},
		{"padded page number dropped", "  7 ", core.Block{}, false},
		{"section word is heading 2", "Overview", core.Heading(2, "Overview"), true},
		{"dash bullet", "- item one", core.ListItem("* item one"), true},
		{"dot bullet", "•   item two", core.ListItem("* item two"), true},
		{"numbered item", "1.First step", core.ListItem("1. First step"), true},
		{"two digit numbered item", "12. Twelfth", core.ListItem("12. Twelfth"), true},
		{"document-type phrase is heading 1", "Integration Guide for Partners", core.Heading(1, "Integration Guide for Partners"), true},
		{"upper case is heading 2", "KEY FINDINGS", core.Heading(2, "KEY FINDINGS"), true},
		{"colon is heading 3", "Results were as follows:", core.Heading(3, "Results were as follows:"), true},
		{"short data phrase is heading 3", "Market Data Summary", core.Heading(3, "Market Data Summary"), true},
		{"long data sentence is paragraph", "We collected data from many sources", core.Paragraph("We collected data from many sources"), true},
		{"paragraph whitespace collapsed", "Hello \t  world.\n", core.Paragraph("Hello world."), true},
		{"artifact token stripped", "Line one_x000D_ continues", core.Paragraph("Line one continues"), true},
		{"single word dropped", "Lorem", core.Block{}, false},
		{"empty dropped", "   ", core.Block{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Classify(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRulePrecedence(t *testing.T) {
	t.Run("Should evaluate rules in the documented order", func(t *testing.T) {
		assert.Equal(t, []string{
			RulePageNumber, RuleBullet, RuleNumbered,
			RuleHeading1, RuleHeading2, RuleHeading3, RuleParagraph,
		}, Rules())
	})

	t.Run("Should prefer list items over headings", func(t *testing.T) {
		assert.Equal(t, RuleBullet, Match("- OVERVIEW"))
	})

	t.Run("Should prefer heading 1 over heading 2", func(t *testing.T) {
		assert.Equal(t, RuleHeading1, Match("Overview of the Documentation"))
	})

	t.Run("Should prefer heading 2 over heading 3", func(t *testing.T) {
		assert.Equal(t, RuleHeading2, Match("Introduction:"))
	})
}

func TestNormalize(t *testing.T) {
	t.Run("Should never emit more blocks than elements", func(t *testing.T) {
		inputs := [][]string{
			nil,
			{"OVERVIEW", "Hello world.", "3"},
			{"a", "b c", "", "- x", "1.", "Data:", "99", "Conclusion"},
		}
		for _, in := range inputs {
			assert.LessOrEqual(t, len(New().Normalize(in)), len(in))
		}
	})

	t.Run("Should keep source order", func(t *testing.T) {
		blocks := New().Normalize([]string{"OVERVIEW", "Hello world.", "3"})
		assert.Equal(t, []core.Block{
			core.Heading(2, "OVERVIEW"),
			core.Paragraph("Hello world."),
		}, blocks)
	})

	t.Run("Should be deterministic", func(t *testing.T) {
		in := []string{"Chapter 1", "- a", "Some text here", "DATA:"}
		assert.Equal(t, New().Normalize(in), New().Normalize(in))
	})
}

func TestParseManifest(t *testing.T) {
	t.Run("Should read a top-level array", func(t *testing.T) {
		texts, err := ParseManifest([]byte(`[{"Text":"OVERVIEW"},{"Text":"Hello world."},{"Text":"3"}]`))
		require.NoError(t, err)
		assert.Equal(t, []string{"OVERVIEW", "Hello world.", "3"}, texts)
	})

	t.Run("Should read an elements object", func(t *testing.T) {
		texts, err := ParseManifest([]byte(`{"version":1,"elements":[{"Path":"//Document/H1","Text":"Title "},{"text":"lower key"}]}`))
		require.NoError(t, err)
		assert.Equal(t, []string{"Title ", "lower key"}, texts)
	})

	t.Run("Should treat missing or non-string text as absent", func(t *testing.T) {
		texts, err := ParseManifest([]byte(`[{"Path":"//Figure"},{"Text":12},"loose",{"Text":"ok"}]`))
		require.NoError(t, err)
		assert.Equal(t, []string{"", "", "", "ok"}, texts)
	})

	t.Run("Should return nothing for objects without elements", func(t *testing.T) {
		texts, err := ParseManifest([]byte(`{"pages":[]}`))
		require.NoError(t, err)
		assert.Empty(t, texts)
	})

	t.Run("Should fail on invalid JSON", func(t *testing.T) {
		_, err := ParseManifest([]byte(`{"elements":[`))
		assert.True(t, core.IsKind(err, core.KindDecodeFailure))
	})
}
