// Package structure classifies the untyped text elements of an extraction
// manifest into headings, list items and paragraphs.
//
// Classification is heuristic. The rules below are an ordered table; the
// first rule that matches an element decides its block, and later rules are
// not consulted. Same input, same output is the only hard guarantee.
package structure

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gaurav-prasanna/docmark/core"
)

// ArtifactToken is the carriage-return escape spreadsheet and PDF exporters
// leak into text.
const ArtifactToken = "_x000D_"

// Rule names, in evaluation order.
const (
	RulePageNumber = "page-number"
	RuleBullet     = "bullet"
	RuleNumbered   = "numbered"
	RuleHeading1   = "heading-1"
	RuleHeading2   = "heading-2"
	RuleHeading3   = "heading-3"
	RuleParagraph  = "paragraph"
)

var (
	// heading1Phrases mark document-type titles.
	heading1Phrases = []string{"White Paper", "Guide", "Documentation"}
	// heading2Prefixes introduce top-level sections (matched case-insensitively).
	heading2Prefixes = []string{"overview", "introduction", "conclusion", "chapter", "section"}
)

// rule classifies one cleaned element. build returns the block and whether
// one is emitted; a matching rule that emits nothing drops the element.
type rule struct {
	name  string
	match func(text string) bool
	build func(text string) (core.Block, bool)
}

var rules = []rule{
	{RulePageNumber, isNumeric, drop},
	{RuleBullet, isBullet, bulletItem},
	{RuleNumbered, isNumbered, numberedItem},
	{RuleHeading1, isHeading1, heading(1)},
	{RuleHeading2, isHeading2, heading(2)},
	{RuleHeading3, isHeading3, heading(3)},
	{RuleParagraph, hasSeveralWords, paragraph},
}

// Rules returns the rule names in evaluation order.
func Rules() []string {
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.name
	}
	return names
}

// Normalizer turns manifest elements into blocks.
type Normalizer struct{}

// New creates a Normalizer.
func New() *Normalizer {
	return &Normalizer{}
}

// Normalize classifies texts in order. Empty elements, page numbers and
// single words are dropped, so len(result) <= len(texts).
func (n *Normalizer) Normalize(texts []string) []core.Block {
	blocks := make([]core.Block, 0, len(texts))
	for _, raw := range texts {
		if b, ok := Classify(raw); ok {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

// Classify cleans one element and applies the rule table.
func Classify(raw string) (core.Block, bool) {
	text := Clean(raw)
	if text == "" {
		return core.Block{}, false
	}
	_, b, ok := apply(text)
	return b, ok
}

// Match returns the name of the rule that decides text, or "" when none does.
func Match(raw string) string {
	text := Clean(raw)
	if text == "" {
		return ""
	}
	name, _, _ := apply(text)
	return name
}

func apply(text string) (string, core.Block, bool) {
	for _, r := range rules {
		if r.match(text) {
			b, ok := r.build(text)
			return r.name, b, ok
		}
	}
	return "", core.Block{}, false
}

// Clean collapses whitespace runs, trims, and strips the artifact token.
func Clean(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	return strings.ReplaceAll(text, ArtifactToken, "")
}

func isNumeric(text string) bool {
	for _, r := range text {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return text != ""
}

func isBullet(text string) bool {
	return strings.HasPrefix(text, "•") || strings.HasPrefix(text, "-")
}

// isNumbered matches a leading digit with a period among the first three bytes.
func isNumbered(text string) bool {
	if text == "" || text[0] < '0' || text[0] > '9' {
		return false
	}
	head := text
	if len(head) > 3 {
		head = head[:3]
	}
	return strings.Contains(head, ".")
}

func isHeading1(text string) bool {
	for _, p := range heading1Phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func isHeading2(text string) bool {
	if isUpper(text) {
		return true
	}
	lower := strings.ToLower(text)
	for _, p := range heading2Prefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

func isHeading3(text string) bool {
	if strings.HasSuffix(text, ":") {
		return true
	}
	return strings.Contains(strings.ToLower(text), "data") && len(strings.Fields(text)) <= 4
}

func hasSeveralWords(text string) bool {
	return len(strings.Fields(text)) > 1
}

// isUpper reports whether text has at least one cased letter and no
// lower-case or title-case letters.
func isUpper(text string) bool {
	cased := false
	for _, r := range text {
		switch {
		case unicode.IsLower(r), unicode.IsTitle(r):
			return false
		case unicode.IsUpper(r):
			cased = true
		}
	}
	return cased
}

func drop(string) (core.Block, bool) {
	return core.Block{}, false
}

func bulletItem(text string) (core.Block, bool) {
	_, size := utf8.DecodeRuneInString(text)
	return core.ListItem("* " + strings.TrimSpace(text[size:])), true
}

func numberedItem(text string) (core.Block, bool) {
	num, rest, _ := strings.Cut(text, ".")
	return core.ListItem(num + ". " + strings.TrimSpace(rest)), true
}

func heading(level int) func(string) (core.Block, bool) {
	return func(text string) (core.Block, bool) {
		return core.Heading(level, text), true
	}
}

func paragraph(text string) (core.Block, bool) {
	return core.Paragraph(text), true
}
