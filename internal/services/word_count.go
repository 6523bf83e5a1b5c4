package services

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"
)

var (
	linkPattern = regexp.MustCompile(`http\S+|www\.\S+|\S+@\S+`)

	// Exported plain text carries comment and suggestion sections, edit
	// banners and bracketed annotations that are not document prose.
	noisePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?is)comments:.*?(?:\n\n|\z)`),
		regexp.MustCompile(`(?is)suggested edits:.*?(?:\n\n|\z)`),
		regexp.MustCompile(`(?i)last edited[^\n]*`),
		regexp.MustCompile(`(?s)\[.*?\]`),
		regexp.MustCompile(`(?s)\{.*?\}`),
	}

	disallowedChars = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?"-]`)
)

// Words splits exported document text into the words that count towards
// the document length.
func Words(text string) []string {
	if text == "" {
		return nil
	}

	text = linkPattern.ReplaceAllString(text, " ")
	for _, pattern := range noisePatterns {
		text = pattern.ReplaceAllString(text, " ")
	}
	text = disallowedChars.ReplaceAllString(text, " ")

	fields := strings.Fields(text)
	words := fields[:0]
	for _, field := range fields {
		if isCountedWord(field) {
			words = append(words, field)
		}
	}
	return words
}

// CountWords returns len(Words(text))
func CountWords(text string) int {
	return len(Words(text))
}

// isCountedWord rejects bare numbers and tokens made only of punctuation
func isCountedWord(token string) bool {
	hasAlnum := false
	allDigits := true
	for _, r := range token {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			hasAlnum = true
		}
		if !unicode.IsDigit(r) {
			allDigits = false
		}
	}
	return hasAlnum && !allDigits
}

// WordDelta is the change between two consecutive snapshots of a document
type WordDelta struct {
	Added   int
	Removed int
}

// Net is the change in document length
func (d WordDelta) Net() int {
	return d.Added - d.Removed
}

// DiffWords compares two word sequences and counts the words inserted and
// deleted to get from prev to curr. Replaced runs count on both sides.
func DiffWords(prev, curr []string) WordDelta {
	var delta WordDelta
	if len(prev) == 0 {
		delta.Added = len(curr)
		return delta
	}
	if len(curr) == 0 {
		delta.Removed = len(prev)
		return delta
	}

	// autojunk would treat frequent words such as "the" as noise and turn
	// small edits in long documents into large replacements
	matcher := difflib.NewMatcherWithJunk(prev, curr, false, nil)
	for _, op := range matcher.GetOpCodes() {
		switch op.Tag {
		case 'r':
			delta.Removed += op.I2 - op.I1
			delta.Added += op.J2 - op.J1
		case 'd':
			delta.Removed += op.I2 - op.I1
		case 'i':
			delta.Added += op.J2 - op.J1
		}
	}
	return delta
}
