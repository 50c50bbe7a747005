package epubquery

import (
	"fmt"
	"regexp"
	"strings"
)

// SearchOptions controls pattern matching in Book.Search.
//
// The zero value means: case-insensitive literal substring search with no
// context lines around matches.
type SearchOptions struct {
	// CaseSensitive enables case-sensitive matching. Applies to both
	// literal and regex mode.
	CaseSensitive bool

	// Regex treats the pattern as a regular expression (RE2 syntax).
	// When false, the pattern is escaped and matched literally, so
	// literal mode never fails on pattern syntax.
	Regex bool

	// ContextLines is the number of content lines included before and
	// after each matched line. Negative values are treated as 0.
	ContextLines int
}

// ChapterTitles returns one title per chapter, in reading order.
func (b *Book) ChapterTitles() []string {
	chapters := b.Chapters()
	titles := make([]string, len(chapters))
	for i, ch := range chapters {
		titles[i] = ch.Title
	}
	return titles
}

// FullText returns all chapter contents concatenated in reading order,
// separated by a blank line.
func (b *Book) FullText() string {
	chapters := b.Chapters()
	contents := make([]string, len(chapters))
	for i, ch := range chapters {
		contents[i] = ch.Content
	}
	return strings.Join(contents, "\n\n")
}

// ChapterByTitle returns the first chapter whose title is exactly equal to
// title (case-sensitive). The second return value reports whether a chapter
// was found; absence is not an error.
func (b *Book) ChapterByTitle(title string) (Chapter, bool) {
	for _, ch := range b.Chapters() {
		if ch.Title == title {
			return ch, true
		}
	}
	return Chapter{}, false
}

// WordCount counts whitespace-delimited tokens per chapter and in total.
// ByChapter entries follow reading order.
func (b *Book) WordCount() WordCountReport {
	chapters := b.Chapters()
	report := WordCountReport{
		ByChapter: make([]ChapterWordCount, 0, len(chapters)),
	}
	for _, ch := range chapters {
		words := len(strings.Fields(ch.Content))
		report.ByChapter = append(report.ByChapter, ChapterWordCount{Title: ch.Title, Words: words})
		report.Total += words
	}
	return report
}

// Search matches pattern against every content line of every chapter and
// returns all occurrences in reading order: by chapter, then line, then
// left-to-right position within the line. A line can contribute multiple
// results (all non-overlapping matches); matches never span lines.
//
// An empty pattern, or a malformed regular expression in regex mode,
// returns an error wrapping ErrInvalidPattern. The error affects only this
// call; the chapter cache is untouched. No matches is an empty slice, not
// an error.
func (b *Book) Search(pattern string, opts SearchOptions) ([]SearchResult, error) {
	re, err := compilePattern(pattern, opts)
	if err != nil {
		return nil, err
	}

	contextLines := opts.ContextLines
	if contextLines < 0 {
		contextLines = 0
	}

	var results []SearchResult
	for _, ch := range b.Chapters() {
		lines := strings.Split(ch.Content, "\n")
		for i, line := range lines {
			matches := re.FindAllStringSubmatchIndex(line, -1)
			if len(matches) == 0 {
				continue
			}

			start := max(0, i-contextLines)
			end := min(len(lines)-1, i+contextLines)
			context := strings.Join(lines[start:end+1], "\n")

			for _, m := range matches {
				results = append(results, SearchResult{
					ChapterTitle: ch.Title,
					FileName:     ch.FileName,
					MatchedText:  matchedText(line, m),
					Context:      context,
					LineNumber:   i + 1,
				})
			}
		}
	}
	return results, nil
}

// compilePattern builds the single regexp that serves both literal and
// regex mode: literal patterns are pre-escaped, and case-insensitive
// matching is expressed with a (?i) prefix.
func compilePattern(pattern string, opts SearchOptions) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, fmt.Errorf("epubquery: empty pattern: %w", ErrInvalidPattern)
	}

	expr := pattern
	if !opts.Regex {
		expr = regexp.QuoteMeta(expr)
	}
	if !opts.CaseSensitive {
		expr = "(?i)" + expr
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("epubquery: compile pattern %q: %w", pattern, ErrInvalidPattern)
	}
	return re, nil
}

// matchedText extracts the matched substring from a submatch index pair
// list. When the pattern defines at least one capturing group and group 1
// participates in this match, the group's text is used; otherwise the
// whole match.
func matchedText(line string, m []int) string {
	if len(m) >= 4 && m[2] >= 0 {
		return line[m[2]:m[3]]
	}
	return line[m[0]:m[1]]
}
