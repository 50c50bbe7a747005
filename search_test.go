package epubquery

import (
	"errors"
	"strings"
	"testing"
)

func TestSearch_CaseInsensitiveByDefault(t *testing.T) {
	book := buildTestBook(t, testBookFiles())

	results, err := book.Search("the", SearchOptions{})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("Search(\"the\") returned no results")
	}
	// "The cat sat." — the matched text keeps the original casing.
	if results[0].MatchedText != "The" {
		t.Errorf("MatchedText = %q, want %q", results[0].MatchedText, "The")
	}
}

func TestSearch_CaseSensitive(t *testing.T) {
	book := buildTestBook(t, testBookFiles())

	results, err := book.Search("THE CAT", SearchOptions{CaseSensitive: true})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("case-sensitive Search() = %d results, want 0", len(results))
	}
}

func TestSearch_ContextWindows(t *testing.T) {
	// Chapter 1: "Alpha line one\nAlpha line two"; chapter 2: "Beta line one".
	book := buildTestBook(t, searchBookFiles())

	results, err := book.Search("line", SearchOptions{ContextLines: 1})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}

	ch1Context := "Alpha line one\nAlpha line two"
	want := []SearchResult{
		{ChapterTitle: "a.xhtml", FileName: "a.xhtml", MatchedText: "line", Context: ch1Context, LineNumber: 1},
		{ChapterTitle: "a.xhtml", FileName: "a.xhtml", MatchedText: "line", Context: ch1Context, LineNumber: 2},
		{ChapterTitle: "b.xhtml", FileName: "b.xhtml", MatchedText: "line", Context: "Beta line one", LineNumber: 1},
	}
	for i := range want {
		if results[i] != want[i] {
			t.Errorf("results[%d] = %+v, want %+v", i, results[i], want[i])
		}
	}
}

func TestSearch_ZeroContextIsMatchedLine(t *testing.T) {
	book := buildTestBook(t, searchBookFiles())

	results, err := book.Search("Alpha", SearchOptions{})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].Context != "Alpha line one" {
		t.Errorf("results[0].Context = %q, want the single matched line", results[0].Context)
	}
	if results[1].Context != "Alpha line two" {
		t.Errorf("results[1].Context = %q, want the single matched line", results[1].Context)
	}
}

func TestSearch_MultipleMatchesPerLine(t *testing.T) {
	book := buildTestBook(t, searchBookFiles())

	// "ne" occurs twice on "Alpha line one": in "line" and in "one".
	results, err := book.Search("ne", SearchOptions{})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}

	// Line "Alpha line one": matches in "line" and "one" → two results
	// with the same line number, left to right.
	var lineOne []SearchResult
	for _, r := range results {
		if r.FileName == "a.xhtml" && r.LineNumber == 1 {
			lineOne = append(lineOne, r)
		}
	}
	if len(lineOne) != 2 {
		t.Fatalf("matches on line 1 = %d, want 2", len(lineOne))
	}
}

func TestSearch_RegexCaptureGroup(t *testing.T) {
	book := buildTestBook(t, searchBookFiles())

	results, err := book.Search(`Alpha (line)`, SearchOptions{Regex: true})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].MatchedText != "line" {
		t.Errorf("MatchedText = %q, want first capture group %q", results[0].MatchedText, "line")
	}
}

func TestSearch_RegexWholeMatchWithoutGroup(t *testing.T) {
	book := buildTestBook(t, searchBookFiles())

	results, err := book.Search(`Alpha \w+`, SearchOptions{Regex: true})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].MatchedText != "Alpha line" {
		t.Errorf("MatchedText = %q, want %q", results[0].MatchedText, "Alpha line")
	}
}

func TestSearch_LiteralModeEscapesMetaCharacters(t *testing.T) {
	files := searchBookFiles()
	files["a.xhtml"] = `<html><body><p>price is 1.50 today</p><p>price is 1X50 never</p></body></html>`
	book := buildTestBook(t, files)

	results, err := book.Search("1.50", SearchOptions{})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1 (dot must not match X)", len(results))
	}
	if results[0].LineNumber != 1 {
		t.Errorf("LineNumber = %d, want 1", results[0].LineNumber)
	}
}

func TestSearch_InvalidRegex(t *testing.T) {
	book := buildTestBook(t, searchBookFiles())

	_, err := book.Search("[unclosed", SearchOptions{Regex: true})
	if !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("Search() error = %v, want ErrInvalidPattern", err)
	}

	// The failed call must not poison the handle: a valid search on the
	// same book still works against the cached chapters.
	results, err := book.Search("Beta", SearchOptions{})
	if err != nil {
		t.Fatalf("follow-up Search() error: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("follow-up Search() = %d results, want 1", len(results))
	}
}

func TestSearch_EmptyPattern(t *testing.T) {
	book := buildTestBook(t, searchBookFiles())

	_, err := book.Search("", SearchOptions{})
	if !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("Search(\"\") error = %v, want ErrInvalidPattern", err)
	}
}

func TestSearch_NoMatchesIsEmptyNotError(t *testing.T) {
	book := buildTestBook(t, searchBookFiles())

	results, err := book.Search("xyz123notfound", SearchOptions{})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("len(results) = %d, want 0", len(results))
	}
}

func TestSearch_NegativeContextClamped(t *testing.T) {
	book := buildTestBook(t, searchBookFiles())

	results, err := book.Search("Beta", SearchOptions{ContextLines: -3})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if results[0].Context != "Beta line one" {
		t.Errorf("Context = %q, want the matched line only", results[0].Context)
	}
}

func TestChapterTitles_ReadingOrder(t *testing.T) {
	book := buildTestBook(t, testBookFiles())

	got := book.ChapterTitles()
	want := []string{"Chapter One", "Chapter Two"}
	if len(got) != len(want) {
		t.Fatalf("len(ChapterTitles()) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ChapterTitles()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFullText_BlankLineSeparator(t *testing.T) {
	book := buildTestBook(t, searchBookFiles())

	full := book.FullText()
	parts := strings.Split(full, "\n\n")
	if len(parts) != 2 {
		t.Fatalf("FullText() split on blank line = %d parts, want 2", len(parts))
	}
	chapters := book.Chapters()
	if parts[0] != chapters[0].Content || parts[1] != chapters[1].Content {
		t.Error("FullText() parts do not round-trip to chapter contents")
	}
}

func TestChapterByTitle_ExactMatch(t *testing.T) {
	book := buildTestBook(t, testBookFiles())

	ch, ok := book.ChapterByTitle("Chapter Two")
	if !ok {
		t.Fatal("ChapterByTitle(\"Chapter Two\") not found")
	}
	if ch.FileName != "OEBPS/text/ch2.xhtml" {
		t.Errorf("FileName = %q, want ch2", ch.FileName)
	}

	if _, ok := book.ChapterByTitle("chapter two"); ok {
		t.Error("ChapterByTitle() matched case-insensitively, want exact match only")
	}
	if _, ok := book.ChapterByTitle("No Such Chapter"); ok {
		t.Error("ChapterByTitle() found a chapter that does not exist")
	}
}

func TestWordCount_PerChapterAndTotal(t *testing.T) {
	files := searchBookFiles()
	files["a.xhtml"] = `<html><body><p>one two three</p></body></html>`
	files["b.xhtml"] = `<html><body><p>four five</p></body></html>`
	book := buildTestBook(t, files)

	report := book.WordCount()
	if report.Total != 5 {
		t.Errorf("Total = %d, want 5", report.Total)
	}
	if len(report.ByChapter) != 2 {
		t.Fatalf("len(ByChapter) = %d, want 2", len(report.ByChapter))
	}
	if report.ByChapter[0].Title != "a.xhtml" || report.ByChapter[0].Words != 3 {
		t.Errorf("ByChapter[0] = %+v, want {a.xhtml 3}", report.ByChapter[0])
	}
	if report.ByChapter[1].Title != "b.xhtml" || report.ByChapter[1].Words != 2 {
		t.Errorf("ByChapter[1] = %+v, want {b.xhtml 2}", report.ByChapter[1])
	}
}

func TestSearch_ResultsFollowReadingOrder(t *testing.T) {
	book := buildTestBook(t, searchBookFiles())

	results, err := book.Search("one", SearchOptions{})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].FileName != "a.xhtml" || results[1].FileName != "b.xhtml" {
		t.Errorf("result order = [%s %s], want chapter reading order", results[0].FileName, results[1].FileName)
	}
}
